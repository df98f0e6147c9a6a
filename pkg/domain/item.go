package domain

// ImageKind tells where a hero image came from
type ImageKind string

const (
	ImageNone    ImageKind = "none"
	ImageDirect  ImageKind = "direct"
	ImagePreview ImageKind = "preview"
)

// FeedItem represents a single normalized entry fetched from a feed
type FeedItem struct {
	Title         string
	Link          string
	Summary       string
	Published     string // as found in the feed, not parsed
	SourceFeed    string
	HeroImage     string
	HeroImageKind ImageKind
	SourceText    string // extracted text of the linked page, optional
}
