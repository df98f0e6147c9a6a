package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"github.com/umputun/newsmith/pkg/domain"
)

// DefaultMaxItems is the per-feed entry cap used when none is given
const DefaultMaxItems = 25

// FetchError is returned when a feed can't be retrieved or parsed
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ReaderParams configures Reader
type ReaderParams struct {
	Timeout          time.Duration
	UserAgent        string
	DirectImageHost  string // images from this host are kind "direct"
	PreviewImageHost string // images from this host are kind "preview"
}

// Reader fetches RSS/Atom feeds and normalizes their entries
type Reader struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	directHost  string
	previewHost string
}

// NewReader creates a new feed reader
func NewReader(params ReaderParams) *Reader {
	return &Reader{
		client:      &http.Client{Timeout: params.Timeout},
		timeout:     params.Timeout,
		userAgent:   params.UserAgent,
		directHost:  strings.ToLower(params.DirectImageHost),
		previewHost: strings.ToLower(params.PreviewImageHost),
	}
}

// Fetch retrieves the feed and returns up to maxItems entries having both title and link
func (r *Reader) Fetch(ctx context.Context, feedURL string, maxItems int) ([]domain.FeedItem, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/atom+xml,application/rss+xml,application/xml;q=0.9,text/xml;q=0.8,*/*;q=0.5")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: feedURL, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: fmt.Errorf("parse feed: %w", err)}
	}

	items := make([]domain.FeedItem, 0, min(len(parsed.Items), maxItems))
	for _, entry := range parsed.Items {
		title, link := strings.TrimSpace(entry.Title), strings.TrimSpace(entry.Link)
		if title == "" || link == "" {
			continue
		}

		published := strings.TrimSpace(entry.Published)
		if published == "" {
			published = strings.TrimSpace(entry.Updated)
		}

		summary := strings.TrimSpace(entry.Description)
		img, kind := r.classifyImage(heroImage(entry, summary))
		items = append(items, domain.FeedItem{
			Title:         title,
			Link:          link,
			Summary:       summary,
			Published:     published,
			SourceFeed:    feedURL,
			HeroImage:     img,
			HeroImageKind: kind,
		})
		if len(items) >= maxItems {
			break
		}
	}
	return items, nil
}

// classifyImage applies the host allowlist, anything not from a trusted host is dropped
func (r *Reader) classifyImage(img string) (string, domain.ImageKind) {
	if img == "" {
		return "", domain.ImageNone
	}
	u, err := url.Parse(img)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", domain.ImageNone
	}
	switch strings.ToLower(u.Hostname()) {
	case "":
		return "", domain.ImageNone
	case r.directHost:
		return img, domain.ImageDirect
	case r.previewHost:
		return img, domain.ImagePreview
	}
	return "", domain.ImageNone
}

// heroImage looks for an image in content, then summary, then media:thumbnail
func heroImage(entry *gofeed.Item, summary string) string {
	if img := firstImage(entry.Content); img != "" {
		return img
	}
	if img := firstImage(summary); img != "" {
		return img
	}
	if media, ok := entry.Extensions["media"]; ok {
		for _, thumb := range media["thumbnail"] {
			if u := strings.TrimSpace(thumb.Attrs["url"]); u != "" {
				return u
			}
		}
	}
	return ""
}

// firstImage returns src of the first <img> in a html fragment.
// Feed content is often entity-encoded (&lt;img ...&gt;), so it is unescaped before tokenizing.
func firstImage(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(html.UnescapeString(raw)))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "img" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "src" && len(val) > 0 {
					return strings.TrimSpace(string(val))
				}
				if !more {
					break
				}
			}
		}
	}
}
