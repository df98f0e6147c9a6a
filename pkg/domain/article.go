package domain

import "time"

// Article is a published entry of the archive. Articles are immutable once created.
type Article struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Path          string    `json:"path"`
	PublishedTS   time.Time `json:"published_ts"`
	SourceURL     string    `json:"source_url"`
	SourceFeed    string    `json:"rss"`
	Summary       string    `json:"summary"`
	BodyHTML      string    `json:"body_html"`
	HeroImage     string    `json:"hero_image"`
	HeroImageKind ImageKind `json:"hero_image_kind"`
}

// RunRecord summarizes the outcome of the last run
type RunRecord struct {
	UpdatedUTC     time.Time `json:"updated_utc"`
	HomepageURL    string    `json:"homepage_url"`
	Created        bool      `json:"created"`
	ArticleURL     string    `json:"article_url"`
	ArticlePath    string    `json:"article_path,omitempty"`
	ArticleTitle   string    `json:"article_title"` // title of the source feed item
	GeneratedTitle string    `json:"generated_title,omitempty"`
	SourceURL      string    `json:"source_url"`
	Note           string    `json:"note,omitempty"`
}
