// Package pipeline runs the one-shot flow: pick a candidate, write an article, persist it and rebuild the site
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsmith/pkg/archive"
	"github.com/umputun/newsmith/pkg/domain"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store
//go:generate moq -out mocks/picker.go -pkg mocks -skip-ensure -fmt goimports . Picker
//go:generate moq -out mocks/writer.go -pkg mocks -skip-ensure -fmt goimports . Writer
//go:generate moq -out mocks/builder.go -pkg mocks -skip-ensure -fmt goimports . Builder
//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor
//go:generate moq -out mocks/guard.go -pkg mocks -skip-ensure -fmt goimports . Guard

// NoCandidateNote is recorded when a run finds nothing new to write about
const NoCandidateNote = "No new candidate found. Site rebuilt."

const maxSlugLen = 80

// Store persists the archive, processed links and the run record
type Store interface {
	Load(ctx context.Context) ([]domain.Article, error)
	Save(ctx context.Context, articles []domain.Article) error
	Processed(ctx context.Context) (map[string]struct{}, error)
	MarkProcessed(ctx context.Context, link string) error
	SaveRunRecord(ctx context.Context, rec domain.RunRecord) error
}

// Picker selects the next feed item to write about, nil if there is none
type Picker interface {
	Pick(ctx context.Context, processed map[string]struct{}, past []domain.Article) (*domain.FeedItem, error)
}

// Writer generates an article title and html body for a candidate
type Writer interface {
	Write(ctx context.Context, candidate domain.FeedItem) (title, body string, err error)
}

// Builder renders the site from the archive
type Builder interface {
	Build(ctx context.Context, articles []domain.Article) error
}

// Extractor returns the main text of a page
type Extractor interface {
	Extract(ctx context.Context, link string) (string, error)
}

// Guard prevents a second run
type Guard interface {
	Check() error
	Mark(ts time.Time) error
}

// Params defines collaborators of Runner
type Params struct {
	Store     Store
	Picker    Picker
	Writer    Writer
	Builder   Builder
	Guard     Guard
	Extractor Extractor        // optional, adds source page text to the candidate
	BaseURL   string           // public site url
	Now       func() time.Time // time.Now if nil
}

// Runner executes a single pipeline run
type Runner struct {
	Params
}

// NewRunner makes a Runner
func NewRunner(params Params) *Runner {
	params.BaseURL = strings.TrimRight(strings.TrimSpace(params.BaseURL), "/")
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Runner{Params: params}
}

// Run performs the whole run and returns its record. The guard is checked before anything else
// and marked only after the run record is stored. Both outcomes, with or without a new article,
// rebuild the site.
func (r *Runner) Run(ctx context.Context) (domain.RunRecord, error) {
	if err := r.Guard.Check(); err != nil {
		return domain.RunRecord{}, err
	}

	articles, err := r.Store.Load(ctx)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("load archive: %w", err)
	}
	processed, err := r.Store.Processed(ctx)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("load processed links: %w", err)
	}
	lgr.Printf("[INFO] archive has %d articles, %d processed links", len(articles), len(processed))

	candidate, err := r.Picker.Pick(ctx, processed, articles)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("pick candidate: %w", err)
	}

	if candidate == nil {
		lgr.Printf("[INFO] no new candidate found, rebuilding site")
		if err := r.Builder.Build(ctx, articles); err != nil {
			return domain.RunRecord{}, fmt.Errorf("build site: %w", err)
		}
		rec := domain.RunRecord{UpdatedUTC: r.now(), HomepageURL: r.BaseURL + "/", Note: NoCandidateNote}
		return rec, r.complete(ctx, rec)
	}

	lgr.Printf("[INFO] picked %q, %s", candidate.Title, candidate.Link)
	r.enrich(ctx, candidate)

	title, body, err := r.Writer.Write(ctx, *candidate)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("write article: %w", err)
	}

	article := r.makeArticle(title, body, candidate, articles)
	if err := r.Store.MarkProcessed(ctx, candidate.Link); err != nil {
		return domain.RunRecord{}, fmt.Errorf("mark processed: %w", err)
	}
	articles = archive.Prepend(articles, article)
	if err := r.Store.Save(ctx, articles); err != nil {
		return domain.RunRecord{}, fmt.Errorf("save archive: %w", err)
	}
	lgr.Printf("[INFO] created article %s, %q", article.ID, article.Title)

	if err := r.Builder.Build(ctx, articles); err != nil {
		return domain.RunRecord{}, fmt.Errorf("build site: %w", err)
	}

	rec := domain.RunRecord{
		UpdatedUTC:     r.now(),
		HomepageURL:    r.BaseURL + "/",
		Created:        true,
		ArticleURL:     r.BaseURL + article.Path,
		ArticlePath:    article.Path,
		ArticleTitle:   candidate.Title,
		GeneratedTitle: article.Title,
		SourceURL:      candidate.Link,
	}
	return rec, r.complete(ctx, rec)
}

// complete stores the run record and sets the completion marker
func (r *Runner) complete(ctx context.Context, rec domain.RunRecord) error {
	if err := r.Store.SaveRunRecord(ctx, rec); err != nil {
		return fmt.Errorf("save run record: %w", err)
	}
	if err := r.Guard.Mark(rec.UpdatedUTC); err != nil {
		return fmt.Errorf("mark run completed: %w", err)
	}
	return nil
}

// enrich adds the source page text to the candidate, failures are not fatal
func (r *Runner) enrich(ctx context.Context, candidate *domain.FeedItem) {
	if r.Extractor == nil {
		return
	}
	text, err := r.Extractor.Extract(ctx, candidate.Link)
	if err != nil {
		lgr.Printf("[WARN] can't extract source text from %s: %v", candidate.Link, err)
		return
	}
	lgr.Printf("[DEBUG] extracted %d chars from %s", len(text), candidate.Link)
	candidate.SourceText = text
}

// makeArticle creates the archive entry for a generated article.
// The id is <date>-<slug>, made unique against the archive with a numeric suffix.
func (r *Runner) makeArticle(title, body string, c *domain.FeedItem, existing []domain.Article) domain.Article {
	ts := r.now()
	if strings.TrimSpace(title) == "" {
		title = c.Title
	}
	slug := Slug(title, maxSlugLen)
	if slug == "" {
		slug = fmt.Sprintf("post-%d", ts.Unix())
	}

	ids := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		ids[a.ID] = struct{}{}
	}
	id := ts.Format("2006-01-02") + "-" + slug
	for i, base := 2, id; ; i++ {
		if _, taken := ids[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}

	kind := c.HeroImageKind
	if kind == "" {
		kind = domain.ImageNone
	}
	return domain.Article{
		ID:            id,
		Title:         title,
		Path:          "/articles/" + id + ".html",
		PublishedTS:   ts,
		SourceURL:     c.Link,
		SourceFeed:    c.SourceFeed,
		Summary:       c.Summary,
		BodyHTML:      body,
		HeroImage:     c.HeroImage,
		HeroImageKind: kind,
	}
}

func (r *Runner) now() time.Time {
	return r.Now().UTC().Truncate(time.Second)
}
