package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/umputun/newsmith/pkg/domain"
	"github.com/umputun/newsmith/pkg/novelty"
)

// articleRow is the database representation of domain.Article
type articleRow struct {
	Position      int    `db:"position"`
	ID            string `db:"id"`
	Title         string `db:"title"`
	Path          string `db:"path"`
	PublishedTS   string `db:"published_ts"`
	SourceURL     string `db:"source_url"`
	SourceFeed    string `db:"source_feed"`
	Summary       string `db:"summary"`
	BodyHTML      string `db:"body_html"`
	HeroImage     string `db:"hero_image"`
	HeroImageKind string `db:"hero_image_kind"`
}

// runRecordRow is the database representation of domain.RunRecord
type runRecordRow struct {
	UpdatedUTC     string `db:"updated_utc"`
	HomepageURL    string `db:"homepage_url"`
	Created        bool   `db:"created"`
	ArticleURL     string `db:"article_url"`
	ArticlePath    string `db:"article_path"`
	ArticleTitle   string `db:"article_title"`
	GeneratedTitle string `db:"generated_title"`
	SourceURL      string `db:"source_url"`
	Note           string `db:"note"`
}

// Load returns all articles, newest first. An empty database gives an empty archive.
func (s *Store) Load(ctx context.Context) ([]domain.Article, error) {
	var rows []articleRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM articles ORDER BY position"); err != nil {
		return nil, fmt.Errorf("select articles: %w", err)
	}

	res := make([]domain.Article, 0, len(rows))
	for _, r := range rows {
		a, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, nil
}

// Save replaces the stored archive with articles, keeping their order
func (s *Store) Save(ctx context.Context, articles []domain.Article) error {
	return s.retrier.Do(ctx, func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return classify(fmt.Errorf("begin transaction: %w", err))
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		if _, err := tx.ExecContext(ctx, "DELETE FROM articles"); err != nil {
			return classify(fmt.Errorf("clear articles: %w", err))
		}

		query := `INSERT INTO articles (position, id, title, path, published_ts, source_url, source_feed,
				summary, body_html, hero_image, hero_image_kind)
			VALUES (:position, :id, :title, :path, :published_ts, :source_url, :source_feed,
				:summary, :body_html, :hero_image, :hero_image_kind)`
		for i, a := range articles {
			if _, err := tx.NamedExecContext(ctx, query, newArticleRow(i, a)); err != nil {
				return classify(fmt.Errorf("insert article %s: %w", a.ID, err))
			}
		}

		if err := tx.Commit(); err != nil {
			return classify(fmt.Errorf("commit articles: %w", err))
		}
		return nil
	}, errCritical)
}

// Processed returns the set of normalized links already used
func (s *Store) Processed(ctx context.Context) (map[string]struct{}, error) {
	var urls []string
	if err := s.db.SelectContext(ctx, &urls, "SELECT url FROM processed_links"); err != nil {
		return nil, fmt.Errorf("select processed links: %w", err)
	}
	res := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		res[u] = struct{}{}
	}
	return res, nil
}

// MarkProcessed normalizes link and records it, recording the same link twice is a no-op
func (s *Store) MarkProcessed(ctx context.Context, link string) error {
	norm := novelty.NormalizeURL(link)
	if norm == "" {
		return nil
	}
	return s.retrier.Do(ctx, func() error {
		if _, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO processed_links (url) VALUES (?)", norm); err != nil {
			return classify(fmt.Errorf("insert processed link: %w", err))
		}
		return nil
	}, errCritical)
}

// SaveRunRecord stores the run summary, replacing the previous one
func (s *Store) SaveRunRecord(ctx context.Context, rec domain.RunRecord) error {
	row := runRecordRow{
		UpdatedUTC:     rec.UpdatedUTC.UTC().Format(time.RFC3339),
		HomepageURL:    rec.HomepageURL,
		Created:        rec.Created,
		ArticleURL:     rec.ArticleURL,
		ArticlePath:    rec.ArticlePath,
		ArticleTitle:   rec.ArticleTitle,
		GeneratedTitle: rec.GeneratedTitle,
		SourceURL:      rec.SourceURL,
		Note:           rec.Note,
	}
	query := `
		INSERT INTO run_records (id, updated_utc, homepage_url, created, article_url, article_path, article_title,
			generated_title, source_url, note)
		VALUES (1, :updated_utc, :homepage_url, :created, :article_url, :article_path, :article_title,
			:generated_title, :source_url, :note)
		ON CONFLICT(id) DO UPDATE SET
			updated_utc = excluded.updated_utc,
			homepage_url = excluded.homepage_url,
			created = excluded.created,
			article_url = excluded.article_url,
			article_path = excluded.article_path,
			article_title = excluded.article_title,
			generated_title = excluded.generated_title,
			source_url = excluded.source_url,
			note = excluded.note
	`
	return s.retrier.Do(ctx, func() error {
		if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
			return classify(fmt.Errorf("save run record: %w", err))
		}
		return nil
	}, errCritical)
}

// LastRunRecord returns the stored run summary, nil if no run was recorded yet
func (s *Store) LastRunRecord(ctx context.Context) (*domain.RunRecord, error) {
	var row runRecordRow
	err := s.db.GetContext(ctx, &row, `SELECT updated_utc, homepage_url, created, article_url, article_path,
		article_title, generated_title, source_url, note FROM run_records WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run record: %w", err)
	}

	updated, err := time.Parse(time.RFC3339, row.UpdatedUTC)
	if err != nil {
		return nil, fmt.Errorf("parse run record time %q: %w", row.UpdatedUTC, err)
	}
	return &domain.RunRecord{
		UpdatedUTC:     updated,
		HomepageURL:    row.HomepageURL,
		Created:        row.Created,
		ArticleURL:     row.ArticleURL,
		ArticlePath:    row.ArticlePath,
		ArticleTitle:   row.ArticleTitle,
		GeneratedTitle: row.GeneratedTitle,
		SourceURL:      row.SourceURL,
		Note:           row.Note,
	}, nil
}

func newArticleRow(position int, a domain.Article) articleRow {
	kind := string(a.HeroImageKind)
	if kind == "" {
		kind = string(domain.ImageNone)
	}
	return articleRow{
		Position:      position,
		ID:            a.ID,
		Title:         a.Title,
		Path:          a.Path,
		PublishedTS:   a.PublishedTS.Format(time.RFC3339),
		SourceURL:     a.SourceURL,
		SourceFeed:    a.SourceFeed,
		Summary:       a.Summary,
		BodyHTML:      a.BodyHTML,
		HeroImage:     a.HeroImage,
		HeroImageKind: kind,
	}
}

func (r articleRow) toDomain() (domain.Article, error) {
	ts, err := time.Parse(time.RFC3339, r.PublishedTS)
	if err != nil {
		return domain.Article{}, fmt.Errorf("parse published_ts of %s: %w", r.ID, err)
	}
	return domain.Article{
		ID:            r.ID,
		Title:         r.Title,
		Path:          r.Path,
		PublishedTS:   ts,
		SourceURL:     r.SourceURL,
		SourceFeed:    r.SourceFeed,
		Summary:       r.Summary,
		BodyHTML:      r.BodyHTML,
		HeroImage:     r.HeroImage,
		HeroImageKind: domain.ImageKind(r.HeroImageKind),
	}, nil
}
