// Package archive keeps the article archive and run state in plain files
package archive

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsmith/pkg/domain"
	"github.com/umputun/newsmith/pkg/novelty"
)

// FileStoreParams defines locations of the state files
type FileStoreParams struct {
	ArticlesFile  string // json array of articles, newest first
	ProcessedFile string // one normalized link per line
	LastRunFile   string // json summary of the last run
}

// FileStore implements the archive store on top of local files
type FileStore struct {
	FileStoreParams
}

// NewFileStore creates a file based store
func NewFileStore(params FileStoreParams) *FileStore {
	return &FileStore{FileStoreParams: params}
}

// Prepend returns a new archive with a in front of articles
func Prepend(articles []domain.Article, a domain.Article) []domain.Article {
	res := make([]domain.Article, 0, len(articles)+1)
	res = append(res, a)
	return append(res, articles...)
}

// Load reads the archive, a missing file is an empty archive
func (s *FileStore) Load(_ context.Context) ([]domain.Article, error) {
	data, err := os.ReadFile(s.ArticlesFile)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Article{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Article{}, nil
	}

	var articles []domain.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("parse archive %s: %w", s.ArticlesFile, err)
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	lgr.Printf("[DEBUG] loaded %d articles from %s", len(articles), s.ArticlesFile)
	return articles, nil
}

// Save writes the whole archive, preserving order
func (s *FileStore) Save(_ context.Context, articles []domain.Article) error {
	if articles == nil {
		articles = []domain.Article{}
	}
	if err := writeJSON(s.ArticlesFile, articles); err != nil {
		return fmt.Errorf("save archive: %w", err)
	}
	return nil
}

// Processed reads the set of normalized links already used, a missing file is an empty set
func (s *FileStore) Processed(_ context.Context) (map[string]struct{}, error) {
	res := map[string]struct{}{}
	f, err := os.Open(s.ProcessedFile)
	if errors.Is(err, fs.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open processed links: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if u := novelty.NormalizeURL(scanner.Text()); u != "" {
			res[u] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read processed links: %w", err)
	}
	return res, nil
}

// MarkProcessed appends the normalized link unless it is empty or already recorded
func (s *FileStore) MarkProcessed(ctx context.Context, link string) error {
	norm := novelty.NormalizeURL(link)
	if norm == "" {
		return nil
	}
	processed, err := s.Processed(ctx)
	if err != nil {
		return err
	}
	if _, ok := processed[norm]; ok {
		return nil
	}

	if err := ensureDir(s.ProcessedFile); err != nil {
		return err
	}
	f, err := os.OpenFile(s.ProcessedFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // not a secret
	if err != nil {
		return fmt.Errorf("open processed links: %w", err)
	}
	if _, err := f.WriteString(norm + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("append processed link: %w", err)
	}
	return f.Close()
}

// SaveRunRecord overwrites the last run summary
func (s *FileStore) SaveRunRecord(_ context.Context, rec domain.RunRecord) error {
	if err := writeJSON(s.LastRunFile, rec); err != nil {
		return fmt.Errorf("save run record: %w", err)
	}
	return nil
}

// LastRunRecord reads the last run summary, nil if there is none
func (s *FileStore) LastRunRecord(_ context.Context) (*domain.RunRecord, error) {
	data, err := os.ReadFile(s.LastRunFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read run record: %w", err)
	}
	var rec domain.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse run record: %w", err)
	}
	return &rec, nil
}

// writeJSON writes v as indented json, html characters are kept as is
func writeJSON(path string, v any) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // public site data
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// String describes the store locations
func (s *FileStore) String() string {
	return fmt.Sprintf("file store (%s)", strings.Join([]string{s.ArticlesFile, s.ProcessedFile, s.LastRunFile}, ", "))
}
