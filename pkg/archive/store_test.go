package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsmith/pkg/domain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(FileStoreParams{
		ArticlesFile:  filepath.Join(dir, "data", "articles.json"),
		ProcessedFile: filepath.Join(dir, "processed_urls.txt"),
		LastRunFile:   filepath.Join(dir, "data", "last_run.json"),
	})
}

func TestPrepend(t *testing.T) {
	archive := []domain.Article{{ID: "b"}, {ID: "a"}}
	res := Prepend(archive, domain.Article{ID: "c"})
	require.Len(t, res, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{res[0].ID, res[1].ID, res[2].ID})
	assert.Equal(t, "b", archive[0].ID, "source not modified")

	res = Prepend(nil, domain.Article{ID: "x"})
	assert.Equal(t, []domain.Article{{ID: "x"}}, res)
}

func TestFileStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)
	articles, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}

func TestFileStore_SaveLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	articles := []domain.Article{
		{ID: "2024-05-01-b", Title: "B & C", Path: "/articles/2024-05-01-b.html", PublishedTS: ts,
			BodyHTML: "<p>body</p>", SourceFeed: "https://example.com/feed", HeroImageKind: domain.ImageNone},
		{ID: "2024-04-30-a", Title: "A", Path: "/articles/2024-04-30-a.html", PublishedTS: ts.Add(-24 * time.Hour),
			HeroImage: "https://i.redd.it/a.jpg", HeroImageKind: domain.ImageDirect},
	}
	require.NoError(t, store.Save(ctx, articles))

	data, err := os.ReadFile(store.ArticlesFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"body_html": "<p>body</p>"`, "html is not escaped")
	assert.Contains(t, string(data), `"title": "B & C"`)
	assert.Contains(t, string(data), `"rss": "https://example.com/feed"`)
	assert.Contains(t, string(data), `"published_ts": "2024-05-01T12:00:00Z"`)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"), "indented")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, articles, loaded)
}

func TestFileStore_LoadLegacyFormat(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.ArticlesFile), 0o750))
	legacy := `[{"id": "2024-05-01-x", "title": "X", "path": "/articles/2024-05-01-x.html",
		"published_ts": "2024-05-01T08:15:00+00:00", "source_url": "https://r/x", "rss": "https://r/.rss",
		"summary": "", "body_html": "<p>x</p>", "hero_image": "", "hero_image_kind": "none"}]`
	require.NoError(t, os.WriteFile(store.ArticlesFile, []byte(legacy), 0o600))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, time.Date(2024, 5, 1, 8, 15, 0, 0, time.UTC).Equal(loaded[0].PublishedTS))
	assert.Equal(t, "https://r/.rss", loaded[0].SourceFeed)
	assert.Equal(t, domain.ImageNone, loaded[0].HeroImageKind)
}

func TestFileStore_LoadBroken(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.ArticlesFile), 0o750))
	require.NoError(t, os.WriteFile(store.ArticlesFile, []byte("{not json"), 0o600))
	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse archive")
}

func TestFileStore_Processed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	processed, err := store.Processed(ctx)
	require.NoError(t, err)
	assert.Empty(t, processed)

	require.NoError(t, store.MarkProcessed(ctx, "https://x.com/a/?utm=1"))
	require.NoError(t, store.MarkProcessed(ctx, "https://x.com/a#top"))
	require.NoError(t, store.MarkProcessed(ctx, "https://x.com/b"))
	require.NoError(t, store.MarkProcessed(ctx, "?only-query"))

	data, err := os.ReadFile(store.ProcessedFile)
	require.NoError(t, err)
	assert.Equal(t, "https://x.com/a\nhttps://x.com/b\n", string(data))

	processed, err = store.Processed(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"https://x.com/a": {}, "https://x.com/b": {}}, processed)
}

func TestFileStore_ProcessedNormalizesExistingLines(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.ProcessedFile, []byte("https://x.com/a/\n\n  https://x.com/b?x=1  \n"), 0o600))

	processed, err := store.Processed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"https://x.com/a": {}, "https://x.com/b": {}}, processed)

	require.NoError(t, store.MarkProcessed(context.Background(), "https://x.com/a"))
	data, err := os.ReadFile(store.ProcessedFile)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"), "already present link not appended")
}

func TestFileStore_RunRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec, err := store.LastRunRecord(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	first := domain.RunRecord{UpdatedUTC: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), HomepageURL: "https://example.com/",
		Note: "No new candidate found. Site rebuilt."}
	require.NoError(t, store.SaveRunRecord(ctx, first))
	second := domain.RunRecord{UpdatedUTC: time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC), HomepageURL: "https://example.com/",
		Created: true, ArticleURL: "https://example.com/articles/a.html", ArticlePath: "/articles/a.html",
		ArticleTitle: "a source", GeneratedTitle: "A", SourceURL: "https://src/a"}
	require.NoError(t, store.SaveRunRecord(ctx, second))

	rec, err = store.LastRunRecord(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, second, *rec)

	data, err := os.ReadFile(store.LastRunFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"created": true`)
	assert.NotContains(t, string(data), `"note"`)
}
