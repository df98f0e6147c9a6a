package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsmith/pkg/archive"
	"github.com/umputun/newsmith/pkg/domain"
	"github.com/umputun/newsmith/pkg/pipeline"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Test Feed</title>
		<link>https://example.com</link>
		<item>
			<title>Go 1.30 released with new iterators</title>
			<link>https://example.com/go-130</link>
			<description>The new release brings faster builds.</description>
		</item>
	</channel>
</rss>`

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	opts := Opts{Config: "non-existent-config.yml", Marker: filepath.Join(t.TempDir(), ".lite_ran")}
	err := run(ctx, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("invalid: yaml: content: ["), 0o600))

	opts := Opts{Config: cfgFile, Marker: filepath.Join(dir, ".lite_ran")}
	err := run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRun_MissingAPIKey(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeConfig(t, dir, "http://127.0.0.1:1/feed", "http://127.0.0.1:1", "", "file")

	opts := Opts{Config: cfgFile, Marker: filepath.Join(dir, ".lite_ran")}
	err := run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation.api_key")
	assert.NoFileExists(t, opts.Marker)
}

func TestRun_MarkerPresent(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, ".lite_ran")
	require.NoError(t, os.WriteFile(marker, []byte("2024-05-01T10:00:00Z\n"), 0o600))

	// config is not read when the marker exists
	err := run(context.Background(), Opts{Config: filepath.Join(dir, "missing.yml"), Marker: marker})
	require.ErrorIs(t, err, pipeline.ErrAlreadyRan)
}

func TestRun_EndToEnd(t *testing.T) {
	feedSrv, llmSrv := testServers(t)
	dir := t.TempDir()
	cfgFile := writeConfig(t, dir, feedSrv.URL+"/feed", llmSrv.URL, "", "file")

	opts := Opts{Config: cfgFile, Marker: filepath.Join(dir, ".lite_ran"), APIKey: "test-key"}
	require.NoError(t, run(context.Background(), opts))

	assert.FileExists(t, opts.Marker)
	assert.FileExists(t, filepath.Join(dir, "docs", "index.html"))
	assert.FileExists(t, filepath.Join(dir, "docs", "feed.xml"))
	assert.FileExists(t, filepath.Join(dir, "docs", "sitemap.xml"))

	store := archive.NewFileStore(archive.FileStoreParams{
		ArticlesFile:  filepath.Join(dir, "data", "articles.json"),
		ProcessedFile: filepath.Join(dir, "processed_urls.txt"),
		LastRunFile:   filepath.Join(dir, "data", "last_run.json"),
	})
	articles, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Iterators land in Go", articles[0].Title)
	assert.Equal(t, "https://example.com/go-130", articles[0].SourceURL)
	assert.FileExists(t, filepath.Join(dir, "docs", "articles", articles[0].ID+".html"))

	rec, err := store.LastRunRecord(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Created)
	assert.Equal(t, "https://example.com/blog/", rec.HomepageURL)
	assert.Equal(t, "Go 1.30 released with new iterators", rec.ArticleTitle)
	assert.Equal(t, "Iterators land in Go", rec.GeneratedTitle)
	assert.Equal(t, "previous run "+rec.UpdatedUTC.Format(time.RFC3339)+" created "+rec.ArticleURL,
		describeLastRun(context.Background(), store))

	// second run is refused by the marker
	err = run(context.Background(), opts)
	require.ErrorIs(t, err, pipeline.ErrAlreadyRan)
}

func TestRun_EndToEndSQLite(t *testing.T) {
	feedSrv, llmSrv := testServers(t)
	dir := t.TempDir()
	cfgFile := writeConfig(t, dir, feedSrv.URL+"/feed", llmSrv.URL, "test-key", "sqlite")

	opts := Opts{Config: cfgFile, Marker: filepath.Join(dir, ".lite_ran")}
	require.NoError(t, run(context.Background(), opts))

	assert.FileExists(t, opts.Marker)
	assert.FileExists(t, filepath.Join(dir, "newsmith.db"))
	assert.NoFileExists(t, filepath.Join(dir, "data", "articles.json"))

	index, err := os.ReadFile(filepath.Join(dir, "docs", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "Iterators land in Go")
}

func TestDescribeLastRun(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := archive.NewFileStore(archive.FileStoreParams{
		ArticlesFile:  filepath.Join(dir, "articles.json"),
		ProcessedFile: filepath.Join(dir, "processed.txt"),
		LastRunFile:   filepath.Join(dir, "last_run.json"),
	})
	assert.Equal(t, "no previous run recorded", describeLastRun(ctx, store))

	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRunRecord(ctx, domain.RunRecord{UpdatedUTC: ts, Note: "nothing"}))
	assert.Equal(t, "previous run 2024-05-01T08:00:00Z created nothing", describeLastRun(ctx, store))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "last_run.json"), []byte("{broken"), 0o600))
	assert.Contains(t, describeLastRun(ctx, store), "previous run unknown")
}

func TestSetupLog(t *testing.T) {
	setupLog(true, true, "secret")
	setupLog(false, false)
	setupLog(false, true, "", "secret")
}

func testServers(t *testing.T) (feedSrv, llmSrv *httptest.Server) {
	t.Helper()
	feedSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testFeed))
	}))
	t.Cleanup(feedSrv.Close)

	llmSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		resp := map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "deepseek-chat",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": "TITLE: Iterators land in Go\n\n<p>Go 1.30 is out.</p>",
				},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(llmSrv.Close)
	return feedSrv, llmSrv
}

// writeConfig writes a yaml config with every path inside dir
func writeConfig(t *testing.T, dir, feedURL, endpoint, apiKey, storage string) string {
	t.Helper()
	cfg := fmt.Sprintf(`site:
  base_url: https://example.com/blog
  brand_name: Test Site
  site_dir: %[1]s/docs
feeds:
  urls:
    - %[2]s
generation:
  endpoint: %[3]s
  api_key: %[4]q
  timeout: 5s
og:
  cache_images: false
storage:
  type: %[5]s
  dsn: file:%[1]s/newsmith.db?mode=rwc
  articles_file: %[1]s/data/articles.json
  processed_file: %[1]s/processed_urls.txt
  last_run_file: %[1]s/data/last_run.json
`, dir, feedURL, endpoint, apiKey, storage)
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}
