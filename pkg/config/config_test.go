package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configContent := `
site:
  brand_name: Test Site
  description: Test digest
  base_url: https://example.com/site
  contact_email: me@example.com
  site_dir: public
feeds:
  urls:
    - https://example.com/feed1.xml
    - https://example.com/feed2.xml
  max_items: 10
  timeout: 5s
safety:
  blocked_keywords: [nsfw, spoiler]
generation:
  model: test-model
  temperature: 0.5
  max_tokens: 1000
  pick_random: true
og:
  cache_images: false
storage:
  type: sqlite
  dsn: file:test.db
`
		cfg, err := Load(writeConfig(t, "config.yml", configContent))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "Test Site", cfg.Site.BrandName)
		assert.Equal(t, "https://example.com/site", cfg.Site.BaseURL)
		assert.Equal(t, "public", cfg.Site.SiteDir)
		assert.Equal(t, []string{"https://example.com/feed1.xml", "https://example.com/feed2.xml"}, cfg.Feeds.URLs)
		assert.Equal(t, 10, cfg.Feeds.MaxItems)
		assert.Equal(t, 5*time.Second, cfg.Feeds.Timeout)
		assert.Equal(t, []string{"nsfw", "spoiler"}, cfg.Safety.BlockedKeywords)
		assert.Equal(t, "test-model", cfg.Generation.Model)
		require.NotNil(t, cfg.Generation.Temperature)
		assert.InDelta(t, 0.5, *cfg.Generation.Temperature, 0.001)
		assert.Equal(t, 1000, cfg.Generation.MaxTokens)
		assert.True(t, cfg.Generation.PickRandom)
		assert.False(t, cfg.CacheImages())
		assert.Equal(t, StorageSQLite, cfg.Storage.Type)
		assert.Equal(t, "file:test.db", cfg.Storage.DSN)
	})

	t.Run("defaults", func(t *testing.T) {
		configContent := `
site:
  base_url: https://example.com
feeds:
  urls: [https://example.com/feed.xml]
`
		cfg, err := Load(writeConfig(t, "config.yml", configContent))
		require.NoError(t, err)

		assert.Equal(t, "AutoSite Lite", cfg.Site.BrandName)
		assert.Equal(t, "Daily digest", cfg.Site.Description)
		assert.Equal(t, "docs", cfg.Site.SiteDir)
		assert.Equal(t, defaultUserAgent, cfg.Site.UserAgent)
		assert.Equal(t, 25, cfg.Feeds.MaxItems)
		assert.Equal(t, 25*time.Second, cfg.Feeds.Timeout)
		assert.Equal(t, "i.redd.it", cfg.Feeds.DirectImageHost)
		assert.Equal(t, "preview.redd.it", cfg.Feeds.PreviewImageHost)
		assert.Equal(t, "https://api.deepseek.com", cfg.Generation.Endpoint)
		assert.Equal(t, "deepseek-chat", cfg.Generation.Model)
		require.NotNil(t, cfg.Generation.Temperature)
		assert.InDelta(t, 0.7, *cfg.Generation.Temperature, 0.001)
		assert.Equal(t, 2200, cfg.Generation.MaxTokens)
		assert.Equal(t, 60*time.Second, cfg.Generation.Timeout)
		require.NotNil(t, cfg.Generation.SimilarityThreshold)
		assert.InDelta(t, 0.78, *cfg.Generation.SimilarityThreshold, 0.0001)
		assert.False(t, cfg.Generation.PickRandom)
		assert.True(t, cfg.CacheImages())
		assert.Equal(t, 20*time.Second, cfg.OG.Timeout)
		assert.False(t, cfg.Extraction.Enabled)
		assert.Equal(t, StorageFile, cfg.Storage.Type)
		assert.Equal(t, "data/articles.json", cfg.Storage.ArticlesFile)
		assert.Equal(t, "processed_urls.txt", cfg.Storage.ProcessedFile)
		assert.Equal(t, "data/last_run.json", cfg.Storage.LastRunFile)
	})

	t.Run("json config", func(t *testing.T) {
		configContent := `{
  "site": {"base_url": "https://example.com/", "contact_email": "a@b.c"},
  "feeds": {"urls": ["https://www.reddit.com/r/golang/.rss"]},
  "generation": {"pick_random": false}
}`
		cfg, err := Load(writeConfig(t, "config.json", configContent))
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", cfg.Site.BaseURL)
		assert.Equal(t, "a@b.c", cfg.Site.ContactEmail)
		assert.Len(t, cfg.Feeds.URLs, 1)
	})

	t.Run("explicit zero floats are kept", func(t *testing.T) {
		configContent := `{
  "site": {"base_url": "https://example.com"},
  "feeds": {"urls": ["https://example.com/feed.xml"]},
  "generation": {"temperature": 0, "similarity_threshold": 0}
}`
		cfg, err := Load(writeConfig(t, "config.json", configContent))
		require.NoError(t, err)
		require.NotNil(t, cfg.Generation.Temperature)
		assert.Zero(t, *cfg.Generation.Temperature)
		require.NotNil(t, cfg.Generation.SimilarityThreshold)
		assert.Zero(t, *cfg.Generation.SimilarityThreshold)
	})

	t.Run("legacy reddit_rss feeds", func(t *testing.T) {
		configContent := `{
  "site": {"base_url": "https://example.com"},
  "feeds": {"reddit_rss": ["https://www.reddit.com/r/golang/.rss", "https://www.reddit.com/r/rust/.rss"]}
}`
		cfg, err := Load(writeConfig(t, "config.json", configContent))
		require.NoError(t, err)
		assert.Equal(t, []string{"https://www.reddit.com/r/golang/.rss", "https://www.reddit.com/r/rust/.rss"}, cfg.Feeds.URLs)
	})

	t.Run("urls win over reddit_rss", func(t *testing.T) {
		configContent := `
site:
  base_url: https://example.com
feeds:
  urls: [https://example.com/feed.xml]
  reddit_rss: [https://www.reddit.com/r/golang/.rss]
`
		cfg, err := Load(writeConfig(t, "config.yml", configContent))
		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/feed.xml"}, cfg.Feeds.URLs)
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("NEWSMITH_TEST_KEY", "secret-key")
		configContent := `
site:
  base_url: https://example.com
feeds:
  urls: [https://example.com/feed.xml]
generation:
  api_key: ${NEWSMITH_TEST_KEY}
`
		cfg, err := Load(writeConfig(t, "config.yml", configContent))
		require.NoError(t, err)
		assert.Equal(t, "secret-key", cfg.Generation.APIKey)
		assert.NoError(t, cfg.ValidateCredentials())
	})

	t.Run("missing base url", func(t *testing.T) {
		configContent := `
feeds:
  urls: [https://example.com/feed.xml]
`
		cfg, err := Load(writeConfig(t, "config.yml", configContent))
		require.Error(t, err)
		assert.Nil(t, cfg)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "site.base_url", verr.Field)
	})

	t.Run("empty feeds", func(t *testing.T) {
		configContent := `
site:
  base_url: https://example.com
`
		_, err := Load(writeConfig(t, "config.yml", configContent))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "feeds.urls")
	})

	t.Run("file not found", func(t *testing.T) {
		cfg, err := Load("/non/existent/file.yml")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configContent := `
invalid yaml content
  with bad indentation
    and no structure
`
		cfg, err := Load(writeConfig(t, "invalid.yml", configContent))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Site.BaseURL = "https://example.com"
		cfg.Feeds.URLs = []string{"https://example.com/feed.xml"}
		cfg.SetDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		modify func(c *Config)
		field  string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "blank feed url", modify: func(c *Config) { c.Feeds.URLs = []string{" "} }, field: "feeds.urls[0]"},
		{name: "temperature too high", modify: func(c *Config) { c.Generation.Temperature = floatPtr(2.5) }, field: "generation.temperature"},
		{name: "negative max tokens", modify: func(c *Config) { c.Generation.MaxTokens = -1 }, field: "generation.max_tokens"},
		{name: "bad threshold", modify: func(c *Config) { c.Generation.SimilarityThreshold = floatPtr(1.5) }, field: "generation.similarity_threshold"},
		{name: "unknown storage", modify: func(c *Config) { c.Storage.Type = "redis" }, field: "storage.type"},
		{name: "short extraction timeout", modify: func(c *Config) {
			c.Extraction.Enabled = true
			c.Extraction.Timeout = time.Millisecond
		}, field: "extraction.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestConfig_ValidateCredentials(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateCredentials()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "generation.api_key", verr.Field)

	cfg.Generation.APIKey = "key"
	assert.NoError(t, cfg.ValidateCredentials())
}
