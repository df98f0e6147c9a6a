package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema --out schema.json

// Config holds the application configuration
type Config struct {
	Site       SiteConfig       `yaml:"site" json:"site" jsonschema:"description=Site metadata and output location"`
	Feeds      FeedsConfig      `yaml:"feeds" json:"feeds" jsonschema:"description=Feed sources"`
	Safety     SafetyConfig     `yaml:"safety" json:"safety" jsonschema:"description=Candidate exclusion rules"`
	Generation GenerationConfig `yaml:"generation" json:"generation" jsonschema:"description=LLM article generation"`
	OG         OGConfig         `yaml:"og" json:"og" jsonschema:"description=Open Graph image caching"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Source page text extraction"`
	Storage    StorageConfig    `yaml:"storage" json:"storage" jsonschema:"description=Archive and run state storage"`
}

// SiteConfig holds site metadata
type SiteConfig struct {
	BrandName    string `yaml:"brand_name" json:"brand_name" jsonschema:"default=AutoSite Lite,description=Site name"`
	Description  string `yaml:"description" json:"description" jsonschema:"default=Daily digest,description=Site description"`
	BaseURL      string `yaml:"base_url" json:"base_url" jsonschema:"required,description=Public base URL of the site"`
	ContactEmail string `yaml:"contact_email" json:"contact_email" jsonschema:"description=Email shown on the contact page"`
	SiteDir      string `yaml:"site_dir" json:"site_dir" jsonschema:"default=docs,description=Output directory"`
	UserAgent    string `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for outgoing requests"`
}

// FeedsConfig holds feed sources and fetching parameters
type FeedsConfig struct {
	URLs             []string      `yaml:"urls" json:"urls" jsonschema:"required,description=Feed URLs polled in order"`
	RedditRSS        []string      `yaml:"reddit_rss" json:"reddit_rss,omitempty" jsonschema:"description=Legacy name of urls, used when urls is empty"`
	MaxItems         int           `yaml:"max_items" json:"max_items" jsonschema:"default=25,description=Maximum entries taken from each feed"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=25s,description=Feed fetch timeout"`
	DirectImageHost  string        `yaml:"direct_image_host" json:"direct_image_host" jsonschema:"default=i.redd.it,description=Trusted host for direct images"`
	PreviewImageHost string        `yaml:"preview_image_host" json:"preview_image_host" jsonschema:"default=preview.redd.it,description=Trusted host for preview images"`
}

// SafetyConfig holds exclusion rules
type SafetyConfig struct {
	BlockedKeywords []string `yaml:"blocked_keywords" json:"blocked_keywords" jsonschema:"description=Case-insensitive title keywords that exclude a candidate"`
}

// GenerationConfig holds LLM settings for article generation
type GenerationConfig struct {
	Endpoint            string        `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://api.deepseek.com,description=OpenAI-compatible API endpoint"`
	APIKey              string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model               string        `yaml:"model" json:"model" jsonschema:"default=deepseek-chat,description=Model name"`
	Temperature         *float64      `yaml:"temperature" json:"temperature" jsonschema:"default=0.7,minimum=0,maximum=2,description=Temperature for generation"`
	MaxTokens           int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=2200,description=Maximum tokens in response"`
	Timeout             time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=60s,description=Request timeout"`
	PickRandom          bool          `yaml:"pick_random" json:"pick_random" jsonschema:"default=false,description=Pick a random candidate instead of the first one"`
	SimilarityThreshold *float64      `yaml:"similarity_threshold" json:"similarity_threshold" jsonschema:"default=0.78,description=Title similarity that marks a candidate as a near duplicate"`
}

// OGConfig holds Open Graph image settings
type OGConfig struct {
	CacheImages *bool         `yaml:"cache_images" json:"cache_images" jsonschema:"default=true,description=Download hero images into the og directory"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=20s,description=Image download timeout"`
}

// ExtractionConfig holds source page extraction settings
type ExtractionConfig struct {
	Enabled       bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Extract source page text and pass it to the model"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Extraction timeout"`
	MinTextLength int           `yaml:"min_text_length" json:"min_text_length" jsonschema:"default=100,description=Minimum text length to consider valid"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Newsmith/1.0,description=User agent for HTTP requests"`
}

// StorageConfig holds archive storage settings
type StorageConfig struct {
	Type          string `yaml:"type" json:"type" jsonschema:"default=file,enum=file,enum=sqlite,description=Archive backend"`
	DSN           string `yaml:"dsn" json:"dsn" jsonschema:"default=file:newsmith.db?cache=shared&mode=rwc,description=SQLite connection string"`
	ArticlesFile  string `yaml:"articles_file" json:"articles_file" jsonschema:"default=data/articles.json,description=Archive file"`
	ProcessedFile string `yaml:"processed_file" json:"processed_file" jsonschema:"default=processed_urls.txt,description=Processed links file"`
	LastRunFile   string `yaml:"last_run_file" json:"last_run_file" jsonschema:"default=data/last_run.json,description=Last run summary file"`
}

// storage types
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; AutoSiteLiteBot/1.0)"

// ValidationError reports a missing or invalid configuration value
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Load reads configuration from a YAML (or JSON) file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		lgr.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

// SetDefaults fills unset values with documented defaults
func (c *Config) SetDefaults() {
	// site
	c.Site.BaseURL = strings.TrimRight(strings.TrimSpace(c.Site.BaseURL), "/")
	if c.Site.BrandName == "" {
		c.Site.BrandName = "AutoSite Lite"
	}
	if c.Site.Description == "" {
		c.Site.Description = "Daily digest"
	}
	if strings.TrimSpace(c.Site.SiteDir) == "" {
		c.Site.SiteDir = "docs"
	}
	if strings.TrimSpace(c.Site.UserAgent) == "" {
		c.Site.UserAgent = defaultUserAgent
	}

	// feeds
	if len(c.Feeds.URLs) == 0 && len(c.Feeds.RedditRSS) > 0 {
		c.Feeds.URLs = c.Feeds.RedditRSS
	}
	if c.Feeds.MaxItems == 0 {
		c.Feeds.MaxItems = 25
	}
	if c.Feeds.Timeout == 0 {
		c.Feeds.Timeout = 25 * time.Second
	}
	if c.Feeds.DirectImageHost == "" {
		c.Feeds.DirectImageHost = "i.redd.it"
	}
	if c.Feeds.PreviewImageHost == "" {
		c.Feeds.PreviewImageHost = "preview.redd.it"
	}

	// generation
	if c.Generation.Endpoint == "" {
		c.Generation.Endpoint = "https://api.deepseek.com"
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "deepseek-chat"
	}
	if c.Generation.Temperature == nil {
		c.Generation.Temperature = floatPtr(0.7)
	}
	if c.Generation.MaxTokens == 0 {
		c.Generation.MaxTokens = 2200
	}
	if c.Generation.Timeout == 0 {
		c.Generation.Timeout = 60 * time.Second
	}
	if c.Generation.SimilarityThreshold == nil {
		c.Generation.SimilarityThreshold = floatPtr(0.78)
	}

	// og images
	if c.OG.CacheImages == nil {
		enabled := true
		c.OG.CacheImages = &enabled
	}
	if c.OG.Timeout == 0 {
		c.OG.Timeout = 20 * time.Second
	}

	// extraction
	if c.Extraction.Timeout == 0 {
		c.Extraction.Timeout = 30 * time.Second
	}
	if c.Extraction.MinTextLength == 0 {
		c.Extraction.MinTextLength = 100
	}
	if c.Extraction.UserAgent == "" {
		c.Extraction.UserAgent = "Newsmith/1.0"
	}

	// storage
	if c.Storage.Type == "" {
		c.Storage.Type = StorageFile
	}
	if c.Storage.DSN == "" {
		c.Storage.DSN = "file:newsmith.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Storage.ArticlesFile == "" {
		c.Storage.ArticlesFile = "data/articles.json"
	}
	if c.Storage.ProcessedFile == "" {
		c.Storage.ProcessedFile = "processed_urls.txt"
	}
	if c.Storage.LastRunFile == "" {
		c.Storage.LastRunFile = "data/last_run.json"
	}
}

// Validate checks configuration for correctness. The api key is not checked here,
// it can be supplied on the command line after loading, see ValidateCredentials.
func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return &ValidationError{Field: "site.base_url", Reason: "is required (example: https://YOURNAME.github.io/YOURREPO)"}
	}
	if len(c.Feeds.URLs) == 0 {
		return &ValidationError{Field: "feeds.urls", Reason: "is empty, add at least one feed URL"}
	}
	for i, u := range c.Feeds.URLs {
		if strings.TrimSpace(u) == "" {
			return &ValidationError{Field: fmt.Sprintf("feeds.urls[%d]", i), Reason: "is empty"}
		}
	}
	if c.Feeds.MaxItems < 0 {
		return &ValidationError{Field: "feeds.max_items", Reason: "must be non-negative"}
	}
	if t := c.Generation.Temperature; t != nil && (*t < 0 || *t > 2) {
		return &ValidationError{Field: "generation.temperature", Reason: "must be between 0 and 2"}
	}
	if c.Generation.MaxTokens < 1 {
		return &ValidationError{Field: "generation.max_tokens", Reason: "must be at least 1"}
	}
	if th := c.Generation.SimilarityThreshold; th != nil && (*th < 0 || *th > 1) {
		return &ValidationError{Field: "generation.similarity_threshold", Reason: "must be between 0 and 1"}
	}
	if c.Storage.Type != StorageFile && c.Storage.Type != StorageSQLite {
		return &ValidationError{Field: "storage.type", Reason: fmt.Sprintf("must be %q or %q", StorageFile, StorageSQLite)}
	}
	if c.Extraction.Enabled && c.Extraction.Timeout < time.Second {
		return &ValidationError{Field: "extraction.timeout", Reason: "must be at least 1 second"}
	}
	return nil
}

// ValidateCredentials checks that the generation api key is set
func (c *Config) ValidateCredentials() error {
	if strings.TrimSpace(c.Generation.APIKey) == "" {
		return &ValidationError{Field: "generation.api_key", Reason: "is missing (set DEEPSEEK_API_KEY)"}
	}
	return nil
}

// CacheImages reports whether hero images should be cached
func (c *Config) CacheImages() bool {
	return c.OG.CacheImages == nil || *c.OG.CacheImages
}

func floatPtr(v float64) *float64 { return &v }
