package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/newsmith/pkg/archive"
	"github.com/umputun/newsmith/pkg/config"
	"github.com/umputun/newsmith/pkg/content"
	"github.com/umputun/newsmith/pkg/domain"
	"github.com/umputun/newsmith/pkg/feed"
	"github.com/umputun/newsmith/pkg/llm"
	"github.com/umputun/newsmith/pkg/novelty"
	"github.com/umputun/newsmith/pkg/pipeline"
	"github.com/umputun/newsmith/pkg/repository"
	"github.com/umputun/newsmith/pkg/site"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"config.json" description:"configuration file (yaml or json)"`
	Marker string `long:"marker" env:"MARKER" default:".lite_ran" description:"completion marker, the run is refused if it exists"`
	APIKey string `long:"api-key" env:"DEEPSEEK_API_KEY" description:"generation api key, overrides the config"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor, opts.APIKey)
	log.Printf("[INFO] starting newsmith version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[WARN] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// run performs a single pipeline run. The completion marker is checked before the config is read.
func run(ctx context.Context, opts Opts) error {
	guard := pipeline.NewFileGuard(opts.Marker)
	if err := guard.Check(); err != nil {
		return err
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.APIKey != "" {
		cfg.Generation.APIKey = opts.APIKey
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Generation.APIKey != opts.APIKey {
		setupLog(opts.Debug, opts.NoColor, cfg.Generation.APIKey)
	}

	store, closeStore, err := makeStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Printf("[DEBUG] %s", describeLastRun(ctx, store))

	reader := feed.NewReader(feed.ReaderParams{
		Timeout:          cfg.Feeds.Timeout,
		UserAgent:        cfg.Site.UserAgent,
		DirectImageHost:  cfg.Feeds.DirectImageHost,
		PreviewImageHost: cfg.Feeds.PreviewImageHost,
	})

	picker := novelty.NewPicker(novelty.Params{
		Fetcher:         reader,
		FeedURLs:        cfg.Feeds.URLs,
		MaxItems:        cfg.Feeds.MaxItems,
		BlockedKeywords: cfg.Safety.BlockedKeywords,
		Threshold:       cfg.Generation.SimilarityThreshold,
		PickRandom:      cfg.Generation.PickRandom,
	})

	writer := llm.NewWriter(llm.WriterParams{
		Endpoint:    cfg.Generation.Endpoint,
		APIKey:      cfg.Generation.APIKey,
		Model:       cfg.Generation.Model,
		Temperature: *cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Timeout:     cfg.Generation.Timeout,
	})

	builder, err := site.NewBuilder(site.Params{
		SiteDir:      cfg.Site.SiteDir,
		BaseURL:      cfg.Site.BaseURL,
		BrandName:    cfg.Site.BrandName,
		Description:  cfg.Site.Description,
		ContactEmail: cfg.Site.ContactEmail,
		UserAgent:    cfg.Site.UserAgent,
		CacheImages:  cfg.CacheImages(),
		ImageTimeout: cfg.OG.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to make site builder: %w", err)
	}

	params := pipeline.Params{
		Store:   store,
		Picker:  picker,
		Writer:  writer,
		Builder: builder,
		Guard:   guard,
		BaseURL: cfg.Site.BaseURL,
	}
	if cfg.Extraction.Enabled {
		params.Extractor = content.NewHTTPExtractor(content.ExtractorParams{
			Timeout:       cfg.Extraction.Timeout,
			UserAgent:     cfg.Extraction.UserAgent,
			MinTextLength: cfg.Extraction.MinTextLength,
		})
	}

	rec, err := pipeline.NewRunner(params).Run(ctx)
	if err != nil {
		return err
	}

	if rec.Created {
		log.Printf("[INFO] created %q from %q, %s", rec.GeneratedTitle, rec.ArticleTitle, rec.ArticleURL)
		return nil
	}
	log.Printf("[INFO] %s", rec.Note)
	return nil
}

// archiveStore is a pipeline store which also reports the previous run
type archiveStore interface {
	pipeline.Store
	LastRunRecord(ctx context.Context) (*domain.RunRecord, error)
}

// makeStore creates the archive store for the configured backend, the returned func closes it
func makeStore(ctx context.Context, cfg *config.Config) (archiveStore, func(), error) {
	if cfg.Storage.Type == config.StorageSQLite {
		store, err := repository.NewStore(ctx, repository.Config{DSN: cfg.Storage.DSN, MaxOpenConns: 1})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		log.Printf("[DEBUG] using sqlite store %s", cfg.Storage.DSN)
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("[WARN] failed to close database: %v", err)
			}
		}, nil
	}

	store := archive.NewFileStore(archive.FileStoreParams{
		ArticlesFile:  cfg.Storage.ArticlesFile,
		ProcessedFile: cfg.Storage.ProcessedFile,
		LastRunFile:   cfg.Storage.LastRunFile,
	})
	log.Printf("[DEBUG] using %s", store)
	return store, func() {}, nil
}

// describeLastRun summarizes the previous run record for the log
func describeLastRun(ctx context.Context, store archiveStore) string {
	rec, err := store.LastRunRecord(ctx)
	switch {
	case err != nil:
		return fmt.Sprintf("previous run unknown: %v", err)
	case rec == nil:
		return "no previous run recorded"
	case rec.Created:
		return fmt.Sprintf("previous run %s created %s", rec.UpdatedUTC.Format(time.RFC3339), rec.ArticleURL)
	}
	return fmt.Sprintf("previous run %s created nothing", rec.UpdatedUTC.Format(time.RFC3339))
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.CallerFile, lgr.CallerFunc}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	var secrets []string
	for _, s := range secs {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
