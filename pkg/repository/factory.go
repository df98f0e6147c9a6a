// Package repository keeps the article archive and run state in SQLite
package repository

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in PRAGMA user_version once schema.sql is applied
const schemaVersion = 1

const defaultDSN = "file:newsmith.db?cache=shared&mode=rwc&_txlock=immediate"

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// Config defines how the archive database is opened
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store is the SQLite implementation of the archive store
type Store struct {
	db      *sqlx.DB
	retrier *repeater.Repeater
}

// NewStore opens the archive database and brings its schema up to date
func NewStore(ctx context.Context, cfg Config) (res *Store, err error) {
	if cfg.DSN == "" {
		cfg.DSN = defaultDSN
	}

	db, err := sqlx.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DSN, err)
	}
	defer func() {
		if err != nil {
			_ = db.Close()
		}
	}()
	cfg.applyPool(db)

	for _, p := range pragmas {
		if _, err = db.ExecContext(ctx, p); err != nil {
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	if err = migrate(ctx, db); err != nil {
		return nil, err
	}

	return &Store{
		db:      db,
		retrier: repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second)),
	}, nil
}

func (c Config) applyPool(db *sqlx.DB) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate applies schema.sql to a database older than schemaVersion
func migrate(ctx context.Context, db *sqlx.DB) error {
	var version int
	if err := db.GetContext(ctx, &version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	lgr.Printf("[DEBUG] archive schema migrated from version %d to %d", version, schemaVersion)
	return nil
}
