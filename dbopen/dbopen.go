// Package dbopen opens SQLite databases for the collector with the
// pragmas it needs to share a file between the collect loop and HTTP
// readers:
//
//	journal_mode = WAL
//	synchronous  = NORMAL
//	busy_timeout = 10000
//	foreign_keys = ON
//
// The pragmas are applied with EXEC after opening, so the caller only
// has to blank-import a driver:
//
//	import _ "modernc.org/sqlite"
//	db, err := dbopen.Open("db/mapsieve.db")
//
// Tests use OpenMemory, which cleans up after itself.
package dbopen

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const driverName = "sqlite"

type opts struct {
	busyTimeoutMS int
	cacheSize     int
	noForeignKeys bool
	mkdirAll      bool
	schemas       []string
}

// Option customises Open behaviour.
type Option func(*opts)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(o *opts) { o.busyTimeoutMS = ms } }

// WithCacheSize sets PRAGMA cache_size. 0 (default) keeps the SQLite default.
// Negative values are KiB (e.g. -64000 = 64 MB).
func WithCacheSize(pages int) Option { return func(o *opts) { o.cacheSize = pages } }

// WithMkdirAll creates parent directories of the database path before opening.
func WithMkdirAll() Option { return func(o *opts) { o.mkdirAll = true } }

// WithSchema queues inline SQL to execute after the pragmas. Repeatable.
func WithSchema(s string) Option { return func(o *opts) { o.schemas = append(o.schemas, s) } }

// WithoutForeignKeys disables PRAGMA foreign_keys (rarely needed).
func WithoutForeignKeys() Option { return func(o *opts) { o.noForeignKeys = true } }

// Open opens the SQLite database at path, applies the pragmas and any
// queued schema, and verifies the connection with a ping.
func Open(path string, options ...Option) (*sql.DB, error) {
	o := opts{busyTimeoutMS: 10_000}
	for _, apply := range options {
		apply(&o)
	}

	if o.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("dbopen: mkdir: %w", err)
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("dbopen: open: %w", err)
	}
	if err := setup(db, &o); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbopen: ping: %w", err)
	}
	return db, nil
}

// OpenMemory opens an in-memory SQLite database for testing. It sets
// MaxOpenConns(1) so every query hits the same database (each new
// connection to ":memory:" would otherwise get its own), and registers
// t.Cleanup to close it.
func OpenMemory(t testing.TB, options ...Option) *sql.DB {
	t.Helper()
	db, err := Open(":memory:", options...)
	if err != nil {
		t.Fatalf("dbopen.OpenMemory: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func setup(db *sql.DB, o *opts) error {
	fk := "ON"
	if o.noForeignKeys {
		fk = "OFF"
	}
	stmts := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", o.busyTimeoutMS),
		fmt.Sprintf("PRAGMA foreign_keys = %s", fk),
	}
	if o.cacheSize != 0 {
		stmts = append(stmts, fmt.Sprintf("PRAGMA cache_size = %d", o.cacheSize))
	}
	stmts = append(stmts, o.schemas...)

	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("dbopen: %s: %w", firstLine(s), err)
		}
	}
	return nil
}

// firstLine keeps multi-line schema SQL out of error messages.
func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " ..."
		}
	}
	return s
}
