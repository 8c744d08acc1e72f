// Package store persists merchant records and collection runs in SQLite.
package store

import (
	"database/sql"
	"testing"

	"github.com/hazyhaar/mapsieve/dbopen"
)

// Store wraps a SQLite database holding merchants and runs.
type Store struct {
	DB *sql.DB
}

// NewStore wraps an existing database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// OpenMemory opens an in-memory store for tests.
func OpenMemory(t testing.TB) *Store {
	t.Helper()
	return &Store{DB: dbopen.OpenMemory(t, dbopen.WithSchema(Schema))}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}
