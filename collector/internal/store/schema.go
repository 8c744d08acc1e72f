package store

import "database/sql"

// Schema creates the merchant and run tables.
const Schema = `
-- Merchant records captured from detail screens
CREATE TABLE IF NOT EXISTS merchants (
    id          TEXT PRIMARY KEY,
    run_id      TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL,
    first_phone TEXT NOT NULL DEFAULT '',
    phones_json TEXT NOT NULL DEFAULT '[]',
    address     TEXT NOT NULL DEFAULT '',
    hours       TEXT NOT NULL DEFAULT '',
    rating      REAL NOT NULL DEFAULT 0,
    raw_text    TEXT NOT NULL DEFAULT '',
    confidence  REAL NOT NULL DEFAULT 0,
    captured_at INTEGER NOT NULL,
    created_at  INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_merchants_name_phone ON merchants(name, first_phone);
CREATE INDEX IF NOT EXISTS idx_merchants_run ON merchants(run_id);
CREATE INDEX IF NOT EXISTS idx_merchants_time ON merchants(created_at DESC);

-- Collection runs (one row per collect session)
CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    label           TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL DEFAULT 'running',
    pages_seen      INTEGER NOT NULL DEFAULT 0,
    cards_seen      INTEGER NOT NULL DEFAULT 0,
    merchants_saved INTEGER NOT NULL DEFAULT 0,
    error           TEXT NOT NULL DEFAULT '',
    started_at      INTEGER NOT NULL,
    finished_at     INTEGER
);
CREATE INDEX IF NOT EXISTS idx_runs_time ON runs(started_at DESC);
`

// ApplySchema creates all tables and indexes on the given database.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
