package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/mapsieve/dbopen"
)

// CreateRun inserts the bookkeeping row for a new collection session.
func (s *Store) CreateRun(ctx context.Context, r *Run) error {
	if r.StartedAt == 0 {
		r.StartedAt = time.Now().UnixMilli()
	}
	if r.Status == "" {
		r.Status = "running"
	}
	_, err := dbopen.Exec(ctx, s.DB,
		`INSERT INTO runs (id, label, status, pages_seen, cards_seen,
		merchants_saved, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Label, r.Status, r.PagesSeen, r.CardsSeen,
		r.MerchantsSaved, r.Error, r.StartedAt, r.FinishedAt,
	)
	return err
}

// FinishRun records the final status and counters of a run.
func (s *Store) FinishRun(ctx context.Context, r *Run) error {
	if r.FinishedAt == nil {
		now := time.Now().UnixMilli()
		r.FinishedAt = &now
	}
	if r.Status == "" || r.Status == "running" {
		r.Status = "done"
	}
	_, err := dbopen.Exec(ctx, s.DB,
		`UPDATE runs SET status=?, pages_seen=?, cards_seen=?,
		merchants_saved=?, error=?, finished_at=?
		WHERE id=?`,
		r.Status, r.PagesSeen, r.CardsSeen,
		r.MerchantsSaved, r.Error, r.FinishedAt, r.ID,
	)
	return err
}

// GetRun retrieves a run by ID. Returns nil, nil when not found.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, label, status, pages_seen, cards_seen, merchants_saved,
		error, started_at, finished_at
		FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns runs newest first. A non-positive limit defaults to 50.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, label, status, pages_seen, cards_seen, merchants_saved,
		error, started_at, finished_at
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRunRows(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanRun(row *sql.Row) (*Run, error) {
	var r Run
	err := row.Scan(
		&r.ID, &r.Label, &r.Status, &r.PagesSeen, &r.CardsSeen,
		&r.MerchantsSaved, &r.Error, &r.StartedAt, &r.FinishedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return &r, nil
}

func scanRunRows(rows *sql.Rows) (*Run, error) {
	var r Run
	err := rows.Scan(
		&r.ID, &r.Label, &r.Status, &r.PagesSeen, &r.CardsSeen,
		&r.MerchantsSaved, &r.Error, &r.StartedAt, &r.FinishedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return &r, nil
}
