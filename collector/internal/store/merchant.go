package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/mapsieve/dbopen"
)

// InsertMerchant persists a captured merchant record. The (name, first phone)
// pair is unique; capturing the same listing twice returns ErrDuplicateMerchant.
func (s *Store) InsertMerchant(ctx context.Context, m *Merchant) error {
	now := time.Now().UnixMilli()
	if m.CapturedAt == 0 {
		m.CapturedAt = now
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = now
	}

	firstPhone := ""
	phonesJSON := "[]"
	if len(m.Phones) > 0 {
		firstPhone = m.Phones[0]
		b, err := json.Marshal(m.Phones)
		if err != nil {
			return fmt.Errorf("marshal phones: %w", err)
		}
		phonesJSON = string(b)
	}

	// Busy-retry: HTTP readers share the database with the collect loop.
	_, err := dbopen.Exec(ctx, s.DB,
		`INSERT INTO merchants (id, run_id, name, first_phone, phones_json,
		address, hours, rating, raw_text, confidence, captured_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.RunID, m.Name, firstPhone, phonesJSON,
		m.Address, m.Hours, m.Rating, m.RawText, m.Confidence,
		m.CapturedAt, m.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("%w: %s", ErrDuplicateMerchant, m.Name)
		}
		return err
	}
	return nil
}

// GetMerchant retrieves a merchant by ID. Returns nil, nil when not found.
func (s *Store) GetMerchant(ctx context.Context, id string) (*Merchant, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, run_id, name, phones_json, address, hours, rating,
		raw_text, confidence, captured_at, created_at
		FROM merchants WHERE id = ?`, id)
	return scanMerchant(row)
}

// ListMerchants returns merchants newest first. A non-positive limit
// defaults to 100.
func (s *Store) ListMerchants(ctx context.Context, limit, offset int) ([]*Merchant, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, run_id, name, phones_json, address, hours, rating,
		raw_text, confidence, captured_at, created_at
		FROM merchants ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var merchants []*Merchant
	for rows.Next() {
		m, err := scanMerchantRows(rows)
		if err != nil {
			return nil, err
		}
		merchants = append(merchants, m)
	}
	return merchants, rows.Err()
}

// CountMerchants returns the total number of merchant records.
func (s *Store) CountMerchants(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM merchants`).Scan(&count)
	return count, err
}

// CountByRun returns the number of merchants captured during one run.
func (s *Store) CountByRun(ctx context.Context, runID string) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM merchants WHERE run_id = ?`, runID).Scan(&count)
	return count, err
}

func scanMerchant(row *sql.Row) (*Merchant, error) {
	var m Merchant
	var phonesJSON string
	err := row.Scan(
		&m.ID, &m.RunID, &m.Name, &phonesJSON, &m.Address, &m.Hours,
		&m.Rating, &m.RawText, &m.Confidence, &m.CapturedAt, &m.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan merchant: %w", err)
	}
	if err := json.Unmarshal([]byte(phonesJSON), &m.Phones); err != nil {
		return nil, fmt.Errorf("decode phones: %w", err)
	}
	return &m, nil
}

func scanMerchantRows(rows *sql.Rows) (*Merchant, error) {
	var m Merchant
	var phonesJSON string
	err := rows.Scan(
		&m.ID, &m.RunID, &m.Name, &phonesJSON, &m.Address, &m.Hours,
		&m.Rating, &m.RawText, &m.Confidence, &m.CapturedAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan merchant: %w", err)
	}
	if err := json.Unmarshal([]byte(phonesJSON), &m.Phones); err != nil {
		return nil, fmt.Errorf("decode phones: %w", err)
	}
	return &m, nil
}
