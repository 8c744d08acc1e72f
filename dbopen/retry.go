package dbopen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const maxRetries = 3

// IsBusy reports whether err indicates SQLite lock contention.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// RunTx executes fn inside a transaction, retrying the whole
// transaction on SQLITE_BUSY up to 3 times with 100/200/300 ms backoff.
// fn must be safe to run again after a rollback.
func RunTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	for i := 0; ; i++ {
		err := runOnce(ctx, db, fn)
		if err == nil || !IsBusy(err) || i == maxRetries-1 {
			return err
		}
		if werr := sleepCtx(ctx, time.Duration(100*(i+1))*time.Millisecond); werr != nil {
			return fmt.Errorf("dbopen: retry interrupted: %w", werr)
		}
	}
}

func runOnce(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dbopen: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dbopen: commit: %w", err)
	}
	return nil
}

// Exec executes a single statement with the same busy-retry policy as
// RunTx.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	for i := 0; ; i++ {
		res, err := db.ExecContext(ctx, query, args...)
		if err == nil || !IsBusy(err) || i == maxRetries-1 {
			return res, err
		}
		if werr := sleepCtx(ctx, time.Duration(100*(i+1))*time.Millisecond); werr != nil {
			return nil, fmt.Errorf("dbopen: retry interrupted: %w", werr)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
