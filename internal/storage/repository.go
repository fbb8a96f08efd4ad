package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/channkenn/pta-kaikei/internal/core"

	_ "modernc.org/sqlite"
)

// Repository persists the local by-products of ledger activity: an
// append-only audit trail of confirmed mutations and per-year snapshots
// of the remote record set. The remote store stays the source of truth;
// this database only ever trails it.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AuditEvent is one confirmed ledger mutation.
type AuditEvent struct {
	ID         int64
	Action     string
	Year       string
	RowNum     int64
	Date       string
	Category   string
	Amount     string
	OccurredAt time.Time
}

// RecordEvent appends one event to the audit trail.
func (r *Repository) RecordEvent(ctx context.Context, ev AuditEvent) (int64, error) {
	occurredAt := ev.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_events (action, year, row_num, date, category, amount, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Action, ev.Year, ev.RowNum, ev.Date, ev.Category, ev.Amount, occurredAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert ledger event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read event id: %w", err)
	}

	slog.InfoContext(ctx, "Ledger event recorded",
		"id", id,
		"action", ev.Action,
		"year", ev.Year,
		"category", ev.Category)

	return id, nil
}

// EventsByYear returns the audit trail for one fiscal year, oldest first.
func (r *Repository) EventsByYear(ctx context.Context, year string) ([]AuditEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, action, year, row_num, date, category, amount, occurred_at
		 FROM ledger_events WHERE year = ? ORDER BY id`,
		year)
	if err != nil {
		return nil, fmt.Errorf("query ledger events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var ev AuditEvent
		if err := rows.Scan(&ev.ID, &ev.Action, &ev.Year, &ev.RowNum, &ev.Date, &ev.Category, &ev.Amount, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}
	return events, nil
}

// SaveSnapshot replaces the snapshot for one fiscal year with the given
// record set. Runs in a transaction so readers never observe a half
// replaced year.
func (r *Repository) SaveSnapshot(ctx context.Context, year string, records []core.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_snapshots WHERE year = ?`, year); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	fetchedAt := time.Now().UTC()
	for _, rec := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_snapshots (year, row_num, date, category, details, amount, payee, memo, fetched_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			year, rec.RowNum, rec.Date.Format("2006-01-02"), rec.Category, rec.Details,
			rec.Amount.String(), rec.Payee, rec.Memo, fetchedAt)
		if err != nil {
			return fmt.Errorf("insert snapshot row %d: %w", rec.RowNum, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved", "year", year, "records", len(records))
	return nil
}

// Snapshot returns the last saved record set for one fiscal year, in
// row order.
func (r *Repository) Snapshot(ctx context.Context, year string) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT row_num, date, category, details, amount, payee, memo
		 FROM ledger_snapshots WHERE year = ? ORDER BY row_num`,
		year)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var (
			rec     core.Record
			dateStr string
			amount  string
		)
		if err := rows.Scan(&rec.RowNum, &dateStr, &rec.Category, &rec.Details, &amount, &rec.Payee, &rec.Memo); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		rec.Date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot date %q: %w", dateStr, err)
		}
		rec.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot amount %q: %w", amount, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}
	return records, nil
}

// SnapshotFetchedAt reports when the year's snapshot was taken. Returns
// sql.ErrNoRows when no snapshot exists.
func (r *Repository) SnapshotFetchedAt(ctx context.Context, year string) (time.Time, error) {
	var fetchedAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM ledger_snapshots WHERE year = ? ORDER BY fetched_at DESC LIMIT 1`,
		year).Scan(&fetchedAt)
	if err != nil {
		return time.Time{}, err
	}
	return fetchedAt, nil
}
