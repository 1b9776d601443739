package queue

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/foxseedlab/boothscan/internal/offline"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS pending_scans (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	local_id TEXT NOT NULL UNIQUE,
	event_id TEXT NOT NULL DEFAULT '',
	attendee_id TEXT NOT NULL,
	location_id TEXT NOT NULL DEFAULT '',
	session_id TEXT NOT NULL DEFAULT '',
	device_id TEXT NOT NULL DEFAULT '',
	scanned_at TEXT NOT NULL,
	captured_at TEXT NOT NULL
)`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// SQLiteQueue persists pending scans on the station's disk so they survive
// restarts. Rows are replayed in insertion order.
type SQLiteQueue struct {
	db *sql.DB
}

func Open(path string) (*SQLiteQueue, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open offline queue: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to offline queue: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply offline queue schema: %w", err)
	}
	return &SQLiteQueue{db: db}, nil
}

func (q *SQLiteQueue) Close() error {
	if q.db == nil {
		return nil
	}
	return q.db.Close()
}

func (q *SQLiteQueue) Enqueue(ctx context.Context, p offline.PendingScan) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO pending_scans (local_id, event_id, attendee_id, location_id, session_id, device_id, scanned_at, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.LocalID, p.EventID, p.AttendeeID, p.LocationID, p.SessionID, p.DeviceID, formatTime(p.ScannedAt), formatTime(p.CapturedAt))
	if err != nil {
		return fmt.Errorf("failed to enqueue pending scan %s: %w", p.LocalID, err)
	}
	return nil
}

func (q *SQLiteQueue) ListPending(ctx context.Context) ([]offline.PendingScan, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT local_id, event_id, attendee_id, location_id, session_id, device_id, scanned_at, captured_at
		FROM pending_scans
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending scans: %w", err)
	}
	defer rows.Close()

	var out []offline.PendingScan
	for rows.Next() {
		var (
			p                     offline.PendingScan
			scannedAt, capturedAt string
		)
		if err := rows.Scan(&p.LocalID, &p.EventID, &p.AttendeeID, &p.LocationID, &p.SessionID, &p.DeviceID, &scannedAt, &capturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending scan row: %w", err)
		}
		if p.ScannedAt, err = parseTime(scannedAt); err != nil {
			return nil, fmt.Errorf("pending scan %s has invalid scanned_at: %w", p.LocalID, err)
		}
		if p.CapturedAt, err = parseTime(capturedAt); err != nil {
			return nil, fmt.Errorf("pending scan %s has invalid captured_at: %w", p.LocalID, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending scans: %w", err)
	}
	return out, nil
}

// Remove is a no-op for an unknown local id.
func (q *SQLiteQueue) Remove(ctx context.Context, localID string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM pending_scans WHERE local_id = ?`, localID); err != nil {
		return fmt.Errorf("failed to remove pending scan %s: %w", localID, err)
	}
	return nil
}

func (q *SQLiteQueue) Count(ctx context.Context) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_scans`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending scans: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
