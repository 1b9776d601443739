// Package offline keeps scans captured without database connectivity and
// replays them, oldest first, once the connection returns.
package offline

import (
	"context"
	"time"

	"github.com/foxseedlab/boothscan/internal/scan"
)

// PendingScan is an attempt that has not reached the database yet. It is
// deleted from the queue once the database acknowledges it.
type PendingScan struct {
	LocalID    string
	EventID    string
	AttendeeID string
	LocationID string
	SessionID  string
	DeviceID   string
	ScannedAt  time.Time
	CapturedAt time.Time
}

func pendingFromAttempt(localID string, a scan.Attempt, capturedAt time.Time) PendingScan {
	return PendingScan{
		LocalID:    localID,
		EventID:    a.EventID,
		AttendeeID: a.AttendeeID,
		LocationID: a.LocationID,
		SessionID:  a.SessionID,
		DeviceID:   a.DeviceID,
		ScannedAt:  a.ScannedAt,
		CapturedAt: capturedAt,
	}
}

// Attempt rebuilds the original attempt, including its capture timestamp.
func (p PendingScan) Attempt() scan.Attempt {
	return scan.Attempt{
		EventID:    p.EventID,
		AttendeeID: p.AttendeeID,
		LocationID: p.LocationID,
		SessionID:  p.SessionID,
		DeviceID:   p.DeviceID,
		ScannedAt:  p.ScannedAt,
	}
}

// Queue is the device-local store of pending scans. ListPending returns them
// in the order they were enqueued.
type Queue interface {
	Enqueue(ctx context.Context, scan PendingScan) error
	ListPending(ctx context.Context) ([]PendingScan, error)
	Remove(ctx context.Context, localID string) error
	Count(ctx context.Context) (int, error)
}
