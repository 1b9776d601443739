package offline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foxseedlab/boothscan/internal/repository"
	"github.com/foxseedlab/boothscan/internal/scan"
	"github.com/google/uuid"
)

type Submitter interface {
	Submit(ctx context.Context, attempt scan.Attempt) scan.Result
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type SyncReport struct {
	Attempted int  `json:"attempted"`
	Synced    int  `json:"synced"`
	Dropped   int  `json:"dropped"`
	Failed    int  `json:"failed"`
	Skipped   bool `json:"skipped"`
}

// Coordinator routes attempts to the classifier while online and to the
// local queue while offline. At most one sync pass runs at a time; a trigger
// arriving during a pass is absorbed, and the next trigger picks up anything
// enqueued meanwhile.
type Coordinator struct {
	queue     Queue
	submitter Submitter
	pinger    Pinger
	messages  *scan.Messages
	now       func() time.Time
	newID     func() string

	online  atomic.Bool
	syncMu  sync.Mutex
	trigger chan struct{}
}

func NewCoordinator(queue Queue, submitter Submitter, pinger Pinger, messages *scan.Messages) *Coordinator {
	c := &Coordinator{
		queue:     queue,
		submitter: submitter,
		pinger:    pinger,
		messages:  messages,
		now:       time.Now,
		newID:     newLocalID,
		trigger:   make(chan struct{}, 1),
	}
	c.online.Store(true)
	return c
}

func newLocalID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (c *Coordinator) Online() bool {
	return c.online.Load()
}

// SetOnline records the latest connectivity observation. Coming back online
// triggers a sync.
func (c *Coordinator) SetOnline(online bool) {
	was := c.online.Swap(online)
	switch {
	case !was && online:
		slog.Info("database connectivity restored")
		c.TriggerSync()
	case was && !online:
		slog.Warn("database connectivity lost; queueing scans locally")
	}
}

// TriggerSync requests a sync pass without blocking.
func (c *Coordinator) TriggerSync() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Run consumes sync triggers until ctx is done. A pass runs at start so scans
// left from a previous run are replayed.
func (c *Coordinator) Run(ctx context.Context) {
	c.TriggerSync()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.trigger:
			if !c.Online() {
				continue
			}
			report, err := c.SyncPendingScans(ctx)
			if err != nil {
				slog.Error("failed to sync pending scans", "error", err)
				continue
			}
			if report.Attempted > 0 {
				slog.Info("pending scans synced", "attempted", report.Attempted, "synced", report.Synced, "dropped", report.Dropped, "failed", report.Failed)
			}
		}
	}
}

// Submit classifies the attempt live, or queues it when the database is
// unreachable. The capture time is fixed here so replay classifies the scan
// as of when it happened.
func (c *Coordinator) Submit(ctx context.Context, attempt scan.Attempt) scan.Result {
	if attempt.ScannedAt.IsZero() {
		attempt.ScannedAt = c.now()
	}
	if !attempt.Valid() {
		return c.submitter.Submit(ctx, attempt)
	}
	if !c.Online() {
		return c.capture(ctx, attempt)
	}
	if c.hasBacklog(ctx) {
		return c.capture(ctx, attempt)
	}

	res := c.submitter.Submit(ctx, attempt)
	if res.Failure != scan.FailureStorage {
		return res
	}
	if err := c.pinger.Ping(ctx); err != nil {
		slog.Warn("database unreachable during scan; queueing locally", "attendee_id", attempt.AttendeeID, "error", err)
		c.SetOnline(false)
		return c.capture(ctx, attempt)
	}
	return res
}

func (c *Coordinator) capture(ctx context.Context, attempt scan.Attempt) scan.Result {
	pending := pendingFromAttempt(c.newID(), attempt, c.now())
	if err := c.queue.Enqueue(ctx, pending); err != nil {
		slog.Error("failed to queue scan", "attendee_id", attempt.AttendeeID, "error", err)
		return scan.Result{
			Status:  repository.ScanStatusOutOfSchedule,
			Message: c.messages.StorageFailure(err),
			Failure: scan.FailureStorage,
		}
	}
	slog.Info("scan queued offline", "local_id", pending.LocalID, "attendee_id", pending.AttendeeID, "scanned_at", pending.ScannedAt)
	return scan.Result{
		Success:    true,
		Status:     repository.ScanStatusOutOfSchedule,
		Message:    c.messages.SavedOffline(pending.AttendeeID),
		WasOffline: true,
	}
}

// hasBacklog drains queued scans before a live attempt so they reach the
// database in capture order. It reports whether anything is still queued, in
// which case the live attempt must wait behind it.
func (c *Coordinator) hasBacklog(ctx context.Context) bool {
	n, err := c.queue.Count(ctx)
	if err != nil {
		slog.Error("failed to count pending scans; queueing scan behind possible backlog", "error", err)
		return true
	}
	if n == 0 {
		return false
	}

	c.syncMu.Lock()
	defer c.syncMu.Unlock()
	report, err := c.replay(ctx)
	if err != nil {
		slog.Error("failed to drain pending scans before live scan", "error", err)
		return true
	}
	slog.Info("pending scans drained before live scan", "attempted", report.Attempted, "synced", report.Synced, "dropped", report.Dropped, "failed", report.Failed)

	remaining, err := c.queue.Count(ctx)
	if err != nil {
		slog.Error("failed to count pending scans after drain", "error", err)
		return true
	}
	return remaining > 0
}

// SyncPendingScans replays the queue in stored order. Successes and terminal
// rejections leave the queue; storage failures stay for the next pass.
func (c *Coordinator) SyncPendingScans(ctx context.Context) (SyncReport, error) {
	if !c.syncMu.TryLock() {
		return SyncReport{Skipped: true}, nil
	}
	defer c.syncMu.Unlock()
	return c.replay(ctx)
}

func (c *Coordinator) replay(ctx context.Context) (SyncReport, error) {
	pending, err := c.queue.ListPending(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("failed to list pending scans: %w", err)
	}

	var report SyncReport
	for _, p := range pending {
		if ctx.Err() != nil {
			break
		}
		report.Attempted++
		res := c.submitter.Submit(ctx, p.Attempt())

		switch {
		case res.Success:
			report.Synced++
		case res.Failure.Retryable():
			report.Failed++
			slog.Warn("pending scan kept for next sync", "local_id", p.LocalID, "message", res.Message)
			continue
		default:
			report.Dropped++
			slog.Warn("pending scan rejected on replay", "local_id", p.LocalID, "failure", res.Failure, "message", res.Message)
		}

		if err := c.queue.Remove(ctx, p.LocalID); err != nil {
			slog.Error("failed to remove replayed scan from queue", "local_id", p.LocalID, "error", err)
		}
	}
	return report, nil
}

func (c *Coordinator) PendingCount(ctx context.Context) (int, error) {
	n, err := c.queue.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending scans: %w", err)
	}
	return n, nil
}
