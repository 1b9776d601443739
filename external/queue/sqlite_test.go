package queue

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/foxseedlab/boothscan/internal/offline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestQueue(t *testing.T) (*SQLiteQueue, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "offline.db")
	q, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q, path
}

func pending(localID string, scannedAt time.Time) offline.PendingScan {
	return offline.PendingScan{
		LocalID:    localID,
		EventID:    "event-1",
		AttendeeID: "attendee-" + localID,
		LocationID: "booth-1",
		DeviceID:   "gate-1",
		ScannedAt:  scannedAt,
		CapturedAt: scannedAt.Add(time.Second),
	}
}

func TestOpen_EnablesWAL(t *testing.T) {
	q, _ := openTestQueue(t)

	var mode string
	require.NoError(t, q.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestListPending_InsertionOrder(t *testing.T) {
	q, _ := openTestQueue(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	// Later capture enqueued first; replay follows the queue, not the clock.
	require.NoError(t, q.Enqueue(ctx, pending("b", base.Add(time.Minute))))
	require.NoError(t, q.Enqueue(ctx, pending("a", base)))
	require.NoError(t, q.Enqueue(ctx, pending("c", base.Add(2*time.Minute))))

	got, err := q.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{got[0].LocalID, got[1].LocalID, got[2].LocalID})
	assert.True(t, got[1].ScannedAt.Equal(base))
	assert.Equal(t, "attendee-a", got[1].AttendeeID)
	assert.Equal(t, "gate-1", got[1].DeviceID)
	assert.Empty(t, got[1].SessionID)
}

func TestRemove_DeletesOnlyThatScan(t *testing.T) {
	q, _ := openTestQueue(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, q.Enqueue(ctx, pending("a", now)))
	require.NoError(t, q.Enqueue(ctx, pending("b", now)))
	require.NoError(t, q.Remove(ctx, "a"))
	require.NoError(t, q.Remove(ctx, "missing"))

	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := q.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].LocalID)
}

func TestEnqueue_RejectsDuplicateLocalID(t *testing.T) {
	q, _ := openTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, pending("a", time.Now())))
	assert.Error(t, q.Enqueue(ctx, pending("a", time.Now())))
}

func TestOpen_SurvivesReopen(t *testing.T) {
	q, path := openTestQueue(t)
	ctx := context.Background()
	scannedAt := time.Date(2026, 10, 17, 9, 30, 15, 123000000, time.UTC)

	require.NoError(t, q.Enqueue(ctx, pending("a", scannedAt)))
	require.NoError(t, q.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].ScannedAt.Equal(scannedAt))
}
