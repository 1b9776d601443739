package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/foxseedlab/boothscan/internal/repository"
)

// isDuplicate looks for a stored scan of the attendee against the same key in
// the DuplicateWindow ending at the attempt's own timestamp.
func (c *Classifier) isDuplicate(ctx context.Context, a Attempt) (bool, error) {
	q := repository.RecentScanQuery{
		AttendeeID: a.AttendeeID,
		Since:      duplicateWindowStart(a.ScannedAt),
		Until:      a.ScannedAt,
	}
	if a.sessionAnchored() {
		q.SessionID = a.SessionID
	} else {
		q.LocationID = a.LocationID
	}

	found, err := c.repo.HasRecentScan(ctx, q)
	if err != nil {
		return false, fmt.Errorf("failed to check recent scans: %w", err)
	}
	return found, nil
}

func duplicateWindowStart(at time.Time) time.Time {
	return at.Add(-DuplicateWindow)
}
