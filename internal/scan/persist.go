package scan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foxseedlab/boothscan/internal/repository"
)

func (c *Classifier) insertScan(ctx context.Context, a Attempt, attendee resolvedAttendee, locationName string, classification Classification) (*repository.ScanRecord, error) {
	input := repository.InsertScanInput{
		EventID:      a.EventID,
		AttendeeID:   a.AttendeeID,
		AttendeeName: attendee.Name,
		LocationName: locationName,
		ScannedAt:    a.ScannedAt,
		Notes:        notesFor(classification, attendee.AutoCreated),
		DeviceID:     a.DeviceID,
		ScanType:     scanTypeOf(classification),
		ScanStatus:   classification.Status(),
	}
	if a.LocationID != "" {
		location := a.LocationID
		input.LocationID = &location
	}
	if s := sessionOf(classification); s != nil {
		sessionID := s.ID
		input.SessionID = &sessionID
	}
	if wb, ok := classification.(WrongBooth); ok && wb.ExpectedLocationID != "" {
		expected := wb.ExpectedLocationID
		input.ExpectedLocationID = &expected
	}

	record, err := c.repo.InsertScan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to insert scan: %w", err)
	}
	return record, nil
}

// linkScan marks the registration attended. A failure leaves the scan record
// as the only evidence of attendance.
func (c *Classifier) linkScan(ctx context.Context, attendeeID, sessionID, scanID string) {
	err := c.repo.LinkScanToRegistration(ctx, repository.LinkScanInput{
		AttendeeID: attendeeID,
		SessionID:  sessionID,
		ScanID:     scanID,
	})
	if err != nil {
		slog.Error("failed to link scan to registration", "attendee_id", attendeeID, "session_id", sessionID, "scan_id", scanID, "error", err)
	}
}

func notesFor(classification Classification, autoCreated bool) string {
	var notes []string
	switch v := classification.(type) {
	case WrongBooth:
		if v.RegistrationRequired {
			notes = append(notes, noteRegistrationRequired)
		}
	case WalkIn:
		if v.Conflict != nil {
			notes = append(notes, fmt.Sprintf(noteConflictFormat, v.Conflict.SessionName))
		}
	}
	if autoCreated {
		notes = append(notes, noteAutoCreated)
	}
	return strings.Join(notes, "; ")
}
