package alert

import (
	"context"
	"errors"
	"time"
)

const FlaggedScanSchemaVersion = "2026-10-01"

// FlaggedScan describes a persisted scan operators should look at.
type FlaggedScan struct {
	SchemaVersion        string    `json:"schema_version"`
	ScanID               string    `json:"scan_id"`
	EventID              string    `json:"event_id"`
	AttendeeID           string    `json:"attendee_id"`
	AttendeeName         string    `json:"attendee_name"`
	LocationID           string    `json:"location_id,omitempty"`
	LocationName         string    `json:"location_name,omitempty"`
	SessionID            string    `json:"session_id,omitempty"`
	SessionName          string    `json:"session_name,omitempty"`
	Status               string    `json:"status"`
	ExpectedLocationID   string    `json:"expected_location_id,omitempty"`
	ExpectedLocationName string    `json:"expected_location_name,omitempty"`
	RegistrationRequired bool      `json:"registration_required"`
	ScannedAt            time.Time `json:"scanned_at"`
	DeviceID             string    `json:"device_id,omitempty"`
	Message              string    `json:"message"`
}

type Sender interface {
	SendFlaggedScan(ctx context.Context, alert FlaggedScan) error
}

// Fanout delivers to every sender and joins their errors.
type Fanout []Sender

func (f Fanout) SendFlaggedScan(ctx context.Context, alert FlaggedScan) error {
	var errs []error
	for _, s := range f {
		if err := s.SendFlaggedScan(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
