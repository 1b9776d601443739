package repository

import (
	"context"
	"time"
)

type CreateAttendeeInput struct {
	ID           string
	Name         string
	Email        string
	Organization string
}

type CreateRegistrationInput struct {
	SessionID          string
	AttendeeID         string
	ExpectedLocationID *string
	Status             RegistrationStatus
}

type InsertScanInput struct {
	EventID            string
	AttendeeID         string
	AttendeeName       string
	LocationID         *string
	LocationName       string
	SessionID          *string
	ScannedAt          time.Time
	Notes              string
	DeviceID           string
	ScanType           ScanType
	ScanStatus         ScanStatus
	ExpectedLocationID *string
}

type LinkScanInput struct {
	AttendeeID string
	SessionID  string
	ScanID     string
}

// RecentScanQuery matches scans of AttendeeID in [Since, Until]. Exactly one
// of LocationID and SessionID is set; it is the key the scan was made against.
type RecentScanQuery struct {
	AttendeeID string
	LocationID string
	SessionID  string
	Since      time.Time
	Until      time.Time
}

// Getters return (nil, nil) when the row does not exist.

type SessionRepository interface {
	ListSessionsByEvent(ctx context.Context, eventID string) ([]Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
}

type LocationRepository interface {
	GetLocation(ctx context.Context, locationID string) (*Location, error)
}

type AttendeeRepository interface {
	GetAttendeeEventLink(ctx context.Context, eventID, attendeeID string) (*AttendeeEventLink, error)
	GetAttendee(ctx context.Context, attendeeID string) (*Attendee, error)
	// FindOrCreateAttendee inserts the attendee unless one with the same ID
	// already exists, and returns the stored row either way.
	FindOrCreateAttendee(ctx context.Context, input CreateAttendeeInput) (*Attendee, error)
	// LinkAttendeeToEvent is a no-op when the link already exists.
	LinkAttendeeToEvent(ctx context.Context, eventID, attendeeID string) error
}

type RegistrationRepository interface {
	GetRegistration(ctx context.Context, sessionID, attendeeID string) (*Registration, error)
	ListRegistrationsExcludingSession(ctx context.Context, attendeeID, excludedSessionID string) ([]SessionRegistration, error)
	// UpsertRegistration is keyed on (SessionID, AttendeeID).
	UpsertRegistration(ctx context.Context, input CreateRegistrationInput) (*Registration, error)
	LinkScanToRegistration(ctx context.Context, input LinkScanInput) error
}

type ScanRepository interface {
	InsertScan(ctx context.Context, input InsertScanInput) (*ScanRecord, error)
	HasRecentScan(ctx context.Context, query RecentScanQuery) (bool, error)
}

type Repository interface {
	SessionRepository
	LocationRepository
	AttendeeRepository
	RegistrationRepository
	ScanRepository
	Ping(ctx context.Context) error
}
