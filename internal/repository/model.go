package repository

import "time"

type SessionKind string

const (
	SessionKindMeeting      SessionKind = "meeting"
	SessionKindPresentation SessionKind = "presentation"
	SessionKindNetworking   SessionKind = "networking"
	SessionKindBreak        SessionKind = "break"
)

// Session is read-only to the scan engine. EndTime is always after StartTime.
type Session struct {
	ID                    string
	EventID               string
	Name                  string
	StartTime             time.Time
	EndTime               time.Time
	Kind                  SessionKind
	LocationID            *string
	CapacityByLocation    map[string]int
	RequiresPreAssignment bool
}

// Overlaps reports whether the two sessions share any instant, bounds included.
func (s Session) Overlaps(other Session) bool {
	return !other.EndTime.Before(s.StartTime) && !other.StartTime.After(s.EndTime)
}

type RegistrationStatus string

const (
	RegistrationStatusRegistered RegistrationStatus = "Registered"
	RegistrationStatusAttended   RegistrationStatus = "Attended"
	RegistrationStatusNoShow     RegistrationStatus = "No-Show"
)

// Registration is unique per (SessionID, AttendeeID).
type Registration struct {
	ID                 string
	SessionID          string
	AttendeeID         string
	ExpectedLocationID *string
	Status             RegistrationStatus
	ScanID             *string
	CreatedAt          time.Time
}

// SessionRegistration is a registration joined with its session's time bounds.
type SessionRegistration struct {
	Registration Registration
	Session      Session
}

type ScanType string

const (
	ScanTypeRegular       ScanType = "regular"
	ScanTypeOutOfSchedule ScanType = "out_of_schedule"
)

type ScanStatus string

const (
	ScanStatusExpected      ScanStatus = "EXPECTED"
	ScanStatusWrongBooth    ScanStatus = "WRONG_BOOTH"
	ScanStatusWalkIn        ScanStatus = "WALK_IN"
	ScanStatusOutOfSchedule ScanStatus = "OUT_OF_SCHEDULE"
)

// ScanRecord is immutable once written. ScannedAt is the attempt's client
// timestamp, not the time the row reached the server.
type ScanRecord struct {
	ID                 string
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
	CreatedAt          time.Time
}

type Attendee struct {
	ID           string
	Name         string
	Email        string
	Organization string
	IsVendor     bool
	PhotoURL     string
}

type AttendeeEventLink struct {
	EventID     string
	AttendeeID  string
	CheckInTime *time.Time
}

type Location struct {
	ID      string
	EventID string
	Name    string
}
