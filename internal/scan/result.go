package scan

import (
	"strings"
	"time"

	"github.com/foxseedlab/boothscan/internal/repository"
	"github.com/foxseedlab/boothscan/internal/schedule"
)

// DuplicateWindow is how far back a scan of the same attendee at the same
// location or session rejects a new attempt.
const DuplicateWindow = 5 * time.Minute

// Attempt is one presentation of a badge. ScannedAt is the client timestamp
// and anchors every time-based decision, including on offline replay.
type Attempt struct {
	EventID    string
	AttendeeID string
	LocationID string
	SessionID  string
	DeviceID   string
	ScannedAt  time.Time
}

func (a Attempt) sessionAnchored() bool {
	return a.SessionID != ""
}

// Valid reports whether the attempt names an attendee and a location or
// session. Invalid attempts fail without touching storage.
func (a Attempt) Valid() bool {
	n := a.normalized()
	return n.AttendeeID != "" && (n.LocationID != "" || n.SessionID != "")
}

func (a Attempt) normalized() Attempt {
	a.EventID = strings.TrimSpace(a.EventID)
	a.AttendeeID = strings.TrimSpace(a.AttendeeID)
	a.LocationID = strings.TrimSpace(a.LocationID)
	a.SessionID = strings.TrimSpace(a.SessionID)
	a.DeviceID = strings.TrimSpace(a.DeviceID)
	return a
}

type Failure string

const (
	FailureNone         Failure = ""
	FailureInvalidInput Failure = "invalid_input"
	FailureDuplicate    Failure = "duplicate"
	FailureNotFound     Failure = "not_found"
	FailureStorage      Failure = "storage"
)

// Retryable reports whether submitting the same attempt again may succeed.
func (f Failure) Retryable() bool {
	return f == FailureStorage
}

type Details struct {
	IsRegistered         bool
	ExpectedLocationID   string
	ExpectedLocationName string
	AttendeePhoto        string
	SessionName          string
	ConflictSessionName  string
}

type Result struct {
	Success             bool
	Status              repository.ScanStatus
	Message             string
	Scan                *repository.ScanRecord
	WasOffline          bool
	AttendeeAutoCreated bool
	Failure             Failure
	Details             *Details
}

// Classification is one of Expected, WrongBooth, WalkIn or OutOfSchedule.
type Classification interface {
	Status() repository.ScanStatus
	isClassification()
}

type Expected struct {
	Session      repository.Session
	Registration repository.Registration
}

// WrongBooth is either a registration expecting the attendee elsewhere, or a
// walk-in blocked by the session's pre-assignment policy.
type WrongBooth struct {
	Session              repository.Session
	Registration         *repository.Registration
	ExpectedLocationID   string
	ExpectedLocationName string
	RegistrationRequired bool
}

// WalkIn always carries an auto-registration for the session.
type WalkIn struct {
	Session            repository.Session
	ExpectedLocationID *string
	Conflict           *Conflict
}

type Conflict struct {
	SessionID   string
	SessionName string
}

type OutOfSchedule struct {
	Window schedule.Window
}

func (Expected) Status() repository.ScanStatus      { return repository.ScanStatusExpected }
func (WrongBooth) Status() repository.ScanStatus    { return repository.ScanStatusWrongBooth }
func (WalkIn) Status() repository.ScanStatus        { return repository.ScanStatusWalkIn }
func (OutOfSchedule) Status() repository.ScanStatus { return repository.ScanStatusOutOfSchedule }

func (Expected) isClassification()      {}
func (WrongBooth) isClassification()    {}
func (WalkIn) isClassification()        {}
func (OutOfSchedule) isClassification() {}

func scanTypeOf(c Classification) repository.ScanType {
	if _, ok := c.(OutOfSchedule); ok {
		return repository.ScanTypeOutOfSchedule
	}
	return repository.ScanTypeRegular
}

func sessionOf(c Classification) *repository.Session {
	switch v := c.(type) {
	case Expected:
		return &v.Session
	case WrongBooth:
		return &v.Session
	case WalkIn:
		return &v.Session
	}
	return nil
}
