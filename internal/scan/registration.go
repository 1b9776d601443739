package scan

import (
	"context"
	"fmt"
	"sort"

	"github.com/foxseedlab/boothscan/internal/repository"
	"github.com/foxseedlab/boothscan/internal/schedule"
)

// classifyAtLocation resolves the session running at the booth when the
// badge was scanned, then checks the attendee's registration for it.
func (c *Classifier) classifyAtLocation(ctx context.Context, a Attempt) (Classification, error) {
	sessions, err := c.repo.ListSessionsByEvent(ctx, a.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	window := schedule.Resolve(sessions, a.ScannedAt, c.graceMinutes)
	if !window.Operative() {
		return OutOfSchedule{Window: window}, nil
	}
	session := *window.Session

	reg, err := c.repo.GetRegistration(ctx, session.ID, a.AttendeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	if reg == nil {
		if session.RequiresPreAssignment {
			return WrongBooth{Session: session, RegistrationRequired: true}, nil
		}
		location := a.LocationID
		return WalkIn{Session: session, ExpectedLocationID: &location}, nil
	}

	if reg.ExpectedLocationID == nil || *reg.ExpectedLocationID == a.LocationID {
		return Expected{Session: session, Registration: *reg}, nil
	}

	expectedName, err := c.locationName(ctx, *reg.ExpectedLocationID)
	if err != nil {
		return nil, err
	}
	return WrongBooth{
		Session:              session,
		Registration:         reg,
		ExpectedLocationID:   *reg.ExpectedLocationID,
		ExpectedLocationName: expectedName,
	}, nil
}

// classifyInSession checks the registration for a session the device named
// directly. Unregistered attendees become walk-ins unless the session
// requires pre-assignment.
func (c *Classifier) classifyInSession(ctx context.Context, a Attempt, session repository.Session) (Classification, error) {
	reg, err := c.repo.GetRegistration(ctx, session.ID, a.AttendeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	if reg != nil {
		return Expected{Session: session, Registration: *reg}, nil
	}
	if session.RequiresPreAssignment {
		return WrongBooth{Session: session, RegistrationRequired: true}, nil
	}

	conflict, err := c.findConflict(ctx, a.AttendeeID, session)
	if err != nil {
		return nil, err
	}
	walkIn := WalkIn{Session: session, Conflict: conflict}
	if a.LocationID != "" {
		location := a.LocationID
		walkIn.ExpectedLocationID = &location
	}
	return walkIn, nil
}

// findConflict returns the earliest-starting other registered session that
// overlaps the given one, or nil.
func (c *Classifier) findConflict(ctx context.Context, attendeeID string, session repository.Session) (*Conflict, error) {
	others, err := c.repo.ListRegistrationsExcludingSession(ctx, attendeeID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list other registrations: %w", err)
	}

	sort.SliceStable(others, func(i, j int) bool {
		return others[i].Session.StartTime.Before(others[j].Session.StartTime)
	})
	for _, other := range others {
		if session.Overlaps(other.Session) {
			return &Conflict{SessionID: other.Session.ID, SessionName: other.Session.Name}, nil
		}
	}
	return nil, nil
}

func (c *Classifier) locationName(ctx context.Context, locationID string) (string, error) {
	if locationID == "" {
		return "", nil
	}
	loc, err := c.repo.GetLocation(ctx, locationID)
	if err != nil {
		return "", fmt.Errorf("failed to get location: %w", err)
	}
	if loc == nil || loc.Name == "" {
		return locationID, nil
	}
	return loc.Name, nil
}

// autoRegister records attendance for a walk-in after its scan is stored.
func (c *Classifier) autoRegister(ctx context.Context, walkIn WalkIn, attendeeID string) error {
	_, err := c.repo.UpsertRegistration(ctx, repository.CreateRegistrationInput{
		SessionID:          walkIn.Session.ID,
		AttendeeID:         attendeeID,
		ExpectedLocationID: walkIn.ExpectedLocationID,
		Status:             repository.RegistrationStatusAttended,
	})
	if err != nil {
		return fmt.Errorf("failed to auto-register walk-in: %w", err)
	}
	return nil
}
