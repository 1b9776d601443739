package scan

import (
	"context"
	"fmt"

	"github.com/foxseedlab/boothscan/internal/repository"
)

const walkInIDPrefixLen = 8

type resolvedAttendee struct {
	Name        string
	PhotoURL    string
	AutoCreated bool
}

// WalkInName is the display name given to a badge with no profile.
func WalkInName(attendeeID string) string {
	prefix := attendeeID
	if r := []rune(attendeeID); len(r) > walkInIDPrefixLen {
		prefix = string(r[:walkInIDPrefixLen])
	}
	return fmt.Sprintf("Walk-in (%s)", prefix)
}

// resolveAttendee makes sure the attendee exists and is linked to the event,
// creating a minimal walk-in profile when the badge is unknown.
func (c *Classifier) resolveAttendee(ctx context.Context, eventID, attendeeID string) (resolvedAttendee, error) {
	link, err := c.repo.GetAttendeeEventLink(ctx, eventID, attendeeID)
	if err != nil {
		return resolvedAttendee{}, fmt.Errorf("failed to get attendee event link: %w", err)
	}

	profile, err := c.repo.GetAttendee(ctx, attendeeID)
	if err != nil {
		return resolvedAttendee{}, fmt.Errorf("failed to get attendee: %w", err)
	}

	autoCreated := false
	if profile == nil {
		profile, err = c.repo.FindOrCreateAttendee(ctx, repository.CreateAttendeeInput{
			ID:   attendeeID,
			Name: WalkInName(attendeeID),
		})
		if err != nil {
			return resolvedAttendee{}, fmt.Errorf("failed to create walk-in attendee: %w", err)
		}
		autoCreated = true
	}

	if link == nil {
		if err := c.repo.LinkAttendeeToEvent(ctx, eventID, attendeeID); err != nil {
			return resolvedAttendee{}, fmt.Errorf("failed to link attendee to event: %w", err)
		}
	}

	name := profile.Name
	if name == "" {
		name = WalkInName(attendeeID)
	}
	return resolvedAttendee{Name: name, PhotoURL: profile.PhotoURL, AutoCreated: autoCreated}, nil
}
