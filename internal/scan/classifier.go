// Package scan classifies badge scans against the event schedule and
// registrations, and records every accepted attempt.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/boothscan/internal/alert"
	"github.com/foxseedlab/boothscan/internal/config"
	"github.com/foxseedlab/boothscan/internal/repository"
)

// Classifier holds no state between attempts. Every correctness-relevant
// read goes to the repository.
type Classifier struct {
	repo         repository.Repository
	alerts       alert.Sender
	messages     *Messages
	eventID      string
	graceMinutes int
	now          func() time.Time

	pendingAlerts sync.WaitGroup
}

func NewClassifier(cfg *config.Config, repo repository.Repository, alerts alert.Sender) (*Classifier, error) {
	messages, err := NewMessages(cfg.Locale())
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback messages: %w", err)
	}
	return &Classifier{
		repo:         repo,
		alerts:       alerts,
		messages:     messages,
		eventID:      cfg.EventID,
		graceMinutes: cfg.SessionGracePeriodMin,
		now:          time.Now,
	}, nil
}

func (c *Classifier) Messages() *Messages {
	return c.messages
}

// Submit runs one attempt to completion. It never returns an error: failures
// are reported in Result.Failure and write no scan record.
func (c *Classifier) Submit(ctx context.Context, attempt Attempt) Result {
	a := attempt.normalized()
	if a.EventID == "" {
		a.EventID = c.eventID
	}
	if a.ScannedAt.IsZero() {
		a.ScannedAt = c.now()
	}

	if a.LocationID == "" && a.SessionID == "" {
		return c.failure(FailureInvalidInput, c.messages.sprintf(msgMissingTarget))
	}
	if a.AttendeeID == "" {
		return c.failure(FailureInvalidInput, c.messages.sprintf(msgMissingAttendee))
	}

	var session *repository.Session
	if a.sessionAnchored() {
		s, err := c.repo.GetSession(ctx, a.SessionID)
		if err != nil {
			return c.storageFailure(a, err)
		}
		if s == nil || s.EventID != a.EventID {
			return c.failure(FailureNotFound, c.messages.sprintf(msgSessionNotFound, a.SessionID))
		}
		session = s
	}

	attendee, err := c.resolveAttendee(ctx, a.EventID, a.AttendeeID)
	if err != nil {
		return c.storageFailure(a, err)
	}

	locationName, err := c.locationName(ctx, a.LocationID)
	if err != nil {
		return c.storageFailure(a, err)
	}
	targetName := locationName
	if session != nil {
		targetName = session.Name
	}

	duplicate, err := c.isDuplicate(ctx, a)
	if err != nil {
		return c.storageFailure(a, err)
	}
	if duplicate {
		slog.Info("duplicate scan rejected", "attendee_id", a.AttendeeID, "location_id", a.LocationID, "session_id", a.SessionID, "scanned_at", a.ScannedAt)
		return c.failure(FailureDuplicate, c.messages.sprintf(msgDuplicate, attendee.Name, targetName))
	}

	var classification Classification
	if session != nil {
		classification, err = c.classifyInSession(ctx, a, *session)
	} else {
		classification, err = c.classifyAtLocation(ctx, a)
	}
	if err != nil {
		return c.storageFailure(a, err)
	}

	record, err := c.insertScan(ctx, a, attendee, locationName, classification)
	if err != nil {
		return c.storageFailure(a, err)
	}
	slog.Info("scan recorded", "scan_id", record.ID, "attendee_id", record.AttendeeID, "status", record.ScanStatus, "scanned_at", record.ScannedAt)

	c.afterPersist(ctx, a, record, classification)

	message := c.messages.withAutoCreated(c.messages.classified(classification, attendee.Name, targetName), attendee.AutoCreated)
	return Result{
		Success:             true,
		Status:              classification.Status(),
		Message:             message,
		Scan:                record,
		AttendeeAutoCreated: attendee.AutoCreated,
		Details:             detailsOf(classification, attendee),
	}
}

// afterPersist performs the steps that must not undo a stored scan: walk-in
// registration, registration back-link and operator alerts.
func (c *Classifier) afterPersist(ctx context.Context, a Attempt, record *repository.ScanRecord, classification Classification) {
	switch v := classification.(type) {
	case Expected:
		c.linkScan(ctx, a.AttendeeID, v.Session.ID, record.ID)
	case WalkIn:
		if err := c.autoRegister(ctx, v, a.AttendeeID); err != nil {
			slog.Error("failed to register walk-in", "attendee_id", a.AttendeeID, "session_id", v.Session.ID, "scan_id", record.ID, "error", err)
			return
		}
		c.linkScan(ctx, a.AttendeeID, v.Session.ID, record.ID)
	case WrongBooth:
		c.pendingAlerts.Add(1)
		go func() {
			defer c.pendingAlerts.Done()
			c.sendAlert(context.WithoutCancel(ctx), record, v)
		}()
	}
}

// DrainAlerts waits for in-flight operator alerts until ctx is done.
func (c *Classifier) DrainAlerts(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.pendingAlerts.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("operator alerts still in flight: %w", ctx.Err())
	}
}

func (c *Classifier) sendAlert(ctx context.Context, record *repository.ScanRecord, wb WrongBooth) {
	if c.alerts == nil {
		return
	}
	flagged := alert.FlaggedScan{
		SchemaVersion:        alert.FlaggedScanSchemaVersion,
		ScanID:               record.ID,
		EventID:              record.EventID,
		AttendeeID:           record.AttendeeID,
		AttendeeName:         record.AttendeeName,
		LocationID:           deref(record.LocationID),
		LocationName:         record.LocationName,
		SessionID:            wb.Session.ID,
		SessionName:          wb.Session.Name,
		Status:               string(record.ScanStatus),
		ExpectedLocationID:   wb.ExpectedLocationID,
		ExpectedLocationName: wb.ExpectedLocationName,
		RegistrationRequired: wb.RegistrationRequired,
		ScannedAt:            record.ScannedAt,
		DeviceID:             record.DeviceID,
		Message:              c.messages.classified(wb, record.AttendeeName, record.LocationName),
	}
	if err := c.alerts.SendFlaggedScan(ctx, flagged); err != nil {
		slog.Error("failed to send flagged scan alert", "scan_id", record.ID, "error", err)
	}
}

func (c *Classifier) failure(kind Failure, message string) Result {
	return Result{
		Success: false,
		Status:  repository.ScanStatusOutOfSchedule,
		Message: message,
		Failure: kind,
	}
}

func (c *Classifier) storageFailure(a Attempt, err error) Result {
	slog.Error("scan attempt failed", "attendee_id", a.AttendeeID, "location_id", a.LocationID, "session_id", a.SessionID, "error", err)
	return c.failure(FailureStorage, c.messages.StorageFailure(err))
}

func detailsOf(classification Classification, attendee resolvedAttendee) *Details {
	d := &Details{AttendeePhoto: attendee.PhotoURL}
	if s := sessionOf(classification); s != nil {
		d.SessionName = s.Name
	}
	switch v := classification.(type) {
	case Expected:
		d.IsRegistered = true
		d.ExpectedLocationID = deref(v.Registration.ExpectedLocationID)
	case WrongBooth:
		d.IsRegistered = v.Registration != nil
		d.ExpectedLocationID = v.ExpectedLocationID
		d.ExpectedLocationName = v.ExpectedLocationName
	case WalkIn:
		if v.Conflict != nil {
			d.ConflictSessionName = v.Conflict.SessionName
		}
	}
	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
