package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/foxseedlab/boothscan/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `s.id, s.event_id, s.name, s.start_time, s.end_time, s.kind::text, s.location_id, s.capacity_per_location, s.requires_pre_assignment`

const registrationColumns = `r.id::text, r.session_id, r.attendee_id, r.expected_location_id, r.status::text, r.scan_id::text, r.created_at`

type PostgresRepository struct {
	pool   *pgxpool.Pool
	schema *schemaGuard
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
		schema: newSchemaGuard(pool.Ping, func(ctx context.Context) error {
			return RunMigration(ctx, pool)
		}),
	}
}

// Ping also migrates the schema the first time the database answers, so a
// station that started offline is usable once connectivity returns.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.schema.check(ctx)
}

func (r *PostgresRepository) ListSessionsByEvent(ctx context.Context, eventID string) ([]repository.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions s WHERE s.event_id = $1 ORDER BY s.start_time ASC`,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) GetSession(ctx context.Context, sessionID string) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions s WHERE s.id = $1`,
		sessionID)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) GetLocation(ctx context.Context, locationID string) (*repository.Location, error) {
	var l repository.Location
	err := r.pool.QueryRow(ctx,
		`SELECT id, event_id, name FROM locations WHERE id = $1`,
		locationID).Scan(&l.ID, &l.EventID, &l.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *PostgresRepository) GetAttendeeEventLink(ctx context.Context, eventID, attendeeID string) (*repository.AttendeeEventLink, error) {
	var link repository.AttendeeEventLink
	err := r.pool.QueryRow(ctx,
		`SELECT event_id, attendee_id, check_in_time
		 FROM event_attendees WHERE event_id = $1 AND attendee_id = $2`,
		eventID, attendeeID).Scan(&link.EventID, &link.AttendeeID, &link.CheckInTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *PostgresRepository) GetAttendee(ctx context.Context, attendeeID string) (*repository.Attendee, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, email, organization, is_vendor, photo_url
		 FROM attendees WHERE id = $1`,
		attendeeID)
	a, err := scanAttendee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// FindOrCreateAttendee relies on the primary key: when two stations provision
// the same badge concurrently, the loser's insert is discarded and both read
// back the winner's row.
func (r *PostgresRepository) FindOrCreateAttendee(ctx context.Context, input repository.CreateAttendeeInput) (*repository.Attendee, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attendees (id, name, email, organization)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		input.ID, input.Name, input.Email, input.Organization)
	if err != nil {
		return nil, err
	}
	a, err := r.GetAttendee(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("attendee %s missing after insert", input.ID)
	}
	return a, nil
}

func (r *PostgresRepository) LinkAttendeeToEvent(ctx context.Context, eventID, attendeeID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO event_attendees (event_id, attendee_id)
		 VALUES ($1, $2)
		 ON CONFLICT (event_id, attendee_id) DO NOTHING`,
		eventID, attendeeID)
	return err
}

func (r *PostgresRepository) GetRegistration(ctx context.Context, sessionID, attendeeID string) (*repository.Registration, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+`
		 FROM registrations r WHERE r.session_id = $1 AND r.attendee_id = $2`,
		sessionID, attendeeID)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *PostgresRepository) ListRegistrationsExcludingSession(ctx context.Context, attendeeID, excludedSessionID string) ([]repository.SessionRegistration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+registrationColumns+`, `+sessionColumns+`
		 FROM registrations r JOIN sessions s ON s.id = r.session_id
		 WHERE r.attendee_id = $1 AND r.session_id <> $2
		 ORDER BY s.start_time ASC`,
		attendeeID, excludedSessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.SessionRegistration
	for rows.Next() {
		var sr repository.SessionRegistration
		reg := &sr.Registration
		s := &sr.Session
		if err := rows.Scan(
			&reg.ID, &reg.SessionID, &reg.AttendeeID, &reg.ExpectedLocationID, &reg.Status, &reg.ScanID, &reg.CreatedAt,
			&s.ID, &s.EventID, &s.Name, &s.StartTime, &s.EndTime, &s.Kind, &s.LocationID, &s.CapacityByLocation, &s.RequiresPreAssignment,
		); err != nil {
			return nil, err
		}
		list = append(list, sr)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) UpsertRegistration(ctx context.Context, input repository.CreateRegistrationInput) (*repository.Registration, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO registrations AS r (session_id, attendee_id, expected_location_id, status)
		 VALUES ($1, $2, $3, CAST($4::text AS registration_status))
		 ON CONFLICT (session_id, attendee_id)
		 DO UPDATE SET status = EXCLUDED.status,
		               expected_location_id = COALESCE(r.expected_location_id, EXCLUDED.expected_location_id)
		 RETURNING `+registrationColumns,
		input.SessionID, input.AttendeeID, input.ExpectedLocationID, string(input.Status))
	reg, err := scanRegistration(row)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *PostgresRepository) LinkScanToRegistration(ctx context.Context, input repository.LinkScanInput) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE registrations SET status = 'Attended', scan_id = CAST($3::text AS uuid)
		 WHERE session_id = $2 AND attendee_id = $1`,
		input.AttendeeID, input.SessionID, input.ScanID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no registration for attendee %s in session %s", input.AttendeeID, input.SessionID)
	}
	return nil
}

func (r *PostgresRepository) InsertScan(ctx context.Context, input repository.InsertScanInput) (*repository.ScanRecord, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO scans (event_id, attendee_id, attendee_name, location_id, location_name, session_id,
		                    scanned_at, notes, device_id, scan_type, scan_status, expected_location_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id::text, event_id, attendee_id, attendee_name, location_id, location_name, session_id,
		           scanned_at, notes, device_id, scan_type, scan_status, expected_location_id, created_at`,
		input.EventID, input.AttendeeID, input.AttendeeName, input.LocationID, input.LocationName, input.SessionID,
		input.ScannedAt, input.Notes, input.DeviceID, string(input.ScanType), string(input.ScanStatus), input.ExpectedLocationID)
	var s repository.ScanRecord
	err := row.Scan(&s.ID, &s.EventID, &s.AttendeeID, &s.AttendeeName, &s.LocationID, &s.LocationName, &s.SessionID,
		&s.ScannedAt, &s.Notes, &s.DeviceID, &s.ScanType, &s.ScanStatus, &s.ExpectedLocationID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) HasRecentScan(ctx context.Context, query repository.RecentScanQuery) (bool, error) {
	column, key := "location_id", query.LocationID
	if key == "" {
		column, key = "session_id", query.SessionID
	}
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM scans
		   WHERE attendee_id = $1 AND `+column+` = $2 AND scanned_at >= $3 AND scanned_at <= $4
		 )`,
		query.AttendeeID, key, query.Since, query.Until).Scan(&exists)
	return exists, err
}

func scanSession(row pgx.Row) (repository.Session, error) {
	var s repository.Session
	err := row.Scan(&s.ID, &s.EventID, &s.Name, &s.StartTime, &s.EndTime, &s.Kind, &s.LocationID, &s.CapacityByLocation, &s.RequiresPreAssignment)
	return s, err
}

func scanRegistration(row pgx.Row) (repository.Registration, error) {
	var reg repository.Registration
	err := row.Scan(&reg.ID, &reg.SessionID, &reg.AttendeeID, &reg.ExpectedLocationID, &reg.Status, &reg.ScanID, &reg.CreatedAt)
	return reg, err
}

func scanAttendee(row pgx.Row) (*repository.Attendee, error) {
	var a repository.Attendee
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Organization, &a.IsVendor, &a.PhotoURL); err != nil {
		return nil, err
	}
	return &a, nil
}
