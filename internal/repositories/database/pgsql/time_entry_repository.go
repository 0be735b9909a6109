package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/apperrors"
	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
	portsrepo "github.com/CareTrackHQ/caretrack_app/internal/core/ports/repositories"
	"github.com/CareTrackHQ/caretrack_app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store-side constraint names; violations map onto the error taxonomy so the
// at-most-one-active-entry and range invariants hold even against concurrent
// writers that raced past the service pre-checks.
const (
	activeEntryUniqueConstraint = "uq_time_entries_active"
	entryRangeCheckConstraint   = "chk_time_entries_range"
)

type PgxTimeEntryRepository struct {
	db *pgxpool.Pool
}

func newPgxTimeEntryRepository(db *pgxpool.Pool) portsrepo.TimeEntryRepositoryFacade {
	return &PgxTimeEntryRepository{db: db}
}

// Ensure PgxTimeEntryRepository implements portsrepo.TimeEntryRepositoryFacade
var _ portsrepo.TimeEntryRepositoryFacade = (*PgxTimeEntryRepository)(nil)

// entrySelectColumns is shared by every entry query so scans stay aligned.
const entrySelectColumns = `
	e.entry_id, e.user_id, e.circle_id, e.location_id,
	e.clock_in, e.clock_out,
	e.clock_in_lat, e.clock_in_lng, e.clock_in_distance_meters,
	e.clock_out_lat, e.clock_out_lng, e.clock_out_distance_meters,
	e.duration_minutes, e.is_override, e.override_by, e.notes,
	e.created_at, e.created_by, e.last_updated_at, e.last_updated_by,
	l.location_id, l.circle_id, l.name, l.address,
	l.latitude, l.longitude, l.radius_meters, l.is_active,
	l.created_at, l.created_by, l.last_updated_at, l.last_updated_by`

const entryFromClause = `
	FROM time_entries e
	LEFT JOIN locations l ON l.location_id = e.location_id`

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner, withFullName bool) (*domain.TimeEntry, error) {
	var m models.TimeEntry
	var (
		locID       sql.NullString
		locCircleID sql.NullString
		locName     sql.NullString
		locAddress  sql.NullString
		locLat      sql.NullFloat64
		locLng      sql.NullFloat64
		locRadius   sql.NullFloat64
		locActive   sql.NullBool
		locCreated  sql.NullTime
		locCreator  sql.NullString
		locUpdated  sql.NullTime
		locUpdater  sql.NullString
		fullName    sql.NullString
	)

	dest := []any{
		&m.EntryID, &m.UserID, &m.CircleID, &m.LocationID,
		&m.ClockIn, &m.ClockOut,
		&m.ClockInLat, &m.ClockInLng, &m.ClockInDistanceMeters,
		&m.ClockOutLat, &m.ClockOutLng, &m.ClockOutDistanceMeters,
		&m.DurationMinutes, &m.IsOverride, &m.OverrideBy, &m.Notes,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		&locID, &locCircleID, &locName, &locAddress,
		&locLat, &locLng, &locRadius, &locActive,
		&locCreated, &locCreator, &locUpdated, &locUpdater,
	}
	if withFullName {
		dest = append(dest, &fullName)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	entry := toDomainEntry(m)
	if locID.Valid {
		entry.Location = &domain.WorkLocation{
			LocationID:   locID.String,
			CircleID:     locCircleID.String,
			Name:         locName.String,
			Latitude:     locLat.Float64,
			Longitude:    locLng.Float64,
			RadiusMeters: locRadius.Float64,
			IsActive:     locActive.Bool,
			AuditFields: domain.AuditFields{
				CreatedAt:     locCreated.Time,
				CreatedBy:     locCreator.String,
				LastUpdatedAt: locUpdated.Time,
				LastUpdatedBy: locUpdater.String,
			},
		}
		if locAddress.Valid {
			entry.Location.Address = &locAddress.String
		}
	}
	if fullName.Valid {
		entry.UserFullName = &fullName.String
	}
	return &entry, nil
}

func toDomainEntry(m models.TimeEntry) domain.TimeEntry {
	e := domain.TimeEntry{
		EntryID:    m.EntryID,
		UserID:     m.UserID,
		CircleID:   m.CircleID,
		ClockIn:    m.ClockIn,
		IsOverride: m.IsOverride,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.LocationID.Valid {
		e.LocationID = &m.LocationID.String
	}
	if m.ClockOut.Valid {
		t := m.ClockOut.Time
		e.ClockOut = &t
	}
	e.ClockInLat = nullFloat(m.ClockInLat)
	e.ClockInLng = nullFloat(m.ClockInLng)
	e.ClockInDistanceMeters = nullFloat(m.ClockInDistanceMeters)
	e.ClockOutLat = nullFloat(m.ClockOutLat)
	e.ClockOutLng = nullFloat(m.ClockOutLng)
	e.ClockOutDistanceMeters = nullFloat(m.ClockOutDistanceMeters)
	if m.DurationMinutes.Valid {
		d := int(m.DurationMinutes.Int32)
		e.DurationMinutes = &d
	}
	if m.OverrideBy.Valid {
		e.OverrideBy = &m.OverrideBy.String
	}
	if m.Notes.Valid {
		e.Notes = &m.Notes.String
	}
	return e
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// mapWriteError translates constraint violations to sentinel errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == activeEntryUniqueConstraint:
			return apperrors.ErrAlreadyClockedIn
		case pgErr.Code == "23514" && pgErr.ConstraintName == entryRangeCheckConstraint:
			return apperrors.ErrInvalidRange
		case pgErr.Code == "23505":
			return apperrors.ErrDuplicate
		}
	}
	return err
}

func (r *PgxTimeEntryRepository) FindActiveEntryByUser(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	query := `SELECT` + entrySelectColumns + entryFromClause + `
		WHERE e.user_id = $1 AND e.clock_out IS NULL
		ORDER BY e.clock_in DESC
		LIMIT 1;`

	entry, err := scanEntry(r.db.QueryRow(ctx, query, userID), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active entry for user %s: %w", userID, err)
	}
	return entry, nil
}

func (r *PgxTimeEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.TimeEntry, error) {
	query := `SELECT` + entrySelectColumns + entryFromClause + `
		WHERE e.entry_id = $1;`

	entry, err := scanEntry(r.db.QueryRow(ctx, query, entryID), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	return entry, nil
}

func (r *PgxTimeEntryRepository) ListEntriesByUser(ctx context.Context, userID string, start, end time.Time) ([]domain.TimeEntry, error) {
	query := `SELECT` + entrySelectColumns + entryFromClause + `
		WHERE e.user_id = $1 AND e.clock_in >= $2 AND e.clock_in <= $3
		ORDER BY e.clock_in DESC;`

	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectEntries(rows, false)
}

func (r *PgxTimeEntryRepository) ListEntriesByCircle(ctx context.Context, circleID string, start, end *time.Time, limit, offset int) ([]domain.TimeEntry, error) {
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT` + entrySelectColumns + `,
	p.full_name` + entryFromClause + `
	LEFT JOIN profiles p ON p.profile_id = e.user_id
	WHERE e.circle_id = $1
	  AND ($2::timestamptz IS NULL OR e.clock_in >= $2)
	  AND ($3::timestamptz IS NULL OR e.clock_in <= $3)
	ORDER BY e.clock_in DESC
	LIMIT $4 OFFSET $5;`

	rows, err := r.db.Query(ctx, query, circleID, start, end, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for circle %s: %w", circleID, err)
	}
	defer rows.Close()

	return collectEntries(rows, true)
}

func collectEntries(rows pgx.Rows, withFullName bool) ([]domain.TimeEntry, error) {
	entries := []domain.TimeEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows, withFullName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	return entries, nil
}

// SaveEntry inserts a new entry. The partial unique index over open entries
// and the range check fire here for racing writers.
func (r *PgxTimeEntryRepository) SaveEntry(ctx context.Context, entry domain.TimeEntry) error {
	query := `
		INSERT INTO time_entries (
			entry_id, user_id, circle_id, location_id,
			clock_in, clock_out,
			clock_in_lat, clock_in_lng, clock_in_distance_meters,
			clock_out_lat, clock_out_lng, clock_out_distance_meters,
			duration_minutes, is_override, override_by, notes,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		);`

	_, err := r.db.Exec(ctx, query,
		entry.EntryID, entry.UserID, entry.CircleID, entry.LocationID,
		entry.ClockIn, entry.ClockOut,
		entry.ClockInLat, entry.ClockInLng, entry.ClockInDistanceMeters,
		entry.ClockOutLat, entry.ClockOutLng, entry.ClockOutDistanceMeters,
		entry.DurationMinutes, entry.IsOverride, entry.OverrideBy, entry.Notes,
		entry.CreatedAt, entry.CreatedBy, entry.LastUpdatedAt, entry.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to save time entry: %w", err)
	}
	return nil
}

// CloseEntry fills the clock-out fields of a still-active entry. The
// clock_out IS NULL predicate makes closing an already-closed entry a
// NotFound, not a silent overwrite.
func (r *PgxTimeEntryRepository) CloseEntry(ctx context.Context, entry domain.TimeEntry) error {
	query := `
		UPDATE time_entries SET
			clock_out = $2,
			clock_out_lat = $3,
			clock_out_lng = $4,
			clock_out_distance_meters = $5,
			duration_minutes = $6,
			last_updated_at = $7,
			last_updated_by = $8
		WHERE entry_id = $1 AND clock_out IS NULL;`

	tag, err := r.db.Exec(ctx, query,
		entry.EntryID, entry.ClockOut,
		entry.ClockOutLat, entry.ClockOutLng, entry.ClockOutDistanceMeters,
		entry.DurationMinutes,
		entry.LastUpdatedAt, entry.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to close time entry %s: %w", entry.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTimeEntryRepository) UpdateEntry(ctx context.Context, entry domain.TimeEntry) error {
	query := `
		UPDATE time_entries SET
			location_id = $2,
			clock_in = $3,
			clock_out = $4,
			duration_minutes = $5,
			is_override = $6,
			override_by = $7,
			notes = $8,
			last_updated_at = $9,
			last_updated_by = $10
		WHERE entry_id = $1;`

	tag, err := r.db.Exec(ctx, query,
		entry.EntryID, entry.LocationID,
		entry.ClockIn, entry.ClockOut, entry.DurationMinutes,
		entry.IsOverride, entry.OverrideBy, entry.Notes,
		entry.LastUpdatedAt, entry.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update time entry %s: %w", entry.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTimeEntryRepository) DeleteEntry(ctx context.Context, entryID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM time_entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete time entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
