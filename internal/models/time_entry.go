package models

import (
	"database/sql"
	"time"
)

// TimeEntry mirrors the time_entries table. Nullable columns use sql null
// types so scans round-trip cleanly; conversion to domain pointers happens in
// the repository mapping helpers.
type TimeEntry struct {
	EntryID    string         `db:"entry_id"`
	UserID     string         `db:"user_id"`
	CircleID   string         `db:"circle_id"`
	LocationID sql.NullString `db:"location_id"`

	ClockIn  time.Time    `db:"clock_in"`
	ClockOut sql.NullTime `db:"clock_out"`

	ClockInLat             sql.NullFloat64 `db:"clock_in_lat"`
	ClockInLng             sql.NullFloat64 `db:"clock_in_lng"`
	ClockInDistanceMeters  sql.NullFloat64 `db:"clock_in_distance_meters"`
	ClockOutLat            sql.NullFloat64 `db:"clock_out_lat"`
	ClockOutLng            sql.NullFloat64 `db:"clock_out_lng"`
	ClockOutDistanceMeters sql.NullFloat64 `db:"clock_out_distance_meters"`

	DurationMinutes sql.NullInt32 `db:"duration_minutes"`

	IsOverride bool           `db:"is_override"`
	OverrideBy sql.NullString `db:"override_by"`
	Notes      sql.NullString `db:"notes"`

	AuditFields
}
