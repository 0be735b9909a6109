package domain

import "time"

// TimeEntry is one clock session for one user. A nil ClockOut means the entry
// is currently active; at most one active entry may exist per user at any
// time (enforced store-side by a partial unique index).
type TimeEntry struct {
	EntryID    string  `json:"entryID"`
	UserID     string  `json:"userID"`
	CircleID   string  `json:"circleID"`
	LocationID *string `json:"locationID,omitempty"`

	ClockIn  time.Time  `json:"clockIn"`
	ClockOut *time.Time `json:"clockOut,omitempty"`

	// Coordinates captured at the moment of each action, never re-derived.
	ClockInLat             *float64 `json:"clockInLat,omitempty"`
	ClockInLng             *float64 `json:"clockInLng,omitempty"`
	ClockInDistanceMeters  *float64 `json:"clockInDistanceMeters,omitempty"`
	ClockOutLat            *float64 `json:"clockOutLat,omitempty"`
	ClockOutLng            *float64 `json:"clockOutLng,omitempty"`
	ClockOutDistanceMeters *float64 `json:"clockOutDistanceMeters,omitempty"`

	// DurationMinutes is derived once when ClockOut is set or edited and
	// stored; it is nil while the entry is active.
	DurationMinutes *int `json:"durationMinutes,omitempty"`

	// IsOverride marks entries created or modified by an admin on another
	// user's behalf; OverrideBy must then carry the admin's user ID.
	IsOverride bool    `json:"isOverride"`
	OverrideBy *string `json:"overrideBy,omitempty"`

	Notes *string `json:"notes,omitempty"`

	// Location is the joined work location, nil when the reference was
	// orphaned by a later deletion.
	Location *WorkLocation `json:"location,omitempty"`

	// UserFullName is populated on admin circle listings only.
	UserFullName *string `json:"userFullName,omitempty"`

	AuditFields
}

// IsActive reports whether the entry represents an open session.
func (e TimeEntry) IsActive() bool {
	return e.ClockOut == nil
}
