package dto

import (
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Clock action DTOs ---

// ClockInRequest carries the selected location and the GPS reading captured
// at the moment of the action.
type ClockInRequest struct {
	LocationID string   `json:"locationID" binding:"required"`
	Latitude   *float64 `json:"latitude" binding:"required,latitude"`
	Longitude  *float64 `json:"longitude" binding:"required,longitude"`
	Notes      *string  `json:"notes"`
}

// ClockOutRequest carries the closing GPS reading. Coordinates are optional;
// clock-out is always permitted on the caller's own active entry.
type ClockOutRequest struct {
	Latitude  *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude"`
}

// --- Admin DTOs ---

// CreateOverrideEntryRequest defines an admin-created entry with both
// timestamps supplied at creation. Override entries record work that already
// happened, hence notfuture on both timestamps.
type CreateOverrideEntryRequest struct {
	UserID     string    `json:"userID" binding:"required"`
	ClockIn    time.Time `json:"clockIn" binding:"required,notfuture"`
	ClockOut   time.Time `json:"clockOut" binding:"required,notfuture"`
	LocationID *string   `json:"locationID"`
	Notes      *string   `json:"notes"`
}

// UpdateTimeEntryRequest defines a partial admin edit of an entry.
type UpdateTimeEntryRequest struct {
	ClockIn    *time.Time `json:"clockIn"`
	ClockOut   *time.Time `json:"clockOut"`
	LocationID *string    `json:"locationID"`
	Notes      *string    `json:"notes"`
}

// --- Responses ---

// TimeEntryResponse defines data returned for a time entry, with the joined
// location when it still exists.
type TimeEntryResponse struct {
	EntryID    string  `json:"entryID"`
	UserID     string  `json:"userID"`
	CircleID   string  `json:"circleID"`
	LocationID *string `json:"locationID,omitempty"`

	ClockIn  time.Time  `json:"clockIn"`
	ClockOut *time.Time `json:"clockOut,omitempty"`

	ClockInLat             *float64 `json:"clockInLat,omitempty"`
	ClockInLng             *float64 `json:"clockInLng,omitempty"`
	ClockInDistanceMeters  *float64 `json:"clockInDistanceMeters,omitempty"`
	ClockOutLat            *float64 `json:"clockOutLat,omitempty"`
	ClockOutLng            *float64 `json:"clockOutLng,omitempty"`
	ClockOutDistanceMeters *float64 `json:"clockOutDistanceMeters,omitempty"`

	DurationMinutes *int `json:"durationMinutes,omitempty"`

	IsOverride bool    `json:"isOverride"`
	OverrideBy *string `json:"overrideBy,omitempty"`
	Notes      *string `json:"notes,omitempty"`

	Location     *WorkLocationResponse `json:"location,omitempty"`
	UserFullName *string               `json:"userFullName,omitempty"`

	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// ToTimeEntryResponse converts domain.TimeEntry to DTO.
func ToTimeEntryResponse(e *domain.TimeEntry) TimeEntryResponse {
	resp := TimeEntryResponse{
		EntryID:                e.EntryID,
		UserID:                 e.UserID,
		CircleID:               e.CircleID,
		LocationID:             e.LocationID,
		ClockIn:                e.ClockIn,
		ClockOut:               e.ClockOut,
		ClockInLat:             e.ClockInLat,
		ClockInLng:             e.ClockInLng,
		ClockInDistanceMeters:  e.ClockInDistanceMeters,
		ClockOutLat:            e.ClockOutLat,
		ClockOutLng:            e.ClockOutLng,
		ClockOutDistanceMeters: e.ClockOutDistanceMeters,
		DurationMinutes:        e.DurationMinutes,
		IsOverride:             e.IsOverride,
		OverrideBy:             e.OverrideBy,
		Notes:                  e.Notes,
		UserFullName:           e.UserFullName,
		CreatedAt:              e.CreatedAt,
		LastUpdatedAt:          e.LastUpdatedAt,
	}
	if e.Location != nil {
		loc := ToWorkLocationResponse(e.Location)
		resp.Location = &loc
	}
	return resp
}

// ListTimeEntriesResponse wraps a list of time entries.
type ListTimeEntriesResponse struct {
	Entries []TimeEntryResponse `json:"entries"`
}

// ToListTimeEntriesResponse converts a slice of domain.TimeEntry to DTO.
func ToListTimeEntriesResponse(es []domain.TimeEntry) ListTimeEntriesResponse {
	list := make([]TimeEntryResponse, len(es))
	for i := range es {
		list[i] = ToTimeEntryResponse(&es[i])
	}
	return ListTimeEntriesResponse{Entries: list}
}

// PayPeriodSummaryResponse defines the worked-hours aggregate for one period.
type PayPeriodSummaryResponse struct {
	TotalHours   decimal.Decimal `json:"totalHours"`
	DaysWorked   int             `json:"daysWorked"`
	EntriesCount int             `json:"entriesCount"`
	PeriodStart  string          `json:"periodStart"`
	PeriodEnd    string          `json:"periodEnd"`
}

// ToPayPeriodSummaryResponse converts domain.PayPeriodSummary to DTO.
func ToPayPeriodSummaryResponse(s *domain.PayPeriodSummary) PayPeriodSummaryResponse {
	return PayPeriodSummaryResponse{
		TotalHours:   s.TotalHours,
		DaysWorked:   s.DaysWorked,
		EntriesCount: s.EntriesCount,
		PeriodStart:  s.PeriodStart,
		PeriodEnd:    s.PeriodEnd,
	}
}
