package services

import (
	"context"
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
	"github.com/CareTrackHQ/caretrack_app/internal/dto"
)

// TimeTrackingReaderSvc defines read operations over time entries.
type TimeTrackingReaderSvc interface {
	// GetActiveEntry returns the caller's open entry, or nil when the caller
	// is not clocked in. The nil case is not an error.
	GetActiveEntry(ctx context.Context, actor domain.Actor) (*domain.TimeEntry, error)

	// ListEntries returns the caller's entries with clock-in inside
	// [start, end], newest first.
	ListEntries(ctx context.Context, actor domain.Actor, start, end time.Time) ([]domain.TimeEntry, error)

	// ListCircleEntries returns every circle member's entries; admin only.
	ListCircleEntries(ctx context.Context, actor domain.Actor, start, end *time.Time, limit, offset int) ([]domain.TimeEntry, error)

	// Summary computes the pay-period window at the given offset and the
	// caller's worked-hours aggregate for it.
	Summary(ctx context.Context, actor domain.Actor, periodOffset int) (*domain.PayPeriodSummary, error)
}

// ClockSvc defines the self-service clock-in/out operations.
type ClockSvc interface {
	// ClockIn opens a new entry at the selected location. Non-admin callers
	// must be within the location's geofence. Fails with
	// apperrors.ErrAlreadyClockedIn when an open entry exists and with
	// apperrors.ErrOutOfGeofence when the position check fails.
	ClockIn(ctx context.Context, actor domain.Actor, req dto.ClockInRequest) (*domain.TimeEntry, error)

	// ClockOut closes the caller's open entry, capturing the closing
	// coordinates and deriving the stored duration. Fails with
	// apperrors.ErrNotFound when no entry is open.
	ClockOut(ctx context.Context, actor domain.Actor, req dto.ClockOutRequest) (*domain.TimeEntry, error)
}

// TimeEntryAdminSvc defines the admin override and bookkeeping operations.
// Every write through this surface stamps is_override and override_by.
type TimeEntryAdminSvc interface {
	CreateOverrideEntry(ctx context.Context, actor domain.Actor, req dto.CreateOverrideEntryRequest) (*domain.TimeEntry, error)
	UpdateEntry(ctx context.Context, actor domain.Actor, entryID string, req dto.UpdateTimeEntryRequest) (*domain.TimeEntry, error)
	DeleteEntry(ctx context.Context, actor domain.Actor, entryID string) error
}

// TimeTrackingSvcFacade combines all time-tracking service interfaces.
type TimeTrackingSvcFacade interface {
	TimeTrackingReaderSvc
	ClockSvc
	TimeEntryAdminSvc
}
