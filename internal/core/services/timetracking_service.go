package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/apperrors"
	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
	portsrepo "github.com/CareTrackHQ/caretrack_app/internal/core/ports/repositories"
	portssvc "github.com/CareTrackHQ/caretrack_app/internal/core/ports/services"
	"github.com/CareTrackHQ/caretrack_app/internal/dto"
	"github.com/CareTrackHQ/caretrack_app/internal/utils/geo"
	"github.com/CareTrackHQ/caretrack_app/internal/utils/payperiod"
	"github.com/google/uuid"
)

// timeTrackingService implements the TimeTrackingSvcFacade interface. It
// enforces the at-most-one-active-entry invariant and the override audit
// semantics at the boundary between user action and persistence.
type timeTrackingService struct {
	BaseService
	entryRepo    portsrepo.TimeEntryRepositoryFacade
	locationRepo portsrepo.WorkLocationReader
	payAnchor    time.Time
	now          func() time.Time
}

// NewTimeTrackingService creates a new time-tracking service. payAnchor is
// the epoch date pay-period boundaries are anchored to.
func NewTimeTrackingService(
	entryRepo portsrepo.TimeEntryRepositoryFacade,
	locationRepo portsrepo.WorkLocationReader,
	payAnchor time.Time,
) portssvc.TimeTrackingSvcFacade {
	return &timeTrackingService{
		entryRepo:    entryRepo,
		locationRepo: locationRepo,
		payAnchor:    payAnchor,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.TimeTrackingSvcFacade = (*timeTrackingService)(nil)

// GetActiveEntry returns the caller's open entry, or nil when not clocked in.
func (s *timeTrackingService) GetActiveEntry(ctx context.Context, actor domain.Actor) (*domain.TimeEntry, error) {
	entry, err := s.entryRepo.FindActiveEntryByUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		s.LogError(ctx, err, "Failed to look up active entry",
			slog.String("user_id", actor.UserID))
		return nil, err
	}
	return entry, nil
}

// ListEntries returns the caller's entries with clock-in inside [start, end].
func (s *timeTrackingService) ListEntries(ctx context.Context, actor domain.Actor, start, end time.Time) ([]domain.TimeEntry, error) {
	entries, err := s.entryRepo.ListEntriesByUser(ctx, actor.UserID, start, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries",
			slog.String("user_id", actor.UserID))
		return nil, err
	}
	if entries == nil {
		entries = []domain.TimeEntry{}
	}
	return entries, nil
}

// ListCircleEntries returns every circle member's entries; admin only.
func (s *timeTrackingService) ListCircleEntries(ctx context.Context, actor domain.Actor, start, end *time.Time, limit, offset int) ([]domain.TimeEntry, error) {
	if err := s.RequireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	entries, err := s.entryRepo.ListEntriesByCircle(ctx, actor.CircleID, start, end, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list circle entries",
			slog.String("circle_id", actor.CircleID))
		return nil, err
	}
	if entries == nil {
		entries = []domain.TimeEntry{}
	}
	return entries, nil
}

// ClockIn opens a new entry after checking the active-entry invariant and the
// geofence. The pre-check gives a friendly error on the common path; the
// store's partial unique index closes the cross-device race, surfacing as
// ErrAlreadyClockedIn from SaveEntry.
func (s *timeTrackingService) ClockIn(ctx context.Context, actor domain.Actor, req dto.ClockInRequest) (*domain.TimeEntry, error) {
	active, err := s.GetActiveEntry(ctx, actor)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperrors.ErrAlreadyClockedIn
	}

	location, err := s.locationRepo.FindLocationByID(ctx, req.LocationID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load clock-in location",
				slog.String("location_id", req.LocationID))
		}
		return nil, err
	}
	if location.CircleID != actor.CircleID || !location.IsActive {
		return nil, apperrors.ErrNotFound
	}

	check := geo.WithinGeofence(*req.Latitude, *req.Longitude,
		location.Latitude, location.Longitude, location.RadiusMeters)
	if !check.Within && !actor.IsAdmin {
		return nil, fmt.Errorf("%w: %.0fm from %s (radius %.0fm)",
			apperrors.ErrOutOfGeofence, check.Distance, location.Name, location.RadiusMeters)
	}

	now := s.now()
	entry := domain.TimeEntry{
		EntryID:               uuid.NewString(),
		UserID:                actor.UserID,
		CircleID:              actor.CircleID,
		LocationID:            &location.LocationID,
		ClockIn:               now,
		ClockInLat:            req.Latitude,
		ClockInLng:            req.Longitude,
		ClockInDistanceMeters: &check.Distance,
		Notes:                 req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	if err := s.entryRepo.SaveEntry(ctx, entry); err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyClockedIn) {
			s.LogError(ctx, err, "Failed to save clock-in entry",
				slog.String("user_id", actor.UserID))
		}
		return nil, err
	}
	entry.Location = location

	s.LogInfo(ctx, "Clocked in",
		slog.String("entry_id", entry.EntryID),
		slog.String("location_id", location.LocationID),
		slog.Float64("distance_meters", check.Distance))
	return &entry, nil
}

// ClockOut closes the caller's open entry and derives the stored duration.
func (s *timeTrackingService) ClockOut(ctx context.Context, actor domain.Actor, req dto.ClockOutRequest) (*domain.TimeEntry, error) {
	entry, err := s.entryRepo.FindActiveEntryByUser(ctx, actor.UserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to look up active entry for clock-out",
				slog.String("user_id", actor.UserID))
		}
		return nil, err
	}

	now := s.now()
	duration := payperiod.DurationMinutes(entry.ClockIn, now)
	entry.ClockOut = &now
	entry.DurationMinutes = &duration
	entry.ClockOutLat = req.Latitude
	entry.ClockOutLng = req.Longitude
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor.UserID

	if req.Latitude != nil && req.Longitude != nil && entry.Location != nil {
		check := geo.WithinGeofence(*req.Latitude, *req.Longitude,
			entry.Location.Latitude, entry.Location.Longitude, entry.Location.RadiusMeters)
		entry.ClockOutDistanceMeters = &check.Distance
	}

	if err := s.entryRepo.CloseEntry(ctx, *entry); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to close entry",
				slog.String("entry_id", entry.EntryID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Clocked out",
		slog.String("entry_id", entry.EntryID),
		slog.Int("duration_minutes", duration))
	return entry, nil
}

// CreateOverrideEntry creates a closed entry on another user's behalf,
// stamping the override audit fields.
func (s *timeTrackingService) CreateOverrideEntry(ctx context.Context, actor domain.Actor, req dto.CreateOverrideEntryRequest) (*domain.TimeEntry, error) {
	if err := s.RequireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if !req.ClockOut.After(req.ClockIn) {
		return nil, apperrors.ErrInvalidRange
	}

	now := s.now()
	clockIn := req.ClockIn.UTC()
	clockOut := req.ClockOut.UTC()
	duration := payperiod.DurationMinutes(clockIn, clockOut)
	adminID := actor.UserID

	entry := domain.TimeEntry{
		EntryID:         uuid.NewString(),
		UserID:          req.UserID,
		CircleID:        actor.CircleID,
		LocationID:      req.LocationID,
		ClockIn:         clockIn,
		ClockOut:        &clockOut,
		DurationMinutes: &duration,
		IsOverride:      true,
		OverrideBy:      &adminID,
		Notes:           req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     adminID,
			LastUpdatedAt: now,
			LastUpdatedBy: adminID,
		},
	}

	if err := s.entryRepo.SaveEntry(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save override entry",
			slog.String("target_user_id", req.UserID))
		return nil, err
	}

	s.LogInfo(ctx, "Override entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("target_user_id", req.UserID),
		slog.String("admin_id", adminID))
	return &entry, nil
}

// UpdateEntry applies a partial admin edit. Any edit through this path stamps
// the override audit fields and recomputes the stored duration when both
// timestamps are present, so a single-field edit never leaves a stale value.
func (s *timeTrackingService) UpdateEntry(ctx context.Context, actor domain.Actor, entryID string, req dto.UpdateTimeEntryRequest) (*domain.TimeEntry, error) {
	if err := s.RequireAdmin(ctx, actor); err != nil {
		return nil, err
	}

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load entry for update",
				slog.String("entry_id", entryID))
		}
		return nil, err
	}
	if entry.CircleID != actor.CircleID {
		return nil, apperrors.ErrNotFound
	}

	if req.ClockIn != nil {
		in := req.ClockIn.UTC()
		entry.ClockIn = in
	}
	if req.ClockOut != nil {
		out := req.ClockOut.UTC()
		entry.ClockOut = &out
	}
	if req.LocationID != nil {
		entry.LocationID = req.LocationID
	}
	if req.Notes != nil {
		entry.Notes = req.Notes
	}

	if entry.ClockOut != nil {
		if !entry.ClockOut.After(entry.ClockIn) {
			return nil, apperrors.ErrInvalidRange
		}
		duration := payperiod.DurationMinutes(entry.ClockIn, *entry.ClockOut)
		entry.DurationMinutes = &duration
	} else {
		entry.DurationMinutes = nil
	}

	adminID := actor.UserID
	entry.IsOverride = true
	entry.OverrideBy = &adminID
	entry.LastUpdatedAt = s.now()
	entry.LastUpdatedBy = adminID

	if err := s.entryRepo.UpdateEntry(ctx, *entry); err != nil {
		s.LogError(ctx, err, "Failed to update entry",
			slog.String("entry_id", entryID))
		return nil, err
	}

	s.LogInfo(ctx, "Entry updated by admin",
		slog.String("entry_id", entryID),
		slog.String("admin_id", adminID))
	return entry, nil
}

// DeleteEntry hard-deletes an entry; admin only.
func (s *timeTrackingService) DeleteEntry(ctx context.Context, actor domain.Actor, entryID string) error {
	if err := s.RequireAdmin(ctx, actor); err != nil {
		return err
	}

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.CircleID != actor.CircleID {
		return apperrors.ErrNotFound
	}

	if err := s.entryRepo.DeleteEntry(ctx, entryID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete entry",
				slog.String("entry_id", entryID))
		}
		return err
	}

	s.LogInfo(ctx, "Entry deleted by admin",
		slog.String("entry_id", entryID),
		slog.String("admin_id", actor.UserID))
	return nil
}

// Summary computes the pay-period window at the given offset and the caller's
// aggregate for it. The summary is derived from a fresh entries snapshot and
// never stored.
func (s *timeTrackingService) Summary(ctx context.Context, actor domain.Actor, periodOffset int) (*domain.PayPeriodSummary, error) {
	start, end := payperiod.Window(periodOffset, s.now(), s.payAnchor)

	// Fetch through the next period's midnight; Summarize treats the upper
	// bound exclusively, so the final day's last sub-second is kept and an
	// entry at exactly the boundary is not.
	rangeEnd := end.AddDate(0, 0, 1)
	entries, err := s.entryRepo.ListEntriesByUser(ctx, actor.UserID, start, rangeEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries for summary",
			slog.String("user_id", actor.UserID))
		return nil, err
	}

	summary := payperiod.Summarize(entries, start, end)
	return &summary, nil
}
