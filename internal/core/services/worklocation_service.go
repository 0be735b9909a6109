package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/apperrors"
	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
	portsrepo "github.com/CareTrackHQ/caretrack_app/internal/core/ports/repositories"
	portssvc "github.com/CareTrackHQ/caretrack_app/internal/core/ports/services"
	"github.com/CareTrackHQ/caretrack_app/internal/dto"
	"github.com/google/uuid"
)

// workLocationService implements the WorkLocationSvcFacade interface.
type workLocationService struct {
	BaseService
	locationRepo portsrepo.WorkLocationRepositoryFacade
}

// NewWorkLocationService creates a new work-location service.
func NewWorkLocationService(locationRepo portsrepo.WorkLocationRepositoryFacade) portssvc.WorkLocationSvcFacade {
	return &workLocationService{locationRepo: locationRepo}
}

var _ portssvc.WorkLocationSvcFacade = (*workLocationService)(nil)

// ListActiveLocations returns the circle's active locations ordered by name.
func (s *workLocationService) ListActiveLocations(ctx context.Context, actor domain.Actor) ([]domain.WorkLocation, error) {
	locations, err := s.locationRepo.ListActiveLocationsByCircle(ctx, actor.CircleID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list work locations",
			slog.String("circle_id", actor.CircleID))
		return nil, err
	}
	if locations == nil {
		locations = []domain.WorkLocation{}
	}
	return locations, nil
}

// SaveLocation creates or updates a geofenced location; admin only.
func (s *workLocationService) SaveLocation(ctx context.Context, actor domain.Actor, req dto.SaveWorkLocationRequest) (*domain.WorkLocation, error) {
	if err := s.RequireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if req.RadiusMeters == nil || *req.RadiusMeters <= 0 {
		return nil, apperrors.ErrValidation
	}

	now := time.Now().UTC()
	var location domain.WorkLocation

	if req.LocationID == "" {
		location = domain.WorkLocation{
			LocationID: uuid.NewString(),
			CircleID:   actor.CircleID,
			IsActive:   true,
			AuditFields: domain.AuditFields{
				CreatedAt: now,
				CreatedBy: actor.UserID,
			},
		}
	} else {
		existing, err := s.locationRepo.FindLocationByID(ctx, req.LocationID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				s.LogError(ctx, err, "Failed to load location for update",
					slog.String("location_id", req.LocationID))
			}
			return nil, err
		}
		if existing.CircleID != actor.CircleID {
			return nil, apperrors.ErrNotFound
		}
		location = *existing
	}

	location.Name = req.Name
	location.Address = req.Address
	location.Latitude = *req.Latitude
	location.Longitude = *req.Longitude
	location.RadiusMeters = *req.RadiusMeters
	if req.IsActive != nil {
		location.IsActive = *req.IsActive
	}
	location.LastUpdatedAt = now
	location.LastUpdatedBy = actor.UserID

	if err := s.locationRepo.SaveLocation(ctx, location); err != nil {
		s.LogError(ctx, err, "Failed to save work location",
			slog.String("location_id", location.LocationID))
		return nil, err
	}

	s.LogInfo(ctx, "Work location saved",
		slog.String("location_id", location.LocationID),
		slog.String("name", location.Name))
	return &location, nil
}

// DeleteLocation hard-deletes a location; admin only. Historical entries
// referencing it keep their stored coordinates.
func (s *workLocationService) DeleteLocation(ctx context.Context, actor domain.Actor, locationID string) error {
	if err := s.RequireAdmin(ctx, actor); err != nil {
		return err
	}

	existing, err := s.locationRepo.FindLocationByID(ctx, locationID)
	if err != nil {
		return err
	}
	if existing.CircleID != actor.CircleID {
		return apperrors.ErrNotFound
	}

	if err := s.locationRepo.DeleteLocation(ctx, locationID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete work location",
				slog.String("location_id", locationID))
		}
		return err
	}

	s.LogInfo(ctx, "Work location deleted",
		slog.String("location_id", locationID),
		slog.String("admin_id", actor.UserID))
	return nil
}
