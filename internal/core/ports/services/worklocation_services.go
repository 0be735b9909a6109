package services

import (
	"context"

	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
	"github.com/CareTrackHQ/caretrack_app/internal/dto"
)

// WorkLocationReaderSvc defines read operations for work locations.
type WorkLocationReaderSvc interface {
	// ListActiveLocations returns the caller's circle's active locations,
	// ordered by name.
	ListActiveLocations(ctx context.Context, actor domain.Actor) ([]domain.WorkLocation, error)
}

// WorkLocationWriterSvc defines the admin location-manager operations.
type WorkLocationWriterSvc interface {
	// SaveLocation creates or updates a geofenced location; radius must be
	// positive or the call fails with apperrors.ErrValidation.
	SaveLocation(ctx context.Context, actor domain.Actor, req dto.SaveWorkLocationRequest) (*domain.WorkLocation, error)

	// DeleteLocation hard-deletes a location. Historical entries keep their
	// stored coordinates; their joined location degrades to nil.
	DeleteLocation(ctx context.Context, actor domain.Actor, locationID string) error
}

// WorkLocationSvcFacade combines all work-location service interfaces.
type WorkLocationSvcFacade interface {
	WorkLocationReaderSvc
	WorkLocationWriterSvc
}
