package repositories

import (
	"context"

	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
)

// WorkLocationReader defines read operations for work location data
type WorkLocationReader interface {
	// FindLocationByID retrieves a location regardless of its active flag.
	FindLocationByID(ctx context.Context, locationID string) (*domain.WorkLocation, error)

	// ListActiveLocationsByCircle retrieves is_active locations for the
	// circle, ordered by name. An empty slice is a valid result.
	ListActiveLocationsByCircle(ctx context.Context, circleID string) ([]domain.WorkLocation, error)
}

// WorkLocationWriter defines write operations for work location data
type WorkLocationWriter interface {
	// SaveLocation inserts or updates a location.
	SaveLocation(ctx context.Context, location domain.WorkLocation) error

	// DeleteLocation hard-deletes a location; apperrors.ErrNotFound when
	// absent. Entries referencing it keep their stored coordinates and
	// degrade to a nil joined location.
	DeleteLocation(ctx context.Context, locationID string) error
}

// WorkLocationRepositoryFacade combines all work-location repository interfaces.
type WorkLocationRepositoryFacade interface {
	WorkLocationReader
	WorkLocationWriter
}
