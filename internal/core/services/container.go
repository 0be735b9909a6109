package services

import (
	"time"

	portsrepo "github.com/CareTrackHQ/caretrack_app/internal/core/ports/repositories"
	portssvc "github.com/CareTrackHQ/caretrack_app/internal/core/ports/services"
)

// NewContainer creates the service container with properly initialized
// dependencies. payAnchor is the configured pay-period anchor date.
func NewContainer(repos *portsrepo.RepositoryProvider, payAnchor time.Time) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		TimeTracking: NewTimeTrackingService(repos.TimeEntryRepo, repos.WorkLocationRepo, payAnchor),
		WorkLocation: NewWorkLocationService(repos.WorkLocationRepo),
	}
}

// Compile-time interface checks.
var (
	_ portssvc.TimeTrackingSvcFacade = (*timeTrackingService)(nil)
	_ portssvc.WorkLocationSvcFacade = (*workLocationService)(nil)
)
