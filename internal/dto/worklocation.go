package dto

import (
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
)

// --- Work Location DTOs ---

// SaveWorkLocationRequest defines data for creating or updating a geofenced
// work location. LocationID is empty on create.
type SaveWorkLocationRequest struct {
	LocationID   string   `json:"locationID"`
	Name         string   `json:"name" binding:"required"`
	Address      *string  `json:"address"`
	Latitude     *float64 `json:"latitude" binding:"required,latitude"`
	Longitude    *float64 `json:"longitude" binding:"required,longitude"`
	RadiusMeters *float64 `json:"radiusMeters" binding:"required,gt=0"`
	IsActive     *bool    `json:"isActive"`
}

// WorkLocationResponse defines data returned for a work location.
type WorkLocationResponse struct {
	LocationID    string    `json:"locationID"`
	CircleID      string    `json:"circleID"`
	Name          string    `json:"name"`
	Address       *string   `json:"address,omitempty"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	RadiusMeters  float64   `json:"radiusMeters"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToWorkLocationResponse converts domain.WorkLocation to DTO.
func ToWorkLocationResponse(l *domain.WorkLocation) WorkLocationResponse {
	return WorkLocationResponse{
		LocationID:    l.LocationID,
		CircleID:      l.CircleID,
		Name:          l.Name,
		Address:       l.Address,
		Latitude:      l.Latitude,
		Longitude:     l.Longitude,
		RadiusMeters:  l.RadiusMeters,
		IsActive:      l.IsActive,
		CreatedAt:     l.CreatedAt,
		CreatedBy:     l.CreatedBy,
		LastUpdatedAt: l.LastUpdatedAt,
		LastUpdatedBy: l.LastUpdatedBy,
	}
}

// ListWorkLocationsResponse wraps a list of work locations.
type ListWorkLocationsResponse struct {
	Locations []WorkLocationResponse `json:"locations"`
}

// ToListWorkLocationsResponse converts a slice of domain.WorkLocation to DTO.
func ToListWorkLocationsResponse(ls []domain.WorkLocation) ListWorkLocationsResponse {
	list := make([]WorkLocationResponse, len(ls))
	for i, l := range ls {
		list[i] = ToWorkLocationResponse(&l)
	}
	return ListWorkLocationsResponse{Locations: list}
}
