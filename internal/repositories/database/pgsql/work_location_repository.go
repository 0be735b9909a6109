package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/CareTrackHQ/caretrack_app/internal/apperrors"
	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
	portsrepo "github.com/CareTrackHQ/caretrack_app/internal/core/ports/repositories"
	"github.com/CareTrackHQ/caretrack_app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxWorkLocationRepository struct {
	db *pgxpool.Pool
}

func newPgxWorkLocationRepository(db *pgxpool.Pool) portsrepo.WorkLocationRepositoryFacade {
	return &PgxWorkLocationRepository{db: db}
}

// Ensure PgxWorkLocationRepository implements portsrepo.WorkLocationRepositoryFacade
var _ portsrepo.WorkLocationRepositoryFacade = (*PgxWorkLocationRepository)(nil)

func toDomainLocation(m models.WorkLocation) domain.WorkLocation {
	l := domain.WorkLocation{
		LocationID:   m.LocationID,
		CircleID:     m.CircleID,
		Name:         m.Name,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
		RadiusMeters: m.RadiusMeters,
		IsActive:     m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.Address.Valid {
		l.Address = &m.Address.String
	}
	return l
}

const locationSelectColumns = `
	location_id, circle_id, name, address, latitude, longitude,
	radius_meters, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanLocation(row rowScanner) (*domain.WorkLocation, error) {
	var m models.WorkLocation
	err := row.Scan(
		&m.LocationID, &m.CircleID, &m.Name, &m.Address,
		&m.Latitude, &m.Longitude, &m.RadiusMeters, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	l := toDomainLocation(m)
	return &l, nil
}

func (r *PgxWorkLocationRepository) FindLocationByID(ctx context.Context, locationID string) (*domain.WorkLocation, error) {
	query := `SELECT` + locationSelectColumns + ` FROM locations WHERE location_id = $1;`

	location, err := scanLocation(r.db.QueryRow(ctx, query, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find location %s: %w", locationID, err)
	}
	return location, nil
}

func (r *PgxWorkLocationRepository) ListActiveLocationsByCircle(ctx context.Context, circleID string) ([]domain.WorkLocation, error) {
	query := `SELECT` + locationSelectColumns + `
		FROM locations
		WHERE circle_id = $1 AND is_active = TRUE
		ORDER BY name;`

	rows, err := r.db.Query(ctx, query, circleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations for circle %s: %w", circleID, err)
	}
	defer rows.Close()

	locations := []domain.WorkLocation{}
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		locations = append(locations, *location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location rows: %w", err)
	}
	return locations, nil
}

func (r *PgxWorkLocationRepository) SaveLocation(ctx context.Context, location domain.WorkLocation) error {
	query := `
		INSERT INTO locations (
			location_id, circle_id, name, address, latitude, longitude,
			radius_meters, is_active, created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (location_id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			radius_meters = EXCLUDED.radius_meters,
			is_active = EXCLUDED.is_active,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;`

	_, err := r.db.Exec(ctx, query,
		location.LocationID, location.CircleID, location.Name, location.Address,
		location.Latitude, location.Longitude, location.RadiusMeters, location.IsActive,
		location.CreatedAt, location.CreatedBy, location.LastUpdatedAt, location.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save location %s: %w", location.LocationID, err)
	}
	return nil
}

func (r *PgxWorkLocationRepository) DeleteLocation(ctx context.Context, locationID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM locations WHERE location_id = $1;`, locationID)
	if err != nil {
		return fmt.Errorf("failed to delete location %s: %w", locationID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
