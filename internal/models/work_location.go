package models

import "database/sql"

// WorkLocation mirrors the locations table.
type WorkLocation struct {
	LocationID   string         `db:"location_id"`
	CircleID     string         `db:"circle_id"`
	Name         string         `db:"name"`
	Address      sql.NullString `db:"address"`
	Latitude     float64        `db:"latitude"`
	Longitude    float64        `db:"longitude"`
	RadiusMeters float64        `db:"radius_meters"`
	IsActive     bool           `db:"is_active"`
	AuditFields
}
