package domain

// WorkLocation is a named geofenced point belonging to a care circle.
// Locations are referenced, never mutated, by time entries; a deactivated
// location stops appearing in clock-in choices but historical entries keep
// pointing at it.
type WorkLocation struct {
	LocationID   string  `json:"locationID"`
	CircleID     string  `json:"circleID"`
	Name         string  `json:"name"`
	Address      *string `json:"address,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radiusMeters"`
	IsActive     bool    `json:"isActive"`
	AuditFields
}
