package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// Actor identifies the authenticated caller as supplied by the identity
// collaborator. The core trusts these values as given and performs no
// authentication of its own.
type Actor struct {
	UserID   string
	CircleID string
	IsAdmin  bool
}
