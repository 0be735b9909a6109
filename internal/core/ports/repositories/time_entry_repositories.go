package repositories

import (
	"context"
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
)

// TimeEntryReader defines read operations for time entry data
type TimeEntryReader interface {
	// FindActiveEntryByUser retrieves the single entry with no clock-out for
	// the user, or apperrors.ErrNotFound when the user is not clocked in.
	FindActiveEntryByUser(ctx context.Context, userID string) (*domain.TimeEntry, error)

	// FindEntryByID retrieves one entry with its joined location.
	FindEntryByID(ctx context.Context, entryID string) (*domain.TimeEntry, error)

	// ListEntriesByUser retrieves a user's entries with clock-in inside
	// [start, end], newest first.
	ListEntriesByUser(ctx context.Context, userID string, start, end time.Time) ([]domain.TimeEntry, error)

	// ListEntriesByCircle retrieves entries for every user in the circle,
	// optionally range-filtered, newest first.
	ListEntriesByCircle(ctx context.Context, circleID string, start, end *time.Time, limit, offset int) ([]domain.TimeEntry, error)
}

// TimeEntryWriter defines write operations for time entry data
type TimeEntryWriter interface {
	// SaveEntry inserts a new entry. Inserting a second active entry for the
	// same user fails with apperrors.ErrAlreadyClockedIn; an entry whose
	// clock-out is not after its clock-in fails with apperrors.ErrInvalidRange.
	// Both are backed by store constraints, not client checks.
	SaveEntry(ctx context.Context, entry domain.TimeEntry) error

	// CloseEntry fills the clock-out fields of a still-active entry. It fails
	// with apperrors.ErrNotFound when the entry does not exist or is already
	// closed.
	CloseEntry(ctx context.Context, entry domain.TimeEntry) error

	// UpdateEntry rewrites an entry's mutable fields (timestamps, location,
	// notes, override audit, duration). Fails with apperrors.ErrNotFound when
	// the entry does not exist.
	UpdateEntry(ctx context.Context, entry domain.TimeEntry) error

	// DeleteEntry hard-deletes an entry; apperrors.ErrNotFound when absent.
	DeleteEntry(ctx context.Context, entryID string) error
}

// TimeEntryRepositoryFacade combines all time-entry repository interfaces.
type TimeEntryRepositoryFacade interface {
	TimeEntryReader
	TimeEntryWriter
}
