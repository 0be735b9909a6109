package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrAlreadyClockedIn indicates a clock-in was attempted while the user already
// has an open time entry.
var ErrAlreadyClockedIn = errors.New("an active time entry already exists")

// ErrOutOfGeofence indicates a non-admin clock-in was attempted from outside
// the selected location's radius.
var ErrOutOfGeofence = errors.New("outside the work location geofence")

// ErrInvalidRange indicates a time entry whose clock-out would not be strictly
// after its clock-in.
var ErrInvalidRange = errors.New("clock-out must be after clock-in")

// ErrForbidden indicates the caller lacks the admin role the operation requires.
var ErrForbidden = errors.New("operation requires admin role")
