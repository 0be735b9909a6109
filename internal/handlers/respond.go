package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/CareTrackHQ/caretrack_app/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service error taxonomy onto HTTP responses.
// Unknown errors are logged and collapsed to a generic 500 so transient store
// failures never leak internals; the caller's state stays intact for a retry.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrAlreadyClockedIn):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "already_clocked_in"})
	case errors.Is(err, apperrors.ErrOutOfGeofence):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "out_of_geofence"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "forbidden"})
	case errors.Is(err, apperrors.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_range"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "not_found"})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "duplicate"})
	default:
		logger.Error("Unhandled service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
