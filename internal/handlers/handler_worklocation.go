package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/CareTrackHQ/caretrack_app/internal/core/ports/services"
	"github.com/CareTrackHQ/caretrack_app/internal/dto"
	"github.com/CareTrackHQ/caretrack_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// workLocationHandler handles HTTP requests related to geofenced work locations.
type workLocationHandler struct {
	locationService portssvc.WorkLocationSvcFacade
}

func newWorkLocationHandler(ls portssvc.WorkLocationSvcFacade) *workLocationHandler {
	return &workLocationHandler{locationService: ls}
}

// registerWorkLocationRoutes registers routes related to work locations.
func registerWorkLocationRoutes(rg *gin.RouterGroup, locationService portssvc.WorkLocationSvcFacade) {
	h := newWorkLocationHandler(locationService)

	locations := rg.Group("/locations")
	{
		locations.GET("", h.listLocations)
		locations.POST("", h.createLocation)
		locations.PUT("/:locationID", h.updateLocation)
		locations.DELETE("/:locationID", h.deleteLocation)
	}
}

// listLocations godoc
// @Summary List active work locations
// @Description Lists the active geofenced work locations of the caller's care circle
// @Tags locations
// @Produce json
// @Success 200 {object} dto.ListWorkLocationsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /locations [get]
func (h *workLocationHandler) listLocations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	locations, err := h.locationService.ListActiveLocations(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListWorkLocationsResponse(locations))
}

// createLocation godoc
// @Summary Create a work location
// @Description Creates a geofenced work location in the caller's care circle (admin only)
// @Tags locations
// @Accept json
// @Produce json
// @Param location body dto.SaveWorkLocationRequest true "Location details"
// @Success 201 {object} dto.WorkLocationResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 403 {object} map[string]string "Admin role required"
// @Security BearerAuth
// @Router /locations [post]
func (h *workLocationHandler) createLocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SaveWorkLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateLocation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	req.LocationID = ""
	location, err := h.locationService.SaveLocation(c.Request.Context(), actor, req)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	logger.Info("Work location created", slog.String("location_id", location.LocationID), slog.String("name", location.Name))
	c.JSON(http.StatusCreated, dto.ToWorkLocationResponse(location))
}

// updateLocation godoc
// @Summary Update a work location
// @Description Updates an existing work location in the caller's care circle (admin only)
// @Tags locations
// @Accept json
// @Produce json
// @Param locationID path string true "Location ID"
// @Param location body dto.SaveWorkLocationRequest true "Location details"
// @Success 200 {object} dto.WorkLocationResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 403 {object} map[string]string "Admin role required"
// @Failure 404 {object} map[string]string "Location not found"
// @Security BearerAuth
// @Router /locations/{locationID} [put]
func (h *workLocationHandler) updateLocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	locationID := c.Param("locationID")

	var req dto.SaveWorkLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateLocation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	req.LocationID = locationID
	location, err := h.locationService.SaveLocation(c.Request.Context(), actor, req)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkLocationResponse(location))
}

// deleteLocation godoc
// @Summary Delete a work location
// @Description Deletes a work location; existing time entries keep their recorded coordinates (admin only)
// @Tags locations
// @Produce json
// @Param locationID path string true "Location ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Admin role required"
// @Failure 404 {object} map[string]string "Location not found"
// @Security BearerAuth
// @Router /locations/{locationID} [delete]
func (h *workLocationHandler) deleteLocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	locationID := c.Param("locationID")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.locationService.DeleteLocation(c.Request.Context(), actor, locationID); err != nil {
		respondServiceError(c, logger, err)
		return
	}

	logger.Info("Work location deleted", slog.String("location_id", locationID))
	c.Status(http.StatusNoContent)
}
