package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	portssvc "github.com/CareTrackHQ/caretrack_app/internal/core/ports/services"
	"github.com/CareTrackHQ/caretrack_app/internal/dto"
	"github.com/CareTrackHQ/caretrack_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// timeTrackingHandler handles HTTP requests related to time entries.
type timeTrackingHandler struct {
	trackingService portssvc.TimeTrackingSvcFacade
}

func newTimeTrackingHandler(ts portssvc.TimeTrackingSvcFacade) *timeTrackingHandler {
	return &timeTrackingHandler{trackingService: ts}
}

// registerTimeEntryRoutes registers routes related to time entries. The clock
// mutation routes additionally go through the rate limiter so a misbehaving
// client cannot hammer the geofence check.
func registerTimeEntryRoutes(rg *gin.RouterGroup, trackingService portssvc.TimeTrackingSvcFacade, clockLimiter gin.HandlerFunc) {
	h := newTimeTrackingHandler(trackingService)

	entries := rg.Group("/time-entries")
	{
		entries.GET("", h.listEntries)
		entries.GET("/active", h.getActiveEntry)
		entries.GET("/all", h.listCircleEntries)
		entries.GET("/summary", h.getSummary)
		entries.POST("/clock-in", clockLimiter, h.clockIn)
		entries.POST("/clock-out", clockLimiter, h.clockOut)
		entries.POST("/override", h.createOverrideEntry)
		entries.PUT("/:entryID", h.updateEntry)
		entries.DELETE("/:entryID", h.deleteEntry)
	}
}

// parseTimeParam accepts either a plain date (2006-01-02) or RFC3339. Plain
// dates are interpreted at UTC midnight; callers that need an inclusive day
// end pass endOfDay to push the bound to 23:59:59.
func parseTimeParam(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected YYYY-MM-DD or RFC3339", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

// getActiveEntry godoc
// @Summary Get the caller's active time entry
// @Description Returns the caller's open time entry, or 204 when they are not clocked in
// @Tags time-entries
// @Produce json
// @Success 200 {object} dto.TimeEntryResponse
// @Success 204 "No active entry"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /time-entries/active [get]
func (h *timeTrackingHandler) getActiveEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.trackingService.GetActiveEntry(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}
	if entry == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryResponse(entry))
}

// listEntries godoc
// @Summary List the caller's time entries
// @Description Lists the caller's time entries whose clock-in falls within [start, end]
// @Tags time-entries
// @Produce json
// @Param start query string true "Range start (YYYY-MM-DD or RFC3339)"
// @Param end query string true "Range end (YYYY-MM-DD or RFC3339)"
// @Success 200 {object} dto.ListTimeEntriesResponse
// @Failure 400 {object} map[string]string "Invalid time range"
// @Security BearerAuth
// @Router /time-entries [get]
func (h *timeTrackingHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	start, err := parseTimeParam(c.Query("start"), false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start: " + err.Error()})
		return
	}
	end, err := parseTimeParam(c.Query("end"), true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end: " + err.Error()})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not be before start"})
		return
	}

	entries, err := h.trackingService.ListEntries(c.Request.Context(), actor, start, end)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListTimeEntriesResponse(entries))
}

// listCircleEntries godoc
// @Summary List all time entries in the circle
// @Description Lists every circle member's time entries, newest first (admin only)
// @Tags time-entries
// @Produce json
// @Param start query string false "Range start (YYYY-MM-DD or RFC3339)"
// @Param end query string false "Range end (YYYY-MM-DD or RFC3339)"
// @Param limit query int false "Page size (default 200)"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListTimeEntriesResponse
// @Failure 403 {object} map[string]string "Admin role required"
// @Security BearerAuth
// @Router /time-entries/all [get]
func (h *timeTrackingHandler) listCircleEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var start, end *time.Time
	if raw := c.Query("start"); raw != "" {
		t, err := parseTimeParam(raw, false)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start: " + err.Error()})
			return
		}
		start = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := parseTimeParam(raw, true)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end: " + err.Error()})
			return
		}
		end = &t
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.trackingService.ListCircleEntries(c.Request.Context(), actor, start, end, limit, offset)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListTimeEntriesResponse(entries))
}

// getSummary godoc
// @Summary Get a pay period summary
// @Description Summarizes the caller's completed entries for the pay period at the given offset (0 = current, -1 = previous)
// @Tags time-entries
// @Produce json
// @Param offset query int false "Pay period offset relative to today"
// @Success 200 {object} dto.PayPeriodSummaryResponse
// @Failure 400 {object} map[string]string "Invalid offset"
// @Security BearerAuth
// @Router /time-entries/summary [get]
func (h *timeTrackingHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		var err error
		offset, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be an integer"})
			return
		}
	}

	summary, err := h.trackingService.Summary(c.Request.Context(), actor, offset)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPayPeriodSummaryResponse(summary))
}

// clockIn godoc
// @Summary Clock in
// @Description Opens a time entry after verifying the caller is inside the location's geofence
// @Tags time-entries
// @Accept json
// @Produce json
// @Param request body dto.ClockInRequest true "Clock-in details"
// @Success 201 {object} dto.TimeEntryResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 403 {object} map[string]string "Outside the geofence"
// @Failure 409 {object} map[string]string "Already clocked in"
// @Security BearerAuth
// @Router /time-entries/clock-in [post]
func (h *timeTrackingHandler) clockIn(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ClockIn", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.trackingService.ClockIn(c.Request.Context(), actor, req)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	logger.Info("Clock-in recorded", slog.String("entry_id", entry.EntryID), slog.String("location_id", req.LocationID))
	c.JSON(http.StatusCreated, dto.ToTimeEntryResponse(entry))
}

// clockOut godoc
// @Summary Clock out
// @Description Closes the caller's active time entry and records its duration
// @Tags time-entries
// @Accept json
// @Produce json
// @Param request body dto.ClockOutRequest true "Clock-out details"
// @Success 200 {object} dto.TimeEntryResponse
// @Failure 404 {object} map[string]string "No active entry"
// @Security BearerAuth
// @Router /time-entries/clock-out [post]
func (h *timeTrackingHandler) clockOut(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ClockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ClockOut", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.trackingService.ClockOut(c.Request.Context(), actor, req)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	logger.Info("Clock-out recorded", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusOK, dto.ToTimeEntryResponse(entry))
}

// createOverrideEntry godoc
// @Summary Create an override time entry
// @Description Records a manual time entry on behalf of a circle member (admin only)
// @Tags time-entries
// @Accept json
// @Produce json
// @Param request body dto.CreateOverrideEntryRequest true "Override entry details"
// @Success 201 {object} dto.TimeEntryResponse
// @Failure 400 {object} map[string]string "Invalid input format or clock-out not after clock-in"
// @Failure 403 {object} map[string]string "Admin role required"
// @Security BearerAuth
// @Router /time-entries/override [post]
func (h *timeTrackingHandler) createOverrideEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateOverrideEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateOverrideEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.trackingService.CreateOverrideEntry(c.Request.Context(), actor, req)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	logger.Info("Override entry created", slog.String("entry_id", entry.EntryID), slog.String("target_user_id", req.UserID))
	c.JSON(http.StatusCreated, dto.ToTimeEntryResponse(entry))
}

// updateEntry godoc
// @Summary Update a time entry
// @Description Edits a time entry's fields; the edit is stamped as an admin override (admin only)
// @Tags time-entries
// @Accept json
// @Produce json
// @Param entryID path string true "Entry ID"
// @Param request body dto.UpdateTimeEntryRequest true "Fields to update"
// @Success 200 {object} dto.TimeEntryResponse
// @Failure 400 {object} map[string]string "Invalid input format or clock-out not after clock-in"
// @Failure 403 {object} map[string]string "Admin role required"
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /time-entries/{entryID} [put]
func (h *timeTrackingHandler) updateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	var req dto.UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.trackingService.UpdateEntry(c.Request.Context(), actor, entryID, req)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryResponse(entry))
}

// deleteEntry godoc
// @Summary Delete a time entry
// @Description Permanently removes a time entry from the circle (admin only)
// @Tags time-entries
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Admin role required"
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /time-entries/{entryID} [delete]
func (h *timeTrackingHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.trackingService.DeleteEntry(c.Request.Context(), actor, entryID); err != nil {
		respondServiceError(c, logger, err)
		return
	}

	logger.Info("Time entry deleted", slog.String("entry_id", entryID))
	c.Status(http.StatusNoContent)
}
