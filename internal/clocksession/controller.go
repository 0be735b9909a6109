// Package clocksession drives the caregiver-facing clock workflow: it polls
// GPS, derives the session state from the active entry and the selected
// geofenced location, and serializes clock actions against the backend.
package clocksession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/dto"
	"github.com/CareTrackHQ/caretrack_app/internal/utils/geo"
	"github.com/CareTrackHQ/caretrack_app/internal/utils/payperiod"
)

// State is the derived phase of the clock session.
type State string

const (
	// StateNoLocation means the circle has no active work locations.
	StateNoLocation State = "no_location"
	// StateIdle means no location has been selected yet.
	StateIdle State = "idle"
	// StateAwaitingGPS means a location is selected but there is no usable fix.
	StateAwaitingGPS State = "awaiting_gps"
	// StateWithinRange means the caller is inside the selected geofence.
	StateWithinRange State = "within_range"
	// StateOutOfRange means the caller is outside the selected geofence.
	StateOutOfRange State = "out_of_range"
	// StateClockedIn means an entry is open.
	StateClockedIn State = "clocked_in"
	// StateClockingOut means a clock-out request is in flight.
	StateClockingOut State = "clocking_out"
)

// GPSStatus reports the health of the position provider.
type GPSStatus string

const (
	GPSLoading     GPSStatus = "loading"
	GPSSuccess     GPSStatus = "success"
	GPSDenied      GPSStatus = "denied"
	GPSError       GPSStatus = "error"
	GPSUnavailable GPSStatus = "unavailable"
)

// ErrPermissionDenied is returned by a PositionProvider when the platform
// refuses location access. The controller maps it to GPSDenied rather than
// retrying at full tilt.
var ErrPermissionDenied = errors.New("location permission denied")

// ErrBusy is returned when a clock action is requested while another one is
// still in flight.
var ErrBusy = errors.New("clock action already in progress")

// Position is a GPS fix.
type Position struct {
	Latitude  float64
	Longitude float64
}

// PositionProvider yields the device's current position. Implementations
// should honor ctx cancellation; the controller bounds each read with a
// timeout.
type PositionProvider interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// API is the backend surface the controller drives. The HTTP client in
// internal/agent implements it.
type API interface {
	ActiveEntry(ctx context.Context) (*dto.TimeEntryResponse, error)
	ActiveLocations(ctx context.Context) ([]dto.WorkLocationResponse, error)
	ClockIn(ctx context.Context, req dto.ClockInRequest) (*dto.TimeEntryResponse, error)
	ClockOut(ctx context.Context, req dto.ClockOutRequest) (*dto.TimeEntryResponse, error)
	Summary(ctx context.Context, offset int) (*dto.PayPeriodSummaryResponse, error)
}

// Config carries the controller timings.
type Config struct {
	GPSPollInterval     time.Duration
	ElapsedTickInterval time.Duration
	GPSTimeout          time.Duration
}

// Snapshot is a point-in-time copy of the session, safe to read after the
// controller moves on.
type Snapshot struct {
	State              State
	GPSStatus          GPSStatus
	Position           *Position
	DistanceMeters     *float64
	WithinRange        bool
	SelectedLocationID string
	Locations          []dto.WorkLocationResponse
	ActiveEntry        *dto.TimeEntryResponse
	ElapsedMinutes     int
	Summary            *dto.PayPeriodSummaryResponse
	LastError          string
}

// Controller owns the clock session loop.
type Controller struct {
	api    API
	gps    PositionProvider
	cfg    Config
	logger *slog.Logger

	mu                 sync.Mutex
	locations          []dto.WorkLocationResponse
	selectedLocationID string
	activeEntry        *dto.TimeEntryResponse
	summary            *dto.PayPeriodSummaryResponse
	position           *Position
	gpsStatus          GPSStatus
	elapsedMinutes     int
	clockingOut        bool
	busy               bool
	lastError          string

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewController creates a stopped controller. Call Start to begin polling.
func NewController(api API, gps PositionProvider, cfg Config, logger *slog.Logger) *Controller {
	if cfg.GPSPollInterval <= 0 {
		cfg.GPSPollInterval = 30 * time.Second
	}
	if cfg.ElapsedTickInterval <= 0 {
		cfg.ElapsedTickInterval = time.Minute
	}
	if cfg.GPSTimeout <= 0 {
		cfg.GPSTimeout = 10 * time.Second
	}
	return &Controller{
		api:       api,
		gps:       gps,
		cfg:       cfg,
		logger:    logger,
		gpsStatus: GPSLoading,
		stopChan:  make(chan struct{}),
	}
}

// Start loads the initial session (locations, any open entry, the current
// pay period summary), takes a first GPS fix, and launches the poll loops.
func (ctl *Controller) Start(ctx context.Context) error {
	if err := ctl.refreshSession(ctx); err != nil {
		return fmt.Errorf("initial session load: %w", err)
	}
	ctl.refreshGPS(ctx)

	ctl.wg.Add(2)
	go ctl.gpsLoop(ctx)
	go ctl.elapsedLoop(ctx)

	snap := ctl.CurrentSnapshot()
	ctl.logger.Info("Clock session controller started",
		slog.String("state", string(snap.State)),
		slog.Int("locations", len(snap.Locations)),
	)
	return nil
}

// Stop halts the loops and waits for them to drain. Safe to call twice.
func (ctl *Controller) Stop() {
	ctl.stopOnce.Do(func() {
		close(ctl.stopChan)
	})
	ctl.wg.Wait()
	ctl.logger.Info("Clock session controller stopped")
}

// SelectLocation picks the geofence to clock in against. Selecting an
// unknown ID clears the selection.
func (ctl *Controller) SelectLocation(locationID string) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	ctl.selectedLocationID = ""
	for _, loc := range ctl.locations {
		if loc.LocationID == locationID {
			ctl.selectedLocationID = locationID
			break
		}
	}
}

// ClockIn submits a clock-in against the selected location using the latest
// GPS fix. Actions are serialized; a second call while one is in flight
// returns ErrBusy.
func (ctl *Controller) ClockIn(ctx context.Context, notes *string) error {
	ctl.mu.Lock()
	if ctl.busy {
		ctl.mu.Unlock()
		return ErrBusy
	}
	if ctl.activeEntry != nil {
		ctl.mu.Unlock()
		return errors.New("already clocked in")
	}
	if ctl.selectedLocationID == "" {
		ctl.mu.Unlock()
		return errors.New("no location selected")
	}
	if ctl.position == nil {
		ctl.mu.Unlock()
		return errors.New("no GPS fix available")
	}
	locationID := ctl.selectedLocationID
	pos := *ctl.position
	ctl.busy = true
	ctl.mu.Unlock()

	defer ctl.clearBusy()

	entry, err := ctl.api.ClockIn(ctx, dto.ClockInRequest{
		LocationID: locationID,
		Latitude:   &pos.Latitude,
		Longitude:  &pos.Longitude,
		Notes:      notes,
	})
	if err != nil {
		ctl.setLastError(err)
		return err
	}

	ctl.mu.Lock()
	ctl.activeEntry = entry
	ctl.elapsedMinutes = payperiod.ElapsedMinutes(entry.ClockIn, time.Now())
	ctl.lastError = ""
	ctl.mu.Unlock()

	ctl.refreshSummary(ctx)
	ctl.logger.Info("Clocked in", slog.String("entry_id", entry.EntryID))
	return nil
}

// ClockOut closes the open entry. The session shows StateClockingOut while
// the request is in flight.
func (ctl *Controller) ClockOut(ctx context.Context) error {
	ctl.mu.Lock()
	if ctl.busy {
		ctl.mu.Unlock()
		return ErrBusy
	}
	if ctl.activeEntry == nil {
		ctl.mu.Unlock()
		return errors.New("not clocked in")
	}
	var pos *Position
	if ctl.position != nil {
		p := *ctl.position
		pos = &p
	}
	ctl.busy = true
	ctl.clockingOut = true
	ctl.mu.Unlock()

	defer func() {
		ctl.mu.Lock()
		ctl.clockingOut = false
		ctl.mu.Unlock()
		ctl.clearBusy()
	}()

	req := dto.ClockOutRequest{}
	if pos != nil {
		req.Latitude = &pos.Latitude
		req.Longitude = &pos.Longitude
	}

	entry, err := ctl.api.ClockOut(ctx, req)
	if err != nil {
		ctl.setLastError(err)
		return err
	}

	ctl.mu.Lock()
	ctl.activeEntry = nil
	ctl.elapsedMinutes = 0
	ctl.lastError = ""
	ctl.mu.Unlock()

	ctl.refreshSummary(ctx)
	ctl.logger.Info("Clocked out", slog.String("entry_id", entry.EntryID))
	return nil
}

// CurrentSnapshot derives and returns the session state.
func (ctl *Controller) CurrentSnapshot() Snapshot {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	snap := Snapshot{
		GPSStatus:          ctl.gpsStatus,
		SelectedLocationID: ctl.selectedLocationID,
		Locations:          append([]dto.WorkLocationResponse(nil), ctl.locations...),
		ActiveEntry:        ctl.activeEntry,
		ElapsedMinutes:     ctl.elapsedMinutes,
		Summary:            ctl.summary,
		LastError:          ctl.lastError,
	}
	if ctl.position != nil {
		p := *ctl.position
		snap.Position = &p
	}

	if snap.Position != nil {
		if loc := ctl.selectedLocation(); loc != nil {
			res := geo.WithinGeofence(snap.Position.Latitude, snap.Position.Longitude,
				loc.Latitude, loc.Longitude, loc.RadiusMeters)
			d := res.Distance
			snap.DistanceMeters = &d
			snap.WithinRange = res.Within
		}
	}

	snap.State = ctl.deriveStateLocked(snap)
	return snap
}

// deriveStateLocked applies the state precedence: an in-flight clock-out and
// an open entry win over everything GPS related.
func (ctl *Controller) deriveStateLocked(snap Snapshot) State {
	switch {
	case ctl.clockingOut:
		return StateClockingOut
	case ctl.activeEntry != nil:
		return StateClockedIn
	case len(ctl.locations) == 0:
		return StateNoLocation
	case ctl.selectedLocationID == "":
		return StateIdle
	case ctl.gpsStatus != GPSSuccess || snap.Position == nil:
		return StateAwaitingGPS
	case snap.WithinRange:
		return StateWithinRange
	default:
		return StateOutOfRange
	}
}

func (ctl *Controller) selectedLocation() *dto.WorkLocationResponse {
	for i := range ctl.locations {
		if ctl.locations[i].LocationID == ctl.selectedLocationID {
			return &ctl.locations[i]
		}
	}
	return nil
}

func (ctl *Controller) gpsLoop(ctx context.Context) {
	defer ctl.wg.Done()
	ticker := time.NewTicker(ctl.cfg.GPSPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctl.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			ctl.refreshGPS(ctx)
		}
	}
}

func (ctl *Controller) elapsedLoop(ctx context.Context) {
	defer ctl.wg.Done()
	ticker := time.NewTicker(ctl.cfg.ElapsedTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctl.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			ctl.mu.Lock()
			if ctl.activeEntry != nil {
				ctl.elapsedMinutes = payperiod.ElapsedMinutes(ctl.activeEntry.ClockIn, time.Now())
			}
			ctl.mu.Unlock()
		}
	}
}

// refreshGPS takes one bounded position read and folds the result into the
// session.
func (ctl *Controller) refreshGPS(ctx context.Context) {
	readCtx, cancel := context.WithTimeout(ctx, ctl.cfg.GPSTimeout)
	defer cancel()

	pos, err := ctl.gps.CurrentPosition(readCtx)

	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	switch {
	case err == nil:
		ctl.position = &pos
		ctl.gpsStatus = GPSSuccess
	case errors.Is(err, ErrPermissionDenied):
		ctl.position = nil
		ctl.gpsStatus = GPSDenied
	case errors.Is(err, context.DeadlineExceeded):
		ctl.gpsStatus = GPSUnavailable
	default:
		ctl.gpsStatus = GPSError
		ctl.logger.Warn("GPS read failed", slog.String("error", err.Error()))
	}
}

// refreshSession reloads locations, the open entry, and the current summary.
func (ctl *Controller) refreshSession(ctx context.Context) error {
	locations, err := ctl.api.ActiveLocations(ctx)
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}

	entry, err := ctl.api.ActiveEntry(ctx)
	if err != nil {
		return fmt.Errorf("load active entry: %w", err)
	}

	ctl.mu.Lock()
	ctl.locations = locations
	ctl.activeEntry = entry
	if entry != nil {
		ctl.elapsedMinutes = payperiod.ElapsedMinutes(entry.ClockIn, time.Now())
		if entry.LocationID != nil {
			ctl.selectedLocationID = *entry.LocationID
		}
	} else if ctl.selectedLocationID == "" && len(locations) > 0 {
		// Default to the first location until the user picks another.
		ctl.selectedLocationID = locations[0].LocationID
	}
	ctl.mu.Unlock()

	ctl.refreshSummary(ctx)
	return nil
}

// refreshSummary is best effort; a summary fetch failure never blocks a
// completed clock action.
func (ctl *Controller) refreshSummary(ctx context.Context) {
	summary, err := ctl.api.Summary(ctx, 0)
	if err != nil {
		ctl.logger.Warn("Summary refresh failed", slog.String("error", err.Error()))
		return
	}
	ctl.mu.Lock()
	ctl.summary = summary
	ctl.mu.Unlock()
}

func (ctl *Controller) clearBusy() {
	ctl.mu.Lock()
	ctl.busy = false
	ctl.mu.Unlock()
}

func (ctl *Controller) setLastError(err error) {
	ctl.mu.Lock()
	ctl.lastError = err.Error()
	ctl.mu.Unlock()
}
