package clocksession_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/clocksession"
	"github.com/CareTrackHQ/caretrack_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory backend for controller tests.
type fakeAPI struct {
	mu           sync.Mutex
	locations    []dto.WorkLocationResponse
	activeEntry  *dto.TimeEntryResponse
	clockInErr   error
	clockInGate  chan struct{} // when set, ClockIn blocks until closed
	summaryCalls int
}

func (f *fakeAPI) ActiveEntry(ctx context.Context) (*dto.TimeEntryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeEntry, nil
}

func (f *fakeAPI) ActiveLocations(ctx context.Context) ([]dto.WorkLocationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locations, nil
}

func (f *fakeAPI) ClockIn(ctx context.Context, req dto.ClockInRequest) (*dto.TimeEntryResponse, error) {
	f.mu.Lock()
	gate := f.clockInGate
	clockInErr := f.clockInErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if clockInErr != nil {
		return nil, clockInErr
	}

	entry := &dto.TimeEntryResponse{
		EntryID:    uuid.NewString(),
		UserID:     uuid.NewString(),
		LocationID: &req.LocationID,
		ClockIn:    time.Now().UTC(),
	}
	f.mu.Lock()
	f.activeEntry = entry
	f.mu.Unlock()
	return entry, nil
}

func (f *fakeAPI) ClockOut(ctx context.Context, req dto.ClockOutRequest) (*dto.TimeEntryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activeEntry == nil {
		return nil, errors.New("no active entry")
	}
	entry := *f.activeEntry
	now := time.Now().UTC()
	entry.ClockOut = &now
	f.activeEntry = nil
	return &entry, nil
}

func (f *fakeAPI) Summary(ctx context.Context, offset int) (*dto.PayPeriodSummaryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls++
	return &dto.PayPeriodSummaryResponse{
		TotalHours:  decimal.RequireFromString("8.5"),
		PeriodStart: "2024-03-03",
		PeriodEnd:   "2024-03-16",
	}, nil
}

func (f *fakeAPI) summaryCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaryCalls
}

// fakeGPS returns a scripted position.
type fakeGPS struct {
	mu  sync.Mutex
	pos clocksession.Position
	err error
}

func (f *fakeGPS) CurrentPosition(ctx context.Context) (clocksession.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos, f.err
}

func (f *fakeGPS) set(pos clocksession.Position, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = pos
	f.err = err
}

func testLocation() dto.WorkLocationResponse {
	return dto.WorkLocationResponse{
		LocationID:   uuid.NewString(),
		Name:         "Mom's House",
		Latitude:     40.7128,
		Longitude:    -74.0060,
		RadiusMeters: 100,
		IsActive:     true,
	}
}

// slowConfig keeps the tickers out of the way so tests drive transitions
// explicitly.
func slowConfig() clocksession.Config {
	return clocksession.Config{
		GPSPollInterval:     time.Hour,
		ElapsedTickInterval: time.Hour,
		GPSTimeout:          time.Second,
	}
}

func newTestController(t *testing.T, api *fakeAPI, gps *fakeGPS) *clocksession.Controller {
	t.Helper()
	ctl := clocksession.NewController(api, gps, slowConfig(), slog.Default())
	require.NoError(t, ctl.Start(context.Background()))
	t.Cleanup(ctl.Stop)
	return ctl
}

func TestController_NoLocationsState(t *testing.T) {
	api := &fakeAPI{}
	gps := &fakeGPS{pos: clocksession.Position{Latitude: 40.7128, Longitude: -74.0060}}

	ctl := newTestController(t, api, gps)

	snap := ctl.CurrentSnapshot()
	assert.Equal(t, clocksession.StateNoLocation, snap.State)
}

func TestController_WithinRange(t *testing.T) {
	loc := testLocation()
	api := &fakeAPI{locations: []dto.WorkLocationResponse{loc}}
	gps := &fakeGPS{pos: clocksession.Position{Latitude: loc.Latitude, Longitude: loc.Longitude}}

	ctl := newTestController(t, api, gps)

	snap := ctl.CurrentSnapshot()
	// A single location is selected automatically.
	assert.Equal(t, loc.LocationID, snap.SelectedLocationID)
	assert.Equal(t, clocksession.StateWithinRange, snap.State)
	require.NotNil(t, snap.DistanceMeters)
	assert.Equal(t, 0.0, *snap.DistanceMeters)
}

func TestController_DefaultsToFirstLocation(t *testing.T) {
	first := testLocation()
	second := testLocation()
	second.Name = "Day Program"
	api := &fakeAPI{locations: []dto.WorkLocationResponse{first, second}}
	gps := &fakeGPS{pos: clocksession.Position{Latitude: first.Latitude, Longitude: first.Longitude}}

	ctl := newTestController(t, api, gps)

	// With several locations the first is picked so clocking in works
	// without an explicit selection.
	snap := ctl.CurrentSnapshot()
	assert.Equal(t, first.LocationID, snap.SelectedLocationID)
	assert.Equal(t, clocksession.StateWithinRange, snap.State)
	require.NoError(t, ctl.ClockIn(context.Background(), nil))
	assert.Equal(t, clocksession.StateClockedIn, ctl.CurrentSnapshot().State)
}

func TestController_KeepsExplicitSelectionAcrossClockCycle(t *testing.T) {
	first := testLocation()
	second := testLocation()
	second.Name = "Day Program"
	api := &fakeAPI{locations: []dto.WorkLocationResponse{first, second}}
	gps := &fakeGPS{pos: clocksession.Position{Latitude: second.Latitude, Longitude: second.Longitude}}

	ctl := newTestController(t, api, gps)
	ctl.SelectLocation(second.LocationID)

	require.NoError(t, ctl.ClockIn(context.Background(), nil))
	snap := ctl.CurrentSnapshot()
	require.NotNil(t, snap.ActiveEntry)
	require.NotNil(t, snap.ActiveEntry.LocationID)
	assert.Equal(t, second.LocationID, *snap.ActiveEntry.LocationID)

	require.NoError(t, ctl.ClockOut(context.Background()))
	assert.Equal(t, second.LocationID, ctl.CurrentSnapshot().SelectedLocationID)
}

func TestController_OutOfRange(t *testing.T) {
	loc := testLocation()
	api := &fakeAPI{locations: []dto.WorkLocationResponse{loc}}
	// Roughly 250m north of the site.
	gps := &fakeGPS{pos: clocksession.Position{Latitude: loc.Latitude + 0.00225, Longitude: loc.Longitude}}

	ctl := newTestController(t, api, gps)

	snap := ctl.CurrentSnapshot()
	assert.Equal(t, clocksession.StateOutOfRange, snap.State)
	require.NotNil(t, snap.DistanceMeters)
	assert.Greater(t, *snap.DistanceMeters, loc.RadiusMeters)
}

func TestController_GPSDenied_AwaitingGPS(t *testing.T) {
	loc := testLocation()
	api := &fakeAPI{locations: []dto.WorkLocationResponse{loc}}
	gps := &fakeGPS{err: clocksession.ErrPermissionDenied}

	ctl := newTestController(t, api, gps)

	snap := ctl.CurrentSnapshot()
	assert.Equal(t, clocksession.StateAwaitingGPS, snap.State)
	assert.Equal(t, clocksession.GPSDenied, snap.GPSStatus)
}

func TestController_ClockInAndOutCycle(t *testing.T) {
	loc := testLocation()
	api := &fakeAPI{locations: []dto.WorkLocationResponse{loc}}
	gps := &fakeGPS{pos: clocksession.Position{Latitude: loc.Latitude, Longitude: loc.Longitude}}

	ctl := newTestController(t, api, gps)
	summaryCallsAfterStart := api.summaryCallCount()

	require.NoError(t, ctl.ClockIn(context.Background(), nil))

	snap := ctl.CurrentSnapshot()
	assert.Equal(t, clocksession.StateClockedIn, snap.State)
	require.NotNil(t, snap.ActiveEntry)

	// A second clock-in on an open entry is refused locally.
	err := ctl.ClockIn(context.Background(), nil)
	assert.Error(t, err)

	require.NoError(t, ctl.ClockOut(context.Background()))

	snap = ctl.CurrentSnapshot()
	assert.Equal(t, clocksession.StateWithinRange, snap.State)
	assert.Nil(t, snap.ActiveEntry)
	assert.Equal(t, 0, snap.ElapsedMinutes)
	// Both actions refreshed the pay period summary.
	assert.Equal(t, summaryCallsAfterStart+2, api.summaryCallCount())
}

func TestController_ResumesOpenEntryOnStart(t *testing.T) {
	loc := testLocation()
	clockIn := time.Now().UTC().Add(-125 * time.Minute)
	api := &fakeAPI{
		locations: []dto.WorkLocationResponse{loc},
		activeEntry: &dto.TimeEntryResponse{
			EntryID:    uuid.NewString(),
			LocationID: &loc.LocationID,
			ClockIn:    clockIn,
		},
	}
	gps := &fakeGPS{pos: clocksession.Position{Latitude: loc.Latitude, Longitude: loc.Longitude}}

	ctl := newTestController(t, api, gps)

	snap := ctl.CurrentSnapshot()
	assert.Equal(t, clocksession.StateClockedIn, snap.State)
	assert.Equal(t, loc.LocationID, snap.SelectedLocationID)
	assert.Equal(t, 125, snap.ElapsedMinutes)
}

func TestController_SerializesActions(t *testing.T) {
	loc := testLocation()
	gate := make(chan struct{})
	api := &fakeAPI{locations: []dto.WorkLocationResponse{loc}, clockInGate: gate}
	gps := &fakeGPS{pos: clocksession.Position{Latitude: loc.Latitude, Longitude: loc.Longitude}}

	ctl := newTestController(t, api, gps)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- ctl.ClockIn(context.Background(), nil)
	}()
	<-started
	time.Sleep(50 * time.Millisecond) // let the goroutine take the busy slot

	err := ctl.ClockOut(context.Background())
	assert.ErrorIs(t, err, clocksession.ErrBusy)

	close(gate)
	require.NoError(t, <-done)
}

func TestController_GPSRecoversAfterError(t *testing.T) {
	loc := testLocation()
	api := &fakeAPI{locations: []dto.WorkLocationResponse{loc}}
	gps := &fakeGPS{err: errors.New("no fix")}

	ctl := clocksession.NewController(api, gps, clocksession.Config{
		GPSPollInterval:     20 * time.Millisecond,
		ElapsedTickInterval: time.Hour,
		GPSTimeout:          time.Second,
	}, slog.Default())
	require.NoError(t, ctl.Start(context.Background()))
	defer ctl.Stop()

	assert.Equal(t, clocksession.GPSError, ctl.CurrentSnapshot().GPSStatus)

	gps.set(clocksession.Position{Latitude: loc.Latitude, Longitude: loc.Longitude}, nil)

	require.Eventually(t, func() bool {
		return ctl.CurrentSnapshot().GPSStatus == clocksession.GPSSuccess
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, clocksession.StateWithinRange, ctl.CurrentSnapshot().State)
}
