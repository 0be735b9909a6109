package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/apperrors"
	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
	portssvc "github.com/CareTrackHQ/caretrack_app/internal/core/ports/services"
	"github.com/CareTrackHQ/caretrack_app/internal/dto"
	"github.com/CareTrackHQ/caretrack_app/internal/handlers"
	"github.com/CareTrackHQ/caretrack_app/internal/middleware"
	"github.com/CareTrackHQ/caretrack_app/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TimeTrackingService ---
type MockTimeTrackingService struct {
	mock.Mock
}

func (m *MockTimeTrackingService) GetActiveEntry(ctx context.Context, actor domain.Actor) (*domain.TimeEntry, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeEntry), args.Error(1)
}
func (m *MockTimeTrackingService) ListEntries(ctx context.Context, actor domain.Actor, start, end time.Time) ([]domain.TimeEntry, error) {
	args := m.Called(ctx, actor, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeEntry), args.Error(1)
}
func (m *MockTimeTrackingService) ListCircleEntries(ctx context.Context, actor domain.Actor, start, end *time.Time, limit, offset int) ([]domain.TimeEntry, error) {
	args := m.Called(ctx, actor, start, end, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeEntry), args.Error(1)
}
func (m *MockTimeTrackingService) Summary(ctx context.Context, actor domain.Actor, periodOffset int) (*domain.PayPeriodSummary, error) {
	args := m.Called(ctx, actor, periodOffset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayPeriodSummary), args.Error(1)
}
func (m *MockTimeTrackingService) ClockIn(ctx context.Context, actor domain.Actor, req dto.ClockInRequest) (*domain.TimeEntry, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeEntry), args.Error(1)
}
func (m *MockTimeTrackingService) ClockOut(ctx context.Context, actor domain.Actor, req dto.ClockOutRequest) (*domain.TimeEntry, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeEntry), args.Error(1)
}
func (m *MockTimeTrackingService) CreateOverrideEntry(ctx context.Context, actor domain.Actor, req dto.CreateOverrideEntryRequest) (*domain.TimeEntry, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeEntry), args.Error(1)
}
func (m *MockTimeTrackingService) UpdateEntry(ctx context.Context, actor domain.Actor, entryID string, req dto.UpdateTimeEntryRequest) (*domain.TimeEntry, error) {
	args := m.Called(ctx, actor, entryID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeEntry), args.Error(1)
}
func (m *MockTimeTrackingService) DeleteEntry(ctx context.Context, actor domain.Actor, entryID string) error {
	args := m.Called(ctx, actor, entryID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.TimeTrackingSvcFacade = (*MockTimeTrackingService)(nil)

// --- Mock WorkLocationService ---
type MockWorkLocationService struct {
	mock.Mock
}

func (m *MockWorkLocationService) ListActiveLocations(ctx context.Context, actor domain.Actor) ([]domain.WorkLocation, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkLocation), args.Error(1)
}
func (m *MockWorkLocationService) SaveLocation(ctx context.Context, actor domain.Actor, req dto.SaveWorkLocationRequest) (*domain.WorkLocation, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkLocation), args.Error(1)
}
func (m *MockWorkLocationService) DeleteLocation(ctx context.Context, actor domain.Actor, locationID string) error {
	args := m.Called(ctx, actor, locationID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.WorkLocationSvcFacade = (*MockWorkLocationService)(nil)

// --- Test Suite ---
type TimeTrackingHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockTrackingService *MockTimeTrackingService
	mockLocationService *MockWorkLocationService
	jwtSecret           string

	userID   string
	circleID string
}

func (suite *TimeTrackingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()
	suite.circleID = uuid.NewString()

	suite.mockTrackingService = new(MockTimeTrackingService)
	suite.mockLocationService = new(MockWorkLocationService)

	cfg := &config.Config{
		JWTSecret:      suite.jwtSecret,
		ClockRateLimit: "100-M",
		IsProduction:   true, // skip swagger in tests
	}
	services := &portssvc.ServiceContainer{
		TimeTracking: suite.mockTrackingService,
		WorkLocation: suite.mockLocationService,
	}
	handlers.RegisterRoutes(suite.router, cfg, services)
}

// generateTestToken creates a signed JWT carrying the circle claims.
func (suite *TimeTrackingHandlerTestSuite) generateTestToken(userID string, isAdmin bool) string {
	claims := middleware.CareClaims{
		CircleID: suite.circleID,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "caretrack-test",
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *TimeTrackingHandlerTestSuite) doRequest(method, path, token string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reqBody = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	return rec
}

// --- Test Cases ---

func (suite *TimeTrackingHandlerTestSuite) TestMissingToken_Unauthorized() {
	rec := suite.doRequest(http.MethodGet, "/api/v1/time-entries/active", "", nil)
	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func (suite *TimeTrackingHandlerTestSuite) TestGetActiveEntry_None_NoContent() {
	token := suite.generateTestToken(suite.userID, false)

	suite.mockTrackingService.On("GetActiveEntry", mock.Anything, mock.AnythingOfType("domain.Actor")).
		Return(nil, nil).Once()

	rec := suite.doRequest(http.MethodGet, "/api/v1/time-entries/active", token, nil)
	suite.Equal(http.StatusNoContent, rec.Code)
}

func (suite *TimeTrackingHandlerTestSuite) TestClockIn_Created() {
	token := suite.generateTestToken(suite.userID, false)
	lat, lng := 40.7128, -74.0060

	entry := &domain.TimeEntry{
		EntryID:  uuid.NewString(),
		UserID:   suite.userID,
		CircleID: suite.circleID,
		ClockIn:  time.Now().UTC(),
	}
	suite.mockTrackingService.On("ClockIn", mock.Anything, mock.AnythingOfType("domain.Actor"), mock.AnythingOfType("dto.ClockInRequest")).
		Run(func(args mock.Arguments) {
			actor := args.Get(1).(domain.Actor)
			suite.Equal(suite.userID, actor.UserID)
			suite.Equal(suite.circleID, actor.CircleID)
		}).
		Return(entry, nil).Once()

	body := dto.ClockInRequest{LocationID: uuid.NewString(), Latitude: &lat, Longitude: &lng}
	rec := suite.doRequest(http.MethodPost, "/api/v1/time-entries/clock-in", token, body)

	suite.Equal(http.StatusCreated, rec.Code)
	var resp dto.TimeEntryResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal(entry.EntryID, resp.EntryID)
}

func (suite *TimeTrackingHandlerTestSuite) TestClockIn_MissingCoordinates_BadRequest() {
	token := suite.generateTestToken(suite.userID, false)

	body := map[string]any{"locationID": uuid.NewString()}
	rec := suite.doRequest(http.MethodPost, "/api/v1/time-entries/clock-in", token, body)

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.mockTrackingService.AssertNotCalled(suite.T(), "ClockIn", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TimeTrackingHandlerTestSuite) TestClockIn_OutOfGeofence_Forbidden() {
	token := suite.generateTestToken(suite.userID, false)
	lat, lng := 40.7128, -74.0060

	suite.mockTrackingService.On("ClockIn", mock.Anything, mock.AnythingOfType("domain.Actor"), mock.AnythingOfType("dto.ClockInRequest")).
		Return(nil, apperrors.ErrOutOfGeofence).Once()

	body := dto.ClockInRequest{LocationID: uuid.NewString(), Latitude: &lat, Longitude: &lng}
	rec := suite.doRequest(http.MethodPost, "/api/v1/time-entries/clock-in", token, body)

	suite.Equal(http.StatusForbidden, rec.Code)
	var resp map[string]string
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal("out_of_geofence", resp["code"])
}

func (suite *TimeTrackingHandlerTestSuite) TestClockIn_AlreadyClockedIn_Conflict() {
	token := suite.generateTestToken(suite.userID, false)
	lat, lng := 40.7128, -74.0060

	suite.mockTrackingService.On("ClockIn", mock.Anything, mock.AnythingOfType("domain.Actor"), mock.AnythingOfType("dto.ClockInRequest")).
		Return(nil, apperrors.ErrAlreadyClockedIn).Once()

	body := dto.ClockInRequest{LocationID: uuid.NewString(), Latitude: &lat, Longitude: &lng}
	rec := suite.doRequest(http.MethodPost, "/api/v1/time-entries/clock-in", token, body)

	suite.Equal(http.StatusConflict, rec.Code)
	var resp map[string]string
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal("already_clocked_in", resp["code"])
}

func (suite *TimeTrackingHandlerTestSuite) TestCreateOverride_InvalidRange_BadRequest() {
	token := suite.generateTestToken(suite.userID, true)

	suite.mockTrackingService.On("CreateOverrideEntry", mock.Anything, mock.AnythingOfType("domain.Actor"), mock.AnythingOfType("dto.CreateOverrideEntryRequest")).
		Return(nil, apperrors.ErrInvalidRange).Once()

	clockIn := time.Now().UTC().Add(-2 * time.Hour)
	body := dto.CreateOverrideEntryRequest{
		UserID:   uuid.NewString(),
		ClockIn:  clockIn,
		ClockOut: clockIn.Add(-time.Hour),
	}
	rec := suite.doRequest(http.MethodPost, "/api/v1/time-entries/override", token, body)

	suite.Equal(http.StatusBadRequest, rec.Code)
	var resp map[string]string
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal("invalid_range", resp["code"])
}

func (suite *TimeTrackingHandlerTestSuite) TestCreateOverride_FutureClockOut_BadRequest() {
	token := suite.generateTestToken(suite.userID, true)

	clockIn := time.Now().UTC().Add(-time.Hour)
	body := dto.CreateOverrideEntryRequest{
		UserID:   uuid.NewString(),
		ClockIn:  clockIn,
		ClockOut: time.Now().UTC().Add(3 * time.Hour),
	}
	rec := suite.doRequest(http.MethodPost, "/api/v1/time-entries/override", token, body)

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.mockTrackingService.AssertNotCalled(suite.T(), "CreateOverrideEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TimeTrackingHandlerTestSuite) TestDeleteEntry_NonAdmin_Forbidden() {
	token := suite.generateTestToken(suite.userID, false)
	entryID := uuid.NewString()

	suite.mockTrackingService.On("DeleteEntry", mock.Anything, mock.AnythingOfType("domain.Actor"), entryID).
		Return(apperrors.ErrForbidden).Once()

	rec := suite.doRequest(http.MethodDelete, "/api/v1/time-entries/"+entryID, token, nil)
	suite.Equal(http.StatusForbidden, rec.Code)
}

func (suite *TimeTrackingHandlerTestSuite) TestListEntries_MissingRange_BadRequest() {
	token := suite.generateTestToken(suite.userID, false)

	rec := suite.doRequest(http.MethodGet, "/api/v1/time-entries", token, nil)
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *TimeTrackingHandlerTestSuite) TestListEntries_DateRange_OK() {
	token := suite.generateTestToken(suite.userID, false)

	suite.mockTrackingService.On("ListEntries", mock.Anything, mock.AnythingOfType("domain.Actor"),
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			start := args.Get(2).(time.Time)
			end := args.Get(3).(time.Time)
			// Plain dates become midnight..23:59:59.
			suite.Equal(0, start.Hour())
			suite.Equal(23, end.Hour())
		}).
		Return([]domain.TimeEntry{}, nil).Once()

	rec := suite.doRequest(http.MethodGet, "/api/v1/time-entries?start=2024-03-03&end=2024-03-16", token, nil)
	suite.Equal(http.StatusOK, rec.Code)

	var resp dto.ListTimeEntriesResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Empty(resp.Entries)
}

func (suite *TimeTrackingHandlerTestSuite) TestSummary_OK() {
	token := suite.generateTestToken(suite.userID, false)

	summary := &domain.PayPeriodSummary{
		TotalHours:   decimal.RequireFromString("8.5"),
		DaysWorked:   1,
		EntriesCount: 1,
		PeriodStart:  "2024-03-03",
		PeriodEnd:    "2024-03-16",
	}
	suite.mockTrackingService.On("Summary", mock.Anything, mock.AnythingOfType("domain.Actor"), -1).
		Return(summary, nil).Once()

	rec := suite.doRequest(http.MethodGet, "/api/v1/time-entries/summary?offset=-1", token, nil)
	suite.Equal(http.StatusOK, rec.Code)

	var resp dto.PayPeriodSummaryResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal("2024-03-03", resp.PeriodStart)
	suite.True(resp.TotalHours.Equal(decimal.RequireFromString("8.5")))
}

func (suite *TimeTrackingHandlerTestSuite) TestSummary_BadOffset_BadRequest() {
	token := suite.generateTestToken(suite.userID, false)

	rec := suite.doRequest(http.MethodGet, "/api/v1/time-entries/summary?offset=abc", token, nil)
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.mockTrackingService.AssertNotCalled(suite.T(), "Summary", mock.Anything, mock.Anything, mock.Anything)
}

func TestTimeTrackingHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TimeTrackingHandlerTestSuite))
}
