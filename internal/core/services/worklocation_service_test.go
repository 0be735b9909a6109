package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/CareTrackHQ/caretrack_app/internal/apperrors"
	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
	portssvc "github.com/CareTrackHQ/caretrack_app/internal/core/ports/services"
	"github.com/CareTrackHQ/caretrack_app/internal/core/services"
	"github.com/CareTrackHQ/caretrack_app/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type WorkLocationServiceTestSuite struct {
	suite.Suite
	mockLocationRepo *MockWorkLocationRepository
	service          portssvc.WorkLocationSvcFacade

	circleID  string
	caregiver domain.Actor
	admin     domain.Actor
}

func (suite *WorkLocationServiceTestSuite) SetupTest() {
	suite.mockLocationRepo = new(MockWorkLocationRepository)
	suite.service = services.NewWorkLocationService(suite.mockLocationRepo)

	suite.circleID = uuid.NewString()
	suite.caregiver = domain.Actor{UserID: uuid.NewString(), CircleID: suite.circleID}
	suite.admin = domain.Actor{UserID: uuid.NewString(), CircleID: suite.circleID, IsAdmin: true}
}

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func (suite *WorkLocationServiceTestSuite) validRequest() dto.SaveWorkLocationRequest {
	return dto.SaveWorkLocationRequest{
		Name:         "Mom's House",
		Address:      strPtr("123 Maple St"),
		Latitude:     floatPtr(40.7128),
		Longitude:    floatPtr(-74.0060),
		RadiusMeters: floatPtr(100),
	}
}

func (suite *WorkLocationServiceTestSuite) TestSaveLocation_Create() {
	ctx := context.Background()

	var saved domain.WorkLocation
	suite.mockLocationRepo.On("SaveLocation", ctx, mock.AnythingOfType("domain.WorkLocation")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.WorkLocation)
		}).
		Return(nil).Once()

	location, err := suite.service.SaveLocation(ctx, suite.admin, suite.validRequest())

	suite.Require().NoError(err)
	suite.Require().NotNil(location)
	suite.NotEmpty(location.LocationID)
	suite.Equal(suite.circleID, saved.CircleID)
	suite.True(saved.IsActive)
	suite.Equal(100.0, saved.RadiusMeters)
	suite.Equal(suite.admin.UserID, saved.CreatedBy)
	suite.mockLocationRepo.AssertNotCalled(suite.T(), "FindLocationByID", mock.Anything, mock.Anything)
}

func (suite *WorkLocationServiceTestSuite) TestSaveLocation_Update() {
	ctx := context.Background()

	existing := domain.WorkLocation{
		LocationID:   uuid.NewString(),
		CircleID:     suite.circleID,
		Name:         "Old Name",
		Latitude:     40.7128,
		Longitude:    -74.0060,
		RadiusMeters: 50,
		IsActive:     true,
	}
	suite.mockLocationRepo.On("FindLocationByID", ctx, existing.LocationID).
		Return(&existing, nil).Once()

	var saved domain.WorkLocation
	suite.mockLocationRepo.On("SaveLocation", ctx, mock.AnythingOfType("domain.WorkLocation")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.WorkLocation)
		}).
		Return(nil).Once()

	req := suite.validRequest()
	req.LocationID = existing.LocationID
	req.RadiusMeters = floatPtr(150)
	req.IsActive = boolPtr(false)

	location, err := suite.service.SaveLocation(ctx, suite.admin, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(location)
	suite.Equal(existing.LocationID, saved.LocationID)
	suite.Equal("Mom's House", saved.Name)
	suite.Equal(150.0, saved.RadiusMeters)
	suite.False(saved.IsActive)
	suite.Equal(suite.admin.UserID, saved.LastUpdatedBy)
}

func (suite *WorkLocationServiceTestSuite) TestSaveLocation_NonAdmin_Forbidden() {
	ctx := context.Background()

	location, err := suite.service.SaveLocation(ctx, suite.caregiver, suite.validRequest())

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrForbidden))
	suite.Nil(location)
	suite.mockLocationRepo.AssertNotCalled(suite.T(), "SaveLocation", mock.Anything, mock.Anything)
}

func (suite *WorkLocationServiceTestSuite) TestSaveLocation_NonPositiveRadius_Rejected() {
	ctx := context.Background()

	req := suite.validRequest()
	req.RadiusMeters = floatPtr(0)

	location, err := suite.service.SaveLocation(ctx, suite.admin, req)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Nil(location)
}

func (suite *WorkLocationServiceTestSuite) TestSaveLocation_ForeignCircle_NotFound() {
	ctx := context.Background()

	existing := domain.WorkLocation{
		LocationID:   uuid.NewString(),
		CircleID:     uuid.NewString(),
		Name:         "Elsewhere",
		RadiusMeters: 50,
	}
	suite.mockLocationRepo.On("FindLocationByID", ctx, existing.LocationID).
		Return(&existing, nil).Once()

	req := suite.validRequest()
	req.LocationID = existing.LocationID

	location, err := suite.service.SaveLocation(ctx, suite.admin, req)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrNotFound))
	suite.Nil(location)
}

func (suite *WorkLocationServiceTestSuite) TestListActiveLocations_EmptyIsNotAnError() {
	ctx := context.Background()

	suite.mockLocationRepo.On("ListActiveLocationsByCircle", ctx, suite.circleID).
		Return([]domain.WorkLocation{}, nil).Once()

	locations, err := suite.service.ListActiveLocations(ctx, suite.caregiver)

	suite.Require().NoError(err)
	suite.NotNil(locations)
	suite.Empty(locations)
}

func (suite *WorkLocationServiceTestSuite) TestDeleteLocation_Success() {
	ctx := context.Background()

	existing := domain.WorkLocation{
		LocationID: uuid.NewString(),
		CircleID:   suite.circleID,
		Name:       "Mom's House",
	}
	suite.mockLocationRepo.On("FindLocationByID", ctx, existing.LocationID).
		Return(&existing, nil).Once()
	suite.mockLocationRepo.On("DeleteLocation", ctx, existing.LocationID).
		Return(nil).Once()

	err := suite.service.DeleteLocation(ctx, suite.admin, existing.LocationID)

	suite.Require().NoError(err)
	suite.mockLocationRepo.AssertExpectations(suite.T())
}

func (suite *WorkLocationServiceTestSuite) TestDeleteLocation_NonAdmin_Forbidden() {
	ctx := context.Background()

	err := suite.service.DeleteLocation(ctx, suite.caregiver, uuid.NewString())

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrForbidden))
	suite.mockLocationRepo.AssertNotCalled(suite.T(), "DeleteLocation", mock.Anything, mock.Anything)
}

func TestWorkLocationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkLocationServiceTestSuite))
}
