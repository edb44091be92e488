package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sahelimmo/lotissement_app/internal/apperrors"
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/core/services"
)

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetOverdueInstallments(ctx context.Context, agencyID string, asOf time.Time) ([]domain.OverdueInstallment, error) {
	args := m.Called(ctx, agencyID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OverdueInstallment), args.Error(1)
}

func (m *MockReportingRepository) GetCollectionRateData(ctx context.Context, agencyID string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, agencyID, from, to)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockReportingRepository) GetSubdivisionOccupancy(ctx context.Context, agencyID string) ([]domain.SubdivisionOccupancy, error) {
	args := m.Called(ctx, agencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubdivisionOccupancy), args.Error(1)
}

// --- Test Suite Setup ---
type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockAgencySvc     *MockAgencyService
	service           portssvc.ReportingService
	agencyID          string
	userID            string
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockAgencySvc = new(MockAgencyService)
	suite.service = services.NewReportingService(suite.mockReportingRepo, suite.mockAgencySvc)
	suite.agencyID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *ReportingServiceTestSuite) TestCollectionRate_Computed() {
	ctx := context.Background()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockReportingRepo.On("GetCollectionRateData", ctx, suite.agencyID, from, to).
		Return(decimal.NewFromInt(10000), decimal.NewFromInt(7500), nil).Once()

	rate, err := suite.service.CollectionRate(ctx, suite.agencyID, from, to, suite.userID)

	suite.Require().NoError(err)
	suite.True(rate.DueAmount.Equal(decimal.NewFromInt(10000)))
	suite.True(rate.Collected.Equal(decimal.NewFromInt(7500)))
	suite.True(rate.Rate.Equal(decimal.NewFromFloat(0.75)))
}

func (suite *ReportingServiceTestSuite) TestCollectionRate_NothingDue() {
	ctx := context.Background()
	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockReportingRepo.On("GetCollectionRateData", ctx, suite.agencyID, from, to).
		Return(decimal.Zero, decimal.Zero, nil).Once()

	rate, err := suite.service.CollectionRate(ctx, suite.agencyID, from, to, suite.userID)

	suite.Require().NoError(err)
	suite.True(rate.Rate.IsZero())
}

func (suite *ReportingServiceTestSuite) TestOverdueInstallments_AuthorizationFail() {
	ctx := context.Background()
	asOf := time.Now()

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleReadOnly).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.OverdueInstallments(ctx, suite.agencyID, asOf, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockReportingRepo.AssertNotCalled(suite.T(), "GetOverdueInstallments", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReportingServiceTestSuite) TestSubdivisionOccupancy() {
	ctx := context.Background()
	occupancy := []domain.SubdivisionOccupancy{
		{SubdivisionID: uuid.NewString(), Name: "Hay Essalam", AvailableUnits: 12, SoldUnits: 8, SoldValue: decimal.NewFromInt(6400000)},
	}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockReportingRepo.On("GetSubdivisionOccupancy", ctx, suite.agencyID).Return(occupancy, nil).Once()

	result, err := suite.service.SubdivisionOccupancy(ctx, suite.agencyID, suite.userID)

	suite.Require().NoError(err)
	suite.Len(result, 1)
	suite.Equal(8, result[0].SoldUnits)
}

// --- Run Test Suite ---
func TestReportingService(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
