package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sahelimmo/lotissement_app/internal/apperrors"
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/core/services"
	"github.com/sahelimmo/lotissement_app/internal/dto"
)

// --- Mock SubdivisionRepository ---
type MockSubdivisionRepository struct {
	mock.Mock
}

var _ portsrepo.SubdivisionRepositoryWithTx = (*MockSubdivisionRepository)(nil)

func (m *MockSubdivisionRepository) FindSubdivisionByID(ctx context.Context, subdivisionID string) (*domain.Subdivision, error) {
	args := m.Called(ctx, subdivisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subdivision), args.Error(1)
}

func (m *MockSubdivisionRepository) ListSubdivisionsByAgency(ctx context.Context, agencyID string, limit int, offset int) ([]domain.Subdivision, error) {
	args := m.Called(ctx, agencyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subdivision), args.Error(1)
}

func (m *MockSubdivisionRepository) SaveSubdivision(ctx context.Context, subdivision domain.Subdivision) error {
	args := m.Called(ctx, subdivision)
	return args.Error(0)
}

func (m *MockSubdivisionRepository) UpdateSubdivision(ctx context.Context, subdivision domain.Subdivision) error {
	args := m.Called(ctx, subdivision)
	return args.Error(0)
}

func (m *MockSubdivisionRepository) FindBlockByID(ctx context.Context, blockID string) (*domain.Block, error) {
	args := m.Called(ctx, blockID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Block), args.Error(1)
}

func (m *MockSubdivisionRepository) ListBlocksBySubdivision(ctx context.Context, subdivisionID string) ([]domain.Block, error) {
	args := m.Called(ctx, subdivisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Block), args.Error(1)
}

func (m *MockSubdivisionRepository) SaveBlock(ctx context.Context, block domain.Block) error {
	args := m.Called(ctx, block)
	return args.Error(0)
}

func (m *MockSubdivisionRepository) UpdateBlock(ctx context.Context, block domain.Block) error {
	args := m.Called(ctx, block)
	return args.Error(0)
}

func (m *MockSubdivisionRepository) FindBlockByIDForUpdate(ctx context.Context, tx pgx.Tx, blockID string) (*domain.Block, error) {
	args := m.Called(ctx, tx, blockID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Block), args.Error(1)
}

func (m *MockSubdivisionRepository) CountUnitsInBlockInTx(ctx context.Context, tx pgx.Tx, blockID string) (int, error) {
	args := m.Called(ctx, tx, blockID)
	return args.Int(0), args.Error(1)
}

func (m *MockSubdivisionRepository) UpdateBlockInTx(ctx context.Context, tx pgx.Tx, block domain.Block) error {
	args := m.Called(ctx, tx, block)
	return args.Error(0)
}

func (m *MockSubdivisionRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockSubdivisionRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockSubdivisionRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Test Suite Setup ---
type UnitServiceTestSuite struct {
	suite.Suite
	mockUnitRepo        *MockUnitRepository
	mockSubdivisionRepo *MockSubdivisionRepository
	mockAgencySvc       *MockAgencyService
	service             portssvc.UnitSvcFacade
	agencyID            string
	userID              string
	subdivision         domain.Subdivision
	block               domain.Block
}

func (suite *UnitServiceTestSuite) SetupTest() {
	suite.mockUnitRepo = new(MockUnitRepository)
	suite.mockSubdivisionRepo = new(MockSubdivisionRepository)
	suite.mockAgencySvc = new(MockAgencyService)
	suite.service = services.NewUnitService(suite.mockUnitRepo, suite.mockSubdivisionRepo, suite.mockAgencySvc)

	suite.agencyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.subdivision = domain.Subdivision{
		SubdivisionID: uuid.NewString(),
		AgencyID:      suite.agencyID,
		Name:          "Hay Essalam",
	}
	maxUnits := 2
	suite.block = domain.Block{
		BlockID:       uuid.NewString(),
		SubdivisionID: suite.subdivision.SubdivisionID,
		Name:          "B1",
		MaxUnits:      &maxUnits,
	}
}

func (suite *UnitServiceTestSuite) createRequest(blockID *string) dto.CreateUnitRequest {
	return dto.CreateUnitRequest{
		SubdivisionID: suite.subdivision.SubdivisionID,
		BlockID:       blockID,
		Reference:     "LOT-42",
		Area:          decimal.NewFromInt(250),
		ListedPrice:   decimal.NewFromInt(800000),
	}
}

func (suite *UnitServiceTestSuite) TestCreateUnit_WithoutBlock() {
	ctx := context.Background()

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSubdivisionRepo.On("FindSubdivisionByID", ctx, suite.subdivision.SubdivisionID).Return(&suite.subdivision, nil).Once()
	suite.mockUnitRepo.On("SaveUnit", ctx, mock.AnythingOfType("domain.Unit")).Return(nil).Once()

	unit, err := suite.service.CreateUnit(ctx, suite.agencyID, suite.createRequest(nil), suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.UnitAvailable, unit.Status)
	suite.Equal("LOT-42", unit.Reference)
	// No block given, no capacity transaction needed.
	suite.mockUnitRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *UnitServiceTestSuite) TestCreateUnit_BlockWithRoom() {
	ctx := context.Background()

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSubdivisionRepo.On("FindSubdivisionByID", ctx, suite.subdivision.SubdivisionID).Return(&suite.subdivision, nil).Once()
	suite.mockUnitRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockUnitRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockSubdivisionRepo.On("FindBlockByIDForUpdate", ctx, mock.Anything, suite.block.BlockID).Return(&suite.block, nil).Once()
	suite.mockSubdivisionRepo.On("CountUnitsInBlockInTx", ctx, mock.Anything, suite.block.BlockID).Return(1, nil).Once()
	suite.mockUnitRepo.On("SaveUnitInTx", ctx, mock.Anything, mock.MatchedBy(func(u domain.Unit) bool {
		return u.BlockID != nil && *u.BlockID == suite.block.BlockID
	})).Return(nil).Once()
	suite.mockUnitRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	unit, err := suite.service.CreateUnit(ctx, suite.agencyID, suite.createRequest(&suite.block.BlockID), suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(unit.BlockID)
	// The insert shares the transaction that holds the block lock.
	suite.mockUnitRepo.AssertNotCalled(suite.T(), "SaveUnit", mock.Anything, mock.Anything)
	suite.mockUnitRepo.AssertExpectations(suite.T())
}

func (suite *UnitServiceTestSuite) TestCreateUnit_BlockFull() {
	ctx := context.Background()

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSubdivisionRepo.On("FindSubdivisionByID", ctx, suite.subdivision.SubdivisionID).Return(&suite.subdivision, nil).Once()
	suite.mockUnitRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockUnitRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockSubdivisionRepo.On("FindBlockByIDForUpdate", ctx, mock.Anything, suite.block.BlockID).Return(&suite.block, nil).Once()
	suite.mockSubdivisionRepo.On("CountUnitsInBlockInTx", ctx, mock.Anything, suite.block.BlockID).Return(2, nil).Once()

	_, err := suite.service.CreateUnit(ctx, suite.agencyID, suite.createRequest(&suite.block.BlockID), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockUnitRepo.AssertNotCalled(suite.T(), "SaveUnit", mock.Anything, mock.Anything)
	suite.mockUnitRepo.AssertNotCalled(suite.T(), "SaveUnitInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UnitServiceTestSuite) TestCreateUnit_BlockFromOtherSubdivision() {
	ctx := context.Background()
	foreignBlock := domain.Block{
		BlockID:       suite.block.BlockID,
		SubdivisionID: uuid.NewString(),
	}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSubdivisionRepo.On("FindSubdivisionByID", ctx, suite.subdivision.SubdivisionID).Return(&suite.subdivision, nil).Once()
	suite.mockUnitRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockUnitRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockSubdivisionRepo.On("FindBlockByIDForUpdate", ctx, mock.Anything, suite.block.BlockID).Return(&foreignBlock, nil).Once()

	_, err := suite.service.CreateUnit(ctx, suite.agencyID, suite.createRequest(&suite.block.BlockID), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UnitServiceTestSuite) TestCreateUnit_NonPositiveArea() {
	ctx := context.Background()
	req := suite.createRequest(nil)
	req.Area = decimal.Zero

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSubdivisionRepo.On("FindSubdivisionByID", ctx, suite.subdivision.SubdivisionID).Return(&suite.subdivision, nil).Once()

	_, err := suite.service.CreateUnit(ctx, suite.agencyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UnitServiceTestSuite) TestAssignUnitToBlock_UncappedBlock() {
	ctx := context.Background()
	unit := domain.Unit{
		UnitID:        uuid.NewString(),
		AgencyID:      suite.agencyID,
		SubdivisionID: suite.subdivision.SubdivisionID,
		Status:        domain.UnitAvailable,
	}
	uncapped := domain.Block{
		BlockID:       uuid.NewString(),
		SubdivisionID: suite.subdivision.SubdivisionID,
	}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockUnitRepo.On("FindUnitByID", ctx, unit.UnitID).Return(&unit, nil).Once()
	suite.mockUnitRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockUnitRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockSubdivisionRepo.On("FindBlockByIDForUpdate", ctx, mock.Anything, uncapped.BlockID).Return(&uncapped, nil).Once()
	suite.mockSubdivisionRepo.On("CountUnitsInBlockInTx", ctx, mock.Anything, uncapped.BlockID).Return(99, nil).Once()
	suite.mockUnitRepo.On("AssignUnitToBlockInTx", ctx, mock.Anything, unit.UnitID, &uncapped.BlockID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockUnitRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	err := suite.service.AssignUnitToBlock(ctx, suite.agencyID, unit.UnitID, &uncapped.BlockID, suite.userID)

	suite.Require().NoError(err)
	suite.mockUnitRepo.AssertExpectations(suite.T())
}

func (suite *UnitServiceTestSuite) TestAssignUnitToBlock_DetachSkipsCapacityCheck() {
	ctx := context.Background()
	unit := domain.Unit{
		UnitID:        uuid.NewString(),
		AgencyID:      suite.agencyID,
		SubdivisionID: suite.subdivision.SubdivisionID,
		BlockID:       &suite.block.BlockID,
	}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockUnitRepo.On("FindUnitByID", ctx, unit.UnitID).Return(&unit, nil).Once()
	suite.mockUnitRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockUnitRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockUnitRepo.On("AssignUnitToBlockInTx", ctx, mock.Anything, unit.UnitID, (*string)(nil), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockUnitRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	err := suite.service.AssignUnitToBlock(ctx, suite.agencyID, unit.UnitID, nil, suite.userID)

	suite.Require().NoError(err)
	suite.mockSubdivisionRepo.AssertNotCalled(suite.T(), "FindBlockByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UnitServiceTestSuite) TestUpdateUnit_SoldStatusLocked() {
	ctx := context.Background()
	unit := domain.Unit{
		UnitID:   uuid.NewString(),
		AgencyID: suite.agencyID,
		Status:   domain.UnitSold,
	}
	newStatus := domain.UnitAvailable

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockUnitRepo.On("FindUnitByID", ctx, unit.UnitID).Return(&unit, nil).Once()

	_, err := suite.service.UpdateUnit(ctx, suite.agencyID, unit.UnitID, dto.UpdateUnitRequest{Status: &newStatus}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateInvalid)
	suite.mockUnitRepo.AssertNotCalled(suite.T(), "UpdateUnit", mock.Anything, mock.Anything)
}

// --- Run Test Suite ---
func TestUnitService(t *testing.T) {
	suite.Run(t, new(UnitServiceTestSuite))
}
