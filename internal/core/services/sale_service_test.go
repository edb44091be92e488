package services_test

import (
	"context"
	"testing"
	"time"

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

// --- Mock SaleRepository ---
type MockSaleRepository struct {
	mock.Mock
}

// Ensure MockSaleRepository implements portsrepo.SaleRepositoryWithTx
var _ portsrepo.SaleRepositoryWithTx = (*MockSaleRepository)(nil)

func (m *MockSaleRepository) FindSaleByID(ctx context.Context, saleID string) (*domain.Sale, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) ListSalesByAgency(ctx context.Context, agencyID string, limit int, nextToken *string, status *domain.SaleStatus) ([]domain.Sale, *string, error) {
	args := m.Called(ctx, agencyID, limit, nextToken, status)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Sale), returnedNextToken, args.Error(2)
}

func (m *MockSaleRepository) ListSalesByBuyer(ctx context.Context, buyerID string) ([]domain.Sale, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindActiveSaleByUnitID(ctx context.Context, unitID string) (*domain.Sale, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) SaveSaleWithSchedule(ctx context.Context, sale domain.Sale, installments []domain.Installment) error {
	args := m.Called(ctx, sale, installments)
	return args.Error(0)
}

func (m *MockSaleRepository) CancelSaleAndReleaseUnit(ctx context.Context, saleID string, unitID string, userID string, now time.Time) error {
	args := m.Called(ctx, saleID, unitID, userID, now)
	return args.Error(0)
}

func (m *MockSaleRepository) FindSaleByIDForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Sale, error) {
	args := m.Called(ctx, tx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) UpdateSaleStatusInTx(ctx context.Context, tx pgx.Tx, saleID string, status domain.SaleStatus, acceptedOutstanding *decimal.Decimal, completedAt *time.Time, userID string, now time.Time) error {
	args := m.Called(ctx, tx, saleID, status, acceptedOutstanding, completedAt, userID, now)
	return args.Error(0)
}

func (m *MockSaleRepository) FindInstallmentByID(ctx context.Context, installmentID string) (*domain.Installment, error) {
	args := m.Called(ctx, installmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Installment), args.Error(1)
}

func (m *MockSaleRepository) FindInstallmentsBySaleID(ctx context.Context, saleID string) ([]domain.Installment, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Installment), args.Error(1)
}

func (m *MockSaleRepository) FindOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]domain.Installment, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Installment), args.Error(1)
}

func (m *MockSaleRepository) FindInstallmentByIDForUpdate(ctx context.Context, tx pgx.Tx, installmentID string) (*domain.Installment, error) {
	args := m.Called(ctx, tx, installmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Installment), args.Error(1)
}

func (m *MockSaleRepository) FindInstallmentsBySaleIDInTx(ctx context.Context, tx pgx.Tx, saleID string) ([]domain.Installment, error) {
	args := m.Called(ctx, tx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Installment), args.Error(1)
}

func (m *MockSaleRepository) UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, installment domain.Installment, expectedVersion int64) error {
	args := m.Called(ctx, tx, installment, expectedVersion)
	return args.Error(0)
}

func (m *MockSaleRepository) FindPaymentsByInstallmentID(ctx context.Context, installmentID string) ([]domain.Payment, error) {
	args := m.Called(ctx, installmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockSaleRepository) FindPaymentsBySaleID(ctx context.Context, saleID string) ([]domain.Payment, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockSaleRepository) FindPaymentByExternalReference(ctx context.Context, externalReference string) (*domain.Payment, error) {
	args := m.Called(ctx, externalReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockSaleRepository) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	args := m.Called(ctx, tx, payment)
	return args.Error(0)
}

func (m *MockSaleRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockSaleRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockSaleRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock UnitRepository ---
type MockUnitRepository struct {
	mock.Mock
}

var _ portsrepo.UnitRepositoryWithTx = (*MockUnitRepository)(nil)

func (m *MockUnitRepository) FindUnitByID(ctx context.Context, unitID string) (*domain.Unit, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Unit), args.Error(1)
}

func (m *MockUnitRepository) FindUnitByReference(ctx context.Context, subdivisionID string, reference string) (*domain.Unit, error) {
	args := m.Called(ctx, subdivisionID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Unit), args.Error(1)
}

func (m *MockUnitRepository) ListUnitsBySubdivision(ctx context.Context, subdivisionID string, status *domain.UnitStatus, limit int, offset int) ([]domain.Unit, error) {
	args := m.Called(ctx, subdivisionID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Unit), args.Error(1)
}

func (m *MockUnitRepository) SaveUnit(ctx context.Context, unit domain.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) UpdateUnit(ctx context.Context, unit domain.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) SaveUnitInTx(ctx context.Context, tx pgx.Tx, unit domain.Unit) error {
	args := m.Called(ctx, tx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) FindUnitByIDForUpdate(ctx context.Context, tx pgx.Tx, unitID string) (*domain.Unit, error) {
	args := m.Called(ctx, tx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Unit), args.Error(1)
}

func (m *MockUnitRepository) UpdateUnitStatusInTx(ctx context.Context, tx pgx.Tx, unitID string, status domain.UnitStatus, userID string, now time.Time) error {
	args := m.Called(ctx, tx, unitID, status, userID, now)
	return args.Error(0)
}

func (m *MockUnitRepository) AssignUnitToBlockInTx(ctx context.Context, tx pgx.Tx, unitID string, blockID *string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, unitID, blockID, userID, now)
	return args.Error(0)
}

func (m *MockUnitRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockUnitRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockUnitRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock BuyerRepository ---
type MockBuyerRepository struct {
	mock.Mock
}

var _ portsrepo.BuyerRepositoryFacade = (*MockBuyerRepository)(nil)

func (m *MockBuyerRepository) FindBuyerByID(ctx context.Context, buyerID string) (*domain.Buyer, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Buyer), args.Error(1)
}

func (m *MockBuyerRepository) ListBuyersByAgency(ctx context.Context, agencyID string, limit int, offset int) ([]domain.Buyer, error) {
	args := m.Called(ctx, agencyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Buyer), args.Error(1)
}

func (m *MockBuyerRepository) SaveBuyer(ctx context.Context, buyer domain.Buyer) error {
	args := m.Called(ctx, buyer)
	return args.Error(0)
}

func (m *MockBuyerRepository) UpdateBuyer(ctx context.Context, buyer domain.Buyer) error {
	args := m.Called(ctx, buyer)
	return args.Error(0)
}

// --- Mock AgencyService ---
type MockAgencyService struct {
	mock.Mock
}

var _ portssvc.AgencySvcFacade = (*MockAgencyService)(nil)

func (m *MockAgencyService) FindAgencyByID(ctx context.Context, agencyID string) (*domain.Agency, error) {
	args := m.Called(ctx, agencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agency), args.Error(1)
}

func (m *MockAgencyService) ListUserAgencies(ctx context.Context, userID string, includeDisabled bool) ([]domain.Agency, error) {
	args := m.Called(ctx, userID, includeDisabled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Agency), args.Error(1)
}

func (m *MockAgencyService) ListAgencyUsers(ctx context.Context, agencyID string, requestingUserID string) ([]domain.UserAgency, error) {
	args := m.Called(ctx, agencyID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserAgency), args.Error(1)
}

func (m *MockAgencyService) CreateAgency(ctx context.Context, name, description, phone, email, creatorUserID string) (*domain.Agency, error) {
	args := m.Called(ctx, name, description, phone, email, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agency), args.Error(1)
}

func (m *MockAgencyService) DeactivateAgency(ctx context.Context, agencyID string, requestingUserID string) error {
	args := m.Called(ctx, agencyID, requestingUserID)
	return args.Error(0)
}

func (m *MockAgencyService) ActivateAgency(ctx context.Context, agencyID string, requestingUserID string) error {
	args := m.Called(ctx, agencyID, requestingUserID)
	return args.Error(0)
}

func (m *MockAgencyService) AddUserToAgency(ctx context.Context, addingUserID, targetUserID, agencyID string, role domain.UserAgencyRole) error {
	args := m.Called(ctx, addingUserID, targetUserID, agencyID, role)
	return args.Error(0)
}

func (m *MockAgencyService) RemoveUserFromAgency(ctx context.Context, requestingUserID, targetUserID, agencyID string) error {
	args := m.Called(ctx, requestingUserID, targetUserID, agencyID)
	return args.Error(0)
}

func (m *MockAgencyService) UpdateUserAgencyRole(ctx context.Context, requestingUserID, targetUserID, agencyID string, newRole domain.UserAgencyRole) error {
	args := m.Called(ctx, requestingUserID, targetUserID, agencyID, newRole)
	return args.Error(0)
}

func (m *MockAgencyService) AuthorizeUserAction(ctx context.Context, userID, agencyID string, requiredRole domain.UserAgencyRole) error {
	args := m.Called(ctx, userID, agencyID, requiredRole)
	return args.Error(0)
}

// --- Mock Notifier ---
type MockNotifier struct {
	mock.Mock
}

var _ portssvc.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Publish(ctx context.Context, event domain.Event) {
	m.Called(ctx, event)
}

// published returns the events recorded by the mock, filtered by kind.
func (m *MockNotifier) published(kind domain.EventKind) []domain.Event {
	var events []domain.Event
	for _, call := range m.Calls {
		if call.Method != "Publish" {
			continue
		}
		event := call.Arguments.Get(1).(domain.Event)
		if event.Kind == kind {
			events = append(events, event)
		}
	}
	return events
}

// --- Test Suite Setup ---
type SaleServiceTestSuite struct {
	suite.Suite
	mockSaleRepo  *MockSaleRepository
	mockUnitRepo  *MockUnitRepository
	mockBuyerRepo *MockBuyerRepository
	mockAgencySvc *MockAgencyService
	mockNotifier  *MockNotifier
	service       portssvc.SaleSvcFacade
	agencyID      string
	userID        string
	buyer         domain.Buyer
	unit          domain.Unit
}

func (suite *SaleServiceTestSuite) SetupTest() {
	suite.mockSaleRepo = new(MockSaleRepository)
	suite.mockUnitRepo = new(MockUnitRepository)
	suite.mockBuyerRepo = new(MockBuyerRepository)
	suite.mockAgencySvc = new(MockAgencyService)
	suite.mockNotifier = new(MockNotifier)
	suite.service = services.NewSaleService(suite.mockSaleRepo, suite.mockUnitRepo, suite.mockBuyerRepo, suite.mockAgencySvc, suite.mockNotifier)

	suite.agencyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.buyer = domain.Buyer{
		BuyerID:  uuid.NewString(),
		AgencyID: suite.agencyID,
		FullName: "Aicha Benali",
	}
	suite.unit = domain.Unit{
		UnitID:   uuid.NewString(),
		AgencyID: suite.agencyID,
		Status:   domain.UnitAvailable,
	}

	// Events are a side effect; individual tests inspect the recorded calls.
	suite.mockNotifier.On("Publish", mock.Anything, mock.AnythingOfType("domain.Event")).Maybe()
}

func (suite *SaleServiceTestSuite) installmentRequest() dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		UnitID:           suite.unit.UnitID,
		BuyerID:          suite.buyer.BuyerID,
		TotalPrice:       decimal.NewFromInt(120000),
		PaymentType:      domain.PaymentInstallment,
		SaleDate:         time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		DownPayment:      decimal.NewFromInt(20000),
		InstallmentCount: 12,
	}
}

// --- CreateSale ---

func (suite *SaleServiceTestSuite) TestCreateSale_InstallmentSuccess() {
	ctx := context.Background()
	req := suite.installmentRequest()

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockBuyerRepo.On("FindBuyerByID", ctx, suite.buyer.BuyerID).Return(&suite.buyer, nil).Once()
	suite.mockUnitRepo.On("FindUnitByID", ctx, suite.unit.UnitID).Return(&suite.unit, nil).Once()

	var savedSale domain.Sale
	var savedInstallments []domain.Installment
	suite.mockSaleRepo.On("SaveSaleWithSchedule", ctx, mock.AnythingOfType("domain.Sale"), mock.AnythingOfType("[]domain.Installment")).
		Run(func(args mock.Arguments) {
			savedSale = args.Get(1).(domain.Sale)
			savedInstallments = args.Get(2).([]domain.Installment)
		}).Return(nil).Once()

	sale, err := suite.service.CreateSale(ctx, suite.agencyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(sale)
	suite.NotEmpty(sale.SaleID)
	suite.Equal(domain.SaleInProgress, sale.Status)
	suite.Equal(12, sale.InstallmentCount)
	// The unit is only reserved until the schedule settles.
	suite.Equal(domain.UnitReserved, savedSale.UnitStatusAtCreation())
	suite.True(sale.MonthlyAmount.Equal(decimal.NewFromFloat(8333.33)))
	suite.Len(savedInstallments, 12)

	// The schedule sum must equal total minus down exactly.
	sum := decimal.Zero
	for i := range savedInstallments {
		suite.NotEmpty(savedInstallments[i].InstallmentID)
		sum = sum.Add(savedInstallments[i].Amount)
	}
	suite.True(sum.Equal(decimal.NewFromInt(100000)), "schedule sum %s", sum)
	// Rounding remainder lands on the last installment.
	suite.True(savedInstallments[11].Amount.Equal(decimal.NewFromFloat(8333.37)))

	suite.Empty(suite.mockNotifier.published(domain.EventSaleCompleted))
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestCreateSale_CashFullyPaidCompletesAtCreation() {
	ctx := context.Background()
	req := dto.CreateSaleRequest{
		UnitID:      suite.unit.UnitID,
		BuyerID:     suite.buyer.BuyerID,
		TotalPrice:  decimal.NewFromInt(50000),
		PaymentType: domain.PaymentCash,
		SaleDate:    time.Now(),
		DownPayment: decimal.NewFromInt(50000),
	}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockBuyerRepo.On("FindBuyerByID", ctx, suite.buyer.BuyerID).Return(&suite.buyer, nil).Once()
	suite.mockUnitRepo.On("FindUnitByID", ctx, suite.unit.UnitID).Return(&suite.unit, nil).Once()
	var savedSale domain.Sale
	suite.mockSaleRepo.On("SaveSaleWithSchedule", ctx, mock.AnythingOfType("domain.Sale"), mock.AnythingOfType("[]domain.Installment")).
		Run(func(args mock.Arguments) {
			savedSale = args.Get(1).(domain.Sale)
		}).Return(nil).Once()

	sale, err := suite.service.CreateSale(ctx, suite.agencyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.SaleComplete, sale.Status)
	suite.Require().NotNil(sale.CompletedAt)
	suite.Empty(sale.Installments)
	// Nothing left to settle, so the unit goes straight to sold.
	suite.Equal(domain.UnitSold, savedSale.UnitStatusAtCreation())
	suite.Len(suite.mockNotifier.published(domain.EventSaleCompleted), 1)
}

func (suite *SaleServiceTestSuite) TestCreateSale_AuthorizationFail() {
	ctx := context.Background()
	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.CreateSale(ctx, suite.agencyID, suite.installmentRequest(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "SaveSaleWithSchedule", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestCreateSale_NonPositivePrice() {
	ctx := context.Background()
	req := suite.installmentRequest()
	req.TotalPrice = decimal.Zero

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()

	_, err := suite.service.CreateSale(ctx, suite.agencyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SaleServiceTestSuite) TestCreateSale_DownPaymentExceedsPrice() {
	ctx := context.Background()
	req := suite.installmentRequest()
	req.DownPayment = decimal.NewFromInt(130000)

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()

	_, err := suite.service.CreateSale(ctx, suite.agencyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SaleServiceTestSuite) TestCreateSale_InstallmentCountRequired() {
	ctx := context.Background()
	req := suite.installmentRequest()
	req.InstallmentCount = 0

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()

	_, err := suite.service.CreateSale(ctx, suite.agencyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SaleServiceTestSuite) TestCreateSale_BuyerFromOtherAgency() {
	ctx := context.Background()
	foreignBuyer := domain.Buyer{BuyerID: suite.buyer.BuyerID, AgencyID: uuid.NewString()}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockBuyerRepo.On("FindBuyerByID", ctx, suite.buyer.BuyerID).Return(&foreignBuyer, nil).Once()

	_, err := suite.service.CreateSale(ctx, suite.agencyID, suite.installmentRequest(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SaleServiceTestSuite) TestCreateSale_UnitFromOtherAgency() {
	ctx := context.Background()
	foreignUnit := domain.Unit{UnitID: suite.unit.UnitID, AgencyID: uuid.NewString(), Status: domain.UnitAvailable}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockBuyerRepo.On("FindBuyerByID", ctx, suite.buyer.BuyerID).Return(&suite.buyer, nil).Once()
	suite.mockUnitRepo.On("FindUnitByID", ctx, suite.unit.UnitID).Return(&foreignUnit, nil).Once()

	_, err := suite.service.CreateSale(ctx, suite.agencyID, suite.installmentRequest(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *SaleServiceTestSuite) TestCreateSale_UnitAlreadySold() {
	ctx := context.Background()
	soldUnit := suite.unit
	soldUnit.Status = domain.UnitSold

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockBuyerRepo.On("FindBuyerByID", ctx, suite.buyer.BuyerID).Return(&suite.buyer, nil).Once()
	suite.mockUnitRepo.On("FindUnitByID", ctx, suite.unit.UnitID).Return(&soldUnit, nil).Once()

	_, err := suite.service.CreateSale(ctx, suite.agencyID, suite.installmentRequest(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "SaveSaleWithSchedule", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestCreateSale_ReservedUnitRejected() {
	ctx := context.Background()
	reservedUnit := suite.unit
	reservedUnit.Status = domain.UnitReserved

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockBuyerRepo.On("FindBuyerByID", ctx, suite.buyer.BuyerID).Return(&suite.buyer, nil).Once()
	suite.mockUnitRepo.On("FindUnitByID", ctx, suite.unit.UnitID).Return(&reservedUnit, nil).Once()

	_, err := suite.service.CreateSale(ctx, suite.agencyID, suite.installmentRequest(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "SaveSaleWithSchedule", mock.Anything, mock.Anything, mock.Anything)
}

// --- CancelSale ---

func (suite *SaleServiceTestSuite) TestCancelSale_Success() {
	ctx := context.Background()
	sale := &domain.Sale{
		SaleID:   uuid.NewString(),
		AgencyID: suite.agencyID,
		UnitID:   suite.unit.UnitID,
		Status:   domain.SaleInProgress,
	}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, sale.SaleID).Return(sale, nil).Once()
	suite.mockSaleRepo.On("CancelSaleAndReleaseUnit", ctx, sale.SaleID, sale.UnitID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.CancelSale(ctx, suite.agencyID, sale.SaleID, suite.userID)

	suite.Require().NoError(err)
	suite.Len(suite.mockNotifier.published(domain.EventSaleCancelled), 1)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestCancelSale_CompletedRejected() {
	ctx := context.Background()
	sale := &domain.Sale{SaleID: uuid.NewString(), AgencyID: suite.agencyID, Status: domain.SaleComplete}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, sale.SaleID).Return(sale, nil).Once()

	err := suite.service.CancelSale(ctx, suite.agencyID, sale.SaleID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateInvalid)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "CancelSaleAndReleaseUnit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestCancelSale_AlreadyCancelled() {
	ctx := context.Background()
	sale := &domain.Sale{SaleID: uuid.NewString(), AgencyID: suite.agencyID, Status: domain.SaleCancelled}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, sale.SaleID).Return(sale, nil).Once()

	err := suite.service.CancelSale(ctx, suite.agencyID, sale.SaleID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateInvalid)
}

func (suite *SaleServiceTestSuite) TestCancelSale_OtherAgencyHidden() {
	ctx := context.Background()
	sale := &domain.Sale{SaleID: uuid.NewString(), AgencyID: uuid.NewString(), Status: domain.SaleInProgress}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, sale.SaleID).Return(sale, nil).Once()

	err := suite.service.CancelSale(ctx, suite.agencyID, sale.SaleID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- FinalizeSale ---

func (suite *SaleServiceTestSuite) TestFinalizeSale_FullySettled() {
	ctx := context.Background()
	sale := &domain.Sale{SaleID: uuid.NewString(), AgencyID: suite.agencyID, UnitID: suite.unit.UnitID, Status: domain.SaleInProgress}
	installments := []domain.Installment{
		{InstallmentID: uuid.NewString(), SaleID: sale.SaleID, Amount: decimal.NewFromInt(500), PaidAmount: decimal.NewFromInt(500)},
	}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockSaleRepo.On("FindSaleByIDForUpdate", ctx, mock.Anything, sale.SaleID).Return(sale, nil).Once()
	suite.mockSaleRepo.On("FindInstallmentsBySaleIDInTx", ctx, mock.Anything, sale.SaleID).Return(installments, nil).Once()
	suite.mockSaleRepo.On("UpdateSaleStatusInTx", ctx, mock.Anything, sale.SaleID, domain.SaleComplete, (*decimal.Decimal)(nil), mock.AnythingOfType("*time.Time"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockUnitRepo.On("UpdateUnitStatusInTx", ctx, mock.Anything, suite.unit.UnitID, domain.UnitSold, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockSaleRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	finalized, err := suite.service.FinalizeSale(ctx, suite.agencyID, sale.SaleID, dto.FinalizeSaleRequest{}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.SaleComplete, finalized.Status)
	suite.Nil(finalized.AcceptedOutstanding)
	suite.NotNil(finalized.CompletedAt)
	suite.Len(suite.mockNotifier.published(domain.EventSaleCompleted), 1)
	suite.mockSaleRepo.AssertExpectations(suite.T())
	suite.mockUnitRepo.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestFinalizeSale_OutstandingRequiresAcceptance() {
	ctx := context.Background()
	sale := &domain.Sale{SaleID: uuid.NewString(), AgencyID: suite.agencyID, Status: domain.SaleInProgress}
	installments := []domain.Installment{
		{InstallmentID: uuid.NewString(), SaleID: sale.SaleID, Amount: decimal.NewFromInt(500), PaidAmount: decimal.NewFromInt(200)},
	}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockSaleRepo.On("FindSaleByIDForUpdate", ctx, mock.Anything, sale.SaleID).Return(sale, nil).Once()
	suite.mockSaleRepo.On("FindInstallmentsBySaleIDInTx", ctx, mock.Anything, sale.SaleID).Return(installments, nil).Once()

	_, err := suite.service.FinalizeSale(ctx, suite.agencyID, sale.SaleID, dto.FinalizeSaleRequest{}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "UpdateSaleStatusInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockUnitRepo.AssertNotCalled(suite.T(), "UpdateUnitStatusInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestFinalizeSale_OutstandingAccepted() {
	ctx := context.Background()
	sale := &domain.Sale{SaleID: uuid.NewString(), AgencyID: suite.agencyID, UnitID: suite.unit.UnitID, Status: domain.SaleInProgress}
	installments := []domain.Installment{
		{InstallmentID: uuid.NewString(), SaleID: sale.SaleID, Amount: decimal.NewFromInt(500), PaidAmount: decimal.NewFromInt(200)},
		{InstallmentID: uuid.NewString(), SaleID: sale.SaleID, Amount: decimal.NewFromInt(500), PaidAmount: decimal.NewFromInt(500)},
	}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockSaleRepo.On("FindSaleByIDForUpdate", ctx, mock.Anything, sale.SaleID).Return(sale, nil).Once()
	suite.mockSaleRepo.On("FindInstallmentsBySaleIDInTx", ctx, mock.Anything, sale.SaleID).Return(installments, nil).Once()
	suite.mockSaleRepo.On("UpdateSaleStatusInTx", ctx, mock.Anything, sale.SaleID, domain.SaleComplete, mock.AnythingOfType("*decimal.Decimal"), mock.AnythingOfType("*time.Time"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockUnitRepo.On("UpdateUnitStatusInTx", ctx, mock.Anything, suite.unit.UnitID, domain.UnitSold, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockSaleRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	finalized, err := suite.service.FinalizeSale(ctx, suite.agencyID, sale.SaleID, dto.FinalizeSaleRequest{AcceptOutstandingBalance: true}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(finalized.AcceptedOutstanding)
	suite.True(finalized.AcceptedOutstanding.Equal(decimal.NewFromInt(300)))

	events := suite.mockNotifier.published(domain.EventSaleCompleted)
	suite.Require().Len(events, 1)
	suite.Equal("300", events[0].Attributes["acceptedOutstanding"])
}

func (suite *SaleServiceTestSuite) TestFinalizeSale_NotInProgress() {
	ctx := context.Background()
	sale := &domain.Sale{SaleID: uuid.NewString(), AgencyID: suite.agencyID, Status: domain.SaleCancelled}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockSaleRepo.On("FindSaleByIDForUpdate", ctx, mock.Anything, sale.SaleID).Return(sale, nil).Once()

	_, err := suite.service.FinalizeSale(ctx, suite.agencyID, sale.SaleID, dto.FinalizeSaleRequest{}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateInvalid)
}

// --- Reads ---

func (suite *SaleServiceTestSuite) TestGetSaleProgress_Computed() {
	ctx := context.Background()
	sale := &domain.Sale{
		SaleID:      uuid.NewString(),
		AgencyID:    suite.agencyID,
		TotalPrice:  decimal.NewFromInt(1200),
		DownPayment: decimal.NewFromInt(200),
		Status:      domain.SaleInProgress,
	}
	installments := []domain.Installment{
		{Amount: decimal.NewFromInt(500), PaidAmount: decimal.NewFromInt(500)},
		{Amount: decimal.NewFromInt(500), PaidAmount: decimal.NewFromInt(250)},
	}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, sale.SaleID).Return(sale, nil).Once()
	suite.mockSaleRepo.On("FindInstallmentsBySaleID", ctx, sale.SaleID).Return(installments, nil).Once()

	progress, err := suite.service.GetSaleProgress(ctx, suite.agencyID, sale.SaleID, suite.userID)

	suite.Require().NoError(err)
	suite.True(progress.PaidAmount.Equal(decimal.NewFromInt(750)))
	suite.True(progress.OutstandingNet.Equal(decimal.NewFromInt(250)))
	suite.Equal(1, progress.PaidInstallments)
	suite.Equal(2, progress.TotalInstallment)
	suite.True(progress.Ratio.Equal(decimal.NewFromFloat(0.75)))
}

func (suite *SaleServiceTestSuite) TestGetSaleByID_OtherAgencyHidden() {
	ctx := context.Background()
	sale := &domain.Sale{SaleID: uuid.NewString(), AgencyID: uuid.NewString()}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, sale.SaleID).Return(sale, nil).Once()

	_, err := suite.service.GetSaleByID(ctx, suite.agencyID, sale.SaleID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *SaleServiceTestSuite) TestGetSaleSnapshot_BundlesEverything() {
	ctx := context.Background()
	sale := &domain.Sale{
		SaleID:      uuid.NewString(),
		AgencyID:    suite.agencyID,
		UnitID:      suite.unit.UnitID,
		BuyerID:     suite.buyer.BuyerID,
		TotalPrice:  decimal.NewFromInt(1000),
		DownPayment: decimal.Zero,
		Status:      domain.SaleInProgress,
	}
	installments := []domain.Installment{
		{Amount: decimal.NewFromInt(1000), PaidAmount: decimal.NewFromInt(400)},
	}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, sale.SaleID).Return(sale, nil).Once()
	suite.mockSaleRepo.On("FindInstallmentsBySaleID", ctx, sale.SaleID).Return(installments, nil).Once()
	suite.mockBuyerRepo.On("FindBuyerByID", ctx, suite.buyer.BuyerID).Return(&suite.buyer, nil).Once()
	suite.mockUnitRepo.On("FindUnitByID", ctx, suite.unit.UnitID).Return(&suite.unit, nil).Once()

	snapshot, err := suite.service.GetSaleSnapshot(ctx, suite.agencyID, sale.SaleID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(sale.SaleID, snapshot.Sale.SaleID)
	suite.Equal(suite.buyer.BuyerID, snapshot.Buyer.BuyerID)
	suite.Equal(suite.unit.UnitID, snapshot.Unit.UnitID)
	suite.Len(snapshot.Installments, 1)
	suite.True(snapshot.Progress.PaidAmount.Equal(decimal.NewFromInt(400)))
}

func (suite *SaleServiceTestSuite) TestListSales_PassesPaginationThrough() {
	ctx := context.Background()
	status := domain.SaleInProgress
	params := dto.ListSalesParams{Limit: 10, Status: &status}
	sales := []domain.Sale{{SaleID: uuid.NewString(), AgencyID: suite.agencyID}}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockSaleRepo.On("ListSalesByAgency", ctx, suite.agencyID, 10, (*string)(nil), &status).Return(sales, "next-token", nil).Once()

	resp, err := suite.service.ListSales(ctx, suite.agencyID, suite.userID, params)

	suite.Require().NoError(err)
	suite.Len(resp.Sales, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal("next-token", *resp.NextToken)
}

// --- Run Test Suite ---
func TestSaleService(t *testing.T) {
	suite.Run(t, new(SaleServiceTestSuite))
}
