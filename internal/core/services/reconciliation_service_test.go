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
	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/core/services"
	"github.com/sahelimmo/lotissement_app/internal/dto"
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockSaleRepo  *MockSaleRepository
	mockUnitRepo  *MockUnitRepository
	mockAgencySvc *MockAgencyService
	mockNotifier  *MockNotifier
	service       portssvc.ReconciliationSvcFacade
	agencyID      string
	userID        string
	sale          *domain.Sale
	installment   *domain.Installment
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockSaleRepo = new(MockSaleRepository)
	suite.mockUnitRepo = new(MockUnitRepository)
	suite.mockAgencySvc = new(MockAgencyService)
	suite.mockNotifier = new(MockNotifier)
	suite.service = services.NewReconciliationService(suite.mockSaleRepo, suite.mockUnitRepo, suite.mockAgencySvc, suite.mockNotifier)

	suite.agencyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.sale = &domain.Sale{
		SaleID:   uuid.NewString(),
		AgencyID: suite.agencyID,
		UnitID:   uuid.NewString(),
		Status:   domain.SaleInProgress,
	}
	suite.installment = &domain.Installment{
		InstallmentID: uuid.NewString(),
		SaleID:        suite.sale.SaleID,
		Sequence:      1,
		DueDate:       time.Now().AddDate(0, 1, 0),
		Amount:        decimal.NewFromInt(1000),
		PaidAmount:    decimal.Zero,
		Status:        domain.InstallmentPending,
		Version:       3,
	}

	suite.mockNotifier.On("Publish", mock.Anything, mock.AnythingOfType("domain.Event")).Maybe()
}

// expectApplyTransaction wires the transactional core mocks shared by the
// payment tests: lock the installment and its sale, then rollback on exit.
func (suite *ReconciliationServiceTestSuite) expectApplyTransaction(ctx context.Context) {
	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockSaleRepo.On("FindInstallmentByIDForUpdate", ctx, mock.Anything, suite.installment.InstallmentID).Return(suite.installment, nil).Once()
	suite.mockSaleRepo.On("FindSaleByIDForUpdate", ctx, mock.Anything, suite.sale.SaleID).Return(suite.sale, nil).Once()
}

func (suite *ReconciliationServiceTestSuite) paymentRequest(amount int64) dto.ApplyPaymentRequest {
	return dto.ApplyPaymentRequest{
		Amount:        decimal.NewFromInt(amount),
		PaidDate:      time.Now(),
		Method:        "BANK_TRANSFER",
		ReceiptNumber: "RCPT-001",
	}
}

// --- ApplyPayment ---

func (suite *ReconciliationServiceTestSuite) TestApplyPayment_PartialAccumulates() {
	ctx := context.Background()

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("FindInstallmentByID", ctx, suite.installment.InstallmentID).Return(suite.installment, nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.sale.SaleID).Return(suite.sale, nil).Once()
	suite.expectApplyTransaction(ctx)

	suite.mockSaleRepo.On("UpdateInstallmentInTx", ctx, mock.Anything, mock.MatchedBy(func(i domain.Installment) bool {
		return i.PaidAmount.Equal(decimal.NewFromInt(400)) && i.Status == domain.InstallmentPending
	}), int64(3)).Return(nil).Once()
	suite.mockSaleRepo.On("SavePaymentInTx", ctx, mock.Anything, mock.MatchedBy(func(p domain.Payment) bool {
		return p.Amount.Equal(decimal.NewFromInt(400)) && p.ExternalReference == nil && p.CreatedBy == suite.userID
	})).Return(nil).Once()
	suite.mockSaleRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	updated, err := suite.service.ApplyPayment(ctx, suite.agencyID, suite.installment.InstallmentID, suite.paymentRequest(400), suite.userID)

	suite.Require().NoError(err)
	suite.True(updated.PaidAmount.Equal(decimal.NewFromInt(400)))
	suite.Equal(domain.InstallmentPending, updated.Status)
	suite.Equal(int64(4), updated.Version)
	suite.False(updated.IsSettled())
	suite.Len(suite.mockNotifier.published(domain.EventInstallmentPaid), 1)
	// A partial payment never triggers the completion check; the unit stays reserved.
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "FindInstallmentsBySaleIDInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockUnitRepo.AssertNotCalled(suite.T(), "UpdateUnitStatusInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestApplyPayment_SettlingLastInstallmentCompletesSale() {
	ctx := context.Background()
	suite.installment.PaidAmount = decimal.NewFromInt(800)

	settledSchedule := []domain.Installment{
		{Amount: decimal.NewFromInt(1000), PaidAmount: decimal.NewFromInt(1000)},
		{Amount: decimal.NewFromInt(1000), PaidAmount: decimal.NewFromInt(1000)},
	}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("FindInstallmentByID", ctx, suite.installment.InstallmentID).Return(suite.installment, nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.sale.SaleID).Return(suite.sale, nil).Once()
	suite.expectApplyTransaction(ctx)

	suite.mockSaleRepo.On("UpdateInstallmentInTx", ctx, mock.Anything, mock.MatchedBy(func(i domain.Installment) bool {
		return i.Status == domain.InstallmentPaid && i.PaidAmount.Equal(decimal.NewFromInt(1000))
	}), int64(3)).Return(nil).Once()
	suite.mockSaleRepo.On("SavePaymentInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Payment")).Return(nil).Once()
	suite.mockSaleRepo.On("FindInstallmentsBySaleIDInTx", ctx, mock.Anything, suite.sale.SaleID).Return(settledSchedule, nil).Once()
	suite.mockSaleRepo.On("UpdateSaleStatusInTx", ctx, mock.Anything, suite.sale.SaleID, domain.SaleComplete, (*decimal.Decimal)(nil), mock.AnythingOfType("*time.Time"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockUnitRepo.On("UpdateUnitStatusInTx", ctx, mock.Anything, suite.sale.UnitID, domain.UnitSold, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockSaleRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	updated, err := suite.service.ApplyPayment(ctx, suite.agencyID, suite.installment.InstallmentID, suite.paymentRequest(200), suite.userID)

	suite.Require().NoError(err)
	suite.True(updated.IsSettled())
	suite.Len(suite.mockNotifier.published(domain.EventInstallmentPaid), 1)
	suite.Len(suite.mockNotifier.published(domain.EventSaleCompleted), 1)
	suite.mockSaleRepo.AssertExpectations(suite.T())
	suite.mockUnitRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestApplyPayment_OverpaymentRejected() {
	ctx := context.Background()
	suite.installment.PaidAmount = decimal.NewFromInt(700)

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("FindInstallmentByID", ctx, suite.installment.InstallmentID).Return(suite.installment, nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.sale.SaleID).Return(suite.sale, nil).Once()
	suite.expectApplyTransaction(ctx)

	_, err := suite.service.ApplyPayment(ctx, suite.agencyID, suite.installment.InstallmentID, suite.paymentRequest(500), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "UpdateInstallmentInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestApplyPayment_NonPositiveAmount() {
	ctx := context.Background()

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("FindInstallmentByID", ctx, suite.installment.InstallmentID).Return(suite.installment, nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.sale.SaleID).Return(suite.sale, nil).Once()

	_, err := suite.service.ApplyPayment(ctx, suite.agencyID, suite.installment.InstallmentID, suite.paymentRequest(0), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestApplyPayment_CancelledSaleRejected() {
	ctx := context.Background()
	suite.sale.Status = domain.SaleCancelled

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("FindInstallmentByID", ctx, suite.installment.InstallmentID).Return(suite.installment, nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.sale.SaleID).Return(suite.sale, nil).Once()
	suite.expectApplyTransaction(ctx)

	_, err := suite.service.ApplyPayment(ctx, suite.agencyID, suite.installment.InstallmentID, suite.paymentRequest(100), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateInvalid)
}

func (suite *ReconciliationServiceTestSuite) TestApplyPayment_CompletedSaleRejected() {
	ctx := context.Background()
	completedAt := time.Now()
	suite.sale.Status = domain.SaleComplete
	suite.sale.CompletedAt = &completedAt

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("FindInstallmentByID", ctx, suite.installment.InstallmentID).Return(suite.installment, nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.sale.SaleID).Return(suite.sale, nil).Once()
	suite.expectApplyTransaction(ctx)

	_, err := suite.service.ApplyPayment(ctx, suite.agencyID, suite.installment.InstallmentID, suite.paymentRequest(100), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateInvalid)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "UpdateInstallmentInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "SavePaymentInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestApplyPayment_OtherAgencyHidden() {
	ctx := context.Background()
	suite.sale.AgencyID = uuid.NewString()

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("FindInstallmentByID", ctx, suite.installment.InstallmentID).Return(suite.installment, nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.sale.SaleID).Return(suite.sale, nil).Once()

	_, err := suite.service.ApplyPayment(ctx, suite.agencyID, suite.installment.InstallmentID, suite.paymentRequest(100), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestApplyPayment_VersionConflictSurfaces() {
	ctx := context.Background()

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleMember).Return(nil).Once()
	suite.mockSaleRepo.On("FindInstallmentByID", ctx, suite.installment.InstallmentID).Return(suite.installment, nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.sale.SaleID).Return(suite.sale, nil).Once()
	suite.expectApplyTransaction(ctx)
	suite.mockSaleRepo.On("UpdateInstallmentInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Installment"), int64(3)).
		Return(apperrors.NewConflictError("installment was modified concurrently")).Once()

	_, err := suite.service.ApplyPayment(ctx, suite.agencyID, suite.installment.InstallmentID, suite.paymentRequest(100), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

// --- RecordSettlement ---

func (suite *ReconciliationServiceTestSuite) settlement(amount int64) dto.SettlementNotification {
	return dto.SettlementNotification{
		ExternalReference: "pay_" + uuid.NewString(),
		InstallmentID:     suite.installment.InstallmentID,
		Amount:            decimal.NewFromInt(amount),
		PaidDate:          time.Now(),
		Method:            "MOBILE_MONEY",
	}
}

func (suite *ReconciliationServiceTestSuite) TestRecordSettlement_NewReference() {
	ctx := context.Background()
	notification := suite.settlement(1000)

	suite.mockSaleRepo.On("FindPaymentByExternalReference", ctx, notification.ExternalReference).Return(nil, apperrors.ErrNotFound).Once()
	suite.expectApplyTransaction(ctx)
	suite.mockSaleRepo.On("UpdateInstallmentInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Installment"), int64(3)).Return(nil).Once()
	suite.mockSaleRepo.On("SavePaymentInTx", ctx, mock.Anything, mock.MatchedBy(func(p domain.Payment) bool {
		return p.ExternalReference != nil && *p.ExternalReference == notification.ExternalReference && p.CreatedBy == "settlement-webhook"
	})).Return(nil).Once()
	suite.mockSaleRepo.On("FindInstallmentsBySaleIDInTx", ctx, mock.Anything, suite.sale.SaleID).
		Return([]domain.Installment{{Amount: decimal.NewFromInt(1000), PaidAmount: decimal.NewFromInt(1000)}}, nil).Once()
	suite.mockSaleRepo.On("UpdateSaleStatusInTx", ctx, mock.Anything, suite.sale.SaleID, domain.SaleComplete, (*decimal.Decimal)(nil), mock.AnythingOfType("*time.Time"), "settlement-webhook", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockUnitRepo.On("UpdateUnitStatusInTx", ctx, mock.Anything, suite.sale.UnitID, domain.UnitSold, "settlement-webhook", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockSaleRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	updated, err := suite.service.RecordSettlement(ctx, notification)

	suite.Require().NoError(err)
	suite.True(updated.IsSettled())
	suite.Equal(domain.InstallmentPaid, updated.Status)
	suite.mockSaleRepo.AssertExpectations(suite.T())
	suite.mockUnitRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRecordSettlement_RedeliveryIsNoOp() {
	ctx := context.Background()
	notification := suite.settlement(1000)
	existing := &domain.Payment{
		PaymentID:     uuid.NewString(),
		InstallmentID: suite.installment.InstallmentID,
		SaleID:        suite.sale.SaleID,
	}

	suite.mockSaleRepo.On("FindPaymentByExternalReference", ctx, notification.ExternalReference).Return(existing, nil).Once()
	suite.mockSaleRepo.On("FindInstallmentByID", ctx, suite.installment.InstallmentID).Return(suite.installment, nil).Once()

	updated, err := suite.service.RecordSettlement(ctx, notification)

	suite.Require().NoError(err)
	suite.Equal(suite.installment.InstallmentID, updated.InstallmentID)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "SavePaymentInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestRecordSettlement_RaceReturnsWinnerState() {
	ctx := context.Background()
	notification := suite.settlement(1000)
	recorded := &domain.Payment{
		PaymentID:     uuid.NewString(),
		InstallmentID: suite.installment.InstallmentID,
	}

	// The first lookup misses, the insert loses to a concurrent delivery,
	// the second lookup finds the winner's payment.
	suite.mockSaleRepo.On("FindPaymentByExternalReference", ctx, notification.ExternalReference).Return(nil, apperrors.ErrNotFound).Once()
	suite.expectApplyTransaction(ctx)
	suite.mockSaleRepo.On("UpdateInstallmentInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Installment"), int64(3)).Return(nil).Once()
	suite.mockSaleRepo.On("SavePaymentInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Payment")).
		Return(apperrors.NewConflictError("payment with this external reference already exists")).Once()
	suite.mockSaleRepo.On("FindPaymentByExternalReference", ctx, notification.ExternalReference).Return(recorded, nil).Once()
	suite.mockSaleRepo.On("FindInstallmentByID", ctx, suite.installment.InstallmentID).Return(suite.installment, nil).Once()

	updated, err := suite.service.RecordSettlement(ctx, notification)

	suite.Require().NoError(err)
	suite.Equal(suite.installment.InstallmentID, updated.InstallmentID)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

// --- Payment history ---

func (suite *ReconciliationServiceTestSuite) TestListInstallmentPayments() {
	ctx := context.Background()
	payments := []domain.Payment{{PaymentID: uuid.NewString(), InstallmentID: suite.installment.InstallmentID}}

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockSaleRepo.On("FindInstallmentByID", ctx, suite.installment.InstallmentID).Return(suite.installment, nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.sale.SaleID).Return(suite.sale, nil).Once()
	suite.mockSaleRepo.On("FindPaymentsByInstallmentID", ctx, suite.installment.InstallmentID).Return(payments, nil).Once()

	result, err := suite.service.ListInstallmentPayments(ctx, suite.agencyID, suite.installment.InstallmentID, suite.userID)

	suite.Require().NoError(err)
	suite.Len(result, 1)
}

func (suite *ReconciliationServiceTestSuite) TestListSalePayments_OtherAgencyHidden() {
	ctx := context.Background()
	suite.sale.AgencyID = uuid.NewString()

	suite.mockAgencySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.agencyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.sale.SaleID).Return(suite.sale, nil).Once()

	_, err := suite.service.ListSalePayments(ctx, suite.agencyID, suite.sale.SaleID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "FindPaymentsBySaleID", mock.Anything, mock.Anything)
}

// --- MarkOverdueInstallments ---

func (suite *ReconciliationServiceTestSuite) TestMarkOverdue_FlagsPastDue() {
	ctx := context.Background()
	asOf := time.Now()
	overdue := &domain.Installment{
		InstallmentID: uuid.NewString(),
		SaleID:        suite.sale.SaleID,
		DueDate:       asOf.AddDate(0, 0, -10),
		Amount:        decimal.NewFromInt(1000),
		PaidAmount:    decimal.Zero,
		Status:        domain.InstallmentPending,
		Version:       1,
	}

	suite.mockSaleRepo.On("FindOverdueCandidates", ctx, asOf, 500).Return([]domain.Installment{*overdue}, nil).Once()
	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockSaleRepo.On("FindInstallmentByIDForUpdate", ctx, mock.Anything, overdue.InstallmentID).Return(overdue, nil).Once()
	suite.mockSaleRepo.On("UpdateInstallmentInTx", ctx, mock.Anything, mock.MatchedBy(func(i domain.Installment) bool {
		return i.Status == domain.InstallmentLate
	}), int64(1)).Return(nil).Once()
	suite.mockSaleRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.sale.SaleID).Return(suite.sale, nil).Once()

	flagged, err := suite.service.MarkOverdueInstallments(ctx, asOf)

	suite.Require().NoError(err)
	suite.Equal(1, flagged)

	events := suite.mockNotifier.published(domain.EventInstallmentOverdue)
	suite.Require().Len(events, 1)
	suite.Equal("10", events[0].Attributes["daysOverdue"])
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestMarkOverdue_SkipsPaidSinceScan() {
	ctx := context.Background()
	asOf := time.Now()
	candidate := domain.Installment{
		InstallmentID: uuid.NewString(),
		SaleID:        suite.sale.SaleID,
		DueDate:       asOf.AddDate(0, 0, -5),
		Amount:        decimal.NewFromInt(1000),
		PaidAmount:    decimal.Zero,
		Status:        domain.InstallmentPending,
	}
	// Between the scan and the lock a payment settled the installment.
	settled := candidate
	settled.PaidAmount = candidate.Amount

	suite.mockSaleRepo.On("FindOverdueCandidates", ctx, asOf, 500).Return([]domain.Installment{candidate}, nil).Once()
	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockSaleRepo.On("FindInstallmentByIDForUpdate", ctx, mock.Anything, candidate.InstallmentID).Return(&settled, nil).Once()

	flagged, err := suite.service.MarkOverdueInstallments(ctx, asOf)

	suite.Require().NoError(err)
	suite.Equal(0, flagged)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "UpdateInstallmentInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.Empty(suite.mockNotifier.published(domain.EventInstallmentOverdue))
}

func (suite *ReconciliationServiceTestSuite) TestMarkOverdue_ConflictSkippedWithoutError() {
	ctx := context.Background()
	asOf := time.Now()
	overdue := &domain.Installment{
		InstallmentID: uuid.NewString(),
		SaleID:        suite.sale.SaleID,
		DueDate:       asOf.AddDate(0, 0, -3),
		Amount:        decimal.NewFromInt(1000),
		PaidAmount:    decimal.Zero,
		Status:        domain.InstallmentPending,
		Version:       2,
	}

	suite.mockSaleRepo.On("FindOverdueCandidates", ctx, asOf, 500).Return([]domain.Installment{*overdue}, nil).Once()
	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockSaleRepo.On("FindInstallmentByIDForUpdate", ctx, mock.Anything, overdue.InstallmentID).Return(overdue, nil).Once()
	suite.mockSaleRepo.On("UpdateInstallmentInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Installment"), int64(2)).
		Return(apperrors.NewConflictError("installment was modified concurrently")).Once()

	flagged, err := suite.service.MarkOverdueInstallments(ctx, asOf)

	suite.Require().NoError(err)
	suite.Equal(0, flagged)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestMarkOverdue_NoCandidates() {
	ctx := context.Background()
	asOf := time.Now()

	suite.mockSaleRepo.On("FindOverdueCandidates", ctx, asOf, 500).Return([]domain.Installment{}, nil).Once()

	flagged, err := suite.service.MarkOverdueInstallments(ctx, asOf)

	suite.Require().NoError(err)
	suite.Equal(0, flagged)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

// --- Run Test Suite ---
func TestReconciliationService(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
