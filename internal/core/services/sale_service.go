package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahelimmo/lotissement_app/internal/apperrors"
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/dto"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
	"github.com/sahelimmo/lotissement_app/internal/utils/scheduling"
)

// saleService handles the sale lifecycle: creation with schedule generation,
// cancellation, finalization and derived progress reads.
type saleService struct {
	saleRepo  portsrepo.SaleRepositoryWithTx
	unitRepo  portsrepo.UnitRepositoryWithTx
	buyerRepo portsrepo.BuyerRepositoryFacade
	agencySvc portssvc.AgencySvcFacade
	notifier  portssvc.Notifier
}

// NewSaleService creates a new sale service.
func NewSaleService(saleRepo portsrepo.SaleRepositoryWithTx, unitRepo portsrepo.UnitRepositoryWithTx, buyerRepo portsrepo.BuyerRepositoryFacade, agencySvc portssvc.AgencySvcFacade, notifier portssvc.Notifier) portssvc.SaleSvcFacade {
	return &saleService{
		saleRepo:  saleRepo,
		unitRepo:  unitRepo,
		buyerRepo: buyerRepo,
		agencySvc: agencySvc,
		notifier:  notifier,
	}
}

var _ portssvc.SaleSvcFacade = (*saleService)(nil)

// computeProgress derives the settlement position of a sale from its
// installment schedule and down payment. Always recomputed, never stored.
func computeProgress(sale *domain.Sale, installments []domain.Installment) domain.SaleProgress {
	paid := decimal.Zero
	paidCount := 0
	for i := range installments {
		paid = paid.Add(installments[i].PaidAmount)
		if installments[i].IsSettled() {
			paidCount++
		}
	}

	net := sale.NetPayable()
	outstanding := net.Sub(paid)

	ratio := decimal.NewFromInt(1)
	if net.IsPositive() {
		ratio = paid.Div(net).Round(4)
	}

	return domain.SaleProgress{
		SaleID:           sale.SaleID,
		TotalPrice:       sale.TotalPrice,
		DownPayment:      sale.DownPayment,
		PaidAmount:       paid,
		OutstandingNet:   outstanding,
		PaidInstallments: paidCount,
		TotalInstallment: len(installments),
		Ratio:            ratio,
	}
}

// findSaleInAgency loads a sale and verifies it belongs to the agency.
func (s *saleService) findSaleInAgency(ctx context.Context, agencyID, saleID string) (*domain.Sale, error) {
	sale, err := s.saleRepo.FindSaleByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	return sale, nil
}

// GetSaleByID retrieves a sale with its installment schedule.
func (s *saleService) GetSaleByID(ctx context.Context, agencyID string, saleID string, requestingUserID string) (*domain.Sale, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	sale, err := s.findSaleInAgency(ctx, agencyID, saleID)
	if err != nil {
		return nil, err
	}

	installments, err := s.saleRepo.FindInstallmentsBySaleID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments for sale %s: %w", saleID, err)
	}
	sale.Installments = installments
	return sale, nil
}

// ListSales retrieves a token-paginated list of sales in an agency.
func (s *saleService) ListSales(ctx context.Context, agencyID string, requestingUserID string, params dto.ListSalesParams) (*dto.ListSalesResponse, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	sales, nextToken, err := s.saleRepo.ListSalesByAgency(ctx, agencyID, params.Limit, params.NextToken, params.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales for agency %s: %w", agencyID, err)
	}

	responses := make([]dto.SaleResponse, len(sales))
	for i := range sales {
		responses[i] = dto.ToSaleResponse(&sales[i])
	}
	return &dto.ListSalesResponse{Sales: responses, NextToken: nextToken}, nil
}

// GetSaleProgress recomputes the settlement position of a sale.
func (s *saleService) GetSaleProgress(ctx context.Context, agencyID string, saleID string, requestingUserID string) (*domain.SaleProgress, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	sale, err := s.findSaleInAgency(ctx, agencyID, saleID)
	if err != nil {
		return nil, err
	}
	installments, err := s.saleRepo.FindInstallmentsBySaleID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments for sale %s: %w", saleID, err)
	}

	progress := computeProgress(sale, installments)
	return &progress, nil
}

// GetSaleSnapshot assembles the read-only bundle consumed by document generation.
func (s *saleService) GetSaleSnapshot(ctx context.Context, agencyID string, saleID string, requestingUserID string) (*domain.SaleSnapshot, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	sale, err := s.findSaleInAgency(ctx, agencyID, saleID)
	if err != nil {
		return nil, err
	}
	installments, err := s.saleRepo.FindInstallmentsBySaleID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments for sale %s: %w", saleID, err)
	}
	buyer, err := s.buyerRepo.FindBuyerByID(ctx, sale.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load buyer for sale %s: %w", saleID, err)
	}
	unit, err := s.unitRepo.FindUnitByID(ctx, sale.UnitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit for sale %s: %w", saleID, err)
	}

	return &domain.SaleSnapshot{
		Sale:         *sale,
		Buyer:        *buyer,
		Unit:         *unit,
		Installments: installments,
		Progress:     computeProgress(sale, installments),
	}, nil
}

// CreateSale persists a new sale together with its generated installment
// schedule and reserves the unit, atomically. The unit's availability is
// re-checked under lock inside the repository transaction; the checks here
// only produce friendlier errors for the common cases.
func (s *saleService) CreateSale(ctx context.Context, agencyID string, req dto.CreateSaleRequest, creatorUserID string) (*domain.Sale, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.agencySvc.AuthorizeUserAction(ctx, creatorUserID, agencyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if req.TotalPrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: total price must be positive", apperrors.ErrValidation)
	}
	if req.DownPayment.IsNegative() {
		return nil, fmt.Errorf("%w: down payment cannot be negative", apperrors.ErrValidation)
	}
	if req.DownPayment.GreaterThan(req.TotalPrice) {
		return nil, fmt.Errorf("%w: down payment exceeds total price", apperrors.ErrValidation)
	}
	if req.PaymentType == domain.PaymentInstallment && req.InstallmentCount < 1 {
		return nil, fmt.Errorf("%w: installment sales require at least one installment", apperrors.ErrValidation)
	}

	buyer, err := s.buyerRepo.FindBuyerByID(ctx, req.BuyerID)
	if err != nil {
		return nil, err
	}
	if buyer.AgencyID != agencyID {
		return nil, fmt.Errorf("%w: buyer %s not found in agency", apperrors.ErrValidation, req.BuyerID)
	}

	unit, err := s.unitRepo.FindUnitByID(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	if unit.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	if unit.Status != domain.UnitAvailable {
		return nil, apperrors.NewConflictError("unit " + req.UnitID + " is not available")
	}

	now := time.Now()
	saleID := uuid.NewString()

	sale := domain.Sale{
		SaleID:      saleID,
		AgencyID:    agencyID,
		UnitID:      req.UnitID,
		BuyerID:     req.BuyerID,
		TotalPrice:  req.TotalPrice,
		PaymentType: req.PaymentType,
		SaleDate:    req.SaleDate,
		Status:      domain.SaleInProgress,
		DownPayment: req.DownPayment,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	terms := scheduling.Terms{
		SaleID:      saleID,
		PaymentType: req.PaymentType,
		SaleDate:    req.SaleDate,
		TotalPrice:  req.TotalPrice,
		DownPayment: req.DownPayment,
	}
	if req.PaymentType == domain.PaymentInstallment {
		terms.InstallmentCount = req.InstallmentCount
		terms.FirstDueDate = req.FirstDueDate
		sale.InstallmentCount = req.InstallmentCount
		sale.MonthlyAmount = scheduling.NominalMonthly(sale.NetPayable(), req.InstallmentCount)
	}

	installments, err := scheduling.Generate(terms)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	for i := range installments {
		installments[i].InstallmentID = uuid.NewString()
	}

	// A sale with nothing left to settle completes at creation.
	if len(installments) == 0 {
		sale.Status = domain.SaleComplete
		sale.CompletedAt = &now
	}

	if err := s.saleRepo.SaveSaleWithSchedule(ctx, sale, installments); err != nil {
		logger.Error("Failed to save sale with schedule", slog.String("error", err.Error()), slog.String("unit_id", req.UnitID))
		return nil, err
	}

	logger.Info("Sale created",
		slog.String("sale_id", saleID),
		slog.String("unit_id", req.UnitID),
		slog.String("payment_type", string(req.PaymentType)),
		slog.Int("installments", len(installments)),
	)

	if sale.Status == domain.SaleComplete && s.notifier != nil {
		s.notifier.Publish(ctx, domain.Event{
			Kind:       domain.EventSaleCompleted,
			AgencyID:   agencyID,
			OccurredAt: now,
			Attributes: map[string]string{"saleID": saleID},
		})
	}

	sale.Installments = installments
	return &sale, nil
}

// CancelSale cancels a sale and returns the unit to available. The installment
// schedule survives for audit. Completed sales cannot be cancelled.
func (s *saleService) CancelSale(ctx context.Context, agencyID string, saleID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleMember); err != nil {
		return err
	}

	sale, err := s.findSaleInAgency(ctx, agencyID, saleID)
	if err != nil {
		return err
	}
	switch sale.Status {
	case domain.SaleComplete:
		return fmt.Errorf("%w: completed sales cannot be cancelled", apperrors.ErrStateInvalid)
	case domain.SaleCancelled:
		return fmt.Errorf("%w: sale %s is already cancelled", apperrors.ErrStateInvalid, saleID)
	}

	now := time.Now()
	if err := s.saleRepo.CancelSaleAndReleaseUnit(ctx, saleID, sale.UnitID, requestingUserID, now); err != nil {
		logger.Error("Failed to cancel sale", slog.String("error", err.Error()), slog.String("sale_id", saleID))
		return err
	}

	logger.Info("Sale cancelled", slog.String("sale_id", saleID), slog.String("unit_id", sale.UnitID))

	if s.notifier != nil {
		s.notifier.Publish(ctx, domain.Event{
			Kind:       domain.EventSaleCancelled,
			AgencyID:   agencyID,
			OccurredAt: now,
			Attributes: map[string]string{"saleID": saleID, "unitID": sale.UnitID},
		})
	}
	return nil
}

// FinalizeSale marks a sale complete and its unit sold. A sale with unsettled
// installments is only finalized when the request explicitly accepts the
// outstanding balance; the accepted amount is recorded on the sale.
func (s *saleService) FinalizeSale(ctx context.Context, agencyID string, saleID string, req dto.FinalizeSaleRequest, requestingUserID string) (*domain.Sale, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleMember); err != nil {
		return nil, err
	}

	tx, err := s.saleRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for sale finalization: %w", err)
	}
	defer s.saleRepo.Rollback(ctx, tx)

	sale, err := s.saleRepo.FindSaleByIDForUpdate(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	if sale.Status != domain.SaleInProgress {
		return nil, fmt.Errorf("%w: sale %s is %s, only in-progress sales can be finalized", apperrors.ErrStateInvalid, saleID, sale.Status)
	}

	installments, err := s.saleRepo.FindInstallmentsBySaleIDInTx(ctx, tx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments for sale %s: %w", saleID, err)
	}

	outstanding := decimal.Zero
	for i := range installments {
		outstanding = outstanding.Add(installments[i].Remaining())
	}

	var accepted *decimal.Decimal
	if outstanding.IsPositive() {
		if !req.AcceptOutstandingBalance {
			return nil, fmt.Errorf("%w: sale %s has %s outstanding, set acceptOutstandingBalance to finalize anyway", apperrors.ErrValidation, saleID, outstanding.String())
		}
		accepted = &outstanding
	}

	now := time.Now()
	if err := s.saleRepo.UpdateSaleStatusInTx(ctx, tx, saleID, domain.SaleComplete, accepted, &now, requestingUserID, now); err != nil {
		return nil, err
	}
	if err := s.unitRepo.UpdateUnitStatusInTx(ctx, tx, sale.UnitID, domain.UnitSold, requestingUserID, now); err != nil {
		return nil, err
	}

	if err := s.saleRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit sale finalization: %w", err)
	}

	sale.Status = domain.SaleComplete
	sale.AcceptedOutstanding = accepted
	sale.CompletedAt = &now
	sale.LastUpdatedAt = now
	sale.LastUpdatedBy = requestingUserID
	sale.Installments = installments

	logger.Info("Sale finalized", slog.String("sale_id", saleID), slog.Bool("accepted_outstanding", accepted != nil))

	if s.notifier != nil {
		attrs := map[string]string{"saleID": saleID}
		if accepted != nil {
			attrs["acceptedOutstanding"] = accepted.String()
		}
		s.notifier.Publish(ctx, domain.Event{
			Kind:       domain.EventSaleCompleted,
			AgencyID:   agencyID,
			OccurredAt: now,
			Attributes: attrs,
		})
	}
	return sale, nil
}
