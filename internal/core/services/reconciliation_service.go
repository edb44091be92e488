package services

import (
	"context"
	"errors"
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
)

// settlementActor is recorded in audit fields for writes the settlement
// webhook performs, which carry no authenticated staff user.
const settlementActor = "settlement-webhook"

// overdueSweepBatch bounds how many candidates one sweep pass loads at a time.
const overdueSweepBatch = 500

// reconciliationService applies payments to installments, absorbs settlement
// notifications from the payment collaborator and sweeps overdue installments.
// Every installment mutation goes through a row lock plus a version-conditional
// write, so concurrent mutations of the same installment serialize or fail
// with a conflict instead of losing updates.
type reconciliationService struct {
	saleRepo  portsrepo.SaleRepositoryWithTx
	unitRepo  portsrepo.UnitRepositoryWithTx
	agencySvc portssvc.AgencySvcFacade
	notifier  portssvc.Notifier
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(saleRepo portsrepo.SaleRepositoryWithTx, unitRepo portsrepo.UnitRepositoryWithTx, agencySvc portssvc.AgencySvcFacade, notifier portssvc.Notifier) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		saleRepo:  saleRepo,
		unitRepo:  unitRepo,
		agencySvc: agencySvc,
		notifier:  notifier,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// paymentInput is the normalized form both entry points reduce to before the
// shared transactional application.
type paymentInput struct {
	InstallmentID     string
	Amount            decimal.Decimal
	PaidDate          time.Time
	Method            string
	ReceiptNumber     string
	ExternalReference *string
	ActorUserID       string
}

// ApplyPayment records a staff-entered payment against an installment.
func (s *reconciliationService) ApplyPayment(ctx context.Context, agencyID string, installmentID string, req dto.ApplyPaymentRequest, requestingUserID string) (*domain.Installment, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleMember); err != nil {
		return nil, err
	}

	installment, err := s.saleRepo.FindInstallmentByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}
	sale, err := s.saleRepo.FindSaleByID(ctx, installment.SaleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale for installment %s: %w", installmentID, err)
	}
	if sale.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}

	return s.applyToInstallment(ctx, paymentInput{
		InstallmentID: installmentID,
		Amount:        req.Amount,
		PaidDate:      req.PaidDate,
		Method:        req.Method,
		ReceiptNumber: req.ReceiptNumber,
		ActorUserID:   requestingUserID,
	})
}

// RecordSettlement absorbs a settlement notification. The external reference
// is the idempotency key: a reference seen before returns the installment's
// current state without writing anything.
func (s *reconciliationService) RecordSettlement(ctx context.Context, notification dto.SettlementNotification) (*domain.Installment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.saleRepo.FindPaymentByExternalReference(ctx, notification.ExternalReference)
	if err == nil {
		logger.Info("Settlement already recorded, absorbing re-delivery",
			slog.String("external_reference", notification.ExternalReference),
			slog.String("installment_id", existing.InstallmentID),
		)
		return s.saleRepo.FindInstallmentByID(ctx, existing.InstallmentID)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up settlement reference %s: %w", notification.ExternalReference, err)
	}

	ref := notification.ExternalReference
	installment, err := s.applyToInstallment(ctx, paymentInput{
		InstallmentID:     notification.InstallmentID,
		Amount:            notification.Amount,
		PaidDate:          notification.PaidDate,
		Method:            notification.Method,
		ReceiptNumber:     notification.ReceiptNumber,
		ExternalReference: &ref,
		ActorUserID:       settlementActor,
	})
	if err != nil && errors.Is(err, apperrors.ErrConflict) {
		// Two deliveries raced past the lookup; the unique index on the
		// external reference rejected the loser. Return the winner's state.
		if recorded, lookupErr := s.saleRepo.FindPaymentByExternalReference(ctx, notification.ExternalReference); lookupErr == nil {
			return s.saleRepo.FindInstallmentByID(ctx, recorded.InstallmentID)
		}
		return nil, err
	}
	return installment, err
}

// ListInstallmentPayments retrieves the payment history of one installment.
func (s *reconciliationService) ListInstallmentPayments(ctx context.Context, agencyID string, installmentID string, requestingUserID string) ([]domain.Payment, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	installment, err := s.saleRepo.FindInstallmentByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}
	sale, err := s.saleRepo.FindSaleByID(ctx, installment.SaleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale for installment %s: %w", installmentID, err)
	}
	if sale.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	return s.saleRepo.FindPaymentsByInstallmentID(ctx, installmentID)
}

// ListSalePayments retrieves all payments recorded against a sale.
func (s *reconciliationService) ListSalePayments(ctx context.Context, agencyID string, saleID string, requestingUserID string) ([]domain.Payment, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	sale, err := s.saleRepo.FindSaleByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	return s.saleRepo.FindPaymentsBySaleID(ctx, saleID)
}

// applyToInstallment performs the transactional core shared by staff payments
// and webhook settlements: lock the installment, accumulate the amount, write
// the payment record and, when the schedule is fully settled, complete the
// sale and move its unit from reserved to sold.
func (s *reconciliationService) applyToInstallment(ctx context.Context, in paymentInput) (*domain.Installment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	tx, err := s.saleRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for payment: %w", err)
	}
	defer s.saleRepo.Rollback(ctx, tx)

	installment, err := s.saleRepo.FindInstallmentByIDForUpdate(ctx, tx, in.InstallmentID)
	if err != nil {
		return nil, err
	}

	sale, err := s.saleRepo.FindSaleByIDForUpdate(ctx, tx, installment.SaleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale for installment %s: %w", in.InstallmentID, err)
	}
	if sale.Status != domain.SaleInProgress {
		return nil, fmt.Errorf("%w: sale %s is %s, payments apply only to in-progress sales", apperrors.ErrStateInvalid, sale.SaleID, sale.Status)
	}

	remaining := installment.Remaining()
	if in.Amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("%w: payment %s exceeds remaining %s on installment %s", apperrors.ErrValidation, in.Amount, remaining, in.InstallmentID)
	}

	now := time.Now()
	expectedVersion := installment.Version

	installment.PaidAmount = installment.PaidAmount.Add(in.Amount)
	installment.PaidDate = &in.PaidDate
	installment.PaymentMethod = in.Method
	installment.ReceiptNumber = in.ReceiptNumber
	installment.Status = installment.DeriveStatus(now)
	installment.LastUpdatedAt = now
	installment.LastUpdatedBy = in.ActorUserID

	if err := s.saleRepo.UpdateInstallmentInTx(ctx, tx, *installment, expectedVersion); err != nil {
		return nil, err
	}
	installment.Version = expectedVersion + 1

	payment := domain.Payment{
		PaymentID:         uuid.NewString(),
		InstallmentID:     installment.InstallmentID,
		SaleID:            installment.SaleID,
		Amount:            in.Amount,
		PaidDate:          in.PaidDate,
		Method:            in.Method,
		ReceiptNumber:     in.ReceiptNumber,
		ExternalReference: in.ExternalReference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     in.ActorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: in.ActorUserID,
		},
	}
	if err := s.saleRepo.SavePaymentInTx(ctx, tx, payment); err != nil {
		return nil, err
	}

	saleCompleted := false
	if installment.IsSettled() {
		all, err := s.saleRepo.FindInstallmentsBySaleIDInTx(ctx, tx, installment.SaleID)
		if err != nil {
			return nil, fmt.Errorf("failed to load schedule for sale %s: %w", installment.SaleID, err)
		}
		settled := true
		for i := range all {
			if !all[i].IsSettled() {
				settled = false
				break
			}
		}
		if settled {
			if err := s.saleRepo.UpdateSaleStatusInTx(ctx, tx, sale.SaleID, domain.SaleComplete, nil, &now, in.ActorUserID, now); err != nil {
				return nil, err
			}
			if err := s.unitRepo.UpdateUnitStatusInTx(ctx, tx, sale.UnitID, domain.UnitSold, in.ActorUserID, now); err != nil {
				return nil, err
			}
			saleCompleted = true
		}
	}

	if err := s.saleRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	logger.Info("Payment applied",
		slog.String("installment_id", installment.InstallmentID),
		slog.String("sale_id", installment.SaleID),
		slog.String("amount", in.Amount.String()),
		slog.Bool("settled", installment.IsSettled()),
		slog.Bool("sale_completed", saleCompleted),
	)

	if s.notifier != nil {
		s.notifier.Publish(ctx, domain.Event{
			Kind:       domain.EventInstallmentPaid,
			AgencyID:   sale.AgencyID,
			OccurredAt: now,
			Attributes: map[string]string{
				"installmentID": installment.InstallmentID,
				"saleID":        installment.SaleID,
				"amount":        in.Amount.String(),
			},
		})
		if saleCompleted {
			s.notifier.Publish(ctx, domain.Event{
				Kind:       domain.EventSaleCompleted,
				AgencyID:   sale.AgencyID,
				OccurredAt: now,
				Attributes: map[string]string{"saleID": sale.SaleID},
			})
		}
	}
	return installment, nil
}

// MarkOverdueInstallments flags unsettled installments past their due date as
// late. Each installment is flagged in its own short transaction so a conflict
// on one never rolls back the rest of the sweep; conflicts mean someone paid
// or flagged concurrently and are skipped, keeping the sweep idempotent.
func (s *reconciliationService) MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	flagged := 0
	for {
		candidates, err := s.saleRepo.FindOverdueCandidates(ctx, asOf, overdueSweepBatch)
		if err != nil {
			return flagged, fmt.Errorf("failed to load overdue candidates: %w", err)
		}
		if len(candidates) == 0 {
			break
		}

		progressed := 0
		for i := range candidates {
			ok, err := s.flagOverdue(ctx, candidates[i].InstallmentID, asOf)
			if err != nil {
				logger.Error("Failed to flag overdue installment",
					slog.String("installment_id", candidates[i].InstallmentID),
					slog.String("error", err.Error()),
				)
				continue
			}
			if ok {
				flagged++
				progressed++
			}
		}

		// Flagged rows leave the candidate set. A pass that flags nothing
		// means the remainder is contested or already handled; stop rather
		// than spin on the same rows.
		if progressed == 0 || len(candidates) < overdueSweepBatch {
			break
		}
	}

	logger.Info("Overdue sweep finished", slog.Int("flagged", flagged), slog.Time("as_of", asOf))
	return flagged, nil
}

// flagOverdue marks one installment late under lock. Returns false when the
// installment no longer qualifies or a concurrent write won.
func (s *reconciliationService) flagOverdue(ctx context.Context, installmentID string, asOf time.Time) (bool, error) {
	tx, err := s.saleRepo.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer s.saleRepo.Rollback(ctx, tx)

	installment, err := s.saleRepo.FindInstallmentByIDForUpdate(ctx, tx, installmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	// Re-derive under lock; a payment may have landed since the candidate scan.
	if installment.Status == domain.InstallmentLate || installment.DeriveStatus(asOf) != domain.InstallmentLate {
		return false, nil
	}

	now := time.Now()
	expectedVersion := installment.Version
	installment.Status = domain.InstallmentLate
	installment.LastUpdatedAt = now
	installment.LastUpdatedBy = "overdue-sweep"

	if err := s.saleRepo.UpdateInstallmentInTx(ctx, tx, *installment, expectedVersion); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	if err := s.saleRepo.Commit(ctx, tx); err != nil {
		return false, err
	}

	if s.notifier != nil {
		sale, err := s.saleRepo.FindSaleByID(ctx, installment.SaleID)
		agencyID := ""
		if err == nil {
			agencyID = sale.AgencyID
		}
		s.notifier.Publish(ctx, domain.Event{
			Kind:       domain.EventInstallmentOverdue,
			AgencyID:   agencyID,
			OccurredAt: now,
			Attributes: map[string]string{
				"installmentID": installment.InstallmentID,
				"saleID":        installment.SaleID,
				"daysOverdue":   fmt.Sprintf("%d", installment.DaysOverdue(asOf)),
			},
		})
	}
	return true, nil
}
