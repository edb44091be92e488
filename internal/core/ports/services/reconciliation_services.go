package services

import (
	"context"
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/sahelimmo/lotissement_app/internal/dto"
)

// ReconciliationSvcFacade defines the reconciliation engine: applying payments
// to installments, absorbing external settlement notifications and sweeping
// overdue installments. All mutations are serialized per installment.
type ReconciliationSvcFacade interface {
	// ApplyPayment records a payment against an installment. Partial payments
	// accumulate; overpayment of the installment's nominal amount is rejected.
	// Settling the last open installment completes the sale in the same
	// transaction.
	ApplyPayment(ctx context.Context, agencyID string, installmentID string, req dto.ApplyPaymentRequest, requestingUserID string) (*domain.Installment, error)

	// RecordSettlement absorbs a settlement notification from the payment
	// collaborator. Re-delivery of an already recorded external reference is a
	// no-op returning the existing state.
	RecordSettlement(ctx context.Context, notification dto.SettlementNotification) (*domain.Installment, error)

	// MarkOverdueInstallments flags unsettled installments past their due date
	// as late, as of the given instant. The sweep is idempotent and returns the
	// number of installments newly flagged.
	MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int, error)

	// ListInstallmentPayments retrieves the payment history of one installment,
	// oldest first.
	ListInstallmentPayments(ctx context.Context, agencyID string, installmentID string, requestingUserID string) ([]domain.Payment, error)

	// ListSalePayments retrieves all payments recorded against a sale, oldest
	// first.
	ListSalePayments(ctx context.Context, agencyID string, saleID string, requestingUserID string) ([]domain.Payment, error)
}
