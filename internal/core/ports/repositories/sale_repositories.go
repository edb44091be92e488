package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
)

// SaleReader defines read operations for sale data
type SaleReader interface {
	// FindSaleByID retrieves a specific sale by its unique identifier.
	FindSaleByID(ctx context.Context, saleID string) (*domain.Sale, error)

	// ListSalesByAgency retrieves a paginated list of sales for a given agency using token-based pagination.
	// It returns the sales, a token for the next page, and an error.
	ListSalesByAgency(ctx context.Context, agencyID string, limit int, nextToken *string, status *domain.SaleStatus) ([]domain.Sale, *string, error)

	// ListSalesByBuyer retrieves all sales of a buyer.
	ListSalesByBuyer(ctx context.Context, buyerID string) ([]domain.Sale, error)

	// FindActiveSaleByUnitID retrieves the non-cancelled sale attached to a unit, if any.
	FindActiveSaleByUnitID(ctx context.Context, unitID string) (*domain.Sale, error)
}

// SaleWriter defines write operations for sale data
type SaleWriter interface {
	// SaveSaleWithSchedule persists a sale and its installment schedule, and
	// reserves the unit (or marks it sold when the sale completes at creation),
	// all within a single transaction. The unit row is locked and its
	// availability re-checked inside the transaction; a unit that is no longer
	// available fails the whole save with a conflict error.
	SaveSaleWithSchedule(ctx context.Context, sale domain.Sale, installments []domain.Installment) error

	// CancelSaleAndReleaseUnit marks a sale cancelled and returns its unit to
	// available within a single transaction. Installments are left untouched.
	CancelSaleAndReleaseUnit(ctx context.Context, saleID string, unitID string, userID string, now time.Time) error
}

// SaleTransactionSupport defines sale operations usable inside an open transaction
type SaleTransactionSupport interface {
	// FindSaleByIDForUpdate selects a sale and locks it for update within a transaction.
	FindSaleByIDForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Sale, error)

	// UpdateSaleStatusInTx updates a sale's status and completion metadata within a transaction.
	UpdateSaleStatusInTx(ctx context.Context, tx pgx.Tx, saleID string, status domain.SaleStatus, acceptedOutstanding *decimal.Decimal, completedAt *time.Time, userID string, now time.Time) error
}

// InstallmentReader defines read operations for installment data
type InstallmentReader interface {
	// FindInstallmentByID retrieves a specific installment by its unique identifier.
	FindInstallmentByID(ctx context.Context, installmentID string) (*domain.Installment, error)

	// FindInstallmentsBySaleID retrieves all installments of a sale ordered by sequence.
	FindInstallmentsBySaleID(ctx context.Context, saleID string) ([]domain.Installment, error)

	// FindOverdueCandidates retrieves unsettled installments whose due date is
	// strictly before asOf and whose stored status is not yet LATE.
	FindOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]domain.Installment, error)
}

// InstallmentTransactionSupport defines installment operations usable inside an open transaction
type InstallmentTransactionSupport interface {
	// FindInstallmentByIDForUpdate selects an installment and locks it for update within a transaction.
	FindInstallmentByIDForUpdate(ctx context.Context, tx pgx.Tx, installmentID string) (*domain.Installment, error)

	// FindInstallmentsBySaleIDInTx retrieves all installments of a sale within a transaction.
	FindInstallmentsBySaleIDInTx(ctx context.Context, tx pgx.Tx, saleID string) ([]domain.Installment, error)

	// UpdateInstallmentInTx writes an installment's settlement fields conditioned
	// on the expected version. A version mismatch returns a conflict error and
	// writes nothing.
	UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, installment domain.Installment, expectedVersion int64) error
}

// PaymentReader defines read operations for payment data
type PaymentReader interface {
	// FindPaymentsByInstallmentID retrieves all payments applied to an installment.
	FindPaymentsByInstallmentID(ctx context.Context, installmentID string) ([]domain.Payment, error)

	// FindPaymentsBySaleID retrieves all payments of a sale ordered by paid date.
	FindPaymentsBySaleID(ctx context.Context, saleID string) ([]domain.Payment, error)

	// FindPaymentByExternalReference retrieves a payment by the settlement id the
	// payment collaborator assigned to it, for webhook re-delivery detection.
	FindPaymentByExternalReference(ctx context.Context, externalReference string) (*domain.Payment, error)
}

// PaymentWriter defines write operations for payment data
type PaymentWriter interface {
	// SavePaymentInTx appends a payment record within a transaction.
	SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error
}

// SaleRepositoryFacade combines all sale-related repository interfaces
// This is a facade for clients that need access to all operations
type SaleRepositoryFacade interface {
	SaleReader
	SaleWriter
	SaleTransactionSupport
	InstallmentReader
	InstallmentTransactionSupport
	PaymentReader
	PaymentWriter
}

// SaleRepositoryWithTx extends SaleRepositoryFacade with transaction capabilities
type SaleRepositoryWithTx interface {
	SaleRepositoryFacade
	TransactionManager
}
