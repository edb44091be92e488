package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sahelimmo/lotissement_app/internal/apperrors"
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	"github.com/sahelimmo/lotissement_app/internal/models"
	"github.com/sahelimmo/lotissement_app/internal/utils/mapping"
	"github.com/sahelimmo/lotissement_app/internal/utils/pagination"
)

type PgxSaleRepository struct {
	BaseRepository
	unitRepo portsrepo.UnitRepositoryFacade
}

// newPgxSaleRepository creates a new repository for sale, installment and payment data.
func newPgxSaleRepository(pool *pgxpool.Pool, unitRepo portsrepo.UnitRepositoryFacade) portsrepo.SaleRepositoryWithTx {
	return &PgxSaleRepository{
		BaseRepository: BaseRepository{Pool: pool},
		unitRepo:       unitRepo,
	}
}

// Ensure PgxSaleRepository implements portsrepo.SaleRepositoryWithTx
var _ portsrepo.SaleRepositoryWithTx = (*PgxSaleRepository)(nil)

const saleSelectColumns = `
	sale_id, agency_id, unit_id, buyer_id, total_price, payment_type, sale_date, status,
	down_payment, installment_count, monthly_amount, accepted_outstanding,
	cancelled_at, completed_at, created_at, created_by, last_updated_at, last_updated_by
`

const installmentSelectColumns = `
	installment_id, sale_id, sequence, due_date, amount, status, paid_amount, paid_date,
	payment_method, receipt_number, version, created_at, created_by, last_updated_at, last_updated_by
`

const paymentSelectColumns = `
	payment_id, installment_id, sale_id, amount, paid_date, method, receipt_number,
	external_reference, created_at, created_by, last_updated_at, last_updated_by
`

func scanSale(row pgx.Row) (*models.Sale, error) {
	var m models.Sale
	err := row.Scan(
		&m.SaleID,
		&m.AgencyID,
		&m.UnitID,
		&m.BuyerID,
		&m.TotalPrice,
		&m.PaymentType,
		&m.SaleDate,
		&m.Status,
		&m.DownPayment,
		&m.InstallmentCount,
		&m.MonthlyAmount,
		&m.AcceptedOutstanding,
		&m.CancelledAt,
		&m.CompletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanInstallment(row pgx.Row) (*models.Installment, error) {
	var m models.Installment
	err := row.Scan(
		&m.InstallmentID,
		&m.SaleID,
		&m.Sequence,
		&m.DueDate,
		&m.Amount,
		&m.Status,
		&m.PaidAmount,
		&m.PaidDate,
		&m.PaymentMethod,
		&m.ReceiptNumber,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.InstallmentID,
		&m.SaleID,
		&m.Amount,
		&m.PaidDate,
		&m.Method,
		&m.ReceiptNumber,
		&m.ExternalReference,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveSaleWithSchedule persists the sale, its installments and the unit's
// reservation inside one transaction. The unit row is locked first; any
// concurrent sale on the same unit serializes here and the loser sees a
// non-available unit and gets a conflict.
func (r *PgxSaleRepository) SaveSaleWithSchedule(ctx context.Context, sale domain.Sale, installments []domain.Installment) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored if the transaction commits

	now := sale.CreatedAt
	userID := sale.CreatedBy

	// 1. Lock the unit and re-check availability inside the transaction
	unit, err := r.unitRepo.FindUnitByIDForUpdate(ctx, tx, sale.UnitID)
	if err != nil {
		return err
	}
	if unit.Status != domain.UnitAvailable {
		return apperrors.NewConflictError("unit " + sale.UnitID + " is not available")
	}

	// 2. Insert the sale record
	m := mapping.ToModelSale(sale)
	saleQuery := `
		INSERT INTO sales (
			sale_id, agency_id, unit_id, buyer_id, total_price, payment_type, sale_date, status,
			down_payment, installment_count, monthly_amount, accepted_outstanding,
			cancelled_at, completed_at, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err = tx.Exec(ctx, saleQuery,
		m.SaleID,
		m.AgencyID,
		m.UnitID,
		m.BuyerID,
		m.TotalPrice,
		m.PaymentType,
		m.SaleDate,
		m.Status,
		m.DownPayment,
		m.InstallmentCount,
		m.MonthlyAmount,
		m.AcceptedOutstanding,
		m.CancelledAt,
		m.CompletedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.NewConflictError("sale ID " + m.SaleID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to insert sale "+m.SaleID, err)
	}

	// 3. Batch insert the installment schedule
	batch := &pgx.Batch{}
	installmentQuery := `
		INSERT INTO installments (
			installment_id, sale_id, sequence, due_date, amount, status, paid_amount, paid_date,
			payment_method, receipt_number, version, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	for _, inst := range installments {
		mi := mapping.ToModelInstallment(inst)
		mi.CreatedAt = now
		mi.LastUpdatedAt = now
		mi.CreatedBy = userID
		mi.LastUpdatedBy = userID
		batch.Queue(installmentQuery,
			mi.InstallmentID,
			mi.SaleID,
			mi.Sequence,
			mi.DueDate,
			mi.Amount,
			mi.Status,
			mi.PaidAmount,
			mi.PaidDate,
			mi.PaymentMethod,
			mi.ReceiptNumber,
			mi.Version,
			mi.CreatedAt,
			mi.CreatedBy,
			mi.LastUpdatedAt,
			mi.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute installment batch for sale "+m.SaleID, err)
	}

	// 4. Reserve the unit; a sale already complete at creation marks it sold
	if err := r.unitRepo.UpdateUnitStatusInTx(ctx, tx, sale.UnitID, sale.UnitStatusAtCreation(), userID, now); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction for sale "+m.SaleID, err)
	}
	return nil
}

// CancelSaleAndReleaseUnit marks the sale cancelled and its unit available in
// one transaction. Only in-progress sales qualify; the WHERE clause guards
// against racing a concurrent completion.
func (r *PgxSaleRepository) CancelSaleAndReleaseUnit(ctx context.Context, saleID string, unitID string, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE sales
		SET status = $2, cancelled_at = $3, last_updated_at = $3, last_updated_by = $4
		WHERE sale_id = $1 AND status = $5;
	`
	result, err := tx.Exec(ctx, query, saleID, string(domain.SaleCancelled), now, userID, string(domain.SaleInProgress))
	if err != nil {
		return apperrors.NewAppError(500, "failed to cancel sale "+saleID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewConflictError("sale " + saleID + " is not in progress")
	}

	if err := r.unitRepo.UpdateUnitStatusInTx(ctx, tx, unitID, domain.UnitAvailable, userID, now); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit cancellation of sale "+saleID, err)
	}
	return nil
}

func (r *PgxSaleRepository) FindSaleByID(ctx context.Context, saleID string) (*domain.Sale, error) {
	query := `SELECT ` + saleSelectColumns + ` FROM sales WHERE sale_id = $1;`
	m, err := scanSale(r.Pool.QueryRow(ctx, query, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find sale by ID "+saleID, err)
	}
	d := mapping.ToDomainSale(*m)
	return &d, nil
}

func (r *PgxSaleRepository) FindActiveSaleByUnitID(ctx context.Context, unitID string) (*domain.Sale, error) {
	query := `SELECT ` + saleSelectColumns + ` FROM sales WHERE unit_id = $1 AND status != $2 ORDER BY created_at DESC LIMIT 1;`
	m, err := scanSale(r.Pool.QueryRow(ctx, query, unitID, string(domain.SaleCancelled)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find active sale for unit "+unitID, err)
	}
	d := mapping.ToDomainSale(*m)
	return &d, nil
}

func (r *PgxSaleRepository) ListSalesByBuyer(ctx context.Context, buyerID string) ([]domain.Sale, error) {
	query := `SELECT ` + saleSelectColumns + ` FROM sales WHERE buyer_id = $1 ORDER BY sale_date DESC, created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, buyerID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query sales for buyer "+buyerID, err)
	}
	defer rows.Close()

	sales := []domain.Sale{}
	for rows.Next() {
		m, err := scanSale(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan sale row", err)
		}
		sales = append(sales, mapping.ToDomainSale(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating sale rows", err)
	}
	return sales, nil
}

// ListSalesByAgency retrieves a paginated list of sales for an agency using
// token-based pagination over (sale_date, created_at) descending.
func (r *PgxSaleRepository) ListSalesByAgency(ctx context.Context, agencyID string, limit int, nextToken *string, status *domain.SaleStatus) ([]domain.Sale, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + saleSelectColumns + ` FROM sales`
	filterClause := `WHERE agency_id = $1`
	args := []interface{}{agencyID}
	if status != nil {
		filterClause += ` AND status = $` + strconv.Itoa(len(args)+1)
		args = append(args, string(*status))
	}

	// Ordering must be stable across pages
	orderByClause := `ORDER BY sale_date DESC, created_at DESC`

	if nextToken != nil && *nextToken != "" {
		lastSaleDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		// Tuple comparison is concise and efficient in Postgres
		cursorClause := `AND (sale_date, created_at) < ($` + strconv.Itoa(len(args)+1) + `, $` + strconv.Itoa(len(args)+2) + `)`
		args = append(args, lastSaleDate, lastCreatedAt)
		filterClause += ` ` + cursorClause
	}

	query := baseQuery + ` ` + filterClause + ` ` + orderByClause + ` LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query sales for agency "+agencyID, err)
	}
	defer rows.Close()

	modelSales := make([]models.Sale, 0, fetchLimit)
	for rows.Next() {
		m, err := scanSale(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan sale row for agency "+agencyID, err)
		}
		modelSales = append(modelSales, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating sale rows for agency "+agencyID, err)
	}

	var nextTokenVal *string
	results := modelSales
	if len(modelSales) > limit {
		lastSale := modelSales[limit-1]
		token := pagination.EncodeToken(lastSale.SaleDate, lastSale.CreatedAt)
		nextTokenVal = &token
		results = modelSales[:limit]
	}

	domainSales := make([]domain.Sale, len(results))
	for i, m := range results {
		domainSales[i] = mapping.ToDomainSale(m)
	}
	return domainSales, nextTokenVal, nil
}

func (r *PgxSaleRepository) FindSaleByIDForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Sale, error) {
	query := `SELECT ` + saleSelectColumns + ` FROM sales WHERE sale_id = $1 FOR UPDATE;`
	m, err := scanSale(tx.QueryRow(ctx, query, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock sale "+saleID, err)
	}
	d := mapping.ToDomainSale(*m)
	return &d, nil
}

func (r *PgxSaleRepository) UpdateSaleStatusInTx(ctx context.Context, tx pgx.Tx, saleID string, status domain.SaleStatus, acceptedOutstanding *decimal.Decimal, completedAt *time.Time, userID string, now time.Time) error {
	query := `
		UPDATE sales
		SET status = $2, accepted_outstanding = $3, completed_at = $4, last_updated_at = $5, last_updated_by = $6
		WHERE sale_id = $1;
	`
	result, err := tx.Exec(ctx, query, saleID, string(status), acceptedOutstanding, completedAt, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of sale "+saleID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("sale " + saleID + " not found")
	}
	return nil
}

func (r *PgxSaleRepository) FindInstallmentByID(ctx context.Context, installmentID string) (*domain.Installment, error) {
	query := `SELECT ` + installmentSelectColumns + ` FROM installments WHERE installment_id = $1;`
	m, err := scanInstallment(r.Pool.QueryRow(ctx, query, installmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find installment by ID "+installmentID, err)
	}
	d := mapping.ToDomainInstallment(*m)
	return &d, nil
}

func (r *PgxSaleRepository) FindInstallmentsBySaleID(ctx context.Context, saleID string) ([]domain.Installment, error) {
	query := `SELECT ` + installmentSelectColumns + ` FROM installments WHERE sale_id = $1 ORDER BY sequence;`
	rows, err := r.Pool.Query(ctx, query, saleID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query installments for sale "+saleID, err)
	}
	defer rows.Close()

	modelInstallments := []models.Installment{}
	for rows.Next() {
		m, err := scanInstallment(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan installment row for sale "+saleID, err)
		}
		modelInstallments = append(modelInstallments, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating installment rows for sale "+saleID, err)
	}
	return mapping.ToDomainInstallmentSlice(modelInstallments), nil
}

// FindOverdueCandidates returns unsettled installments past due that are still
// stored as PENDING, oldest first. The status check makes the sweep cheap to
// re-run: already flagged rows are skipped at the source.
func (r *PgxSaleRepository) FindOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]domain.Installment, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `
		SELECT ` + installmentSelectColumns + `
		FROM installments
		WHERE status = $1 AND due_date < $2 AND paid_amount < amount
		ORDER BY due_date
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, string(domain.InstallmentPending), asOf, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query overdue candidates", err)
	}
	defer rows.Close()

	modelInstallments := []models.Installment{}
	for rows.Next() {
		m, err := scanInstallment(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan overdue candidate row", err)
		}
		modelInstallments = append(modelInstallments, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating overdue candidate rows", err)
	}
	return mapping.ToDomainInstallmentSlice(modelInstallments), nil
}

func (r *PgxSaleRepository) FindInstallmentByIDForUpdate(ctx context.Context, tx pgx.Tx, installmentID string) (*domain.Installment, error) {
	query := `SELECT ` + installmentSelectColumns + ` FROM installments WHERE installment_id = $1 FOR UPDATE;`
	m, err := scanInstallment(tx.QueryRow(ctx, query, installmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock installment "+installmentID, err)
	}
	d := mapping.ToDomainInstallment(*m)
	return &d, nil
}

func (r *PgxSaleRepository) FindInstallmentsBySaleIDInTx(ctx context.Context, tx pgx.Tx, saleID string) ([]domain.Installment, error) {
	query := `SELECT ` + installmentSelectColumns + ` FROM installments WHERE sale_id = $1 ORDER BY sequence;`
	rows, err := tx.Query(ctx, query, saleID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query installments for sale "+saleID, err)
	}
	defer rows.Close()

	modelInstallments := []models.Installment{}
	for rows.Next() {
		m, err := scanInstallment(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan installment row for sale "+saleID, err)
		}
		modelInstallments = append(modelInstallments, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating installment rows for sale "+saleID, err)
	}
	return mapping.ToDomainInstallmentSlice(modelInstallments), nil
}

// UpdateInstallmentInTx writes the settlement fields of an installment only if
// the stored version still matches expectedVersion. Zero rows affected means a
// concurrent writer won and the caller must retry or fail with a conflict.
func (r *PgxSaleRepository) UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, installment domain.Installment, expectedVersion int64) error {
	m := mapping.ToModelInstallment(installment)
	query := `
		UPDATE installments
		SET status = $2, paid_amount = $3, paid_date = $4, payment_method = $5, receipt_number = $6,
		    version = version + 1, last_updated_at = $7, last_updated_by = $8
		WHERE installment_id = $1 AND version = $9;
	`
	result, err := tx.Exec(ctx, query,
		m.InstallmentID,
		m.Status,
		m.PaidAmount,
		m.PaidDate,
		m.PaymentMethod,
		m.ReceiptNumber,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		expectedVersion,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update installment "+m.InstallmentID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewConflictError("installment " + m.InstallmentID + " was modified concurrently")
	}
	return nil
}

func (r *PgxSaleRepository) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)
	query := `
		INSERT INTO payments (
			payment_id, installment_id, sale_id, amount, paid_date, method, receipt_number,
			external_reference, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		m.PaymentID,
		m.InstallmentID,
		m.SaleID,
		m.Amount,
		m.PaidDate,
		m.Method,
		m.ReceiptNumber,
		m.ExternalReference,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique external_reference
			return apperrors.NewConflictError("payment with this external reference already exists")
		}
		return apperrors.NewAppError(500, "failed to save payment "+m.PaymentID, err)
	}
	return nil
}

func (r *PgxSaleRepository) FindPaymentsByInstallmentID(ctx context.Context, installmentID string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentSelectColumns + ` FROM payments WHERE installment_id = $1 ORDER BY paid_date, created_at;`
	return r.queryPayments(ctx, query, installmentID)
}

func (r *PgxSaleRepository) FindPaymentsBySaleID(ctx context.Context, saleID string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentSelectColumns + ` FROM payments WHERE sale_id = $1 ORDER BY paid_date, created_at;`
	return r.queryPayments(ctx, query, saleID)
}

func (r *PgxSaleRepository) queryPayments(ctx context.Context, query string, args ...interface{}) ([]domain.Payment, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payments", err)
	}
	defer rows.Close()

	modelPayments := []models.Payment{}
	for rows.Next() {
		m, err := scanPayment(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment row", err)
		}
		modelPayments = append(modelPayments, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payment rows", err)
	}
	return mapping.ToDomainPaymentSlice(modelPayments), nil
}

func (r *PgxSaleRepository) FindPaymentByExternalReference(ctx context.Context, externalReference string) (*domain.Payment, error) {
	query := `SELECT ` + paymentSelectColumns + ` FROM payments WHERE external_reference = $1;`
	m, err := scanPayment(r.Pool.QueryRow(ctx, query, externalReference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment by external reference", err)
	}
	d := mapping.ToDomainPayment(*m)
	return &d, nil
}
