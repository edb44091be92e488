package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
)

type reportingRepository struct {
	db *pgxpool.Pool
}

// newReportingRepository creates a new PostgreSQL implementation of the reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{db: db}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// GetOverdueInstallments joins unsettled past-due installments of in-progress
// sales with their sale and buyer context. Lateness is derived from the dates
// at query time, not read from the stored status, so the report is correct
// even between sweeps.
func (r *reportingRepository) GetOverdueInstallments(ctx context.Context, agencyID string, asOf time.Time) ([]domain.OverdueInstallment, error) {
	query := `
		SELECT
			i.installment_id, i.sale_id, i.sequence, i.due_date, i.amount, i.status,
			i.paid_amount, i.paid_date, i.payment_method, i.receipt_number, i.version,
			s.unit_id, s.buyer_id, b.full_name
		FROM installments i
		JOIN sales s ON s.sale_id = i.sale_id
		JOIN buyers b ON b.buyer_id = s.buyer_id
		WHERE s.agency_id = $1
		  AND s.status = $2
		  AND i.due_date < $3
		  AND i.paid_amount < i.amount
		ORDER BY i.due_date;
	`
	rows, err := r.db.Query(ctx, query, agencyID, string(domain.SaleInProgress), asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue installments for agency %s: %w", agencyID, err)
	}
	defer rows.Close()

	results := []domain.OverdueInstallment{}
	for rows.Next() {
		var inst domain.Installment
		var entry domain.OverdueInstallment
		err := rows.Scan(
			&inst.InstallmentID,
			&inst.SaleID,
			&inst.Sequence,
			&inst.DueDate,
			&inst.Amount,
			&inst.Status,
			&inst.PaidAmount,
			&inst.PaidDate,
			&inst.PaymentMethod,
			&inst.ReceiptNumber,
			&inst.Version,
			&entry.UnitID,
			&entry.BuyerID,
			&entry.BuyerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overdue installment row: %w", err)
		}
		entry.Installment = inst
		entry.SaleID = inst.SaleID
		entry.Remaining = inst.Remaining()
		entry.DaysOverdue = inst.DaysOverdue(asOf)
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overdue installment rows: %w", err)
	}
	return results, nil
}

// GetCollectionRateData sums what fell due against what was collected over a
// period. Cancelled sales are excluded from both sides.
func (r *reportingRepository) GetCollectionRateData(ctx context.Context, agencyID string, from, to time.Time) (due decimal.Decimal, collected decimal.Decimal, err error) {
	dueQuery := `
		SELECT COALESCE(SUM(i.amount), 0)
		FROM installments i
		JOIN sales s ON s.sale_id = i.sale_id
		WHERE s.agency_id = $1
		  AND s.status != $2
		  AND i.due_date >= $3
		  AND i.due_date <= $4;
	`
	err = r.db.QueryRow(ctx, dueQuery, agencyID, string(domain.SaleCancelled), from, to).Scan(&due)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum due amounts for agency %s: %w", agencyID, err)
	}

	collectedQuery := `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN sales s ON s.sale_id = p.sale_id
		WHERE s.agency_id = $1
		  AND s.status != $2
		  AND p.paid_date >= $3
		  AND p.paid_date <= $4;
	`
	err = r.db.QueryRow(ctx, collectedQuery, agencyID, string(domain.SaleCancelled), from, to).Scan(&collected)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum collected amounts for agency %s: %w", agencyID, err)
	}
	return due, collected, nil
}

// GetSubdivisionOccupancy aggregates unit statuses per subdivision. Subdivisions
// with no units still appear, with zero counts.
func (r *reportingRepository) GetSubdivisionOccupancy(ctx context.Context, agencyID string) ([]domain.SubdivisionOccupancy, error) {
	query := `
		SELECT
			sd.subdivision_id,
			sd.name,
			COUNT(u.unit_id) FILTER (WHERE u.status = 'AVAILABLE'),
			COUNT(u.unit_id) FILTER (WHERE u.status = 'RESERVED'),
			COUNT(u.unit_id) FILTER (WHERE u.status = 'SOLD'),
			COALESCE(SUM(u.listed_price) FILTER (WHERE u.status = 'SOLD'), 0)
		FROM subdivisions sd
		LEFT JOIN units u ON u.subdivision_id = sd.subdivision_id
		WHERE sd.agency_id = $1
		GROUP BY sd.subdivision_id, sd.name
		ORDER BY sd.name;
	`
	rows, err := r.db.Query(ctx, query, agencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subdivision occupancy for agency %s: %w", agencyID, err)
	}
	defer rows.Close()

	results := []domain.SubdivisionOccupancy{}
	for rows.Next() {
		var occ domain.SubdivisionOccupancy
		err := rows.Scan(
			&occ.SubdivisionID,
			&occ.Name,
			&occ.AvailableUnits,
			&occ.ReservedUnits,
			&occ.SoldUnits,
			&occ.SoldValue,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subdivision occupancy row: %w", err)
		}
		results = append(results, occ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subdivision occupancy rows: %w", err)
	}
	return results, nil
}
