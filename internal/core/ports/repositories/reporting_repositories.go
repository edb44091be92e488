package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
)

// ReportingRepository defines operations for retrieving reconciliation report data
type ReportingRepository interface {
	// GetOverdueInstallments retrieves late installments for an agency as of a
	// specific date, enriched with sale context, ordered by due date ascending.
	GetOverdueInstallments(ctx context.Context, agencyID string, asOf time.Time) ([]domain.OverdueInstallment, error)

	// GetCollectionRateData retrieves the amount fallen due and the amount
	// collected for an agency over a period.
	GetCollectionRateData(ctx context.Context, agencyID string, from, to time.Time) (due decimal.Decimal, collected decimal.Decimal, err error)

	// GetSubdivisionOccupancy aggregates unit statuses per subdivision for an agency.
	GetSubdivisionOccupancy(ctx context.Context, agencyID string) ([]domain.SubdivisionOccupancy, error)
}
