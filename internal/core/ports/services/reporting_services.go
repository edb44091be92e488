package services

import (
	"context"
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
)

// ReportingService defines operations for generating reconciliation reports
type ReportingService interface {
	// OverdueInstallments lists late installments for an agency as of a date,
	// ordered by due date ascending.
	OverdueInstallments(ctx context.Context, agencyID string, asOf time.Time, userID string) ([]domain.OverdueInstallment, error)

	// CollectionRate computes the due versus collected position of an agency
	// over a period.
	CollectionRate(ctx context.Context, agencyID string, from, to time.Time, userID string) (*domain.CollectionRate, error)

	// SubdivisionOccupancy aggregates unit statuses per subdivision.
	SubdivisionOccupancy(ctx context.Context, agencyID string, userID string) ([]domain.SubdivisionOccupancy, error)
}
