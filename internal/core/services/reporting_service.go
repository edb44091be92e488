package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
)

type reportingService struct {
	reportingRepo portsrepo.ReportingRepository
	agencySvc     portssvc.AgencySvcFacade
}

// NewReportingService creates a new reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, agencySvc portssvc.AgencySvcFacade) portssvc.ReportingService {
	return &reportingService{reportingRepo: reportingRepo, agencySvc: agencySvc}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func (s *reportingService) OverdueInstallments(ctx context.Context, agencyID string, asOf time.Time, userID string) ([]domain.OverdueInstallment, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, userID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	entries, err := s.reportingRepo.GetOverdueInstallments(ctx, agencyID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue installments for agency %s: %w", agencyID, err)
	}
	return entries, nil
}

func (s *reportingService) CollectionRate(ctx context.Context, agencyID string, from, to time.Time, userID string) (*domain.CollectionRate, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, userID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	due, collected, err := s.reportingRepo.GetCollectionRateData(ctx, agencyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection rate data for agency %s: %w", agencyID, err)
	}

	rate := decimal.Zero
	if due.IsPositive() {
		rate = collected.Div(due).Round(4)
	}
	return &domain.CollectionRate{
		From:      from,
		To:        to,
		DueAmount: due,
		Collected: collected,
		Rate:      rate,
	}, nil
}

func (s *reportingService) SubdivisionOccupancy(ctx context.Context, agencyID string, userID string) ([]domain.SubdivisionOccupancy, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, userID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	occupancy, err := s.reportingRepo.GetSubdivisionOccupancy(ctx, agencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subdivision occupancy for agency %s: %w", agencyID, err)
	}
	return occupancy, nil
}
