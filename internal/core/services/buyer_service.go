package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sahelimmo/lotissement_app/internal/apperrors"
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/dto"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
)

// buyerService handles business logic for buyer records.
type buyerService struct {
	buyerRepo portsrepo.BuyerRepositoryFacade
	agencySvc portssvc.AgencySvcFacade
}

// NewBuyerService creates a new buyer service.
func NewBuyerService(br portsrepo.BuyerRepositoryFacade, agencySvc portssvc.AgencySvcFacade) portssvc.BuyerSvcFacade {
	return &buyerService{
		buyerRepo: br,
		agencySvc: agencySvc,
	}
}

var _ portssvc.BuyerSvcFacade = (*buyerService)(nil)

// GetBuyerByID retrieves a buyer, scoped to the agency.
func (s *buyerService) GetBuyerByID(ctx context.Context, agencyID string, buyerID string, requestingUserID string) (*domain.Buyer, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	buyer, err := s.buyerRepo.FindBuyerByID(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if buyer.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	return buyer, nil
}

// ListBuyers retrieves a paginated list of buyers in an agency.
func (s *buyerService) ListBuyers(ctx context.Context, agencyID string, requestingUserID string, limit, offset int) ([]domain.Buyer, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	buyers, err := s.buyerRepo.ListBuyersByAgency(ctx, agencyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list buyers for agency %s: %w", agencyID, err)
	}
	if buyers == nil {
		return []domain.Buyer{}, nil
	}
	return buyers, nil
}

// CreateBuyer persists a new buyer.
func (s *buyerService) CreateBuyer(ctx context.Context, agencyID string, req dto.CreateBuyerRequest, creatorUserID string) (*domain.Buyer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.agencySvc.AuthorizeUserAction(ctx, creatorUserID, agencyID, domain.RoleMember); err != nil {
		return nil, err
	}

	now := time.Now()
	buyer := domain.Buyer{
		BuyerID:    uuid.NewString(),
		AgencyID:   agencyID,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Email:      req.Email,
		NationalID: req.NationalID,
		Address:    req.Address,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.buyerRepo.SaveBuyer(ctx, buyer); err != nil {
		logger.Error("Failed to save buyer in repository", slog.String("error", err.Error()), slog.String("agency_id", agencyID))
		return nil, fmt.Errorf("failed to create buyer: %w", err)
	}

	logger.Info("Buyer created", slog.String("buyer_id", buyer.BuyerID), slog.String("agency_id", agencyID))
	return &buyer, nil
}

// UpdateBuyer updates an existing buyer's details.
func (s *buyerService) UpdateBuyer(ctx context.Context, agencyID string, buyerID string, req dto.UpdateBuyerRequest, requestingUserID string) (*domain.Buyer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleMember); err != nil {
		return nil, err
	}

	buyer, err := s.buyerRepo.FindBuyerByID(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if buyer.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}

	if req.FullName != nil {
		buyer.FullName = *req.FullName
	}
	if req.Phone != nil {
		buyer.Phone = *req.Phone
	}
	if req.Email != nil {
		buyer.Email = *req.Email
	}
	if req.NationalID != nil {
		buyer.NationalID = *req.NationalID
	}
	if req.Address != nil {
		buyer.Address = *req.Address
	}
	buyer.LastUpdatedAt = time.Now()
	buyer.LastUpdatedBy = requestingUserID

	if err := s.buyerRepo.UpdateBuyer(ctx, *buyer); err != nil {
		logger.Error("Failed to update buyer in repository", slog.String("error", err.Error()), slog.String("buyer_id", buyerID))
		return nil, fmt.Errorf("failed to update buyer %s: %w", buyerID, err)
	}

	return buyer, nil
}
