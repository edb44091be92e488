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

// subdivisionService handles business logic for subdivisions and their blocks.
type subdivisionService struct {
	subdivisionRepo portsrepo.SubdivisionRepositoryWithTx
	agencySvc       portssvc.AgencySvcFacade
}

// NewSubdivisionService creates a new subdivision service.
func NewSubdivisionService(sr portsrepo.SubdivisionRepositoryWithTx, agencySvc portssvc.AgencySvcFacade) portssvc.SubdivisionSvcFacade {
	return &subdivisionService{
		subdivisionRepo: sr,
		agencySvc:       agencySvc,
	}
}

var _ portssvc.SubdivisionSvcFacade = (*subdivisionService)(nil)

// findSubdivisionInAgency loads a subdivision and verifies it belongs to the
// agency. A subdivision from another tenant reads as not found.
func (s *subdivisionService) findSubdivisionInAgency(ctx context.Context, agencyID, subdivisionID string) (*domain.Subdivision, error) {
	subdivision, err := s.subdivisionRepo.FindSubdivisionByID(ctx, subdivisionID)
	if err != nil {
		return nil, err
	}
	if subdivision.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	return subdivision, nil
}

// GetSubdivisionByID retrieves a subdivision, scoped to the agency.
func (s *subdivisionService) GetSubdivisionByID(ctx context.Context, agencyID string, subdivisionID string, requestingUserID string) (*domain.Subdivision, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.findSubdivisionInAgency(ctx, agencyID, subdivisionID)
}

// ListSubdivisions retrieves a paginated list of subdivisions in an agency.
func (s *subdivisionService) ListSubdivisions(ctx context.Context, agencyID string, requestingUserID string, limit, offset int) ([]domain.Subdivision, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	subdivisions, err := s.subdivisionRepo.ListSubdivisionsByAgency(ctx, agencyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list subdivisions for agency %s: %w", agencyID, err)
	}
	if subdivisions == nil {
		return []domain.Subdivision{}, nil
	}
	return subdivisions, nil
}

// ListBlocks retrieves all blocks of a subdivision.
func (s *subdivisionService) ListBlocks(ctx context.Context, agencyID string, subdivisionID string, requestingUserID string) ([]domain.Block, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, err := s.findSubdivisionInAgency(ctx, agencyID, subdivisionID); err != nil {
		return nil, err
	}
	blocks, err := s.subdivisionRepo.ListBlocksBySubdivision(ctx, subdivisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks for subdivision %s: %w", subdivisionID, err)
	}
	if blocks == nil {
		return []domain.Block{}, nil
	}
	return blocks, nil
}

// CreateSubdivision persists a new subdivision.
func (s *subdivisionService) CreateSubdivision(ctx context.Context, agencyID string, req dto.CreateSubdivisionRequest, creatorUserID string) (*domain.Subdivision, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.agencySvc.AuthorizeUserAction(ctx, creatorUserID, agencyID, domain.RoleMember); err != nil {
		return nil, err
	}

	now := time.Now()
	subdivision := domain.Subdivision{
		SubdivisionID: uuid.NewString(),
		AgencyID:      agencyID,
		Name:          req.Name,
		Location:      req.Location,
		Description:   req.Description,
		TotalArea:     req.TotalArea,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.subdivisionRepo.SaveSubdivision(ctx, subdivision); err != nil {
		logger.Error("Failed to save subdivision in repository", slog.String("error", err.Error()), slog.String("agency_id", agencyID))
		return nil, fmt.Errorf("failed to create subdivision: %w", err)
	}

	logger.Info("Subdivision created", slog.String("subdivision_id", subdivision.SubdivisionID), slog.String("agency_id", agencyID))
	return &subdivision, nil
}

// UpdateSubdivision updates an existing subdivision's details.
func (s *subdivisionService) UpdateSubdivision(ctx context.Context, agencyID string, subdivisionID string, req dto.UpdateSubdivisionRequest, requestingUserID string) (*domain.Subdivision, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleMember); err != nil {
		return nil, err
	}

	subdivision, err := s.findSubdivisionInAgency(ctx, agencyID, subdivisionID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		subdivision.Name = *req.Name
	}
	if req.Location != nil {
		subdivision.Location = *req.Location
	}
	if req.Description != nil {
		subdivision.Description = *req.Description
	}
	if req.IsActive != nil {
		subdivision.IsActive = *req.IsActive
	}
	subdivision.LastUpdatedAt = time.Now()
	subdivision.LastUpdatedBy = requestingUserID

	if err := s.subdivisionRepo.UpdateSubdivision(ctx, *subdivision); err != nil {
		logger.Error("Failed to update subdivision in repository", slog.String("error", err.Error()), slog.String("subdivision_id", subdivisionID))
		return nil, fmt.Errorf("failed to update subdivision %s: %w", subdivisionID, err)
	}

	return subdivision, nil
}

// CreateBlock persists a new block in a subdivision.
func (s *subdivisionService) CreateBlock(ctx context.Context, agencyID string, subdivisionID string, req dto.CreateBlockRequest, creatorUserID string) (*domain.Block, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.agencySvc.AuthorizeUserAction(ctx, creatorUserID, agencyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if _, err := s.findSubdivisionInAgency(ctx, agencyID, subdivisionID); err != nil {
		return nil, err
	}

	if req.MaxUnits != nil && *req.MaxUnits < 1 {
		return nil, fmt.Errorf("%w: block capacity must be at least 1", apperrors.ErrValidation)
	}

	now := time.Now()
	block := domain.Block{
		BlockID:       uuid.NewString(),
		SubdivisionID: subdivisionID,
		Name:          req.Name,
		MaxUnits:      req.MaxUnits,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.subdivisionRepo.SaveBlock(ctx, block); err != nil {
		logger.Error("Failed to save block in repository", slog.String("error", err.Error()), slog.String("subdivision_id", subdivisionID))
		return nil, fmt.Errorf("failed to create block: %w", err)
	}

	logger.Info("Block created", slog.String("block_id", block.BlockID), slog.String("subdivision_id", subdivisionID))
	return &block, nil
}

// UpdateBlock updates an existing block. Lowering the cap below the number of
// units currently assigned is rejected; the count is taken under a block lock
// so a concurrent assignment cannot slip past the new cap.
func (s *subdivisionService) UpdateBlock(ctx context.Context, agencyID string, blockID string, req dto.UpdateBlockRequest, requestingUserID string) (*domain.Block, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleMember); err != nil {
		return nil, err
	}

	existing, err := s.subdivisionRepo.FindBlockByID(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findSubdivisionInAgency(ctx, agencyID, existing.SubdivisionID); err != nil {
		return nil, err
	}

	tx, err := s.subdivisionRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for block update: %w", err)
	}
	defer s.subdivisionRepo.Rollback(ctx, tx)

	block, err := s.subdivisionRepo.FindBlockByIDForUpdate(ctx, tx, blockID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		block.Name = *req.Name
	}
	if req.MaxUnits != nil {
		count, err := s.subdivisionRepo.CountUnitsInBlockInTx(ctx, tx, blockID)
		if err != nil {
			return nil, fmt.Errorf("failed to count units in block %s: %w", blockID, err)
		}
		if count > *req.MaxUnits {
			return nil, fmt.Errorf("%w: block %s holds %d units, cannot lower capacity to %d", apperrors.ErrValidation, blockID, count, *req.MaxUnits)
		}
		block.MaxUnits = req.MaxUnits
	}
	block.LastUpdatedAt = time.Now()
	block.LastUpdatedBy = requestingUserID

	if err := s.subdivisionRepo.UpdateBlockInTx(ctx, tx, *block); err != nil {
		logger.Error("Failed to update block in repository", slog.String("error", err.Error()), slog.String("block_id", blockID))
		return nil, fmt.Errorf("failed to update block %s: %w", blockID, err)
	}

	if err := s.subdivisionRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit block update: %w", err)
	}

	return block, nil
}
