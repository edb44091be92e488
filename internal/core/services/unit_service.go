package services

import (
	"context"
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

// unitService handles business logic for units, including capacity-checked
// block assignment.
type unitService struct {
	unitRepo        portsrepo.UnitRepositoryWithTx
	subdivisionRepo portsrepo.SubdivisionRepositoryWithTx
	agencySvc       portssvc.AgencySvcFacade
}

// NewUnitService creates a new unit service.
func NewUnitService(ur portsrepo.UnitRepositoryWithTx, sr portsrepo.SubdivisionRepositoryWithTx, agencySvc portssvc.AgencySvcFacade) portssvc.UnitSvcFacade {
	return &unitService{
		unitRepo:        ur,
		subdivisionRepo: sr,
		agencySvc:       agencySvc,
	}
}

var _ portssvc.UnitSvcFacade = (*unitService)(nil)

// findUnitInAgency loads a unit and verifies it belongs to the agency.
func (s *unitService) findUnitInAgency(ctx context.Context, agencyID, unitID string) (*domain.Unit, error) {
	unit, err := s.unitRepo.FindUnitByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	return unit, nil
}

// GetUnitByID retrieves a unit, scoped to the agency.
func (s *unitService) GetUnitByID(ctx context.Context, agencyID string, unitID string, requestingUserID string) (*domain.Unit, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.findUnitInAgency(ctx, agencyID, unitID)
}

// ListUnits retrieves units of a subdivision, optionally filtered by status.
func (s *unitService) ListUnits(ctx context.Context, agencyID string, subdivisionID string, requestingUserID string, params dto.ListUnitsParams) ([]domain.Unit, error) {
	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	subdivision, err := s.subdivisionRepo.FindSubdivisionByID(ctx, subdivisionID)
	if err != nil {
		return nil, err
	}
	if subdivision.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	units, err := s.unitRepo.ListUnitsBySubdivision(ctx, subdivisionID, params.Status, limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list units for subdivision %s: %w", subdivisionID, err)
	}
	if units == nil {
		return []domain.Unit{}, nil
	}
	return units, nil
}

// CreateUnit persists a new unit. When a block is given, the block row is
// locked and its unit count checked before the insert, so a concurrent
// assignment cannot exceed the cap.
func (s *unitService) CreateUnit(ctx context.Context, agencyID string, req dto.CreateUnitRequest, creatorUserID string) (*domain.Unit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.agencySvc.AuthorizeUserAction(ctx, creatorUserID, agencyID, domain.RoleMember); err != nil {
		return nil, err
	}

	subdivision, err := s.subdivisionRepo.FindSubdivisionByID(ctx, req.SubdivisionID)
	if err != nil {
		return nil, err
	}
	if subdivision.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}

	if req.Area.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: unit area must be positive", apperrors.ErrValidation)
	}
	if req.ListedPrice.IsNegative() {
		return nil, fmt.Errorf("%w: listed price cannot be negative", apperrors.ErrValidation)
	}

	now := time.Now()
	unit := domain.Unit{
		UnitID:        uuid.NewString(),
		AgencyID:      agencyID,
		SubdivisionID: req.SubdivisionID,
		BlockID:       req.BlockID,
		Reference:     req.Reference,
		Area:          req.Area,
		ListedPrice:   req.ListedPrice,
		Status:        domain.UnitAvailable,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if req.BlockID == nil {
		if err := s.unitRepo.SaveUnit(ctx, unit); err != nil {
			logger.Error("Failed to save unit in repository", slog.String("error", err.Error()), slog.String("subdivision_id", req.SubdivisionID))
			return nil, err
		}
		logger.Info("Unit created", slog.String("unit_id", unit.UnitID), slog.String("subdivision_id", req.SubdivisionID))
		return &unit, nil
	}

	// Hold the block lock across the insert so the capacity count stays valid
	// until the unit row exists.
	tx, err := s.unitRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for unit creation: %w", err)
	}
	defer s.unitRepo.Rollback(ctx, tx)

	block, err := s.subdivisionRepo.FindBlockByIDForUpdate(ctx, tx, *req.BlockID)
	if err != nil {
		return nil, err
	}
	if block.SubdivisionID != req.SubdivisionID {
		return nil, fmt.Errorf("%w: block %s does not belong to subdivision %s", apperrors.ErrValidation, *req.BlockID, req.SubdivisionID)
	}
	count, err := s.subdivisionRepo.CountUnitsInBlockInTx(ctx, tx, *req.BlockID)
	if err != nil {
		return nil, err
	}
	if !block.CanAssign(count) {
		return nil, apperrors.NewConflictError(fmt.Sprintf("block %s is full (%d units)", *req.BlockID, count))
	}

	if err := s.unitRepo.SaveUnitInTx(ctx, tx, unit); err != nil {
		logger.Error("Failed to save unit in repository", slog.String("error", err.Error()), slog.String("subdivision_id", req.SubdivisionID))
		return nil, err
	}

	if err := s.unitRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit unit creation: %w", err)
	}

	logger.Info("Unit created in block", slog.String("unit_id", unit.UnitID), slog.String("block_id", *req.BlockID))
	return &unit, nil
}

// UpdateUnit updates a unit's details. Sold units cannot change status or
// reference through this path.
func (s *unitService) UpdateUnit(ctx context.Context, agencyID string, unitID string, req dto.UpdateUnitRequest, requestingUserID string) (*domain.Unit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleMember); err != nil {
		return nil, err
	}

	unit, err := s.findUnitInAgency(ctx, agencyID, unitID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if unit.Status == domain.UnitSold {
			return nil, fmt.Errorf("%w: sold units change status only through sale operations", apperrors.ErrStateInvalid)
		}
		if *req.Status == domain.UnitSold {
			return nil, fmt.Errorf("%w: units are marked sold only through sale operations", apperrors.ErrStateInvalid)
		}
		unit.Status = *req.Status
	}
	if req.Reference != nil {
		unit.Reference = *req.Reference
	}
	if req.Area != nil {
		unit.Area = *req.Area
	}
	if req.ListedPrice != nil {
		unit.ListedPrice = *req.ListedPrice
	}
	if req.AssignedUserID != nil {
		unit.AssignedUserID = req.AssignedUserID
	}
	unit.LastUpdatedAt = time.Now()
	unit.LastUpdatedBy = requestingUserID

	if err := s.unitRepo.UpdateUnit(ctx, *unit); err != nil {
		logger.Error("Failed to update unit in repository", slog.String("error", err.Error()), slog.String("unit_id", unitID))
		return nil, err
	}

	return unit, nil
}

// AssignUnitToBlock moves a unit into a block, enforcing the block's capacity
// inside the assignment transaction. A nil blockID detaches the unit.
func (s *unitService) AssignUnitToBlock(ctx context.Context, agencyID string, unitID string, blockID *string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.agencySvc.AuthorizeUserAction(ctx, requestingUserID, agencyID, domain.RoleMember); err != nil {
		return err
	}

	unit, err := s.findUnitInAgency(ctx, agencyID, unitID)
	if err != nil {
		return err
	}

	now := time.Now()
	tx, err := s.unitRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for block assignment: %w", err)
	}
	defer s.unitRepo.Rollback(ctx, tx)

	if blockID != nil {
		block, err := s.subdivisionRepo.FindBlockByIDForUpdate(ctx, tx, *blockID)
		if err != nil {
			return err
		}
		if block.SubdivisionID != unit.SubdivisionID {
			return fmt.Errorf("%w: block %s does not belong to subdivision %s", apperrors.ErrValidation, *blockID, unit.SubdivisionID)
		}
		count, err := s.subdivisionRepo.CountUnitsInBlockInTx(ctx, tx, *blockID)
		if err != nil {
			return err
		}
		if !block.CanAssign(count) {
			return apperrors.NewConflictError(fmt.Sprintf("block %s is full (%d units)", *blockID, count))
		}
	}

	if err := s.unitRepo.AssignUnitToBlockInTx(ctx, tx, unitID, blockID, requestingUserID, now); err != nil {
		logger.Error("Failed to assign unit to block", slog.String("error", err.Error()), slog.String("unit_id", unitID))
		return err
	}

	if err := s.unitRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit block assignment: %w", err)
	}

	logger.Info("Unit block assignment updated", slog.String("unit_id", unitID))
	return nil
}
