package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahelimmo/lotissement_app/internal/apperrors"
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	"github.com/sahelimmo/lotissement_app/internal/models"
	"github.com/sahelimmo/lotissement_app/internal/utils/mapping"
)

type PgxUnitRepository struct {
	BaseRepository
}

// newPgxUnitRepository creates a new repository for unit data.
func newPgxUnitRepository(pool *pgxpool.Pool) portsrepo.UnitRepositoryWithTx {
	return &PgxUnitRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxUnitRepository implements portsrepo.UnitRepositoryWithTx
var _ portsrepo.UnitRepositoryWithTx = (*PgxUnitRepository)(nil)

const unitSelectColumns = `
	unit_id, agency_id, subdivision_id, block_id, reference, area, listed_price,
	status, assigned_user_id, created_at, created_by, last_updated_at, last_updated_by
`

func scanUnit(row pgx.Row) (*models.Unit, error) {
	var m models.Unit
	err := row.Scan(
		&m.UnitID,
		&m.AgencyID,
		&m.SubdivisionID,
		&m.BlockID,
		&m.Reference,
		&m.Area,
		&m.ListedPrice,
		&m.Status,
		&m.AssignedUserID,
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

// unitExecutor is satisfied by both the pool and an open pgx.Tx, so the unit
// insert can run standalone or inside a capacity-checked transaction.
type unitExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (r *PgxUnitRepository) SaveUnit(ctx context.Context, unit domain.Unit) error {
	return r.insertUnit(ctx, r.Pool, unit)
}

func (r *PgxUnitRepository) SaveUnitInTx(ctx context.Context, tx pgx.Tx, unit domain.Unit) error {
	return r.insertUnit(ctx, tx, unit)
}

func (r *PgxUnitRepository) insertUnit(ctx context.Context, db unitExecutor, unit domain.Unit) error {
	m := mapping.ToModelUnit(unit)
	query := `
		INSERT INTO units (
			unit_id, agency_id, subdivision_id, block_id, reference, area, listed_price,
			status, assigned_user_id, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := db.Exec(ctx, query,
		m.UnitID,
		m.AgencyID,
		m.SubdivisionID,
		m.BlockID,
		m.Reference,
		m.Area,
		m.ListedPrice,
		m.Status,
		m.AssignedUserID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on (subdivision_id, reference)
			return apperrors.NewConflictError("unit reference " + m.Reference + " already exists in subdivision")
		}
		return apperrors.NewAppError(500, "failed to save unit "+m.UnitID, err)
	}
	return nil
}

func (r *PgxUnitRepository) UpdateUnit(ctx context.Context, unit domain.Unit) error {
	m := mapping.ToModelUnit(unit)
	query := `
		UPDATE units
		SET reference = $2, area = $3, listed_price = $4, status = $5, assigned_user_id = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE unit_id = $1;
	`
	result, err := r.Pool.Exec(ctx, query,
		m.UnitID,
		m.Reference,
		m.Area,
		m.ListedPrice,
		m.Status,
		m.AssignedUserID,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.NewConflictError("unit reference " + m.Reference + " already exists in subdivision")
		}
		return apperrors.NewAppError(500, "failed to update unit "+m.UnitID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("unit " + m.UnitID + " not found")
	}
	return nil
}

func (r *PgxUnitRepository) FindUnitByID(ctx context.Context, unitID string) (*domain.Unit, error) {
	query := `SELECT ` + unitSelectColumns + ` FROM units WHERE unit_id = $1;`
	m, err := scanUnit(r.Pool.QueryRow(ctx, query, unitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find unit by ID "+unitID, err)
	}
	d := mapping.ToDomainUnit(*m)
	return &d, nil
}

func (r *PgxUnitRepository) FindUnitByReference(ctx context.Context, subdivisionID string, reference string) (*domain.Unit, error) {
	query := `SELECT ` + unitSelectColumns + ` FROM units WHERE subdivision_id = $1 AND reference = $2;`
	m, err := scanUnit(r.Pool.QueryRow(ctx, query, subdivisionID, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find unit by reference "+reference, err)
	}
	d := mapping.ToDomainUnit(*m)
	return &d, nil
}

func (r *PgxUnitRepository) ListUnitsBySubdivision(ctx context.Context, subdivisionID string, status *domain.UnitStatus, limit int, offset int) ([]domain.Unit, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + unitSelectColumns + ` FROM units WHERE subdivision_id = $1`
	args := []interface{}{subdivisionID}
	if status != nil {
		query += ` AND status = $2 ORDER BY reference LIMIT $3 OFFSET $4;`
		args = append(args, string(*status), limit, offset)
	} else {
		query += ` ORDER BY reference LIMIT $2 OFFSET $3;`
		args = append(args, limit, offset)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query units for subdivision "+subdivisionID, err)
	}
	defer rows.Close()

	units := []domain.Unit{}
	for rows.Next() {
		m, err := scanUnit(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan unit row", err)
		}
		units = append(units, mapping.ToDomainUnit(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating unit rows", err)
	}
	return units, nil
}

// FindUnitByIDForUpdate selects and locks the unit row; the caller's
// transaction serializes competing sale creations on the same unit.
func (r *PgxUnitRepository) FindUnitByIDForUpdate(ctx context.Context, tx pgx.Tx, unitID string) (*domain.Unit, error) {
	query := `SELECT ` + unitSelectColumns + ` FROM units WHERE unit_id = $1 FOR UPDATE;`
	m, err := scanUnit(tx.QueryRow(ctx, query, unitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock unit "+unitID, err)
	}
	d := mapping.ToDomainUnit(*m)
	return &d, nil
}

func (r *PgxUnitRepository) UpdateUnitStatusInTx(ctx context.Context, tx pgx.Tx, unitID string, status domain.UnitStatus, userID string, now time.Time) error {
	query := `
		UPDATE units
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE unit_id = $1;
	`
	result, err := tx.Exec(ctx, query, unitID, string(status), now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of unit "+unitID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("unit " + unitID + " not found")
	}
	return nil
}

func (r *PgxUnitRepository) AssignUnitToBlockInTx(ctx context.Context, tx pgx.Tx, unitID string, blockID *string, userID string, now time.Time) error {
	query := `
		UPDATE units
		SET block_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE unit_id = $1;
	`
	result, err := tx.Exec(ctx, query, unitID, blockID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to assign unit "+unitID+" to block", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("unit " + unitID + " not found")
	}
	return nil
}
