package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahelimmo/lotissement_app/internal/apperrors"
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	"github.com/sahelimmo/lotissement_app/internal/models"
	"github.com/sahelimmo/lotissement_app/internal/utils/mapping"
)

type PgxSubdivisionRepository struct {
	BaseRepository
}

// newPgxSubdivisionRepository creates a new repository for subdivision and block data.
func newPgxSubdivisionRepository(pool *pgxpool.Pool) portsrepo.SubdivisionRepositoryWithTx {
	return &PgxSubdivisionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxSubdivisionRepository implements portsrepo.SubdivisionRepositoryWithTx
var _ portsrepo.SubdivisionRepositoryWithTx = (*PgxSubdivisionRepository)(nil)

const subdivisionSelectColumns = `
	subdivision_id, agency_id, name, location, description, total_area, is_active,
	created_at, created_by, last_updated_at, last_updated_by
`

const blockSelectColumns = `
	block_id, subdivision_id, name, max_units,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanSubdivision(row pgx.Row) (*models.Subdivision, error) {
	var m models.Subdivision
	err := row.Scan(
		&m.SubdivisionID,
		&m.AgencyID,
		&m.Name,
		&m.Location,
		&m.Description,
		&m.TotalArea,
		&m.IsActive,
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

func scanBlock(row pgx.Row) (*models.Block, error) {
	var m models.Block
	err := row.Scan(
		&m.BlockID,
		&m.SubdivisionID,
		&m.Name,
		&m.MaxUnits,
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

func (r *PgxSubdivisionRepository) SaveSubdivision(ctx context.Context, subdivision domain.Subdivision) error {
	m := mapping.ToModelSubdivision(subdivision)
	query := `
		INSERT INTO subdivisions (
			subdivision_id, agency_id, name, location, description, total_area, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.SubdivisionID,
		m.AgencyID,
		m.Name,
		m.Location,
		m.Description,
		m.TotalArea,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("subdivision " + m.Name + " already exists in agency")
		}
		return apperrors.NewAppError(500, "failed to save subdivision "+m.SubdivisionID, err)
	}
	return nil
}

func (r *PgxSubdivisionRepository) UpdateSubdivision(ctx context.Context, subdivision domain.Subdivision) error {
	m := mapping.ToModelSubdivision(subdivision)
	query := `
		UPDATE subdivisions
		SET name = $2, location = $3, description = $4, total_area = $5, is_active = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE subdivision_id = $1;
	`
	result, err := r.Pool.Exec(ctx, query,
		m.SubdivisionID,
		m.Name,
		m.Location,
		m.Description,
		m.TotalArea,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update subdivision "+m.SubdivisionID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("subdivision " + m.SubdivisionID + " not found")
	}
	return nil
}

func (r *PgxSubdivisionRepository) FindSubdivisionByID(ctx context.Context, subdivisionID string) (*domain.Subdivision, error) {
	query := `SELECT ` + subdivisionSelectColumns + ` FROM subdivisions WHERE subdivision_id = $1;`
	m, err := scanSubdivision(r.Pool.QueryRow(ctx, query, subdivisionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find subdivision by ID "+subdivisionID, err)
	}
	d := mapping.ToDomainSubdivision(*m)
	return &d, nil
}

func (r *PgxSubdivisionRepository) ListSubdivisionsByAgency(ctx context.Context, agencyID string, limit int, offset int) ([]domain.Subdivision, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + subdivisionSelectColumns + `
		FROM subdivisions
		WHERE agency_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query subdivisions for agency "+agencyID, err)
	}
	defer rows.Close()

	subdivisions := []domain.Subdivision{}
	for rows.Next() {
		m, err := scanSubdivision(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan subdivision row", err)
		}
		subdivisions = append(subdivisions, mapping.ToDomainSubdivision(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating subdivision rows", err)
	}
	return subdivisions, nil
}

func (r *PgxSubdivisionRepository) SaveBlock(ctx context.Context, block domain.Block) error {
	m := mapping.ToModelBlock(block)
	query := `
		INSERT INTO blocks (
			block_id, subdivision_id, name, max_units,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.BlockID,
		m.SubdivisionID,
		m.Name,
		m.MaxUnits,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("block " + m.Name + " already exists in subdivision")
		}
		return apperrors.NewAppError(500, "failed to save block "+m.BlockID, err)
	}
	return nil
}

func (r *PgxSubdivisionRepository) UpdateBlock(ctx context.Context, block domain.Block) error {
	m := mapping.ToModelBlock(block)
	query := `
		UPDATE blocks
		SET name = $2, max_units = $3, last_updated_at = $4, last_updated_by = $5
		WHERE block_id = $1;
	`
	result, err := r.Pool.Exec(ctx, query,
		m.BlockID,
		m.Name,
		m.MaxUnits,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update block "+m.BlockID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("block " + m.BlockID + " not found")
	}
	return nil
}

func (r *PgxSubdivisionRepository) UpdateBlockInTx(ctx context.Context, tx pgx.Tx, block domain.Block) error {
	m := mapping.ToModelBlock(block)
	query := `
		UPDATE blocks
		SET name = $2, max_units = $3, last_updated_at = $4, last_updated_by = $5
		WHERE block_id = $1;
	`
	result, err := tx.Exec(ctx, query,
		m.BlockID,
		m.Name,
		m.MaxUnits,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update block "+m.BlockID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("block " + m.BlockID + " not found")
	}
	return nil
}

func (r *PgxSubdivisionRepository) FindBlockByID(ctx context.Context, blockID string) (*domain.Block, error) {
	query := `SELECT ` + blockSelectColumns + ` FROM blocks WHERE block_id = $1;`
	m, err := scanBlock(r.Pool.QueryRow(ctx, query, blockID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find block by ID "+blockID, err)
	}
	d := mapping.ToDomainBlock(*m)
	return &d, nil
}

func (r *PgxSubdivisionRepository) ListBlocksBySubdivision(ctx context.Context, subdivisionID string) ([]domain.Block, error) {
	query := `
		SELECT ` + blockSelectColumns + `
		FROM blocks
		WHERE subdivision_id = $1
		ORDER BY name;
	`
	rows, err := r.Pool.Query(ctx, query, subdivisionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query blocks for subdivision "+subdivisionID, err)
	}
	defer rows.Close()

	blocks := []domain.Block{}
	for rows.Next() {
		m, err := scanBlock(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan block row", err)
		}
		blocks = append(blocks, mapping.ToDomainBlock(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating block rows", err)
	}
	return blocks, nil
}

// FindBlockByIDForUpdate selects and locks the block row so the capacity count
// stays valid until the surrounding transaction ends.
func (r *PgxSubdivisionRepository) FindBlockByIDForUpdate(ctx context.Context, tx pgx.Tx, blockID string) (*domain.Block, error) {
	query := `SELECT ` + blockSelectColumns + ` FROM blocks WHERE block_id = $1 FOR UPDATE;`
	m, err := scanBlock(tx.QueryRow(ctx, query, blockID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock block "+blockID, err)
	}
	d := mapping.ToDomainBlock(*m)
	return &d, nil
}

func (r *PgxSubdivisionRepository) CountUnitsInBlockInTx(ctx context.Context, tx pgx.Tx, blockID string) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM units WHERE block_id = $1;`, blockID).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count units in block "+blockID, err)
	}
	return count, nil
}
