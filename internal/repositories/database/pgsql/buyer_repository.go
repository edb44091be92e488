package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahelimmo/lotissement_app/internal/apperrors"
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	"github.com/sahelimmo/lotissement_app/internal/models"
	"github.com/sahelimmo/lotissement_app/internal/utils/mapping"
)

type PgxBuyerRepository struct {
	BaseRepository
}

// newPgxBuyerRepository creates a new repository for buyer data.
func newPgxBuyerRepository(pool *pgxpool.Pool) portsrepo.BuyerRepositoryWithTx {
	return &PgxBuyerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxBuyerRepository implements portsrepo.BuyerRepositoryWithTx
var _ portsrepo.BuyerRepositoryWithTx = (*PgxBuyerRepository)(nil)

const buyerSelectColumns = `
	buyer_id, agency_id, full_name, phone, email, national_id, address,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanBuyer(row pgx.Row) (*models.Buyer, error) {
	var m models.Buyer
	err := row.Scan(
		&m.BuyerID,
		&m.AgencyID,
		&m.FullName,
		&m.Phone,
		&m.Email,
		&m.NationalID,
		&m.Address,
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

func (r *PgxBuyerRepository) SaveBuyer(ctx context.Context, buyer domain.Buyer) error {
	m := mapping.ToModelBuyer(buyer)
	query := `
		INSERT INTO buyers (
			buyer_id, agency_id, full_name, phone, email, national_id, address,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.BuyerID,
		m.AgencyID,
		m.FullName,
		m.Phone,
		m.Email,
		m.NationalID,
		m.Address,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save buyer "+m.BuyerID, err)
	}
	return nil
}

func (r *PgxBuyerRepository) UpdateBuyer(ctx context.Context, buyer domain.Buyer) error {
	m := mapping.ToModelBuyer(buyer)
	query := `
		UPDATE buyers
		SET full_name = $2, phone = $3, email = $4, national_id = $5, address = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE buyer_id = $1;
	`
	result, err := r.Pool.Exec(ctx, query,
		m.BuyerID,
		m.FullName,
		m.Phone,
		m.Email,
		m.NationalID,
		m.Address,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update buyer "+m.BuyerID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("buyer " + m.BuyerID + " not found")
	}
	return nil
}

func (r *PgxBuyerRepository) FindBuyerByID(ctx context.Context, buyerID string) (*domain.Buyer, error) {
	query := `SELECT ` + buyerSelectColumns + ` FROM buyers WHERE buyer_id = $1;`
	m, err := scanBuyer(r.Pool.QueryRow(ctx, query, buyerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find buyer by ID "+buyerID, err)
	}
	d := mapping.ToDomainBuyer(*m)
	return &d, nil
}

func (r *PgxBuyerRepository) ListBuyersByAgency(ctx context.Context, agencyID string, limit int, offset int) ([]domain.Buyer, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + buyerSelectColumns + `
		FROM buyers
		WHERE agency_id = $1
		ORDER BY full_name
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query buyers for agency "+agencyID, err)
	}
	defer rows.Close()

	buyers := []domain.Buyer{}
	for rows.Next() {
		m, err := scanBuyer(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan buyer row", err)
		}
		buyers = append(buyers, mapping.ToDomainBuyer(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating buyer rows", err)
	}
	return buyers, nil
}
