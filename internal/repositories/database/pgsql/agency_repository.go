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

type PgxAgencyRepository struct {
	BaseRepository
}

// newPgxAgencyRepository creates a new repository for agency data.
func newPgxAgencyRepository(pool *pgxpool.Pool) portsrepo.AgencyRepositoryWithTx {
	return &PgxAgencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxAgencyRepository implements portsrepo.AgencyRepositoryWithTx
var _ portsrepo.AgencyRepositoryWithTx = (*PgxAgencyRepository)(nil)

const agencySelectColumns = `
	a.agency_id, a.name, a.description, a.phone, a.email, a.is_active,
	a.created_at, a.created_by, a.last_updated_at, a.last_updated_by
`

func scanAgency(row pgx.Row) (*models.Agency, error) {
	var m models.Agency
	err := row.Scan(
		&m.AgencyID,
		&m.Name,
		&m.Description,
		&m.Phone,
		&m.Email,
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

func (r *PgxAgencyRepository) SaveAgency(ctx context.Context, agency domain.Agency) error {
	m := mapping.ToModelAgency(agency)
	query := `
		INSERT INTO agencies (
			agency_id, name, description, phone, email, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AgencyID,
		m.Name,
		m.Description,
		m.Phone,
		m.Email,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("agency ID " + m.AgencyID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save agency "+m.AgencyID, err)
	}
	return nil
}

func (r *PgxAgencyRepository) UpdateAgency(ctx context.Context, agency domain.Agency) error {
	m := mapping.ToModelAgency(agency)
	query := `
		UPDATE agencies
		SET name = $2, description = $3, phone = $4, email = $5, is_active = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE agency_id = $1;
	`
	result, err := r.Pool.Exec(ctx, query,
		m.AgencyID,
		m.Name,
		m.Description,
		m.Phone,
		m.Email,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update agency "+m.AgencyID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("agency " + m.AgencyID + " not found")
	}
	return nil
}

func (r *PgxAgencyRepository) FindAgencyByID(ctx context.Context, agencyID string) (*domain.Agency, error) {
	query := `SELECT ` + agencySelectColumns + ` FROM agencies a WHERE a.agency_id = $1;`
	m, err := scanAgency(r.Pool.QueryRow(ctx, query, agencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find agency by ID "+agencyID, err)
	}
	d := mapping.ToDomainAgency(*m)
	return &d, nil
}

func (r *PgxAgencyRepository) ListAgenciesByUserID(ctx context.Context, userID string) ([]domain.Agency, error) {
	query := `
		SELECT ` + agencySelectColumns + `
		FROM agencies a
		JOIN user_agencies ua ON a.agency_id = ua.agency_id
		WHERE ua.user_id = $1 AND ua.role != $2
		ORDER BY a.name;
	`
	rows, err := r.Pool.Query(ctx, query, userID, domain.RoleRemoved)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query agencies for user "+userID, err)
	}
	defer rows.Close()

	agencies := []domain.Agency{}
	for rows.Next() {
		m, err := scanAgency(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan agency row", err)
		}
		agencies = append(agencies, mapping.ToDomainAgency(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating agency rows", err)
	}
	return agencies, nil
}

func (r *PgxAgencyRepository) AddUserToAgency(ctx context.Context, membership domain.UserAgency) error {
	m := mapping.ToModelUserAgency(membership)
	query := `
		INSERT INTO user_agencies (user_id, agency_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, agency_id) DO UPDATE SET role = EXCLUDED.role;
	` // Upsert: add user or update their role if they already exist
	_, err := r.Pool.Exec(ctx, query,
		m.UserID,
		m.AgencyID,
		m.Role,
		m.JoinedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to add/update user "+m.UserID+" in agency "+m.AgencyID, err)
	}
	return nil
}

func (r *PgxAgencyRepository) FindUserAgencyRole(ctx context.Context, userID, agencyID string) (*domain.UserAgency, error) {
	query := `
		SELECT user_id, agency_id, role, joined_at
		FROM user_agencies
		WHERE user_id = $1 AND agency_id = $2;
	`
	var m models.UserAgency
	err := r.Pool.QueryRow(ctx, query, userID, agencyID).Scan(
		&m.UserID,
		&m.AgencyID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("membership not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find user "+userID+" agency role in "+agencyID, err)
	}
	d := mapping.ToDomainUserAgency(m)
	return &d, nil
}

func (r *PgxAgencyRepository) UpdateUserAgencyRole(ctx context.Context, userID, agencyID string, role domain.UserAgencyRole) error {
	query := `
		UPDATE user_agencies
		SET role = $3
		WHERE user_id = $1 AND agency_id = $2;
	`
	result, err := r.Pool.Exec(ctx, query, userID, agencyID, role)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update role for user "+userID+" in agency "+agencyID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("membership not found")
	}
	return nil
}

// ListAgencyMembers retrieves memberships of an agency, most recent first.
// Users removed from the agency are excluded.
func (r *PgxAgencyRepository) ListAgencyMembers(ctx context.Context, agencyID string) ([]domain.UserAgency, error) {
	query := `
		SELECT ua.user_id, u.name AS user_name, ua.agency_id, ua.role, ua.joined_at
		FROM user_agencies ua
		JOIN users u ON ua.user_id = u.user_id
		WHERE ua.agency_id = $1 AND ua.role != $2
		ORDER BY ua.joined_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, domain.RoleRemoved)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query members for agency "+agencyID, err)
	}
	defer rows.Close()

	members := []domain.UserAgency{}
	for rows.Next() {
		var ua domain.UserAgency
		err := rows.Scan(
			&ua.UserID,
			&ua.UserName,
			&ua.AgencyID,
			&ua.Role,
			&ua.JoinedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan agency member row", err)
		}
		members = append(members, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating agency member rows", err)
	}
	return members, nil
}
