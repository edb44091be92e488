package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahelimmo/lotissement_app/internal/apperrors"
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	"github.com/sahelimmo/lotissement_app/internal/models"
	"github.com/sahelimmo/lotissement_app/internal/utils/mapping"
)

type PgxAPITokenRepository struct {
	BaseRepository
}

// newPgxAPITokenRepository creates a new instance of PgxAPITokenRepository
func newPgxAPITokenRepository(db *pgxpool.Pool) portsrepo.APITokenRepository {
	return &PgxAPITokenRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// Ensure PgxAPITokenRepository implements portsrepo.APITokenRepository
var _ portsrepo.APITokenRepository = (*PgxAPITokenRepository)(nil)

const (
	apiTokensTable = "api_tokens"

	selectAPITokenFields = `
		id, user_id, name, token_hash,
		last_used_at, expires_at, created_at, updated_at
	`

	insertAPITokenQuery = `
		INSERT INTO ` + apiTokensTable + ` (
			id, user_id, name, token_hash, expires_at
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + selectAPITokenFields

	findAPITokenByIDQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM ` + apiTokensTable + `
		WHERE id = $1 AND deleted_at IS NULL
	`

	findAPITokenByUserIDQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM ` + apiTokensTable + `
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	findAPITokenByHashQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM ` + apiTokensTable + `
		WHERE token_hash = $1 AND deleted_at IS NULL
	`

	updateAPITokenQuery = `
		UPDATE ` + apiTokensTable + `
		SET
			last_used_at = COALESCE($2, last_used_at),
			updated_at = NOW()
		WHERE id = $1
	`

	deleteAPITokenQuery = `
		UPDATE ` + apiTokensTable + `
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	deleteExpiredAPITokensQuery = `
		UPDATE ` + apiTokensTable + `
		SET deleted_at = NOW()
		WHERE expires_at < $1 AND deleted_at IS NULL
	`
)

func scanAPIToken(row pgx.Row) (*models.APIToken, error) {
	var m models.APIToken
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.TokenHash,
		&m.LastUsedAt,
		&m.ExpiresAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persists a new API token
func (r *PgxAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	if token == nil {
		return errors.New("token cannot be nil")
	}

	modelToken := mapping.ToModelAPIToken(*token)

	row := r.Pool.QueryRow(
		ctx,
		insertAPITokenQuery,
		modelToken.ID,
		modelToken.UserID,
		modelToken.Name,
		modelToken.TokenHash,
		modelToken.ExpiresAt,
	)

	createdToken, err := scanAPIToken(row)
	if err != nil {
		return apperrors.NewAppError(500, "failed to create api token", err)
	}

	// Update the original token with the generated values
	token.CreatedAt = createdToken.CreatedAt
	token.UpdatedAt = createdToken.UpdatedAt
	return nil
}

// FindByID retrieves an API token by its ID
func (r *PgxAPITokenRepository) FindByID(ctx context.Context, id string) (*domain.APIToken, error) {
	row := r.Pool.QueryRow(ctx, findAPITokenByIDQuery, id)
	m, err := scanAPIToken(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find api token by ID", err)
	}
	d := mapping.ToDomainAPIToken(*m)
	return &d, nil
}

// FindByUserID retrieves all API tokens for a specific user
func (r *PgxAPITokenRepository) FindByUserID(ctx context.Context, userID string) ([]domain.APIToken, error) {
	rows, err := r.Pool.Query(ctx, findAPITokenByUserIDQuery, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query api tokens for user "+userID, err)
	}
	defer rows.Close()

	tokens := []domain.APIToken{}
	for rows.Next() {
		m, err := scanAPIToken(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan api token row", err)
		}
		tokens = append(tokens, mapping.ToDomainAPIToken(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating api token rows", err)
	}
	return tokens, nil
}

// FindByToken finds a token by its hash (used for validation)
func (r *PgxAPITokenRepository) FindByToken(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
	row := r.Pool.QueryRow(ctx, findAPITokenByHashQuery, tokenHash)
	m, err := scanAPIToken(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find api token by hash", err)
	}
	d := mapping.ToDomainAPIToken(*m)
	return &d, nil
}

// Update updates an existing API token (currently only last_used_at)
func (r *PgxAPITokenRepository) Update(ctx context.Context, token *domain.APIToken) error {
	if token == nil {
		return errors.New("token cannot be nil")
	}
	cmdTag, err := r.Pool.Exec(ctx, updateAPITokenQuery, token.ID, token.LastUsedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update api token "+token.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete soft-deletes an API token by ID
func (r *PgxAPITokenRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.Pool.Exec(ctx, deleteAPITokenQuery, id)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete api token "+id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteExpired soft-deletes all API tokens expired before the given time
func (r *PgxAPITokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	cmdTag, err := r.Pool.Exec(ctx, deleteExpiredAPITokensQuery, before)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to delete expired api tokens", err)
	}
	return cmdTag.RowsAffected(), nil
}
