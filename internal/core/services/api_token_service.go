package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	portsrepo "github.com/sahelimmo/lotissement_app/internal/core/ports/repositories"
	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/utils"
)

// apiTokenService implements the APITokenSvc interface
type apiTokenService struct {
	tokenRepo portsrepo.APITokenRepository
	userSvc   portssvc.UserSvcFacade
}

// NewAPITokenService creates a new instance of apiTokenService
func NewAPITokenService(tokenRepo portsrepo.APITokenRepository, userSvc portssvc.UserSvcFacade) portssvc.APITokenSvc {
	return &apiTokenService{
		tokenRepo: tokenRepo,
		userSvc:   userSvc,
	}
}

var _ portssvc.APITokenSvc = (*apiTokenService)(nil)

// CreateToken generates a new API token for the user
func (s *apiTokenService) CreateToken(ctx context.Context, userID, name string, expiresIn *time.Duration) (string, *domain.APIToken, error) {
	if userID == "" {
		return "", nil, errors.New("user ID is required")
	}
	if name == "" {
		return "", nil, errors.New("token name is required")
	}

	// 32 bytes of randomness; the "lta_" prefix identifies the token kind
	raw, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	token := "lta_" + raw

	var expiresAt *time.Time
	if expiresIn != nil {
		expiry := time.Now().Add(*expiresIn)
		expiresAt = &expiry
	}

	apiToken := &domain.APIToken{
		UserID:    userID,
		Name:      name,
		TokenHash: utils.HashToken(token),
		ExpiresAt: expiresAt,
	}

	if err := s.tokenRepo.Create(ctx, apiToken); err != nil {
		return "", nil, fmt.Errorf("failed to save token: %w", err)
	}

	// Return the plaintext token (only time it's available) and the token details
	return token, apiToken, nil
}

// ListTokens returns all API tokens for a user
func (s *apiTokenService) ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}

	tokens, err := s.tokenRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	return tokens, nil
}

// RevokeToken deletes a specific API token for a user
func (s *apiTokenService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	if userID == "" || tokenID == "" {
		return errors.New("user ID and token ID are required")
	}

	// Verify the token belongs to the user
	token, err := s.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		return fmt.Errorf("failed to find token: %w", err)
	}

	if token.UserID != userID {
		return errors.New("token not found")
	}

	if err := s.tokenRepo.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// ValidateToken checks if a token is valid and returns the associated user
func (s *apiTokenService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	if tokenString == "" {
		return nil, errors.New("token is required")
	}

	token, err := s.tokenRepo.FindByToken(ctx, utils.HashToken(tokenString))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if token.IsExpired() {
		// Auto-revoke expired tokens
		_ = s.tokenRepo.Delete(ctx, token.ID)
		return nil, errors.New("token has expired")
	}

	// Update last used timestamp; failures here never block validation
	token.UpdateLastUsed()
	_ = s.tokenRepo.Update(ctx, token)

	user, err := s.userSvc.GetUserByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
