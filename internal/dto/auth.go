package dto

import "time"

// LoginRequest defines credentials for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token             string       `json:"token"`
	TokenExpiry       time.Time    `json:"tokenExpiry"`
	RefreshToken      string       `json:"refreshToken"`
	RefreshExpiryTime time.Time    `json:"refreshExpiryTime"`
	User              UserResponse `json:"user"`
}

// RefreshTokenRequest carries the refresh token to exchange.
type RefreshTokenRequest struct {
	UserID       string `json:"userID" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response for a successful token refresh.
type RefreshTokenResponse struct {
	Token             string    `json:"token"`
	TokenExpiry       time.Time `json:"tokenExpiry"`
	RefreshToken      string    `json:"refreshToken"`
	RefreshExpiryTime time.Time `json:"refreshExpiryTime"`
}
