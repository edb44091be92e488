package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/dto"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
)

// apiTokenHandler handles HTTP requests for API token management.
type apiTokenHandler struct {
	tokenService portssvc.APITokenSvc
}

func newAPITokenHandler(ts portssvc.APITokenSvc) *apiTokenHandler {
	return &apiTokenHandler{tokenService: ts}
}

// registerAPITokenRoutes registers API token management routes.
func registerAPITokenRoutes(group *gin.RouterGroup, tokenService portssvc.APITokenSvc) {
	h := newAPITokenHandler(tokenService)

	tokens := group.Group("/tokens")
	{
		tokens.POST("", h.createToken)
		tokens.GET("", h.listTokens)
		tokens.DELETE("/:tokenID", h.revokeToken)
	}
}

// createToken godoc
// @Summary Create API token
// @Description Generates a new API token. The plaintext token is returned exactly once.
// @Tags tokens
// @Accept json
// @Produce json
// @Param token body dto.CreateAPITokenRequest true "Token details"
// @Success 201 {object} dto.CreateAPITokenResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /tokens [post]
func (h *apiTokenHandler) createToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateAPITokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	var expiresIn *time.Duration
	if req.ExpiresIn != nil {
		d := time.Duration(*req.ExpiresIn) * 24 * time.Hour
		expiresIn = &d
	}

	plaintext, token, err := h.tokenService.CreateToken(c.Request.Context(), userID, req.Name, expiresIn)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create API token")
		return
	}

	c.JSON(http.StatusCreated, dto.CreateAPITokenResponse{
		Token:   plaintext,
		Details: dto.ToAPITokenResponse(token),
	})
}

// listTokens godoc
// @Summary List API tokens
// @Tags tokens
// @Produce json
// @Success 200 {array} dto.APITokenResponse
// @Security BearerAuth
// @Router /tokens [get]
func (h *apiTokenHandler) listTokens(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	tokens, err := h.tokenService.ListTokens(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list API tokens")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAPITokensResponse(tokens))
}

// revokeToken godoc
// @Summary Revoke API token
// @Tags tokens
// @Produce json
// @Param tokenID path string true "Token ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tokens/{tokenID} [delete]
func (h *apiTokenHandler) revokeToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.tokenService.RevokeToken(c.Request.Context(), userID, c.Param("tokenID")); err != nil {
		respondWithError(c, logger, err, "Failed to revoke API token")
		return
	}
	c.Status(http.StatusNoContent)
}
