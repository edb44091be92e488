package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/dto"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
)

// agencyHandler handles HTTP requests related to agencies and membership.
type agencyHandler struct {
	agencyService portssvc.AgencySvcFacade
}

func newAgencyHandler(as portssvc.AgencySvcFacade) *agencyHandler {
	return &agencyHandler{agencyService: as}
}

// registerAgencyRoutes registers agency routes and delegates the nested
// tenant-scoped resources to their handlers.
func registerAgencyRoutes(group *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newAgencyHandler(services.Agency)

	agencies := group.Group("/agencies")
	{
		agencies.POST("", h.createAgency)
		agencies.GET("", h.listUserAgencies)
		agencies.GET("/:agencyID", h.getAgency)
		agencies.POST("/:agencyID/deactivate", h.deactivateAgency)
		agencies.POST("/:agencyID/activate", h.activateAgency)

		agencies.GET("/:agencyID/users", h.listAgencyUsers)
		agencies.POST("/:agencyID/users", h.addUserToAgency)
		agencies.DELETE("/:agencyID/users/:userID", h.removeUserFromAgency)
		agencies.PUT("/:agencyID/users/:userID/role", h.updateUserAgencyRole)

		registerSubdivisionRoutes(agencies, services.Subdivision)
		registerUnitRoutes(agencies, services.Unit)
		registerBuyerRoutes(agencies, services.Buyer)
		registerSaleRoutes(agencies, services.Sale)
		registerPaymentRoutes(agencies, services.Reconciliation)
		registerReportingRoutes(agencies, services.Reporting)
	}
}

// createAgency godoc
// @Summary Create agency
// @Description Creates a new agency with the authenticated user as admin.
// @Tags agencies
// @Accept json
// @Produce json
// @Param agency body dto.CreateAgencyRequest true "Agency details"
// @Success 201 {object} dto.AgencyResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies [post]
func (h *agencyHandler) createAgency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	agency, err := h.agencyService.CreateAgency(c.Request.Context(), req.Name, req.Description, req.Phone, req.Email, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create agency")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAgencyResponse(agency))
}

// listUserAgencies godoc
// @Summary List agencies of the authenticated user
// @Tags agencies
// @Produce json
// @Param includeDisabled query bool false "Include deactivated agencies"
// @Success 200 {object} dto.ListAgenciesResponse
// @Security BearerAuth
// @Router /agencies [get]
func (h *agencyHandler) listUserAgencies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	includeDisabled, _ := strconv.ParseBool(c.DefaultQuery("includeDisabled", "false"))

	agencies, err := h.agencyService.ListUserAgencies(c.Request.Context(), userID, includeDisabled)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list agencies")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAgenciesResponse(agencies))
}

// getAgency godoc
// @Summary Get agency by ID
// @Tags agencies
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Success 200 {object} dto.AgencyResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID} [get]
func (h *agencyHandler) getAgency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	agency, err := h.agencyService.FindAgencyByID(c.Request.Context(), c.Param("agencyID"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve agency")
		return
	}
	c.JSON(http.StatusOK, dto.ToAgencyResponse(agency))
}

// deactivateAgency godoc
// @Summary Deactivate agency
// @Tags agencies
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/deactivate [post]
func (h *agencyHandler) deactivateAgency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.agencyService.DeactivateAgency(c.Request.Context(), c.Param("agencyID"), userID); err != nil {
		respondWithError(c, logger, err, "Failed to deactivate agency")
		return
	}
	c.Status(http.StatusNoContent)
}

// activateAgency godoc
// @Summary Activate agency
// @Tags agencies
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/activate [post]
func (h *agencyHandler) activateAgency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.agencyService.ActivateAgency(c.Request.Context(), c.Param("agencyID"), userID); err != nil {
		respondWithError(c, logger, err, "Failed to activate agency")
		return
	}
	c.Status(http.StatusNoContent)
}

// listAgencyUsers godoc
// @Summary List agency members
// @Tags agencies
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Success 200 {array} dto.UserAgencyResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/users [get]
func (h *agencyHandler) listAgencyUsers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	members, err := h.agencyService.ListAgencyUsers(c.Request.Context(), c.Param("agencyID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list agency members")
		return
	}
	c.JSON(http.StatusOK, dto.ToListUserAgencyResponse(members))
}

// addUserToAgency godoc
// @Summary Add member to agency
// @Tags agencies
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param member body dto.AddUserToAgencyRequest true "User and role"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/users [post]
func (h *agencyHandler) addUserToAgency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.AddUserToAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	if err := h.agencyService.AddUserToAgency(c.Request.Context(), userID, req.UserID, c.Param("agencyID"), req.Role); err != nil {
		respondWithError(c, logger, err, "Failed to add user to agency")
		return
	}
	c.Status(http.StatusNoContent)
}

// removeUserFromAgency godoc
// @Summary Remove member from agency
// @Tags agencies
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param userID path string true "User ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/users/{userID} [delete]
func (h *agencyHandler) removeUserFromAgency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.agencyService.RemoveUserFromAgency(c.Request.Context(), userID, c.Param("userID"), c.Param("agencyID")); err != nil {
		respondWithError(c, logger, err, "Failed to remove user from agency")
		return
	}
	c.Status(http.StatusNoContent)
}

// updateUserAgencyRole godoc
// @Summary Update member role
// @Tags agencies
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param userID path string true "User ID"
// @Param role body dto.UpdateUserAgencyRoleRequest true "New role"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/users/{userID}/role [put]
func (h *agencyHandler) updateUserAgencyRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateUserAgencyRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	if err := h.agencyService.UpdateUserAgencyRole(c.Request.Context(), userID, c.Param("userID"), c.Param("agencyID"), req.Role); err != nil {
		respondWithError(c, logger, err, "Failed to update member role")
		return
	}
	c.Status(http.StatusNoContent)
}
