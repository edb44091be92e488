package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/dto"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
)

// unitHandler handles HTTP requests related to units.
type unitHandler struct {
	unitService portssvc.UnitSvcFacade
}

func newUnitHandler(us portssvc.UnitSvcFacade) *unitHandler {
	return &unitHandler{unitService: us}
}

// registerUnitRoutes registers unit routes nested under an agency.
func registerUnitRoutes(agencies *gin.RouterGroup, unitService portssvc.UnitSvcFacade) {
	h := newUnitHandler(unitService)

	agencies.POST("/:agencyID/units", h.createUnit)
	agencies.GET("/:agencyID/units/:unitID", h.getUnit)
	agencies.PATCH("/:agencyID/units/:unitID", h.updateUnit)
	agencies.PUT("/:agencyID/units/:unitID/block", h.assignUnitToBlock)
	agencies.GET("/:agencyID/subdivisions/:subdivisionID/units", h.listUnits)
}

// createUnit godoc
// @Summary Create unit
// @Description Creates a unit, optionally inside a block. Block capacity is enforced atomically.
// @Tags units
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param unit body dto.CreateUnitRequest true "Unit details"
// @Success 201 {object} dto.UnitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Block is full"
// @Security BearerAuth
// @Router /agencies/{agencyID}/units [post]
func (h *unitHandler) createUnit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	unit, err := h.unitService.CreateUnit(c.Request.Context(), c.Param("agencyID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create unit")
		return
	}
	c.JSON(http.StatusCreated, dto.ToUnitResponse(unit))
}

// getUnit godoc
// @Summary Get unit by ID
// @Tags units
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param unitID path string true "Unit ID"
// @Success 200 {object} dto.UnitResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/units/{unitID} [get]
func (h *unitHandler) getUnit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	unit, err := h.unitService.GetUnitByID(c.Request.Context(), c.Param("agencyID"), c.Param("unitID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve unit")
		return
	}
	c.JSON(http.StatusOK, dto.ToUnitResponse(unit))
}

// listUnits godoc
// @Summary List units of a subdivision
// @Tags units
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param subdivisionID path string true "Subdivision ID"
// @Param status query string false "Filter by status" Enums(AVAILABLE, RESERVED, SOLD)
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListUnitsResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/subdivisions/{subdivisionID}/units [get]
func (h *unitHandler) listUnits(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListUnitsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	units, err := h.unitService.ListUnits(c.Request.Context(), c.Param("agencyID"), c.Param("subdivisionID"), userID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list units")
		return
	}
	c.JSON(http.StatusOK, dto.ToListUnitsResponse(units))
}

// updateUnit godoc
// @Summary Update unit
// @Description Updates a unit's details. Status changes of sold units are rejected.
// @Tags units
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param unitID path string true "Unit ID"
// @Param unit body dto.UpdateUnitRequest true "Fields to update"
// @Success 200 {object} dto.UnitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Unit is sold"
// @Security BearerAuth
// @Router /agencies/{agencyID}/units/{unitID} [patch]
func (h *unitHandler) updateUnit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	unit, err := h.unitService.UpdateUnit(c.Request.Context(), c.Param("agencyID"), c.Param("unitID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update unit")
		return
	}
	c.JSON(http.StatusOK, dto.ToUnitResponse(unit))
}

// assignUnitToBlock godoc
// @Summary Assign unit to block
// @Description Moves a unit into a block under the block's capacity check. A null blockID detaches the unit.
// @Tags units
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param unitID path string true "Unit ID"
// @Param assignment body dto.AssignUnitToBlockRequest true "Target block"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Block is full"
// @Security BearerAuth
// @Router /agencies/{agencyID}/units/{unitID}/block [put]
func (h *unitHandler) assignUnitToBlock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.AssignUnitToBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	if err := h.unitService.AssignUnitToBlock(c.Request.Context(), c.Param("agencyID"), c.Param("unitID"), req.BlockID, userID); err != nil {
		respondWithError(c, logger, err, "Failed to assign unit to block")
		return
	}
	c.Status(http.StatusNoContent)
}
