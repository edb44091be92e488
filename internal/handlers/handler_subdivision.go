package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/dto"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
)

// subdivisionHandler handles HTTP requests for subdivisions and their blocks.
type subdivisionHandler struct {
	subdivisionService portssvc.SubdivisionSvcFacade
}

func newSubdivisionHandler(ss portssvc.SubdivisionSvcFacade) *subdivisionHandler {
	return &subdivisionHandler{subdivisionService: ss}
}

// registerSubdivisionRoutes registers subdivision and block routes nested
// under an agency.
func registerSubdivisionRoutes(agencies *gin.RouterGroup, subdivisionService portssvc.SubdivisionSvcFacade) {
	h := newSubdivisionHandler(subdivisionService)

	subdivisions := agencies.Group("/:agencyID/subdivisions")
	{
		subdivisions.POST("", h.createSubdivision)
		subdivisions.GET("", h.listSubdivisions)
		subdivisions.GET("/:subdivisionID", h.getSubdivision)
		subdivisions.PATCH("/:subdivisionID", h.updateSubdivision)
		subdivisions.GET("/:subdivisionID/blocks", h.listBlocks)
		subdivisions.POST("/:subdivisionID/blocks", h.createBlock)
	}

	agencies.PATCH("/:agencyID/blocks/:blockID", h.updateBlock)
}

// createSubdivision godoc
// @Summary Create subdivision
// @Tags subdivisions
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param subdivision body dto.CreateSubdivisionRequest true "Subdivision details"
// @Success 201 {object} dto.SubdivisionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/subdivisions [post]
func (h *subdivisionHandler) createSubdivision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateSubdivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	subdivision, err := h.subdivisionService.CreateSubdivision(c.Request.Context(), c.Param("agencyID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create subdivision")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSubdivisionResponse(subdivision))
}

// listSubdivisions godoc
// @Summary List subdivisions
// @Tags subdivisions
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListSubdivisionsResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/subdivisions [get]
func (h *subdivisionHandler) listSubdivisions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	subdivisions, err := h.subdivisionService.ListSubdivisions(c.Request.Context(), c.Param("agencyID"), userID, limit, offset)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list subdivisions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListSubdivisionsResponse(subdivisions))
}

// getSubdivision godoc
// @Summary Get subdivision by ID
// @Tags subdivisions
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param subdivisionID path string true "Subdivision ID"
// @Success 200 {object} dto.SubdivisionResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/subdivisions/{subdivisionID} [get]
func (h *subdivisionHandler) getSubdivision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	subdivision, err := h.subdivisionService.GetSubdivisionByID(c.Request.Context(), c.Param("agencyID"), c.Param("subdivisionID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve subdivision")
		return
	}
	c.JSON(http.StatusOK, dto.ToSubdivisionResponse(subdivision))
}

// updateSubdivision godoc
// @Summary Update subdivision
// @Tags subdivisions
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param subdivisionID path string true "Subdivision ID"
// @Param subdivision body dto.UpdateSubdivisionRequest true "Fields to update"
// @Success 200 {object} dto.SubdivisionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/subdivisions/{subdivisionID} [patch]
func (h *subdivisionHandler) updateSubdivision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateSubdivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	subdivision, err := h.subdivisionService.UpdateSubdivision(c.Request.Context(), c.Param("agencyID"), c.Param("subdivisionID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update subdivision")
		return
	}
	c.JSON(http.StatusOK, dto.ToSubdivisionResponse(subdivision))
}

// listBlocks godoc
// @Summary List blocks of a subdivision
// @Tags subdivisions
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param subdivisionID path string true "Subdivision ID"
// @Success 200 {array} dto.BlockResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/subdivisions/{subdivisionID}/blocks [get]
func (h *subdivisionHandler) listBlocks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	blocks, err := h.subdivisionService.ListBlocks(c.Request.Context(), c.Param("agencyID"), c.Param("subdivisionID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list blocks")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBlocksResponse(blocks))
}

// createBlock godoc
// @Summary Create block
// @Tags subdivisions
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param subdivisionID path string true "Subdivision ID"
// @Param block body dto.CreateBlockRequest true "Block details"
// @Success 201 {object} dto.BlockResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/subdivisions/{subdivisionID}/blocks [post]
func (h *subdivisionHandler) createBlock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	block, err := h.subdivisionService.CreateBlock(c.Request.Context(), c.Param("agencyID"), c.Param("subdivisionID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create block")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBlockResponse(block))
}

// updateBlock godoc
// @Summary Update block
// @Description Updates a block. Lowering the capacity below the current unit count is rejected.
// @Tags subdivisions
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param blockID path string true "Block ID"
// @Param block body dto.UpdateBlockRequest true "Fields to update"
// @Success 200 {object} dto.BlockResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/blocks/{blockID} [patch]
func (h *subdivisionHandler) updateBlock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	block, err := h.subdivisionService.UpdateBlock(c.Request.Context(), c.Param("agencyID"), c.Param("blockID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update block")
		return
	}
	c.JSON(http.StatusOK, dto.ToBlockResponse(block))
}
