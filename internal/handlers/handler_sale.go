package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/dto"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
)

// saleHandler handles HTTP requests related to sales.
type saleHandler struct {
	saleService portssvc.SaleSvcFacade
}

func newSaleHandler(ss portssvc.SaleSvcFacade) *saleHandler {
	return &saleHandler{saleService: ss}
}

// registerSaleRoutes registers sale routes nested under an agency.
func registerSaleRoutes(agencies *gin.RouterGroup, saleService portssvc.SaleSvcFacade) {
	h := newSaleHandler(saleService)

	sales := agencies.Group("/:agencyID/sales")
	{
		sales.POST("", h.createSale)
		sales.GET("", h.listSales)
		sales.GET("/:saleID", h.getSale)
		sales.GET("/:saleID/progress", h.getSaleProgress)
		sales.GET("/:saleID/snapshot", h.getSaleSnapshot)
		sales.POST("/:saleID/cancel", h.cancelSale)
		sales.POST("/:saleID/finalize", h.finalizeSale)
	}
}

// createSale godoc
// @Summary Create sale
// @Description Creates a sale with its generated installment schedule and marks the unit sold, atomically.
// @Tags sales
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param sale body dto.CreateSaleRequest true "Sale details"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Unit is not available"
// @Security BearerAuth
// @Router /agencies/{agencyID}/sales [post]
func (h *saleHandler) createSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), c.Param("agencyID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create sale")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSaleResponse(sale))
}

// listSales godoc
// @Summary List sales
// @Description Lists sales newest first with token-based pagination.
// @Tags sales
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token from previous page"
// @Param status query string false "Filter by status" Enums(IN_PROGRESS, COMPLETE, CANCELLED)
// @Success 200 {object} dto.ListSalesResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/sales [get]
func (h *saleHandler) listSales(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListSalesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.saleService.ListSales(c.Request.Context(), c.Param("agencyID"), userID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list sales")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getSale godoc
// @Summary Get sale by ID
// @Description Retrieves a sale with its full installment schedule.
// @Tags sales
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param saleID path string true "Sale ID"
// @Success 200 {object} dto.SaleResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/sales/{saleID} [get]
func (h *saleHandler) getSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	sale, err := h.saleService.GetSaleByID(c.Request.Context(), c.Param("agencyID"), c.Param("saleID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve sale")
		return
	}
	c.JSON(http.StatusOK, dto.ToSaleResponse(sale))
}

// getSaleProgress godoc
// @Summary Get sale progress
// @Description Recomputes the settlement position of a sale from its schedule.
// @Tags sales
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param saleID path string true "Sale ID"
// @Success 200 {object} dto.SaleProgressResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/sales/{saleID}/progress [get]
func (h *saleHandler) getSaleProgress(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	progress, err := h.saleService.GetSaleProgress(c.Request.Context(), c.Param("agencyID"), c.Param("saleID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to compute sale progress")
		return
	}
	c.JSON(http.StatusOK, dto.ToSaleProgressResponse(progress))
}

// getSaleSnapshot godoc
// @Summary Get sale snapshot
// @Description Retrieves the read-only bundle used for contract and receipt generation.
// @Tags sales
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param saleID path string true "Sale ID"
// @Success 200 {object} dto.SaleSnapshotResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/sales/{saleID}/snapshot [get]
func (h *saleHandler) getSaleSnapshot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	snapshot, err := h.saleService.GetSaleSnapshot(c.Request.Context(), c.Param("agencyID"), c.Param("saleID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve sale snapshot")
		return
	}
	c.JSON(http.StatusOK, dto.ToSaleSnapshotResponse(snapshot))
}

// cancelSale godoc
// @Summary Cancel sale
// @Description Cancels an in-progress sale and returns the unit to available. The schedule survives for audit.
// @Tags sales
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param saleID path string true "Sale ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Sale is not in progress"
// @Security BearerAuth
// @Router /agencies/{agencyID}/sales/{saleID}/cancel [post]
func (h *saleHandler) cancelSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.saleService.CancelSale(c.Request.Context(), c.Param("agencyID"), c.Param("saleID"), userID); err != nil {
		respondWithError(c, logger, err, "Failed to cancel sale")
		return
	}
	c.Status(http.StatusNoContent)
}

// finalizeSale godoc
// @Summary Finalize sale
// @Description Marks a sale complete. Requires explicit acceptance when a balance is outstanding.
// @Tags sales
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param saleID path string true "Sale ID"
// @Param finalize body dto.FinalizeSaleRequest true "Finalization options"
// @Success 200 {object} dto.SaleResponse
// @Failure 400 {object} ErrorResponse "Outstanding balance not accepted"
// @Failure 422 {object} ErrorResponse "Sale is not in progress"
// @Security BearerAuth
// @Router /agencies/{agencyID}/sales/{saleID}/finalize [post]
func (h *saleHandler) finalizeSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.FinalizeSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	sale, err := h.saleService.FinalizeSale(c.Request.Context(), c.Param("agencyID"), c.Param("saleID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to finalize sale")
		return
	}
	c.JSON(http.StatusOK, dto.ToSaleResponse(sale))
}
