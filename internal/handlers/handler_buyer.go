package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/dto"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
)

// buyerHandler handles HTTP requests related to buyers.
type buyerHandler struct {
	buyerService portssvc.BuyerSvcFacade
}

func newBuyerHandler(bs portssvc.BuyerSvcFacade) *buyerHandler {
	return &buyerHandler{buyerService: bs}
}

// registerBuyerRoutes registers buyer routes nested under an agency.
func registerBuyerRoutes(agencies *gin.RouterGroup, buyerService portssvc.BuyerSvcFacade) {
	h := newBuyerHandler(buyerService)

	buyers := agencies.Group("/:agencyID/buyers")
	{
		buyers.POST("", h.createBuyer)
		buyers.GET("", h.listBuyers)
		buyers.GET("/:buyerID", h.getBuyer)
		buyers.PATCH("/:buyerID", h.updateBuyer)
	}
}

// createBuyer godoc
// @Summary Create buyer
// @Tags buyers
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param buyer body dto.CreateBuyerRequest true "Buyer details"
// @Success 201 {object} dto.BuyerResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/buyers [post]
func (h *buyerHandler) createBuyer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	buyer, err := h.buyerService.CreateBuyer(c.Request.Context(), c.Param("agencyID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create buyer")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBuyerResponse(buyer))
}

// listBuyers godoc
// @Summary List buyers
// @Tags buyers
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListBuyersResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/buyers [get]
func (h *buyerHandler) listBuyers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	buyers, err := h.buyerService.ListBuyers(c.Request.Context(), c.Param("agencyID"), userID, limit, offset)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list buyers")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBuyersResponse(buyers))
}

// getBuyer godoc
// @Summary Get buyer by ID
// @Tags buyers
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param buyerID path string true "Buyer ID"
// @Success 200 {object} dto.BuyerResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/buyers/{buyerID} [get]
func (h *buyerHandler) getBuyer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	buyer, err := h.buyerService.GetBuyerByID(c.Request.Context(), c.Param("agencyID"), c.Param("buyerID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve buyer")
		return
	}
	c.JSON(http.StatusOK, dto.ToBuyerResponse(buyer))
}

// updateBuyer godoc
// @Summary Update buyer
// @Tags buyers
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param buyerID path string true "Buyer ID"
// @Param buyer body dto.UpdateBuyerRequest true "Fields to update"
// @Success 200 {object} dto.BuyerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/buyers/{buyerID} [patch]
func (h *buyerHandler) updateBuyer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	buyer, err := h.buyerService.UpdateBuyer(c.Request.Context(), c.Param("agencyID"), c.Param("buyerID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update buyer")
		return
	}
	c.JSON(http.StatusOK, dto.ToBuyerResponse(buyer))
}
