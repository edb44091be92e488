package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/dto"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
)

// paymentHandler handles HTTP requests for payments and settlements.
type paymentHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newPaymentHandler(rs portssvc.ReconciliationSvcFacade) *paymentHandler {
	return &paymentHandler{reconciliationService: rs}
}

// registerPaymentRoutes registers payment routes nested under an agency.
func registerPaymentRoutes(agencies *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newPaymentHandler(reconciliationService)

	agencies.POST("/:agencyID/installments/:installmentID/payments", h.applyPayment)
	agencies.GET("/:agencyID/installments/:installmentID/payments", h.listInstallmentPayments)
	agencies.GET("/:agencyID/sales/:saleID/payments", h.listSalePayments)
}

// registerWebhookRoutes registers the settlement webhook. The route sits under
// the authenticated group; the payment collaborator authenticates with an API
// token.
func registerWebhookRoutes(v1 *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newPaymentHandler(reconciliationService)
	v1.POST("/webhooks/payments", h.recordSettlement)
}

// applyPayment godoc
// @Summary Apply payment to installment
// @Description Records a payment against an installment. Partial payments accumulate; overpayment is rejected. Settling the last open installment completes the sale.
// @Tags payments
// @Accept json
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param installmentID path string true "Installment ID"
// @Param payment body dto.ApplyPaymentRequest true "Payment details"
// @Success 200 {object} dto.InstallmentResponse
// @Failure 400 {object} ErrorResponse "Overpayment or invalid amount"
// @Failure 409 {object} ErrorResponse "Concurrent modification"
// @Failure 422 {object} ErrorResponse "Sale is cancelled"
// @Security BearerAuth
// @Router /agencies/{agencyID}/installments/{installmentID}/payments [post]
func (h *paymentHandler) applyPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	installment, err := h.reconciliationService.ApplyPayment(c.Request.Context(), c.Param("agencyID"), c.Param("installmentID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to apply payment")
		return
	}
	c.JSON(http.StatusOK, dto.ToInstallmentResponse(installment))
}

// listInstallmentPayments godoc
// @Summary List payments of an installment
// @Tags payments
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param installmentID path string true "Installment ID"
// @Success 200 {array} dto.PaymentResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/installments/{installmentID}/payments [get]
func (h *paymentHandler) listInstallmentPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	payments, err := h.reconciliationService.ListInstallmentPayments(c.Request.Context(), c.Param("agencyID"), c.Param("installmentID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponses(payments))
}

// listSalePayments godoc
// @Summary List payments of a sale
// @Tags payments
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param saleID path string true "Sale ID"
// @Success 200 {array} dto.PaymentResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/sales/{saleID}/payments [get]
func (h *paymentHandler) listSalePayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	payments, err := h.reconciliationService.ListSalePayments(c.Request.Context(), c.Param("agencyID"), c.Param("saleID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponses(payments))
}

// recordSettlement godoc
// @Summary Settlement webhook
// @Description Absorbs a settlement notification from the payment collaborator. Re-delivery of a known external reference returns the current state without writing.
// @Tags payments
// @Accept json
// @Produce json
// @Param settlement body dto.SettlementNotification true "Settlement notification"
// @Success 200 {object} dto.InstallmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /webhooks/payments [post]
func (h *paymentHandler) recordSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var notification dto.SettlementNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	installment, err := h.reconciliationService.RecordSettlement(c.Request.Context(), notification)
	if err != nil {
		respondWithError(c, logger, err, "Failed to record settlement")
		return
	}
	c.JSON(http.StatusOK, dto.ToInstallmentResponse(installment))
}
