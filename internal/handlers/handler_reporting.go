package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/dto"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
)

// reportingHandler handles HTTP requests for reconciliation reports.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers reporting routes nested under an agency.
func registerReportingRoutes(agencies *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := agencies.Group("/:agencyID/reports")
	{
		reports.GET("/overdue", h.overdueInstallments)
		reports.GET("/collection-rate", h.collectionRate)
		reports.GET("/occupancy", h.subdivisionOccupancy)
	}
}

// parseDateParam parses a query date as 2006-01-02 or RFC3339.
func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// overdueInstallments godoc
// @Summary Overdue installments report
// @Description Lists late installments as of a date, ordered by due date ascending.
// @Tags reports
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param asOf query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.OverdueReportResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/reports/overdue [get]
func (h *reportingHandler) overdueInstallments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	asOf := time.Now()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid asOf date"})
			return
		}
		asOf = parsed
	}

	rows, err := h.reportingService.OverdueInstallments(c.Request.Context(), c.Param("agencyID"), asOf, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to build overdue report")
		return
	}
	c.JSON(http.StatusOK, dto.ToOverdueReportResponse(rows, asOf))
}

// collectionRate godoc
// @Summary Collection rate report
// @Description Computes the amount due versus collected over a period.
// @Tags reports
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Param from query string true "Period start (YYYY-MM-DD)"
// @Param to query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} dto.CollectionRateResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/reports/collection-rate [get]
func (h *reportingHandler) collectionRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid from date"})
		return
	}
	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid to date"})
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Period end before period start"})
		return
	}

	rate, err := h.reportingService.CollectionRate(c.Request.Context(), c.Param("agencyID"), from, to, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to compute collection rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToCollectionRateResponse(rate))
}

// subdivisionOccupancy godoc
// @Summary Subdivision occupancy report
// @Description Aggregates unit statuses and sold value per subdivision.
// @Tags reports
// @Produce json
// @Param agencyID path string true "Agency ID"
// @Success 200 {object} dto.OccupancyReportResponse
// @Security BearerAuth
// @Router /agencies/{agencyID}/reports/occupancy [get]
func (h *reportingHandler) subdivisionOccupancy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	occupancy, err := h.reportingService.SubdivisionOccupancy(c.Request.Context(), c.Param("agencyID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to build occupancy report")
		return
	}
	c.JSON(http.StatusOK, dto.ToOccupancyReportResponse(occupancy))
}
