package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillbook-api/internal/application/service"
	"github.com/sangkips/tillbook-api/internal/presentation/http/dto/response"
)

// AnalyticsHandler handles reporting HTTP requests
type AnalyticsHandler struct {
	queryService *service.ReceiptQueryService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(queryService *service.ReceiptQueryService) *AnalyticsHandler {
	return &AnalyticsHandler{queryService: queryService}
}

// Sales handles the sales summary. Dates are YYYY-MM-DD and the range is
// inclusive; it defaults to the last 30 days.
func (h *AnalyticsHandler) Sales(c *gin.Context) {
	out, err := h.queryService.GetSalesAnalytics(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales analytics retrieved successfully", out)
}
