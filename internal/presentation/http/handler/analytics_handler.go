package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medlane/pharmacare-api/internal/application/service"
	"github.com/medlane/pharmacare-api/internal/presentation/http/dto/response"
	"github.com/medlane/pharmacare-api/pkg/period"
)

// AnalyticsHandler handles sales analytics HTTP requests
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	queryTimeout     time.Duration
}

// NewAnalyticsHandler creates a new analytics handler. Aggregation queries run
// under the given timeout so a heavy scan cannot hold a connection open
// indefinitely.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, queryTimeout time.Duration) *AnalyticsHandler {
	if queryTimeout <= 0 {
		queryTimeout = 15 * time.Second
	}
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		queryTimeout:     queryTimeout,
	}
}

// GetSalesAnalytics handles the sales analytics report
// @Summary Sales Analytics
// @Description Get aggregated sales with comparison window and time series
// @Tags analytics
// @Security BearerAuth
// @Produce json
// @Param period query string false "Period: today, yesterday, thisWeek, thisMonth, thisYear, custom"
// @Param start_date query string false "Start date for custom period (YYYY-MM-DD)"
// @Param end_date query string false "End date for custom period (YYYY-MM-DD)"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /analytics/sales [get]
func (h *AnalyticsHandler) GetSalesAnalytics(c *gin.Context) {
	input, ok := h.parseInput(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.queryTimeout)
	defer cancel()

	analytics, err := h.analyticsService.GetSalesAnalytics(ctx, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales analytics retrieved successfully", analytics)
}

// GetTopSelling handles the top-selling medicines report
// @Summary Top Selling Medicines
// @Description Rank medicines by revenue within the requested period
// @Tags analytics
// @Security BearerAuth
// @Produce json
// @Param period query string false "Period: today, yesterday, thisWeek, thisMonth, thisYear, custom"
// @Param start_date query string false "Start date for custom period (YYYY-MM-DD)"
// @Param end_date query string false "End date for custom period (YYYY-MM-DD)"
// @Param limit query int false "Maximum entries to return (default 10, max 50)"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /analytics/top-selling [get]
func (h *AnalyticsHandler) GetTopSelling(c *gin.Context) {
	input, ok := h.parseInput(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.queryTimeout)
	defer cancel()

	medicines, err := h.analyticsService.GetTopSelling(ctx, input, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top selling medicines retrieved successfully", gin.H{
		"medicines": medicines,
	})
}

func (h *AnalyticsHandler) parseInput(c *gin.Context) (*service.SalesAnalyticsInput, bool) {
	storeID := GetStoreID(c)
	if storeID == nil {
		response.Unauthorized(c, "User not authenticated")
		return nil, false
	}

	input := &service.SalesAnalyticsInput{
		StoreID: *storeID,
		Period:  c.DefaultQuery("period", period.PeriodToday),
	}

	if startDate := c.Query("start_date"); startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			response.BadRequest(c, "Invalid start_date format, expected YYYY-MM-DD")
			return nil, false
		}
		input.StartDate = &parsed
	}
	if endDate := c.Query("end_date"); endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			response.BadRequest(c, "Invalid end_date format, expected YYYY-MM-DD")
			return nil, false
		}
		input.EndDate = &parsed
	}

	return input, true
}
