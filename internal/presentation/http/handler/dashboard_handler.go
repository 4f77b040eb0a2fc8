package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/medlane/pharmacare-api/internal/application/service"
	"github.com/medlane/pharmacare-api/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats handles fetching dashboard statistics
// @Summary Dashboard Stats
// @Description Get catalog, stock and sales counters for the store
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}
