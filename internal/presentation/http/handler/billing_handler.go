package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/application/service"
	"github.com/medlane/pharmacare-api/internal/domain/repository"
	"github.com/medlane/pharmacare-api/internal/presentation/http/dto/request"
	"github.com/medlane/pharmacare-api/internal/presentation/http/dto/response"
	"github.com/medlane/pharmacare-api/pkg/pagination"
)

// BillingHandler handles billing-related HTTP requests
type BillingHandler struct {
	billingService *service.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// CreateBilling handles billing creation
// @Summary Create Billing
// @Description Create a billing transaction and deduct stock atomically
// @Tags billings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body request.CreateBillingRequest true "Billing data"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /billings [post]
func (h *BillingHandler) CreateBilling(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	items := make([]service.BillingItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.BillingItemInput{
			MedicineID:  item.MedicineID,
			BatchNumber: item.BatchNumber,
			Quantity:    item.Quantity,
		}
	}

	billing, err := h.billingService.CreateBilling(c.Request.Context(), &service.CreateBillingInput{
		UserID:        *userID,
		CustomerName:  req.CustomerName,
		CustomerAge:   req.CustomerAge,
		CustomerPhone: req.CustomerPhone,
		ExpectedTotal: req.ExpectedTotal,
		Items:         items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Billing created successfully", gin.H{
		"billing": billing,
	})
}

// GetBilling handles fetching a single billing
// @Summary Get Billing
// @Description Get a billing by ID with its line items
// @Tags billings
// @Security BearerAuth
// @Produce json
// @Param id path string true "Billing ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /billings/{id} [get]
func (h *BillingHandler) GetBilling(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid billing ID")
		return
	}

	billing, err := h.billingService.GetBilling(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Billing retrieved successfully", gin.H{
		"billing": billing,
	})
}

// ListBillings handles listing billings
// @Summary List Billings
// @Description List billings with search and date filtering
// @Tags billings
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search by invoice number or customer name"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.APIResponse
// @Router /billings [get]
func (h *BillingHandler) ListBillings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	params := &repository.BillingFilterParams{
		Pagination: &pagination.PaginationParams{Page: page, PerPage: perPage},
		Search:     c.Query("search"),
	}
	params.Pagination.Validate()

	if startDate := c.Query("start_date"); startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			response.BadRequest(c, "Invalid start_date format, expected YYYY-MM-DD")
			return
		}
		params.StartDate = &parsed
	}
	if endDate := c.Query("end_date"); endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			response.BadRequest(c, "Invalid end_date format, expected YYYY-MM-DD")
			return
		}
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		params.EndDate = &end
	}

	result, err := h.billingService.ListBillings(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Billings retrieved successfully", result)
}
