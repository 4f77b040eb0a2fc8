package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/application/service"
	"github.com/medlane/pharmacare-api/internal/presentation/http/dto/request"
	"github.com/medlane/pharmacare-api/internal/presentation/http/dto/response"
	"github.com/medlane/pharmacare-api/pkg/pagination"
)

// StockHandler handles stock ledger HTTP requests
type StockHandler struct {
	stockService *service.StockService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// AddStock handles stock intake for a medicine
// @Summary Add Stock
// @Description Record incoming stock for a medicine, merged by batch number
// @Tags stock
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Medicine ID"
// @Param request body request.AddStockRequest true "Stock intake data"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /medicines/{id}/stock [post]
func (h *StockHandler) AddStock(c *gin.Context) {
	medicineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid medicine ID")
		return
	}

	var req request.AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.AddStockInput{
		MedicineID:    medicineID,
		BatchNumber:   req.BatchNumber,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
	}
	if req.ExpiryDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			response.BadRequest(c, "Invalid expiry_date format, expected YYYY-MM-DD")
			return
		}
		input.ExpiryDate = &parsed
	}

	entry, err := h.stockService.AddStock(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Stock added successfully", gin.H{
		"entry": entry,
	})
}

// AdjustStock handles manual stock corrections
// @Summary Adjust Stock
// @Description Correct a ledger entry's quantity, price or expiry
// @Tags stock
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Stock entry ID"
// @Param request body request.AdjustStockRequest true "Adjustment data"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /stock/{id} [patch]
func (h *StockHandler) AdjustStock(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid stock entry ID")
		return
	}

	var req request.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.AdjustStockInput{
		EntryID:       entryID,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
	}
	if req.ExpiryDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			response.BadRequest(c, "Invalid expiry_date format, expected YYYY-MM-DD")
			return
		}
		input.ExpiryDate = &parsed
	}

	entry, err := h.stockService.AdjustStock(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock adjusted successfully", gin.H{
		"entry": entry,
	})
}

// RemoveStock handles ledger entry deletion
// @Summary Remove Stock
// @Description Delete a ledger entry (damaged or recalled batch)
// @Tags stock
// @Security BearerAuth
// @Param id path string true "Stock entry ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /stock/{id} [delete]
func (h *StockHandler) RemoveStock(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid stock entry ID")
		return
	}

	if err := h.stockService.RemoveStock(c.Request.Context(), entryID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock entry removed successfully", nil)
}

// ListExpiring handles the expiring-stock report
// @Summary List Expiring Stock
// @Description List ledger entries expiring within the given number of days
// @Tags stock
// @Security BearerAuth
// @Produce json
// @Param days query int false "Lookahead in days (default 30)"
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Success 200 {object} response.APIResponse
// @Router /stock/expiring [get]
func (h *StockHandler) ListExpiring(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()

	result, err := h.stockService.ListExpiring(c.Request.Context(), days, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Expiring stock retrieved successfully", result)
}
