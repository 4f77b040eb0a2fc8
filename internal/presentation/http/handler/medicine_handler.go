package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/application/service"
	"github.com/medlane/pharmacare-api/internal/domain/repository"
	"github.com/medlane/pharmacare-api/internal/presentation/http/dto/request"
	"github.com/medlane/pharmacare-api/internal/presentation/http/dto/response"
	"github.com/medlane/pharmacare-api/pkg/pagination"
)

// MedicineHandler handles medicine catalog HTTP requests
type MedicineHandler struct {
	medicineService *service.MedicineService
}

// NewMedicineHandler creates a new medicine handler
func NewMedicineHandler(medicineService *service.MedicineService) *MedicineHandler {
	return &MedicineHandler{medicineService: medicineService}
}

// CreateMedicine handles medicine creation
// @Summary Create Medicine
// @Description Add a medicine to the store's catalog
// @Tags medicines
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateMedicineRequest true "Medicine data"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /medicines [post]
func (h *MedicineHandler) CreateMedicine(c *gin.Context) {
	var req request.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	medicine, err := h.medicineService.CreateMedicine(c.Request.Context(), &service.CreateMedicineInput{
		Name:          req.Name,
		GenericName:   req.GenericName,
		Manufacturer:  req.Manufacturer,
		Code:          req.Code,
		SellingPrice:  req.SellingPrice,
		QuantityAlert: req.QuantityAlert,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Medicine created successfully", gin.H{
		"medicine": medicine,
	})
}

// GetMedicine handles fetching a single medicine
// @Summary Get Medicine
// @Description Get a medicine by ID
// @Tags medicines
// @Security BearerAuth
// @Produce json
// @Param id path string true "Medicine ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /medicines/{id} [get]
func (h *MedicineHandler) GetMedicine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid medicine ID")
		return
	}

	medicine, err := h.medicineService.GetMedicine(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Medicine retrieved successfully", gin.H{
		"medicine": medicine,
	})
}

// UpdateMedicine handles medicine updates
// @Summary Update Medicine
// @Description Update catalog attributes of a medicine
// @Tags medicines
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Medicine ID"
// @Param request body request.UpdateMedicineRequest true "Medicine data"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /medicines/{id} [put]
func (h *MedicineHandler) UpdateMedicine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid medicine ID")
		return
	}

	var req request.UpdateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	medicine, err := h.medicineService.UpdateMedicine(c.Request.Context(), &service.UpdateMedicineInput{
		ID:            id,
		Name:          req.Name,
		GenericName:   req.GenericName,
		Manufacturer:  req.Manufacturer,
		SellingPrice:  req.SellingPrice,
		QuantityAlert: req.QuantityAlert,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Medicine updated successfully", gin.H{
		"medicine": medicine,
	})
}

// DeleteMedicine handles medicine deletion
// @Summary Delete Medicine
// @Description Remove a medicine from the catalog
// @Tags medicines
// @Security BearerAuth
// @Param id path string true "Medicine ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /medicines/{id} [delete]
func (h *MedicineHandler) DeleteMedicine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid medicine ID")
		return
	}

	if err := h.medicineService.DeleteMedicine(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Medicine deleted successfully", nil)
}

// ListMedicines handles listing medicines
// @Summary List Medicines
// @Description List medicines with search, low-stock filter and sorting
// @Tags medicines
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search by name, generic name or code"
// @Param low_stock query bool false "Only medicines at or below their alert level"
// @Param sort_by query string false "Sort field: name, code, selling_price, created_at"
// @Param sort_order query string false "Sort order: asc or desc"
// @Success 200 {object} response.APIResponse
// @Router /medicines [get]
func (h *MedicineHandler) ListMedicines(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	lowStock, _ := strconv.ParseBool(c.DefaultQuery("low_stock", "false"))

	params := &repository.MedicineFilterParams{
		Pagination: &pagination.PaginationParams{Page: page, PerPage: perPage},
		Search:     c.Query("search"),
		LowStock:   lowStock,
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	params.Pagination.Validate()

	result, err := h.medicineService.ListMedicines(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Medicines retrieved successfully", result)
}

// GetMedicineStock handles fetching a medicine's stock ledger
// @Summary Get Medicine Stock
// @Description List the stock ledger entries for one medicine
// @Tags medicines
// @Security BearerAuth
// @Produce json
// @Param id path string true "Medicine ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /medicines/{id}/stock [get]
func (h *MedicineHandler) GetMedicineStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid medicine ID")
		return
	}

	entries, err := h.medicineService.GetMedicineStock(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock entries retrieved successfully", gin.H{
		"entries": entries,
	})
}
