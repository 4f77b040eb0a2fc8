package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/medlane/pharmacare-api/internal/application/service"
	"github.com/medlane/pharmacare-api/internal/presentation/http/dto/response"
)

// StoreHandler handles store profile and staff HTTP requests
type StoreHandler struct {
	storeService *service.StoreService
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(storeService *service.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// GetStore handles fetching the current store profile
// @Summary Get Store
// @Description Get the authenticated user's store profile
// @Tags store
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /store [get]
func (h *StoreHandler) GetStore(c *gin.Context) {
	storeID := GetStoreID(c)
	if storeID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	store, err := h.storeService.GetStore(c.Request.Context(), *storeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Store retrieved successfully", gin.H{
		"store": store,
	})
}

// UpdateStore handles store profile updates
// @Summary Update Store
// @Description Update the store's profile (owner only)
// @Tags store
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Router /store [put]
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	storeID := GetStoreID(c)
	if storeID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Name      string `json:"name"`
		Phone     string `json:"phone"`
		Address   string `json:"address"`
		LicenseNo string `json:"license_no"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	store, err := h.storeService.UpdateStore(c.Request.Context(), &service.UpdateStoreInput{
		StoreID:   *storeID,
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		LicenseNo: req.LicenseNo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Store updated successfully", gin.H{
		"store": store,
	})
}

// AddStaff handles pharmacist account creation
// @Summary Add Staff
// @Description Create a pharmacist account for the store (owner only)
// @Tags store
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Router /store/staff [post]
func (h *StoreHandler) AddStaff(c *gin.Context) {
	storeID := GetStoreID(c)
	if storeID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.storeService.AddStaff(c.Request.Context(), &service.AddStaffInput{
		StoreID:   *storeID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Staff account created successfully", gin.H{
		"user": gin.H{
			"id":         user.ID,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"role":       user.Role,
		},
	})
}
