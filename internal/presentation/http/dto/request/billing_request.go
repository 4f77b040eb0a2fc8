package request

import "github.com/google/uuid"

// BillingItemRequest is one line of a billing request
type BillingItemRequest struct {
	MedicineID  uuid.UUID `json:"medicine_id" binding:"required"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int       `json:"quantity" binding:"required"`
}

// CreateBillingRequest represents the create billing request body
type CreateBillingRequest struct {
	CustomerName  string               `json:"customer_name" binding:"required"`
	CustomerAge   *int                 `json:"customer_age"`
	CustomerPhone *string              `json:"customer_phone"`
	ExpectedTotal *float64             `json:"expected_total"`
	Items         []BillingItemRequest `json:"items" binding:"required,min=1,dive"`
}
