package request

// CreateMedicineRequest represents the create medicine request body
type CreateMedicineRequest struct {
	Name          string  `json:"name" binding:"required"`
	GenericName   *string `json:"generic_name"`
	Manufacturer  *string `json:"manufacturer"`
	Code          string  `json:"code"`
	SellingPrice  float64 `json:"selling_price" binding:"required"`
	QuantityAlert int     `json:"quantity_alert"`
}

// UpdateMedicineRequest represents the update medicine request body
type UpdateMedicineRequest struct {
	Name          string   `json:"name"`
	GenericName   *string  `json:"generic_name"`
	Manufacturer  *string  `json:"manufacturer"`
	SellingPrice  *float64 `json:"selling_price"`
	QuantityAlert *int     `json:"quantity_alert"`
}

// AddStockRequest represents the stock intake request body
type AddStockRequest struct {
	BatchNumber   string  `json:"batch_number"`
	Quantity      int     `json:"quantity" binding:"required"`
	PurchasePrice float64 `json:"purchase_price"`
	ExpiryDate    *string `json:"expiry_date"` // YYYY-MM-DD
}

// AdjustStockRequest represents the stock adjustment request body
type AdjustStockRequest struct {
	Quantity      *int     `json:"quantity"`
	PurchasePrice *float64 `json:"purchase_price"`
	ExpiryDate    *string  `json:"expiry_date"` // YYYY-MM-DD
}
