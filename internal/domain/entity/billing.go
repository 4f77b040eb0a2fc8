package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Billing represents a point-of-sale transaction. Records are append-only:
// once created they are never mutated or deleted, so the billing history can
// serve analytics and audit without versioning.
type Billing struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StoreID       uuid.UUID `gorm:"type:uuid;not null;index:idx_billings_store_created" json:"store_id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	InvoiceNo     string    `gorm:"size:100;unique;not null" json:"invoice_no"`
	CustomerName  string    `gorm:"size:255;not null" json:"customer_name"`
	CustomerAge   *int      `json:"customer_age,omitempty"`
	CustomerPhone *string   `gorm:"size:50" json:"customer_phone,omitempty"`
	TotalProducts int       `gorm:"default:0" json:"total_products"`
	TotalAmount   int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt     time.Time `gorm:"index:idx_billings_store_created" json:"created_at"`

	// Relationships
	Store Store         `gorm:"foreignKey:StoreID" json:"-"`
	User  User          `gorm:"foreignKey:UserID" json:"-"`
	Items []BillingItem `gorm:"foreignKey:BillingID" json:"items,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (b Billing) MarshalJSON() ([]byte, error) {
	type Alias Billing
	return json.Marshal(&struct {
		Alias
		TotalAmount float64 `json:"total_amount"`
	}{
		Alias:       Alias(b),
		TotalAmount: float64(b.TotalAmount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new billing
func (b *Billing) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Billing model
func (Billing) TableName() string {
	return "billings"
}

// BillingItem is one line of a billing. Medicine name and unit price are
// snapshotted at sale time, not joined live, so later catalog edits never
// rewrite history. MedicineID is nullable to survive catalog deletions.
type BillingItem struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	BillingID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"billing_id"`
	MedicineID   *uuid.UUID `gorm:"type:uuid;index" json:"medicine_id,omitempty"`
	MedicineName string     `gorm:"size:255;not null" json:"medicine_name"`
	BatchNumber  string     `gorm:"size:100;default:''" json:"batch_number"`
	Quantity     int        `gorm:"not null" json:"quantity"`
	UnitPrice    int64      `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	LineTotal    int64      `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt    time.Time  `json:"created_at"`

	// Relationships
	Billing Billing `gorm:"foreignKey:BillingID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (bi BillingItem) MarshalJSON() ([]byte, error) {
	type Alias BillingItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		LineTotal float64 `json:"line_total"`
	}{
		Alias:     Alias(bi),
		UnitPrice: float64(bi.UnitPrice) / 100,
		LineTotal: float64(bi.LineTotal) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new billing item
func (bi *BillingItem) BeforeCreate(tx *gorm.DB) error {
	if bi.ID == uuid.Nil {
		bi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillingItem model
func (BillingItem) TableName() string {
	return "billing_items"
}
