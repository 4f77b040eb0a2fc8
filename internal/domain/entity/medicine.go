package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Medicine represents a catalog entry in a store's medicine list. Sellable
// attributes live here; on-hand quantities live in StockEntry rows.
type Medicine struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	StoreID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_medicines_store_code" json:"store_id"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	GenericName   *string        `gorm:"size:255" json:"generic_name,omitempty"`
	Manufacturer  *string        `gorm:"size:255" json:"manufacturer,omitempty"`
	Code          string         `gorm:"size:100;uniqueIndex:idx_medicines_store_code" json:"code"`
	SellingPrice  int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	QuantityAlert int            `gorm:"default:0" json:"quantity_alert"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Store        Store        `gorm:"foreignKey:StoreID" json:"-"`
	StockEntries []StockEntry `gorm:"foreignKey:MedicineID" json:"stock_entries,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (m Medicine) MarshalJSON() ([]byte, error) {
	type Alias Medicine
	return json.Marshal(&struct {
		Alias
		SellingPrice float64 `json:"selling_price"`
	}{
		Alias:        Alias(m),
		SellingPrice: float64(m.SellingPrice) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new medicine
func (m *Medicine) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Medicine model
func (Medicine) TableName() string {
	return "medicines"
}

// GetSellingPriceDecimal returns the selling price as a decimal (for display)
func (m *Medicine) GetSellingPriceDecimal() float64 {
	return float64(m.SellingPrice) / 100
}

// SetSellingPriceFromDecimal sets the selling price from a decimal value
func (m *Medicine) SetSellingPriceFromDecimal(price float64) {
	m.SellingPrice = int64(price*100 + 0.5)
}

// StockEntry represents an on-hand quantity of one medicine held by a store,
// optionally tagged with a supplier batch. The ledger key is
// (store, medicine, batch); an untracked batch is the empty string so the key
// stays well defined. Entries never persist at quantity zero.
type StockEntry struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	StoreID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_stock_ledger_key" json:"store_id"`
	MedicineID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_stock_ledger_key" json:"medicine_id"`
	BatchNumber   string         `gorm:"size:100;default:'';uniqueIndex:idx_stock_ledger_key" json:"batch_number"`
	ExpiryDate    *time.Time     `gorm:"type:date" json:"expiry_date,omitempty"`
	Quantity      int            `gorm:"not null;default:0" json:"quantity"`
	PurchasePrice int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Version       int            `gorm:"not null;default:1" json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// Relationships
	Store    Store    `gorm:"foreignKey:StoreID" json:"-"`
	Medicine Medicine `gorm:"foreignKey:MedicineID" json:"medicine,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (e StockEntry) MarshalJSON() ([]byte, error) {
	type Alias StockEntry
	return json.Marshal(&struct {
		Alias
		PurchasePrice float64 `json:"purchase_price"`
	}{
		Alias:         Alias(e),
		PurchasePrice: float64(e.PurchasePrice) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new stock entry
func (e *StockEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockEntry model
func (StockEntry) TableName() string {
	return "stock_entries"
}
