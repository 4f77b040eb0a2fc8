package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store represents a pharmacy store. Every catalog entry, stock entry and
// billing record belongs to exactly one store; the store email is the
// externally visible identity used at signup and login.
type Store struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Email     string         `gorm:"size:255;unique;not null" json:"email"`
	Phone     *string        `gorm:"size:50" json:"phone,omitempty"`
	Address   *string        `gorm:"type:text" json:"address,omitempty"`
	LicenseNo *string        `gorm:"size:100" json:"license_no,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Users     []User     `gorm:"foreignKey:StoreID" json:"-"`
	Medicines []Medicine `gorm:"foreignKey:StoreID" json:"-"`
	Billings  []Billing  `gorm:"foreignKey:StoreID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new store
func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Store model
func (Store) TableName() string {
	return "stores"
}
