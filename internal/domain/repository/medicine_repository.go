package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/entity"
	"github.com/medlane/pharmacare-api/pkg/pagination"
)

// MedicineFilterParams represents filter parameters for listing medicines
type MedicineFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string // matches name, generic name or code
	LowStock   bool   // only medicines at or below their alert quantity
	SortBy     string
	SortOrder  string
}

// MedicineRepository defines the interface for medicine catalog access.
// All queries are scoped to the store carried in the context.
type MedicineRepository interface {
	Create(ctx context.Context, medicine *entity.Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Medicine, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Medicine, error)
	GetByCode(ctx context.Context, code string) (*entity.Medicine, error)
	Update(ctx context.Context, medicine *entity.Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *MedicineFilterParams) ([]entity.Medicine, int64, error)
	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
}

// StockRepository defines the interface for the stock ledger. Entries are
// addressed by the ledger key (store, medicine, batch); the same key is used
// on the add and deduct paths.
type StockRepository interface {
	// Upsert adds quantity to the entry matching the ledger key, creating the
	// entry when none exists.
	Upsert(ctx context.Context, entry *entity.StockEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StockEntry, error)
	GetByKey(ctx context.Context, medicineID uuid.UUID, batchNumber string) (*entity.StockEntry, error)
	ListByMedicine(ctx context.Context, medicineID uuid.UUID) ([]entity.StockEntry, error)
	ListExpiringBefore(ctx context.Context, before time.Time, params *pagination.PaginationParams) ([]entity.StockEntry, int64, error)
	CountExpiringBefore(ctx context.Context, before time.Time) (int64, error)
	// UpdateVersioned persists entry only if its stored version still matches;
	// it reports false on a version conflict.
	UpdateVersioned(ctx context.Context, entry *entity.StockEntry) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
