package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/entity"
	"github.com/medlane/pharmacare-api/pkg/pagination"
)

// StockDeduction is one stock movement requested by a billing transaction,
// addressed by the ledger key.
type StockDeduction struct {
	MedicineID  uuid.UUID
	BatchNumber string
	Quantity    int
}

// BillingFilterParams represents filter parameters for listing billings
type BillingFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string // matches invoice number or customer name
	StartDate  *time.Time
	EndDate    *time.Time
}

// BillingRepository defines the interface for billing history access.
// All queries are scoped to the store carried in the context.
type BillingRepository interface {
	// Create atomically applies every deduction and appends the billing record
	// in a single transaction. A deduction fails when its entry's quantity is
	// short; any failure rolls back everything and the offending medicine IDs
	// are returned with a nil error. Entries whose quantity reaches zero are
	// removed from the ledger.
	Create(ctx context.Context, billing *entity.Billing, deductions []StockDeduction) ([]uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Billing, error)
	List(ctx context.Context, params *BillingFilterParams) ([]entity.Billing, int64, error)
	Count(ctx context.Context) (int64, error)
}
