package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/entity"
	"github.com/medlane/pharmacare-api/internal/domain/repository"
	infraRepo "github.com/medlane/pharmacare-api/internal/infrastructure/repository"
	"github.com/medlane/pharmacare-api/pkg/apperror"
	"github.com/medlane/pharmacare-api/pkg/pagination"
)

// versionRetries bounds optimistic-lock retries on manual stock edits
const versionRetries = 3

// StockService handles stock ledger operations outside the billing path
type StockService struct {
	stockRepo    repository.StockRepository
	medicineRepo repository.MedicineRepository
}

// NewStockService creates a new stock service
func NewStockService(stockRepo repository.StockRepository, medicineRepo repository.MedicineRepository) *StockService {
	return &StockService{stockRepo: stockRepo, medicineRepo: medicineRepo}
}

// AddStockInput represents a stock intake
type AddStockInput struct {
	MedicineID    uuid.UUID
	BatchNumber   string
	Quantity      int
	PurchasePrice float64
	ExpiryDate    *time.Time
}

// AddStock records incoming stock against the ledger key, merging with an
// existing entry for the same medicine and batch.
func (s *StockService) AddStock(ctx context.Context, input *AddStockInput) (*entity.StockEntry, error) {
	storeID, ok := infraRepo.GetStoreID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Store context required")
	}

	if input.Quantity <= 0 {
		return nil, apperror.NewInvalidQuantityError(input.MedicineID.String())
	}

	medicine, err := s.medicineRepo.GetByID(ctx, input.MedicineID)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, apperror.NewMedicineNotFoundError(input.MedicineID.String())
	}

	entry := &entity.StockEntry{
		StoreID:     storeID,
		MedicineID:  input.MedicineID,
		BatchNumber: input.BatchNumber,
		Quantity:    input.Quantity,
		ExpiryDate:  input.ExpiryDate,
	}
	entry.PurchasePrice = int64(input.PurchasePrice*100 + 0.5)

	if err := s.stockRepo.Upsert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// AdjustStockInput represents a manual correction of one ledger entry
type AdjustStockInput struct {
	EntryID       uuid.UUID
	Quantity      *int
	PurchasePrice *float64
	ExpiryDate    *time.Time
}

// AdjustStock applies a manual correction under optimistic locking. The write
// is retried against a fresh read when a concurrent writer bumps the version;
// after the retries run out the conflict is surfaced to the caller. An entry
// adjusted to zero is removed from the ledger.
func (s *StockService) AdjustStock(ctx context.Context, input *AdjustStockInput) (*entity.StockEntry, error) {
	for attempt := 0; attempt < versionRetries; attempt++ {
		entry, err := s.stockRepo.GetByID(ctx, input.EntryID)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, apperror.NewNotFoundError("Stock entry")
		}

		if input.Quantity != nil {
			if *input.Quantity < 0 {
				return nil, apperror.NewInvalidQuantityError(entry.MedicineID.String())
			}
			if *input.Quantity == 0 {
				if err := s.stockRepo.Delete(ctx, entry.ID); err != nil {
					return nil, err
				}
				entry.Quantity = 0
				return entry, nil
			}
			entry.Quantity = *input.Quantity
		}
		if input.PurchasePrice != nil {
			entry.PurchasePrice = int64(*input.PurchasePrice*100 + 0.5)
		}
		if input.ExpiryDate != nil {
			entry.ExpiryDate = input.ExpiryDate
		}

		ok, err := s.stockRepo.UpdateVersioned(ctx, entry)
		if err != nil {
			return nil, err
		}
		if ok {
			return entry, nil
		}
	}

	return nil, apperror.NewConcurrentModificationError("Stock entry")
}

// RemoveStock deletes a ledger entry outright (damaged or recalled batches)
func (s *StockService) RemoveStock(ctx context.Context, entryID uuid.UUID) error {
	entry, err := s.stockRepo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return apperror.NewNotFoundError("Stock entry")
	}
	return s.stockRepo.Delete(ctx, entryID)
}

// ListExpiring returns ledger entries expiring within the given number of days
func (s *StockService) ListExpiring(ctx context.Context, withinDays int, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.StockEntry], error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	before := time.Now().AddDate(0, 0, withinDays)

	entries, total, err := s.stockRepo.ListExpiringBefore(ctx, before, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(entries, pag), nil
}
