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
	"github.com/medlane/pharmacare-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// totalToleranceCents allows for client-side float rounding when an expected
// total is supplied with the request
const totalToleranceCents = 1

// BillingService handles point-of-sale billing transactions
type BillingService struct {
	billingRepo  repository.BillingRepository
	medicineRepo repository.MedicineRepository
	stockRepo    repository.StockRepository
}

// NewBillingService creates a new billing service
func NewBillingService(
	billingRepo repository.BillingRepository,
	medicineRepo repository.MedicineRepository,
	stockRepo repository.StockRepository,
) *BillingService {
	return &BillingService{
		billingRepo:  billingRepo,
		medicineRepo: medicineRepo,
		stockRepo:    stockRepo,
	}
}

// BillingItemInput represents one line of a billing request
type BillingItemInput struct {
	MedicineID  uuid.UUID
	BatchNumber string
	Quantity    int
}

// CreateBillingInput represents the create billing input. ExpectedTotal, when
// provided, is the total the client displayed to the customer; the server
// recomputes from catalog prices and rejects a mismatch.
type CreateBillingInput struct {
	UserID        uuid.UUID
	CustomerName  string
	CustomerAge   *int
	CustomerPhone *string
	ExpectedTotal *float64
	Items         []BillingItemInput
}

// CreateBilling creates a billing transaction. All stock deductions and the
// billing record commit atomically: if any line cannot be fully satisfied the
// whole transaction fails and no stock moves.
func (s *BillingService) CreateBilling(ctx context.Context, input *CreateBillingInput) (*entity.Billing, error) {
	storeID, ok := infraRepo.GetStoreID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Store context required")
	}

	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("Billing must contain at least one item")
	}

	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperror.NewInvalidQuantityError(item.MedicineID.String())
		}
	}

	// Batch fetch all medicines in one query (prevents N+1)
	medicineIDs := make([]uuid.UUID, len(input.Items))
	for i, item := range input.Items {
		medicineIDs[i] = item.MedicineID
	}

	medicines, err := s.medicineRepo.GetByIDs(ctx, medicineIDs)
	if err != nil {
		return nil, err
	}

	medicineMap := make(map[uuid.UUID]*entity.Medicine, len(medicines))
	for i := range medicines {
		medicineMap[medicines[i].ID] = &medicines[i]
	}

	// Validate all medicines exist and build items plus deductions. Lines for
	// the same ledger key are merged so the conditional decrement checks the
	// combined quantity.
	var totalAmount int64
	var totalProducts int
	items := make([]entity.BillingItem, 0, len(input.Items))
	type ledgerKey struct {
		medicineID uuid.UUID
		batch      string
	}
	deductionIdx := make(map[ledgerKey]int)
	var deductions []repository.StockDeduction

	for _, item := range input.Items {
		medicine, exists := medicineMap[item.MedicineID]
		if !exists {
			return nil, apperror.NewMedicineNotFoundError(item.MedicineID.String())
		}

		lineTotal := medicine.SellingPrice * int64(item.Quantity)
		totalAmount += lineTotal
		totalProducts += item.Quantity

		medicineID := medicine.ID
		items = append(items, entity.BillingItem{
			MedicineID:   &medicineID,
			MedicineName: medicine.Name,
			BatchNumber:  item.BatchNumber,
			Quantity:     item.Quantity,
			UnitPrice:    medicine.SellingPrice,
			LineTotal:    lineTotal,
		})

		key := ledgerKey{medicineID: item.MedicineID, batch: item.BatchNumber}
		if idx, merged := deductionIdx[key]; merged {
			deductions[idx].Quantity += item.Quantity
		} else {
			deductionIdx[key] = len(deductions)
			deductions = append(deductions, repository.StockDeduction{
				MedicineID:  item.MedicineID,
				BatchNumber: item.BatchNumber,
				Quantity:    item.Quantity,
			})
		}
	}

	// Distinguish a missing ledger entry from a short one before touching
	// anything, so the error names the right condition.
	for _, d := range deductions {
		entry, err := s.stockRepo.GetByKey(ctx, d.MedicineID, d.BatchNumber)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, apperror.NewMedicineNotFoundError(d.MedicineID.String())
		}
		if entry.Quantity < d.Quantity {
			return nil, apperror.NewInsufficientStockError(d.MedicineID.String())
		}
	}

	if input.ExpectedTotal != nil {
		expectedCents := decimal.NewFromFloat(*input.ExpectedTotal).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		diff := expectedCents - totalAmount
		if diff < -totalToleranceCents || diff > totalToleranceCents {
			return nil, apperror.NewBadRequestError("Billing total does not match current prices")
		}
	}

	billing := &entity.Billing{
		StoreID:       storeID,
		UserID:        input.UserID,
		InvoiceNo:     utils.GenerateInvoiceNo(),
		CustomerName:  input.CustomerName,
		CustomerAge:   input.CustomerAge,
		CustomerPhone: input.CustomerPhone,
		TotalProducts: totalProducts,
		TotalAmount:   totalAmount,
		CreatedAt:     time.Now(),
		Items:         items,
	}

	// Atomically deduct stock and insert the billing; the pre-checks above
	// are advisory only, the transaction's conditional decrements are what
	// guarantee no oversell under concurrency.
	failedIDs, err := s.billingRepo.Create(ctx, billing, deductions)
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		return nil, apperror.NewInsufficientStockError(failedIDs[0].String())
	}

	return billing, nil
}

// GetBilling retrieves a billing by ID
func (s *BillingService) GetBilling(ctx context.Context, id uuid.UUID) (*entity.Billing, error) {
	billing, err := s.billingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if billing == nil {
		return nil, apperror.NewNotFoundError("Billing")
	}
	return billing, nil
}

// ListBillings lists billings with filtering
func (s *BillingService) ListBillings(ctx context.Context, params *repository.BillingFilterParams) (*pagination.PaginatedResult[entity.Billing], error) {
	billings, total, err := s.billingRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(billings, pag), nil
}
