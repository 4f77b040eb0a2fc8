package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/entity"
	domainRepo "github.com/medlane/pharmacare-api/internal/domain/repository"
	"gorm.io/gorm"
)

type billingRepository struct {
	db *gorm.DB
}

// NewBillingRepository creates a new billing repository
func NewBillingRepository(db *gorm.DB) domainRepo.BillingRepository {
	return &billingRepository{db: db}
}

// Create applies every deduction and inserts the billing with its items in one
// transaction. Each deduction is a conditional decrement:
//
//	UPDATE stock_entries SET quantity = quantity - ? WHERE <key> AND quantity >= ?
//
// Zero rows affected means the entry is missing or short; the transaction is
// rolled back and the failed medicine IDs are returned with a nil error so the
// caller can distinguish insufficient stock from infrastructure failure.
// Entries drained to zero are removed from the ledger before commit.
func (r *billingRepository) Create(ctx context.Context, billing *entity.Billing, deductions []domainRepo.StockDeduction) ([]uuid.UUID, error) {
	var failedIDs []uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range deductions {
			result := tx.Model(&entity.StockEntry{}).
				Where("store_id = ? AND medicine_id = ? AND batch_number = ? AND quantity >= ?",
					billing.StoreID, d.MedicineID, d.BatchNumber, d.Quantity).
				Updates(map[string]interface{}{
					"quantity": gorm.Expr("quantity - ?", d.Quantity),
					"version":  gorm.Expr("version + 1"),
				})

			if result.Error != nil {
				return result.Error
			}

			if result.RowsAffected == 0 {
				failedIDs = append(failedIDs, d.MedicineID)
			}
		}

		// If any deduction failed, rollback entire transaction
		if len(failedIDs) > 0 {
			return gorm.ErrInvalidTransaction
		}

		if err := tx.Where("store_id = ? AND quantity <= 0", billing.StoreID).
			Delete(&entity.StockEntry{}).Error; err != nil {
			return err
		}

		return tx.Create(billing).Error
	})

	// If we rolled back due to insufficient stock, return the failed IDs without the transaction error
	if err == gorm.ErrInvalidTransaction && len(failedIDs) > 0 {
		return failedIDs, nil
	}

	return failedIDs, err
}

func (r *billingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Billing, error) {
	var billing entity.Billing
	err := r.db.WithContext(ctx).
		Scopes(StoreScope(ctx)).
		Preload("Items").
		First(&billing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &billing, err
}

func (r *billingRepository) List(ctx context.Context, params *domainRepo.BillingFilterParams) ([]entity.Billing, int64, error) {
	var billings []entity.Billing
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Billing{}).Scopes(StoreScope(ctx))

	if params.Search != "" {
		query = query.Where("invoice_no ILIKE ? OR customer_name ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items").
		Order("created_at DESC").
		Find(&billings).Error

	return billings, total, err
}

func (r *billingRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Billing{}).
		Scopes(StoreScope(ctx)).
		Count(&total).Error
	return total, err
}
