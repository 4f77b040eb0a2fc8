package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/entity"
	domainRepo "github.com/medlane/pharmacare-api/internal/domain/repository"
	"github.com/medlane/pharmacare-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var clauseLockForUpdate = clause.Locking{Strength: "UPDATE"}

type medicineRepository struct {
	db *gorm.DB
}

// NewMedicineRepository creates a new medicine repository
func NewMedicineRepository(db *gorm.DB) domainRepo.MedicineRepository {
	return &medicineRepository{db: db}
}

func (r *medicineRepository) Create(ctx context.Context, medicine *entity.Medicine) error {
	return r.db.WithContext(ctx).Create(medicine).Error
}

func (r *medicineRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Medicine, error) {
	var medicine entity.Medicine
	err := r.db.WithContext(ctx).
		Scopes(StoreScope(ctx)).
		First(&medicine, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &medicine, err
}

// GetByIDs retrieves multiple medicines by their IDs in a single query
func (r *medicineRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Medicine, error) {
	if len(ids) == 0 {
		return []entity.Medicine{}, nil
	}
	var medicines []entity.Medicine
	err := r.db.WithContext(ctx).
		Scopes(StoreScope(ctx)).
		Where("id IN ?", ids).
		Find(&medicines).Error
	return medicines, err
}

func (r *medicineRepository) GetByCode(ctx context.Context, code string) (*entity.Medicine, error) {
	var medicine entity.Medicine
	err := r.db.WithContext(ctx).Scopes(StoreScope(ctx)).First(&medicine, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &medicine, err
}

func (r *medicineRepository) Update(ctx context.Context, medicine *entity.Medicine) error {
	return r.db.WithContext(ctx).Save(medicine).Error
}

func (r *medicineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(StoreScope(ctx)).Delete(&entity.Medicine{}, "id = ?", id).Error
}

func (r *medicineRepository) List(ctx context.Context, params *domainRepo.MedicineFilterParams) ([]entity.Medicine, int64, error) {
	var medicines []entity.Medicine
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Medicine{}).Scopes(StoreScope(ctx))

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR generic_name ILIKE ? OR code ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.LowStock {
		query = query.Where(lowStockCondition)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sorting
	sortBy := "created_at"
	sortOrder := "DESC"
	switch params.SortBy {
	case "name", "code", "selling_price", "created_at":
		sortBy = params.SortBy
	}
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order(sortBy + " " + sortOrder).
		Find(&medicines).Error

	return medicines, total, err
}

func (r *medicineRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Medicine{}).
		Scopes(StoreScope(ctx)).
		Count(&total).Error
	return total, err
}

func (r *medicineRepository) CountLowStock(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Medicine{}).
		Scopes(StoreScope(ctx)).
		Where(lowStockCondition).
		Count(&total).Error
	return total, err
}

// lowStockCondition sums ledger entries per medicine; medicines with no
// entries at all count as low stock too.
const lowStockCondition = `COALESCE((
	SELECT SUM(se.quantity) FROM stock_entries se WHERE se.medicine_id = medicines.id
), 0) <= quantity_alert`

type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository creates a new stock ledger repository
func NewStockRepository(db *gorm.DB) domainRepo.StockRepository {
	return &stockRepository{db: db}
}

// Upsert adds the incoming quantity onto the entry matching the ledger key,
// creating the row when the key is new. Runs in a transaction so concurrent
// adds to the same key serialize on the row lock.
func (r *stockRepository) Upsert(ctx context.Context, entry *entity.StockEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.StockEntry
		err := tx.Clauses(clauseLockForUpdate).
			Where("store_id = ? AND medicine_id = ? AND batch_number = ?",
				entry.StoreID, entry.MedicineID, entry.BatchNumber).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(entry).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", entry.Quantity),
			"version":  gorm.Expr("version + 1"),
		}
		if entry.PurchasePrice > 0 {
			updates["purchase_price"] = entry.PurchasePrice
		}
		if entry.ExpiryDate != nil {
			updates["expiry_date"] = entry.ExpiryDate
		}
		if err := tx.Model(&entity.StockEntry{}).
			Where("id = ?", existing.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		return tx.First(entry, "id = ?", existing.ID).Error
	})
}

func (r *stockRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.StockEntry, error) {
	var entry entity.StockEntry
	err := r.db.WithContext(ctx).
		Scopes(StoreScope(ctx)).
		First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &entry, err
}

func (r *stockRepository) GetByKey(ctx context.Context, medicineID uuid.UUID, batchNumber string) (*entity.StockEntry, error) {
	var entry entity.StockEntry
	err := r.db.WithContext(ctx).
		Scopes(StoreScope(ctx)).
		First(&entry, "medicine_id = ? AND batch_number = ?", medicineID, batchNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &entry, err
}

func (r *stockRepository) ListByMedicine(ctx context.Context, medicineID uuid.UUID) ([]entity.StockEntry, error) {
	var entries []entity.StockEntry
	err := r.db.WithContext(ctx).
		Scopes(StoreScope(ctx)).
		Where("medicine_id = ?", medicineID).
		Order("expiry_date ASC NULLS LAST").
		Find(&entries).Error
	return entries, err
}

func (r *stockRepository) ListExpiringBefore(ctx context.Context, before time.Time, params *pagination.PaginationParams) ([]entity.StockEntry, int64, error) {
	var entries []entity.StockEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StockEntry{}).
		Scopes(StoreScope(ctx)).
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", before)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Medicine").
		Order("expiry_date ASC").
		Find(&entries).Error

	return entries, total, err
}

func (r *stockRepository) CountExpiringBefore(ctx context.Context, before time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.StockEntry{}).
		Scopes(StoreScope(ctx)).
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", before).
		Count(&total).Error
	return total, err
}

// UpdateVersioned persists the entry only if nobody else bumped the version
// since it was read. Returns false on a lost race so callers can retry.
func (r *stockRepository) UpdateVersioned(ctx context.Context, entry *entity.StockEntry) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.StockEntry{}).
		Where("id = ? AND version = ?", entry.ID, entry.Version).
		Updates(map[string]interface{}{
			"quantity":       entry.Quantity,
			"purchase_price": entry.PurchasePrice,
			"expiry_date":    entry.ExpiryDate,
			"version":        gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	entry.Version++
	return true, nil
}

func (r *stockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(StoreScope(ctx)).Delete(&entity.StockEntry{}, "id = ?", id).Error
}
