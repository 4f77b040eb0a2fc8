package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/entity"
	"github.com/medlane/pharmacare-api/internal/domain/repository"
	infraRepo "github.com/medlane/pharmacare-api/internal/infrastructure/repository"
	"github.com/medlane/pharmacare-api/pkg/apperror"
	"github.com/medlane/pharmacare-api/pkg/pagination"
	"github.com/medlane/pharmacare-api/pkg/utils"
)

// MedicineService handles medicine catalog operations
type MedicineService struct {
	medicineRepo repository.MedicineRepository
	stockRepo    repository.StockRepository
}

// NewMedicineService creates a new medicine service
func NewMedicineService(medicineRepo repository.MedicineRepository, stockRepo repository.StockRepository) *MedicineService {
	return &MedicineService{medicineRepo: medicineRepo, stockRepo: stockRepo}
}

// CreateMedicineInput represents the create medicine input
type CreateMedicineInput struct {
	Name          string
	GenericName   *string
	Manufacturer  *string
	Code          string
	SellingPrice  float64
	QuantityAlert int
}

// CreateMedicine adds a medicine to the store's catalog
func (s *MedicineService) CreateMedicine(ctx context.Context, input *CreateMedicineInput) (*entity.Medicine, error) {
	storeID, ok := infraRepo.GetStoreID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Store context required")
	}

	if input.SellingPrice < 0 {
		return nil, apperror.NewBadRequestError("Selling price cannot be negative")
	}

	code := input.Code
	if code == "" {
		code = utils.GenerateMedicineCode()
	} else {
		existing, err := s.medicineRepo.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.NewConflictError("Medicine code already in use")
		}
	}

	medicine := &entity.Medicine{
		StoreID:       storeID,
		Name:          input.Name,
		GenericName:   input.GenericName,
		Manufacturer:  input.Manufacturer,
		Code:          code,
		QuantityAlert: input.QuantityAlert,
	}
	medicine.SetSellingPriceFromDecimal(input.SellingPrice)

	if err := s.medicineRepo.Create(ctx, medicine); err != nil {
		return nil, err
	}
	return medicine, nil
}

// GetMedicine retrieves a medicine by ID
func (s *MedicineService) GetMedicine(ctx context.Context, id uuid.UUID) (*entity.Medicine, error) {
	medicine, err := s.medicineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, apperror.NewMedicineNotFoundError(id.String())
	}
	return medicine, nil
}

// UpdateMedicineInput represents the update medicine input
type UpdateMedicineInput struct {
	ID            uuid.UUID
	Name          string
	GenericName   *string
	Manufacturer  *string
	SellingPrice  *float64
	QuantityAlert *int
}

// UpdateMedicine updates catalog attributes of a medicine
func (s *MedicineService) UpdateMedicine(ctx context.Context, input *UpdateMedicineInput) (*entity.Medicine, error) {
	medicine, err := s.medicineRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, apperror.NewMedicineNotFoundError(input.ID.String())
	}

	if input.Name != "" {
		medicine.Name = input.Name
	}
	if input.GenericName != nil {
		medicine.GenericName = input.GenericName
	}
	if input.Manufacturer != nil {
		medicine.Manufacturer = input.Manufacturer
	}
	if input.SellingPrice != nil {
		if *input.SellingPrice < 0 {
			return nil, apperror.NewBadRequestError("Selling price cannot be negative")
		}
		medicine.SetSellingPriceFromDecimal(*input.SellingPrice)
	}
	if input.QuantityAlert != nil {
		medicine.QuantityAlert = *input.QuantityAlert
	}

	if err := s.medicineRepo.Update(ctx, medicine); err != nil {
		return nil, err
	}
	return medicine, nil
}

// DeleteMedicine removes a medicine from the catalog. Billing history keeps
// its name snapshots, so past sales are unaffected.
func (s *MedicineService) DeleteMedicine(ctx context.Context, id uuid.UUID) error {
	medicine, err := s.medicineRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if medicine == nil {
		return apperror.NewMedicineNotFoundError(id.String())
	}
	return s.medicineRepo.Delete(ctx, id)
}

// ListMedicines lists medicines with filtering
func (s *MedicineService) ListMedicines(ctx context.Context, params *repository.MedicineFilterParams) (*pagination.PaginatedResult[entity.Medicine], error) {
	medicines, total, err := s.medicineRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(medicines, pag), nil
}

// GetMedicineStock returns the ledger entries for one medicine
func (s *MedicineService) GetMedicineStock(ctx context.Context, medicineID uuid.UUID) ([]entity.StockEntry, error) {
	medicine, err := s.medicineRepo.GetByID(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, apperror.NewMedicineNotFoundError(medicineID.String())
	}
	return s.stockRepo.ListByMedicine(ctx, medicineID)
}
