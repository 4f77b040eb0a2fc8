package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/entity"
	"github.com/medlane/pharmacare-api/internal/domain/repository"
	"github.com/medlane/pharmacare-api/pkg/apperror"
	"github.com/medlane/pharmacare-api/pkg/utils"
)

// StoreService handles store profile and staff operations
type StoreService struct {
	storeRepo repository.StoreRepository
	userRepo  repository.UserRepository
}

// NewStoreService creates a new store service
func NewStoreService(storeRepo repository.StoreRepository, userRepo repository.UserRepository) *StoreService {
	return &StoreService{storeRepo: storeRepo, userRepo: userRepo}
}

// GetStore retrieves a store by ID
func (s *StoreService) GetStore(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperror.ErrStoreNotFound
	}
	return store, nil
}

// UpdateStoreInput represents the update store input
type UpdateStoreInput struct {
	StoreID   uuid.UUID
	Name      string
	Phone     string
	Address   string
	LicenseNo string
}

// UpdateStore updates a store's profile
func (s *StoreService) UpdateStore(ctx context.Context, input *UpdateStoreInput) (*entity.Store, error) {
	store, err := s.storeRepo.GetByID(ctx, input.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperror.ErrStoreNotFound
	}

	if input.Name != "" {
		store.Name = input.Name
	}
	if input.Phone != "" {
		phone := input.Phone
		store.Phone = &phone
	}
	if input.Address != "" {
		address := input.Address
		store.Address = &address
	}
	if input.LicenseNo != "" {
		licenseNo := input.LicenseNo
		store.LicenseNo = &licenseNo
	}

	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// AddStaffInput represents the add staff input
type AddStaffInput struct {
	StoreID   uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AddStaff creates a pharmacist account for the store. Only owners may call this.
func (s *StoreService) AddStaff(ctx context.Context, input *AddStaffInput) (*entity.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		StoreID:   input.StoreID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  hashedPassword,
		Role:      entity.RolePharmacist,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
