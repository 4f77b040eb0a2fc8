package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/entity"
)

// StoreRepository defines the interface for store data access
type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Store, error)
	GetByEmail(ctx context.Context, email string) (*entity.Store, error)
	Update(ctx context.Context, store *entity.Store) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}
