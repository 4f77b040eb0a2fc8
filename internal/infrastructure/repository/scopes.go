package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

const (
	// StoreIDKey is the context key for store ID
	StoreIDKey ctxKey = "store_id"
)

// StoreScope returns a GORM scope that filters by store
// This should be applied to all queries for store-scoped entities
func StoreScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		storeID, ok := ctx.Value(StoreIDKey).(uuid.UUID)
		if !ok {
			// Fail-safe: return no results if store context missing
			// This prevents accidental cross-store data access
			return db.Where("1 = 0")
		}
		return db.Where("store_id = ?", storeID)
	}
}

// WithStore adds store ID to context
func WithStore(ctx context.Context, storeID uuid.UUID) context.Context {
	return context.WithValue(ctx, StoreIDKey, storeID)
}

// GetStoreID extracts store ID from context
func GetStoreID(ctx context.Context) (uuid.UUID, bool) {
	storeID, ok := ctx.Value(StoreIDKey).(uuid.UUID)
	return storeID, ok
}
