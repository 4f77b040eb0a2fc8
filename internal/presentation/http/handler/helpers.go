package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/entity"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetStoreID extracts the store ID from the Gin context
func GetStoreID(c *gin.Context) *uuid.UUID {
	storeIDVal, exists := c.Get("store_id")
	if !exists {
		return nil
	}
	storeID, ok := storeIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &storeID
}

// GetUserEmail extracts the user email from the Gin context
func GetUserEmail(c *gin.Context) string {
	email, exists := c.Get("user_email")
	if !exists {
		return ""
	}
	return email.(string)
}

// GetUserRole extracts the user role from the Gin context
func GetUserRole(c *gin.Context) string {
	role, exists := c.Get("user_role")
	if !exists {
		return ""
	}
	return role.(string)
}

// IsOwner checks if the user has the store owner role
func IsOwner(c *gin.Context) bool {
	return GetUserRole(c) == entity.RoleOwner
}
