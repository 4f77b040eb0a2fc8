package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  []FieldError      `json:"errors,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
	ErrStoreNotFound      = &AppError{Code: http.StatusNotFound, Message: "Store not found"}
	ErrInvalidPeriod      = &AppError{Code: http.StatusBadRequest, Message: "Invalid period"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// NewMedicineNotFoundError reports a billing line whose medicine has no stock entry.
// The offending medicine ID is carried in Details so callers can flag the line.
func NewMedicineNotFoundError(medicineID string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("Medicine %s not found in stock", medicineID),
		Details: map[string]string{"medicine_id": medicineID},
	}
}

// NewInsufficientStockError reports a billing line that asked for more than is on hand.
func NewInsufficientStockError(medicineID string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("Insufficient stock for medicine %s", medicineID),
		Details: map[string]string{"medicine_id": medicineID},
	}
}

// NewInvalidQuantityError reports a non-positive quantity on a billing line.
func NewInvalidQuantityError(medicineID string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("Quantity for medicine %s must be a positive integer", medicineID),
		Details: map[string]string{"medicine_id": medicineID},
	}
}

// NewConcurrentModificationError reports an optimistic-lock conflict after retries ran out.
func NewConcurrentModificationError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: resource + " was modified concurrently, please retry",
	}
}

// MedicineID extracts the offending medicine ID from a billing error, if present.
func MedicineID(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Details != nil {
		return appErr.Details["medicine_id"]
	}
	return ""
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
