package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Reason  string       `json:"reason,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is reports whether target is an AppError with the same reason.
// Errors without a reason only match themselves.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Reason == "" {
		return e == t
	}
	return e.Reason == t.Reason
}

// Reasons used by the receipt, inventory and debt domain
const (
	ReasonCustomerNotFound       = "customer_not_found"
	ReasonWorkerNotFound         = "worker_not_found"
	ReasonProductNotFound        = "product_not_found"
	ReasonConversionNotFound     = "conversion_not_found"
	ReasonDebtNotFound           = "debt_not_found"
	ReasonReceiptNotFound        = "receipt_not_found"
	ReasonInventoryItemNotFound  = "inventory_item_not_found"
	ReasonConcurrentModification = "concurrent_modification"
	ReasonReceiptFlagged         = "receipt_flagged"
)

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable      = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}

	// Matchable with errors.Is against any error built with the same reason.
	ErrCustomerNotFound       = &AppError{Code: http.StatusNotFound, Reason: ReasonCustomerNotFound, Message: "Customer not found"}
	ErrWorkerNotFound         = &AppError{Code: http.StatusNotFound, Reason: ReasonWorkerNotFound, Message: "Worker not found"}
	ErrProductNotFound        = &AppError{Code: http.StatusNotFound, Reason: ReasonProductNotFound, Message: "Product not found"}
	ErrConversionNotFound     = &AppError{Code: http.StatusNotFound, Reason: ReasonConversionNotFound, Message: "Unit conversion not found"}
	ErrDebtNotFound           = &AppError{Code: http.StatusNotFound, Reason: ReasonDebtNotFound, Message: "Debt not found"}
	ErrReceiptNotFound        = &AppError{Code: http.StatusNotFound, Reason: ReasonReceiptNotFound, Message: "Receipt not found"}
	ErrInventoryItemNotFound  = &AppError{Code: http.StatusNotFound, Reason: ReasonInventoryItemNotFound, Message: "Inventory item not found"}
	ErrConcurrentModification = &AppError{Code: http.StatusConflict, Reason: ReasonConcurrentModification, Message: "Record was modified by another request, reload and retry"}
	ErrReceiptFlagged         = &AppError{Code: http.StatusConflict, Reason: ReasonReceiptFlagged, Message: "Flagged receipts cannot be edited"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports request fields that failed validation
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
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

// NewProductNotFoundError names the product that could not be resolved
func NewProductNotFoundError(name string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Reason:  ReasonProductNotFound,
		Message: fmt.Sprintf("Product %q not found", name),
	}
}

// NewConversionNotFoundError names the item and unit that have no conversion row
func NewConversionNotFoundError(item, unit string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Reason:  ReasonConversionNotFound,
		Message: fmt.Sprintf("No conversion from %q to unit %q", item, unit),
	}
}

// NewCustomerNotFoundError names the customer reference that did not match
func NewCustomerNotFoundError(ref string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Reason:  ReasonCustomerNotFound,
		Message: fmt.Sprintf("Customer %q not found", ref),
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

// GetAppError converts an error to AppError if possible.
// Unknown errors become a generic 500 so storage details never reach the client.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer
}
