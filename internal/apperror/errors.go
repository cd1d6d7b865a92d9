package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrLocationNotFound   = errors.New("location not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidAdjustment  = errors.New("adjustment would make stock negative")
	ErrAlreadyCancelled   = errors.New("order already cancelled")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTransientConflict  = errors.New("transient conflict, retry the request")
	ErrDuplicateRequest   = errors.New("duplicate request in progress")
	ErrOrderCancelled     = errors.New("order is cancelled")
	ErrMissingTenant      = errors.New("missing tenant")
)

// InsufficientStockError names the product that could not be covered.
// It matches ErrInsufficientStock under errors.Is.
type InsufficientStockError struct {
	ProductID  string
	LocationID string
	Requested  int64
	Available  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s at location %s: requested %d, available %d",
		e.ProductID, e.LocationID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Invalid wraps ErrInvalidInput with a field-level message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Code returns the stable, client-facing name of err.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProductNotFound):
		return "ProductNotFound"
	case errors.Is(err, ErrLocationNotFound):
		return "LocationNotFound"
	case errors.Is(err, ErrCustomerNotFound):
		return "CustomerNotFound"
	case errors.Is(err, ErrOrderNotFound):
		return "OrderNotFound"
	case errors.Is(err, ErrInsufficientStock):
		return "InsufficientStock"
	case errors.Is(err, ErrInvalidAdjustment):
		return "InvalidAdjustment"
	case errors.Is(err, ErrAlreadyCancelled):
		return "AlreadyCancelled"
	case errors.Is(err, ErrInvalidTransition):
		return "InvalidTransition"
	case errors.Is(err, ErrInvalidInput):
		return "InvalidInput"
	case errors.Is(err, ErrTransientConflict):
		return "TransientConflict"
	case errors.Is(err, ErrDuplicateRequest):
		return "DuplicateRequest"
	case errors.Is(err, ErrOrderCancelled):
		return "OrderCancelled"
	case errors.Is(err, ErrMissingTenant):
		return "MissingTenant"
	}
	return "Internal"
}

// Retryable reports whether err may succeed on a later attempt: transient
// conflicts and infrastructure failures. Domain rejections are final.
func Retryable(err error) bool {
	switch Code(err) {
	case "TransientConflict", "Internal":
		return true
	}
	return false
}
