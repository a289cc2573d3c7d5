package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrDuplicateProduct    = errors.New("duplicate product in order")
	ErrBuyerRequired       = errors.New("buyer id required")
	ErrInvalidID           = errors.New("invalid id")
	ErrProductNameRequired = errors.New("product name required")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrInvalidStock        = errors.New("invalid stock")

	// ErrStoreUnavailable marks transient storage failures; callers map it to
	// the retryable reservation/persistence kinds depending on the phase.
	ErrStoreUnavailable       = errors.New("store unavailable")
	ErrReservationUnavailable = errors.New("reservation unavailable, retry")
	ErrPersistenceUnavailable = errors.New("persistence unavailable, retry")
)

// StockShortfall describes one product whose available stock could not cover
// the requested quantity.
type StockShortfall struct {
	ProductID string
	Requested int
	Available int
}

// InsufficientStockError reports every shortfall in a rejected reservation
// batch, so the caller can name all offending products at once.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", s.ProductID, s.Requested, s.Available))
	}
	return "insufficient stock for " + strings.Join(parts, ", ")
}
