package app

import (
	"context"
	"sort"

	"github.com/mercadinho/market-api/internal/domain"
)

// ReservationStore is the storage primitive stock reservation runs on. The
// decrement must be conditional at the storage layer: it succeeds only when
// the pre-decrement stock covers the quantity, as one indivisible operation.
type ReservationStore interface {
	DecrementStockIfAvailable(ctx context.Context, productID string, quantity int) (bool, error)
	ProductStock(ctx context.Context, productID string) (int, error)
}

// StockReserver decrements every product of a batch or none of it. It must be
// called inside a transaction; a returned error relies on the caller's
// rollback to discard any decrements already applied.
type StockReserver struct {
	store ReservationStore
}

func NewStockReserver(store ReservationStore) *StockReserver {
	return &StockReserver{store: store}
}

// Reserve applies the conditional decrement for each item. Decrements run in
// product id order so concurrent batches take row locks in the same order and
// cannot deadlock each other. Every shortfall in the batch is collected so
// the failure names all offending products, not just the first.
func (r *StockReserver) Reserve(ctx context.Context, items []domain.ItemQuantity) error {
	if len(items) == 0 {
		return domain.ErrEmptyOrder
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if _, dup := seen[it.ProductID]; dup {
			return domain.ErrDuplicateProduct
		}
		seen[it.ProductID] = struct{}{}
	}

	ordered := make([]domain.ItemQuantity, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	var shortfalls []domain.StockShortfall
	for _, it := range ordered {
		ok, err := r.store.DecrementStockIfAvailable(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		available, err := r.store.ProductStock(ctx, it.ProductID)
		if err != nil {
			return err
		}
		shortfalls = append(shortfalls, domain.StockShortfall{
			ProductID: it.ProductID,
			Requested: it.Quantity,
			Available: available,
		})
	}
	if len(shortfalls) > 0 {
		return &domain.InsufficientStockError{Shortfalls: shortfalls}
	}
	return nil
}
