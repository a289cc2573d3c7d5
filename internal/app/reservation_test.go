package app

import (
	"context"
	"errors"
	"testing"

	"github.com/mercadinho/market-api/internal/domain"
)

func TestStockReserver_Reserve(t *testing.T) {
	t.Parallel()

	t.Run("decrements every product in the batch", func(t *testing.T) {
		store := newFakeStockStore(map[string]int{"p1": 5, "p2": 2})
		r := NewStockReserver(store)

		err := r.Reserve(context.Background(), []domain.ItemQuantity{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p2", Quantity: 2},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if store.stock["p1"] != 2 || store.stock["p2"] != 0 {
			t.Fatalf("expected stock p1=2 p2=0, got p1=%d p2=%d", store.stock["p1"], store.stock["p2"])
		}
	})

	t.Run("reports every shortfall in one error", func(t *testing.T) {
		store := newFakeStockStore(map[string]int{"p1": 1, "p2": 0, "p3": 10})
		r := NewStockReserver(store)

		err := r.Reserve(context.Background(), []domain.ItemQuantity{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p2", Quantity: 1},
			{ProductID: "p3", Quantity: 2},
		})

		var insufficient *domain.InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if len(insufficient.Shortfalls) != 2 {
			t.Fatalf("expected 2 shortfalls, got %d", len(insufficient.Shortfalls))
		}
		first := insufficient.Shortfalls[0]
		if first.ProductID != "p1" || first.Requested != 3 || first.Available != 1 {
			t.Fatalf("unexpected shortfall detail: %+v", first)
		}
	})

	t.Run("decrements in product id order regardless of request order", func(t *testing.T) {
		store := newFakeStockStore(map[string]int{"p1": 5, "p2": 5, "p3": 5})
		r := NewStockReserver(store)

		err := r.Reserve(context.Background(), []domain.ItemQuantity{
			{ProductID: "p3", Quantity: 1},
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 1},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := []string{"p1", "p2", "p3"}
		for i, id := range want {
			if store.decrementedID[i] != id {
				t.Fatalf("expected decrement order %v, got %v", want, store.decrementedID)
			}
		}
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		r := NewStockReserver(newFakeStockStore(nil))
		if err := r.Reserve(context.Background(), nil); err != domain.ErrEmptyOrder {
			t.Fatalf("expected ErrEmptyOrder, got %v", err)
		}
	})

	t.Run("rejects non-positive quantity before touching the store", func(t *testing.T) {
		store := newFakeStockStore(map[string]int{"p1": 5})
		r := NewStockReserver(store)

		err := r.Reserve(context.Background(), []domain.ItemQuantity{{ProductID: "p1", Quantity: 0}})
		if err != domain.ErrInvalidQuantity {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
		if store.decrements != 0 {
			t.Fatalf("expected no decrement attempts, got %d", store.decrements)
		}
	})

	t.Run("rejects duplicate product ids rather than merging them", func(t *testing.T) {
		store := newFakeStockStore(map[string]int{"p1": 5})
		r := NewStockReserver(store)

		err := r.Reserve(context.Background(), []domain.ItemQuantity{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p1", Quantity: 2},
		})
		if err != domain.ErrDuplicateProduct {
			t.Fatalf("expected ErrDuplicateProduct, got %v", err)
		}
		if store.stock["p1"] != 5 {
			t.Fatalf("expected stock untouched, got %d", store.stock["p1"])
		}
	})

	t.Run("missing product surfaces as not found", func(t *testing.T) {
		r := NewStockReserver(newFakeStockStore(map[string]int{"p1": 5}))

		err := r.Reserve(context.Background(), []domain.ItemQuantity{{ProductID: "ghost", Quantity: 1}})
		if !errors.Is(err, domain.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})
}

// fakeStockStore mimics the conditional decrement contract in memory.
type fakeStockStore struct {
	stock         map[string]int
	decrements    int
	decrementedID []string
}

func newFakeStockStore(stock map[string]int) *fakeStockStore {
	if stock == nil {
		stock = make(map[string]int)
	}
	return &fakeStockStore{stock: stock}
}

func (f *fakeStockStore) DecrementStockIfAvailable(_ context.Context, productID string, quantity int) (bool, error) {
	f.decrements++
	f.decrementedID = append(f.decrementedID, productID)
	current, ok := f.stock[productID]
	if !ok || current < quantity {
		return false, nil
	}
	f.stock[productID] = current - quantity
	return true, nil
}

func (f *fakeStockStore) ProductStock(_ context.Context, productID string) (int, error) {
	current, ok := f.stock[productID]
	if !ok {
		return 0, domain.ErrProductNotFound
	}
	return current, nil
}
