package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mercadinho/market-api/internal/domain"
	"github.com/mercadinho/market-api/internal/testutil"
)

func TestProductRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewProductRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("create, get, update, delete roundtrip", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		product := domain.Product{
			ID:          uuid.NewString(),
			Name:        "Feijão 1kg",
			Description: "carioca",
			PriceCents:  899,
			Stock:       25,
			CreatedAt:   time.Now().UTC(),
		}
		if err := repo.CreateProduct(ctx, product); err != nil {
			t.Fatalf("create: %v", err)
		}

		got, err := repo.GetProduct(ctx, product.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Name != "Feijão 1kg" || got.PriceCents != 899 || got.Stock != 25 {
			t.Fatalf("unexpected product: %+v", got)
		}

		now := time.Now().UTC()
		got.Name = "Feijão carioca 1kg"
		got.PriceCents = 949
		got.UpdatedAt = &now
		if err := repo.UpdateProduct(ctx, got); err != nil {
			t.Fatalf("update: %v", err)
		}
		updated, err := repo.GetProduct(ctx, product.ID)
		if err != nil {
			t.Fatalf("get after update: %v", err)
		}
		if updated.PriceCents != 949 || updated.Stock != 25 {
			t.Fatalf("expected price updated and stock preserved, got %+v", updated)
		}

		if err := repo.DeleteProduct(ctx, product.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.GetProduct(ctx, product.ID); err != domain.ErrProductNotFound {
			t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
		}
	})

	t.Run("malformed id maps to ErrInvalidID", func(t *testing.T) {
		ctx := context.Background()
		if _, err := repo.GetProduct(ctx, "not-a-uuid"); err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("conditional decrement succeeds only when stock covers it", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		id := testutil.InsertProduct(t, ctx, pool, "Café 500g", 1890, 5)

		ok, err := repo.DecrementStockIfAvailable(ctx, id, 3)
		if err != nil {
			t.Fatalf("decrement: %v", err)
		}
		if !ok {
			t.Fatalf("expected decrement to succeed")
		}
		if stock := testutil.ProductStock(t, ctx, pool, id); stock != 2 {
			t.Fatalf("expected stock 2, got %d", stock)
		}

		ok, err = repo.DecrementStockIfAvailable(ctx, id, 3)
		if err != nil {
			t.Fatalf("decrement: %v", err)
		}
		if ok {
			t.Fatalf("expected decrement to fail on shortfall")
		}
		if stock := testutil.ProductStock(t, ctx, pool, id); stock != 2 {
			t.Fatalf("expected stock unchanged at 2, got %d", stock)
		}
	})

	t.Run("decrement on missing product affects no rows", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		ok, err := repo.DecrementStockIfAvailable(ctx, uuid.NewString(), 1)
		if err != nil {
			t.Fatalf("decrement: %v", err)
		}
		if ok {
			t.Fatalf("expected no decrement for missing product")
		}
	})

	t.Run("increment restocks unconditionally", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		id := testutil.InsertProduct(t, ctx, pool, "Açúcar 1kg", 550, 0)

		if err := repo.IncrementStock(ctx, id, 40); err != nil {
			t.Fatalf("increment: %v", err)
		}
		if stock := testutil.ProductStock(t, ctx, pool, id); stock != 40 {
			t.Fatalf("expected stock 40, got %d", stock)
		}

		if err := repo.IncrementStock(ctx, uuid.NewString(), 1); err != domain.ErrProductNotFound {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})
}
