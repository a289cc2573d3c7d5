package app

import (
	"context"
	"testing"
	"time"

	"github.com/mercadinho/market-api/internal/clock"
	"github.com/mercadinho/market-api/internal/domain"
)

func TestCatalogService(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("create validates name, price and stock", func(t *testing.T) {
		repo := newFakeCatalogRepo()
		svc := NewCatalogService(repo, clock.NewFixed(now))

		if _, err := svc.CreateProduct(context.Background(), CreateProductInput{PriceCents: 100}); err != domain.ErrProductNameRequired {
			t.Fatalf("expected ErrProductNameRequired, got %v", err)
		}
		if _, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "x", PriceCents: 0}); err != domain.ErrInvalidPrice {
			t.Fatalf("expected ErrInvalidPrice, got %v", err)
		}
		if _, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "x", PriceCents: 100, Stock: -1}); err != domain.ErrInvalidStock {
			t.Fatalf("expected ErrInvalidStock, got %v", err)
		}

		p, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "Rice 5kg", PriceCents: 2590, Stock: 12})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.ID == "" || !p.CreatedAt.Equal(now) {
			t.Fatalf("expected assigned id and timestamp, got %+v", p)
		}
	})

	t.Run("update never touches stock and invalidates the cache", func(t *testing.T) {
		repo := newFakeCatalogRepo(domain.Product{ID: "p1", Name: "Rice", PriceCents: 2590, Stock: 7})
		cache := &fakeProductCache{}
		svc := NewCatalogService(repo, clock.NewFixed(now), WithProductCache(cache))

		updated, err := svc.UpdateProduct(context.Background(), "p1", UpdateProductInput{Name: "Rice 5kg", PriceCents: 2790})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.Stock != 7 {
			t.Fatalf("expected stock preserved, got %d", updated.Stock)
		}
		if updated.PriceCents != 2790 || updated.UpdatedAt == nil {
			t.Fatalf("expected price and updated_at set, got %+v", updated)
		}
		if len(cache.invalidated) != 1 || cache.invalidated[0] != "p1" {
			t.Fatalf("expected cache invalidation for p1, got %v", cache.invalidated)
		}
	})

	t.Run("get serves from cache when present", func(t *testing.T) {
		repo := newFakeCatalogRepo()
		cached := domain.Product{ID: "p1", Name: "Cached", PriceCents: 100}
		cache := &fakeProductCache{products: map[string]domain.Product{"p1": cached}}
		svc := NewCatalogService(repo, clock.NewFixed(now), WithProductCache(cache))

		p, err := svc.GetProduct(context.Background(), "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.Name != "Cached" {
			t.Fatalf("expected cached product, got %+v", p)
		}
	})

	t.Run("get falls through to the repository and fills the cache", func(t *testing.T) {
		repo := newFakeCatalogRepo(domain.Product{ID: "p1", Name: "Beans", PriceCents: 899})
		cache := &fakeProductCache{}
		svc := NewCatalogService(repo, clock.NewFixed(now), WithProductCache(cache))

		p, err := svc.GetProduct(context.Background(), "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.Name != "Beans" {
			t.Fatalf("expected repo product, got %+v", p)
		}
		if _, ok := cache.products["p1"]; !ok {
			t.Fatalf("expected cache fill for p1")
		}
	})

	t.Run("restock validates and increments", func(t *testing.T) {
		repo := newFakeCatalogRepo(domain.Product{ID: "p1", Name: "Beans", PriceCents: 899, Stock: 2})
		svc := NewCatalogService(repo, clock.NewFixed(now))

		if err := svc.Restock(context.Background(), "p1", 0); err != domain.ErrInvalidQuantity {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
		if err := svc.Restock(context.Background(), "", 3); err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
		if err := svc.Restock(context.Background(), "p1", 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if repo.products["p1"].Stock != 5 {
			t.Fatalf("expected stock 5, got %d", repo.products["p1"].Stock)
		}
		if err := svc.Restock(context.Background(), "ghost", 3); err != domain.ErrProductNotFound {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})
}

type fakeCatalogRepo struct {
	products map[string]domain.Product
}

func newFakeCatalogRepo(products ...domain.Product) *fakeCatalogRepo {
	m := make(map[string]domain.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeCatalogRepo{products: m}
}

func (f *fakeCatalogRepo) CreateProduct(_ context.Context, product domain.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeCatalogRepo) UpdateProduct(_ context.Context, product domain.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeCatalogRepo) DeleteProduct(_ context.Context, productID string) error {
	if _, ok := f.products[productID]; !ok {
		return domain.ErrProductNotFound
	}
	delete(f.products, productID)
	return nil
}

func (f *fakeCatalogRepo) GetProduct(_ context.Context, productID string) (domain.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalogRepo) ListProducts(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalogRepo) IncrementStock(_ context.Context, productID string, quantity int) error {
	p, ok := f.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock += quantity
	f.products[productID] = p
	return nil
}

type fakeProductCache struct {
	products    map[string]domain.Product
	invalidated []string
}

func (c *fakeProductCache) GetProduct(_ context.Context, productID string) (*domain.Product, bool) {
	p, ok := c.products[productID]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (c *fakeProductCache) SetProduct(_ context.Context, product domain.Product) {
	if c.products == nil {
		c.products = make(map[string]domain.Product)
	}
	c.products[product.ID] = product
}

func (c *fakeProductCache) Invalidate(_ context.Context, productIDs ...string) {
	c.invalidated = append(c.invalidated, productIDs...)
}
