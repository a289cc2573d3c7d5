package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/mercadinho/market-api/internal/clock"
	"github.com/mercadinho/market-api/internal/domain"
)

// CatalogRepository holds the product rows placement contends over. Stock
// moves only through IncrementStock here and through the reservation
// primitive on the placement path; there is no direct stock write.
type CatalogRepository interface {
	CreateProduct(ctx context.Context, product domain.Product) error
	UpdateProduct(ctx context.Context, product domain.Product) error
	DeleteProduct(ctx context.Context, productID string) error
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	IncrementStock(ctx context.Context, productID string, quantity int) error
}

// ProductCache is an optional read-through cache for catalog lookups. A
// service without a cache skips it entirely; the placement path never reads
// through it.
type ProductCache interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, bool)
	SetProduct(ctx context.Context, product domain.Product)
	Invalidate(ctx context.Context, productIDs ...string)
}

type CatalogService struct {
	repo  CatalogRepository
	clock clock.Clock
	cache ProductCache
}

func NewCatalogService(repo CatalogRepository, clk clock.Clock, opts ...CatalogServiceOption) *CatalogService {
	svc := &CatalogService{
		repo:  repo,
		clock: clk,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CatalogServiceOption func(*CatalogService)

// WithProductCache serves product reads through the given cache.
func WithProductCache(c ProductCache) CatalogServiceOption {
	return func(s *CatalogService) { s.cache = c }
}

type CreateProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Stock       int
}

func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	if in.Name == "" {
		return domain.Product{}, domain.ErrProductNameRequired
	}
	if in.PriceCents <= 0 {
		return domain.Product{}, domain.ErrInvalidPrice
	}
	if in.Stock < 0 {
		return domain.Product{}, domain.ErrInvalidStock
	}

	product := domain.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

type UpdateProductInput struct {
	Name        string
	Description string
	PriceCents  int64
}

// UpdateProduct edits the catalog fields of a product. Stock is deliberately
// not part of the update: it moves only through Restock and reservations.
// A later price change never touches lines of already-placed orders.
func (s *CatalogService) UpdateProduct(ctx context.Context, productID string, in UpdateProductInput) (domain.Product, error) {
	if productID == "" {
		return domain.Product{}, domain.ErrInvalidID
	}
	if in.Name == "" {
		return domain.Product{}, domain.ErrProductNameRequired
	}
	if in.PriceCents <= 0 {
		return domain.Product{}, domain.ErrInvalidPrice
	}

	current, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	now := s.clock.Now()
	current.Name = in.Name
	current.Description = in.Description
	current.PriceCents = in.PriceCents
	current.UpdatedAt = &now

	if err := s.repo.UpdateProduct(ctx, current); err != nil {
		return domain.Product{}, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, productID)
	}
	return current, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, productID string) error {
	if productID == "" {
		return domain.ErrInvalidID
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, productID)
	}
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if productID == "" {
		return domain.Product{}, domain.ErrInvalidID
	}
	if s.cache != nil {
		if p, ok := s.cache.GetProduct(ctx, productID); ok {
			return *p, nil
		}
	}
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if s.cache != nil {
		s.cache.SetProduct(ctx, product)
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

// Restock increases available stock. Unlike the placement decrement it is
// unconstrained: inventory may grow at any time without contention concerns.
func (s *CatalogService) Restock(ctx context.Context, productID string, quantity int) error {
	if productID == "" {
		return domain.ErrInvalidID
	}
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if err := s.repo.IncrementStock(ctx, productID, quantity); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, productID)
	}
	return nil
}
