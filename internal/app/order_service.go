package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercadinho/market-api/internal/clock"
	"github.com/mercadinho/market-api/internal/domain"
)

// OrderRepository is the durable store placement writes through. CreateOrder
// persists the order and all of its lines; inside WithTx it shares the same
// transaction as the stock decrements.
type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	CreateOrder(ctx context.Context, order domain.Order) error
}

// OrderEventPublisher is notified after a placement commits. Implementations
// must not block the request path.
type OrderEventPublisher interface {
	OrderCreated(ctx context.Context, order domain.Order)
}

type OrderService struct {
	repo      OrderRepository
	reserver  *StockReserver
	clock     clock.Clock
	publisher OrderEventPublisher
	cache     ProductCache
}

func NewOrderService(repo OrderRepository, reserver *StockReserver, clk clock.Clock, opts ...OrderServiceOption) *OrderService {
	svc := &OrderService{
		repo:     repo,
		reserver: reserver,
		clock:    clk,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type OrderServiceOption func(*OrderService)

// WithOrderEvents publishes an event after each committed placement.
func WithOrderEvents(p OrderEventPublisher) OrderServiceOption {
	return func(s *OrderService) { s.publisher = p }
}

// WithCatalogCache invalidates cached catalog reads whose stock a placement
// changed.
func WithCatalogCache(c ProductCache) OrderServiceOption {
	return func(s *OrderService) { s.cache = c }
}

type PlaceOrderInput struct {
	BuyerID string
	Items   []domain.ItemQuantity
}

// PlaceOrder validates the request, then in a single transaction resolves the
// products, reserves stock and persists the order with price snapshots. Any
// failure rolls the whole transaction back; nothing durable survives a
// rejected attempt.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (domain.Order, error) {
	if in.BuyerID == "" {
		return domain.Order{}, domain.ErrBuyerRequired
	}
	if len(in.Items) == 0 {
		return domain.Order{}, domain.ErrEmptyOrder
	}
	ids := make([]string, 0, len(in.Items))
	seen := make(map[string]struct{}, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return domain.Order{}, domain.ErrInvalidQuantity
		}
		if _, dup := seen[it.ProductID]; dup {
			return domain.Order{}, domain.ErrDuplicateProduct
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	now := s.clock.Now()
	var order domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		products, err := s.repo.GetProductsByIDs(txCtx, ids)
		if err != nil {
			return retryableAs(err, domain.ErrReservationUnavailable)
		}
		byID := make(map[string]domain.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
			}
		}

		if err := s.reserver.Reserve(txCtx, in.Items); err != nil {
			return retryableAs(err, domain.ErrReservationUnavailable)
		}

		lines := make([]domain.OrderLine, 0, len(in.Items))
		for _, it := range in.Items {
			lines = append(lines, domain.OrderLine{
				ProductID:      it.ProductID,
				Quantity:       it.Quantity,
				UnitPriceCents: byID[it.ProductID].PriceCents,
			})
		}

		order, err = domain.AssembleOrder(uuid.NewString(), in.BuyerID, lines, now)
		if err != nil {
			return err
		}
		if err := s.repo.CreateOrder(txCtx, order); err != nil {
			return retryableAs(err, domain.ErrPersistenceUnavailable)
		}
		return nil
	})
	if err != nil {
		// Commit failures surface here unphased; they belong to persistence.
		return domain.Order{}, retryableAs(err, domain.ErrPersistenceUnavailable)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, ids...)
	}
	if s.publisher != nil {
		s.publisher.OrderCreated(ctx, order)
	}
	return order, nil
}

// retryableAs rewraps transient storage failures as the retryable kind for
// the phase they occurred in; everything else passes through unchanged.
func retryableAs(err, kind error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return fmt.Errorf("%w: %v", kind, err)
	}
	return err
}
