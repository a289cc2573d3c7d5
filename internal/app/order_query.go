package app

import (
	"context"

	"github.com/mercadinho/market-api/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OrderQueryRepository reads committed orders only; it never observes
// in-flight placement transactions.
type OrderQueryRepository interface {
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	ListPage(ctx context.Context, offset, limit int) ([]domain.Order, int, error)
}

// OrderQueryService is the read side of the order aggregate: a buyer's own
// orders, and the admin page-by-page listing.
type OrderQueryService struct {
	repo OrderQueryRepository
}

func NewOrderQueryService(repo OrderQueryRepository) *OrderQueryService {
	return &OrderQueryService{repo: repo}
}

// ListBuyerOrders returns the buyer's orders newest first, lines included.
func (s *OrderQueryService) ListBuyerOrders(ctx context.Context, buyerID string) ([]domain.Order, error) {
	if buyerID == "" {
		return nil, domain.ErrBuyerRequired
	}
	return s.repo.ListByBuyer(ctx, buyerID)
}

type OrderPage struct {
	Total    int
	Page     int
	PageSize int
	Orders   []domain.Order
}

// ListAllOrders pages through every order, newest first. Out-of-range inputs
// are clamped, not rejected.
func (s *OrderQueryService) ListAllOrders(ctx context.Context, page, pageSize int) (OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	orders, total, err := s.repo.ListPage(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return OrderPage{}, err
	}
	return OrderPage{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Orders:   orders,
	}, nil
}
