package domain

import "time"

type OrderStatus string

// Placement only ever produces "created"; later states belong to payment and
// fulfillment flows outside this service.
const OrderStatusCreated OrderStatus = "created"

// Order is an immutable purchase aggregate. Total and line prices are fixed
// at creation and never change afterwards.
type Order struct {
	ID         string
	BuyerID    string
	Status     OrderStatus
	TotalCents int64
	CreatedAt  time.Time
	Lines      []OrderLine
}

// OrderLine belongs to exactly one order and snapshots the unit price the
// product had when the order was placed.
type OrderLine struct {
	ProductID      string
	Quantity       int
	UnitPriceCents int64
}

// AssembleOrder builds the order aggregate from already-reserved, already
// priced lines. Pure: no I/O, deterministic given its inputs. It revalidates
// the line set rather than trusting upstream checks.
func AssembleOrder(id, buyerID string, lines []OrderLine, now time.Time) (Order, error) {
	if buyerID == "" {
		return Order{}, ErrBuyerRequired
	}
	if len(lines) == 0 {
		return Order{}, ErrEmptyOrder
	}

	seen := make(map[string]struct{}, len(lines))
	var total int64
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Order{}, ErrInvalidQuantity
		}
		if line.UnitPriceCents < 0 {
			return Order{}, ErrInvalidPrice
		}
		if _, dup := seen[line.ProductID]; dup {
			return Order{}, ErrDuplicateProduct
		}
		seen[line.ProductID] = struct{}{}
		total += line.UnitPriceCents * int64(line.Quantity)
	}

	return Order{
		ID:         id,
		BuyerID:    buyerID,
		Status:     OrderStatusCreated,
		TotalCents: total,
		CreatedAt:  now,
		Lines:      lines,
	}, nil
}
