package domain

import "time"

// Product is a catalog entry. Prices are integer minor units (cents); Stock
// is only ever decremented through the conditional-decrement primitive and
// incremented through restock.
type Product struct {
	ID          string
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ItemQuantity is one entry of a reservation intent: a requested quantity for
// a product. Built per placement attempt, never persisted.
type ItemQuantity struct {
	ProductID string
	Quantity  int
}
