package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated = "OrderCreated"

	TopicOrderCreated = "order.created"
)

// Envelope wraps every published event with routing metadata.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type OrderLinePayload struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type OrderCreatedPayload struct {
	OrderID    string             `json:"order_id"`
	BuyerID    string             `json:"buyer_id"`
	TotalCents int64              `json:"total_cents"`
	CreatedAt  time.Time          `json:"created_at"`
	Lines      []OrderLinePayload `json:"lines"`
}

// PartitionKey keys messages by order id so every event of one order stays
// in partition order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
