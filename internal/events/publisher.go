package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mercadinho/market-api/internal/domain"
	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher emits order lifecycle events off the request path. Placement
// treats publishing as best-effort: a lost event never fails an order.
type Publisher struct {
	writer   *kafka.Writer
	producer string
	logger   *zap.Logger
	inbox    chan kafka.Message
	done     chan struct{}
}

func NewPublisher(brokers []string, producer string, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        TopicOrderCreated,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		producer: producer,
		logger:   logger,
		inbox:    make(chan kafka.Message, 1024),
		done:     make(chan struct{}),
	}
}

// Start drains the inbox until Close; remaining messages are flushed before
// the writer shuts down.
func (p *Publisher) Start() {
	go func() {
		defer close(p.done)
		for msg := range p.inbox {
			if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
				p.logger.Warn("publish order event failed",
					zap.String("topic", p.writer.Topic),
					zap.Error(err),
				)
			}
		}
		_ = p.writer.Close()
	}()
}

// Close stops accepting events and waits for the flush to finish.
func (p *Publisher) Close() {
	close(p.inbox)
	<-p.done
}

func (p *Publisher) OrderCreated(_ context.Context, order domain.Order) {
	lines := make([]OrderLinePayload, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, OrderLinePayload{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
	}
	payload, err := json.Marshal(OrderCreatedPayload{
		OrderID:    order.ID,
		BuyerID:    order.BuyerID,
		TotalCents: order.TotalCents,
		CreatedAt:  order.CreatedAt,
		Lines:      lines,
	})
	if err != nil {
		p.logger.Warn("marshal order event failed", zap.Error(err))
		return
	}
	value, err := json.Marshal(Envelope{
		EventID:      uuid.NewString(),
		EventType:    EventOrderCreated,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     p.producer,
		Payload:      payload,
	})
	if err != nil {
		p.logger.Warn("marshal order event failed", zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   PartitionKey(order.ID),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(EventOrderCreated)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn("order event dropped, inbox full", zap.String("order_id", order.ID))
	}
}
