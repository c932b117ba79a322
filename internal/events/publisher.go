// Package events publishes domain events to Kafka for downstream consumers
// (stock replenishment, accounting exports).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const TypeSaleRecorded = "sale.recorded"

// Envelope wraps every event payload.
type Envelope struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type SaleRecordedItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type SaleRecorded struct {
	SaleID        uuid.UUID          `json:"sale_id"`
	Number        string             `json:"number"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	SellerID      uuid.UUID          `json:"seller_id"`
	SoldAt        time.Time          `json:"sold_at"`
	Items         []SaleRecordedItem `json:"items"`
}

type Publisher interface {
	PublishSaleRecorded(ctx context.Context, ev SaleRecorded) error
	Close() error
}

// NewEnvelope marshals payload into an envelope of the given type.
func NewEnvelope(eventType string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal %s: %w", eventType, err)
	}
	return Envelope{ID: uuid.New(), Type: eventType, OccurredAt: time.Now().UTC(), Payload: b}, nil
}

// KafkaPublisher is a fire-and-forget producer; delivery failures are logged.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
			BatchTimeout: 50 * time.Millisecond,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					log.Error().Err(err).Int("messages", len(messages)).Msg("kafka delivery failed")
				}
			},
		},
	}
}

func (p *KafkaPublisher) PublishSaleRecorded(ctx context.Context, ev SaleRecorded) error {
	env, err := NewEnvelope(TypeSaleRecorded, ev)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}
	// keyed by sale id so retries of the same sale land on one partition
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.SaleID.String()),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(TypeSaleRecorded)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSaleRecorded(context.Context, SaleRecorded) error { return nil }
func (NoopPublisher) Close() error                                            { return nil }
