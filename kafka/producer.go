package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher is the event sink used by the services. Publishing is
// best-effort: the activity log table is the authoritative audit record,
// these events only feed downstream consumers (notifications, analytics).
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
	Close() error
}

// OrderEvent announces an order lifecycle transition.
type OrderEvent struct {
	Type        string    `json:"type"` // order.confirmed, order.approved, order.rejected, order.completed
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	TotalCents  int64     `json:"total_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

// ProductEvent announces a product gate decision.
type ProductEvent struct {
	Type      string    `json:"type"` // product.approved, product.rejected
	ProductID uuid.UUID `json:"product_id"`
	FarmerID  uuid.UUID `json:"farmer_id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

type Producer struct {
	writer *kafkago.Writer
	topic  string
	log    *zap.Logger
}

func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	w := &kafkago.Writer{
		Addr:     kafkago.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafkago.LeastBytes{},
	}
	log.Info("Kafka producer initialized", zap.String("topic", topic), zap.Strings("brokers", brokers))
	return &Producer{writer: w, topic: topic, log: log}
}

// Publish writes one message. Failures are returned to the caller, which
// logs them with its domain context.
func (p *Producer) Publish(ctx context.Context, key string, value []byte) error {
	msg := kafkago.Message{
		Key:   []byte(key),
		Value: value,
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) Close() error {
	p.log.Info("Closing Kafka producer", zap.String("topic", p.topic))
	return p.writer.Close()
}

// PublishJSON marshals evt and publishes it under key. Errors are logged by
// Publish; callers treat them as non-fatal.
func PublishJSON(ctx context.Context, p Publisher, key string, evt interface{}) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.Publish(ctx, key, data)
}
