package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// OrderEvent is the operational record published whenever an order is paid.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishOrder(ctx context.Context, event OrderEvent) error
	Close() error
}

type KafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			WriteTimeout: timeout,
		},
		timeout: timeout,
	}
}

func (k *KafkaPublisher) PublishOrder(ctx context.Context, event OrderEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if k.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.timeout)
		defer cancel()
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: v,
		Time:  event.OccurredAt,
	})
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrder(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                                   { return nil }

// New returns a Kafka publisher, or a no-op one when brokers is empty.
func New(brokers []string, topic string, timeout time.Duration) Publisher {
	clean := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b != "" {
			clean = append(clean, b)
		}
	}
	if len(clean) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(clean, topic, timeout)
}
