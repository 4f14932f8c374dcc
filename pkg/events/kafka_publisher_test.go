package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("no brokers gives a no-op publisher", func(t *testing.T) {
		p := New([]string{""}, "orders", time.Second)
		assert.IsType(t, NopPublisher{}, p)
		assert.NoError(t, p.PublishOrder(t.Context(), OrderEvent{OrderID: "abc"}))
	})

	t.Run("brokers give a kafka publisher", func(t *testing.T) {
		p := New([]string{"localhost:9092"}, "orders", time.Second)
		kp, ok := p.(*KafkaPublisher)
		assert.True(t, ok)
		assert.Equal(t, "orders", kp.writer.Topic)
		assert.NoError(t, kp.Close())
	})
}
