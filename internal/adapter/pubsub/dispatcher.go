// Package pubsub re-publishes realtime domain events to the message bus for
// downstream consumers (push notifications, archival). The bus observes the
// core: a broken broker degrades integration, never client delivery.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/chatwire/realtime-service/internal/service"
)

const source = "chat-realtime-service"

// envelope is the wire form of every published event.
type envelope struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Topic     string `json:"topic"`
	Payload   any    `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

// Dispatcher publishes events through a watermill publisher, one message per
// Dispatch call, routed by topic.
type Dispatcher struct {
	publisher message.Publisher
}

var _ service.EventDispatcher = (*Dispatcher)(nil)

func NewDispatcher(publisher message.Publisher) *Dispatcher {
	return &Dispatcher{publisher: publisher}
}

func (d *Dispatcher) Dispatch(ctx context.Context, topic string, payload any) error {
	if payload == nil {
		return fmt.Errorf("pubsub: cannot publish nil payload")
	}

	env := envelope{
		ID:        watermill.NewUUID(),
		Source:    source,
		Topic:     topic,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("pubsub: marshal event: %w", err)
	}

	msg := message.NewMessage(env.ID, data)
	msg.SetContext(ctx)

	if err := d.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("pubsub: publish to %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes the underlying publisher.
func (d *Dispatcher) Close() error {
	return d.publisher.Close()
}

// NoopDispatcher satisfies the dispatcher port when the bus is disabled, so
// the core runs without a broker in development and tests.
type NoopDispatcher struct{}

var _ service.EventDispatcher = (*NoopDispatcher)(nil)

func NewNoopDispatcher() *NoopDispatcher { return &NoopDispatcher{} }

func (*NoopDispatcher) Dispatch(context.Context, string, any) error { return nil }
