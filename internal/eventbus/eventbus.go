// Package eventbus publishes lifecycle events on NATS JetStream through
// watermill. Publishing is best-effort fan-out for scoreboard displays and
// the leaderboard renderer; a publish failure is logged by callers and never
// rolls back a committed state change.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
)

// EventBus publishes JSON event payloads to named topics.
type EventBus interface {
	Publish(ctx context.Context, topic string, payload any) error
	Close() error
}

type natsEventBus struct {
	publisher message.Publisher
}

// NewNATSEventBus creates an event bus backed by a NATS JetStream publisher.
func NewNATSEventBus(natsURL string, logger watermill.LoggerAdapter) (EventBus, error) {
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	jsConfig := wnats.JetStreamConfig{
		Disabled:       false,
		AutoProvision:  true,
		PublishOptions: []nc.PubOpt{},
	}

	publisher, err := wnats.NewPublisher(
		wnats.PublisherConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Marshaler:         &wnats.NATSMarshaler{},
			JetStream:         jsConfig,
			SubjectCalculator: wnats.DefaultSubjectCalculator,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	return &natsEventBus{publisher: publisher}, nil
}

func (b *natsEventBus) Publish(_ context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for topic %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("published_at", time.Now().UTC().Format(time.RFC3339Nano))

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

func (b *natsEventBus) Close() error {
	return b.publisher.Close()
}

type noopEventBus struct{}

// NewNoop returns an event bus that drops everything. Used in tests and when
// NATS is not configured.
func NewNoop() EventBus { return noopEventBus{} }

func (noopEventBus) Publish(context.Context, string, any) error { return nil }
func (noopEventBus) Close() error                               { return nil }
