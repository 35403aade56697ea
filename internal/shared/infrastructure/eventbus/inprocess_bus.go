package eventbus

import (
	"context"
	"log/slog"
	"time"
)

// InProcessBus delivers published events synchronously to local consumers.
// It stands in for RabbitMQ in single-user local mode.
type InProcessBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
}

// NewInProcessBus creates a new in-process event bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// RegisterConsumer registers an event consumer.
func (b *InProcessBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Publish decodes the envelope and dispatches it. Consumer failures are
// returned so the outbox retries the message.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event, err := DecodeEvent(routingKey, payload)
	if err != nil {
		// a malformed payload will never decode; retrying cannot help
		b.logger.Error("dropping undecodable event", "routing_key", routingKey, "error", err)
		return nil
	}

	start := time.Now()
	if err := b.registry.Dispatch(ctx, event); err != nil {
		return err
	}
	b.logger.Debug("event dispatched",
		"routing_key", routingKey,
		"event_id", event.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessBus) Close() error { return nil }
