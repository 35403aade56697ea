package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultConsumerQueueName is the durable queue the worker reads from.
const DefaultConsumerQueueName = "starfocus.worker"

// RabbitMQConsumerConfig configures the RabbitMQ consumer.
type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Exchange  string
	Prefetch  int
	Logger    *slog.Logger
}

// RabbitMQConsumer consumes events from a durable queue bound to the exchange.
type RabbitMQConsumer struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	queue    string
	exchange string
	prefetch int
	registry *ConsumerRegistry
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewRabbitMQConsumer dials the broker and declares the queue.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultConsumerQueueName
	}
	if cfg.Exchange == "" {
		cfg.Exchange = ExchangeName
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	if registry == nil {
		registry = NewConsumerRegistry(cfg.Logger)
	}

	conn, ch, err := dialExchange(cfg.URL, cfg.Exchange)
	if err != nil {
		return nil, err
	}

	// durable, not auto-deleted, not exclusive
	if _, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	cfg.Logger.Info("RabbitMQ consumer connected", "queue", cfg.QueueName, "exchange", cfg.Exchange)

	return &RabbitMQConsumer{
		conn:     conn,
		channel:  ch,
		queue:    cfg.QueueName,
		exchange: cfg.Exchange,
		prefetch: cfg.Prefetch,
		registry: registry,
		logger:   cfg.Logger,
	}, nil
}

// RegisterConsumer registers an event consumer and binds its routing keys.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range consumer.EventTypes() {
		if err := c.channel.QueueBind(c.queue, key, c.exchange, false, nil); err != nil {
			c.logger.Error("failed to bind queue", "routing_key", key, "error", err)
			continue
		}
		c.logger.Debug("bound queue", "queue", c.queue, "routing_key", key)
	}
}

// Start consumes until ctx is cancelled or the channel closes.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	if err := c.channel.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	c.logger.Info("started consuming events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.deliver(ctx, d)
		}
	}
}

func (c *RabbitMQConsumer) deliver(ctx context.Context, d amqp.Delivery) {
	event, err := DecodeEvent(d.RoutingKey, d.Body)
	if err != nil {
		c.logger.Error("rejecting undecodable event", "routing_key", d.RoutingKey, "error", err)
		if rejErr := d.Reject(false); rejErr != nil {
			c.logger.Error("failed to reject message", "error", rejErr)
		}
		return
	}

	if err := c.registry.Dispatch(ctx, event); err != nil {
		// redelivered messages get one more try before being dropped
		requeue := !d.Redelivered
		c.logger.Error("event dispatch failed",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"requeue", requeue,
			"error", err,
		)
		if nackErr := d.Nack(false, requeue); nackErr != nil {
			c.logger.Error("failed to nack message", "error", nackErr)
		}
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		c.logger.Error("failed to ack message", "error", ackErr)
	}
}

// Close closes the consumer connection.
func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.running = false
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return err
		}
	}
	c.logger.Info("RabbitMQ consumer closed")
	return nil
}
