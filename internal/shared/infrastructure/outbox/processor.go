package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/eventbus"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
	// Retention is how long published messages are kept. Zero keeps them forever.
	Retention time.Duration
}

// DefaultProcessorConfig returns the worker defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     time.Second,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		Retention:        7 * 24 * time.Hour,
	}
}

// Stats is a snapshot of processor counters.
type Stats struct {
	Published   uint64
	Failed      uint64
	Dead        uint64
	Purged      int64
	LastError   string
	LastRunAt   time.Time
	OldestLagMs int64
}

// Processor polls the outbox and hands messages to a publisher.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	stats Stats
}

// NewProcessor creates a new outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)
	defer p.logger.Info("outbox processor stopped")

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	var lastPurge time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.ProcessOnce(ctx); err != nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
			if p.config.Retention > 0 && p.now().Sub(lastPurge) > time.Hour {
				lastPurge = p.now()
				if _, err := p.Purge(ctx); err != nil {
					p.logger.Error("failed to purge outbox", "error", err)
				}
			}
		}
	}
}

// ProcessOnce publishes a single batch synchronously.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	now := p.now()
	messages, err := p.repo.GetUnpublished(ctx, p.config.BatchSize, now)
	if err != nil {
		p.record(func(s *Stats) { s.LastError = err.Error() })
		return err
	}

	var lag int64
	if len(messages) > 0 {
		lag = now.Sub(messages[0].CreatedAt).Milliseconds()
	}
	p.record(func(s *Stats) {
		s.LastRunAt = now
		s.OldestLagMs = lag
	})

	for _, msg := range messages {
		p.handle(ctx, msg)
	}
	return nil
}

func (p *Processor) handle(ctx context.Context, msg *Message) {
	err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload)
	if err == nil {
		if markErr := p.repo.MarkPublished(ctx, msg.ID, p.now()); markErr != nil {
			p.logger.Error("failed to mark message as published", "id", msg.ID, "error", markErr)
			return
		}
		p.record(func(s *Stats) { s.Published++ })
		return
	}

	meta := decodeMetadata(msg)
	p.logger.Warn("failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"correlation_id", meta.CorrelationID,
		"user_id", meta.UserID,
		"retry_count", msg.RetryCount,
		"error", err,
	)

	if !msg.CanRetry(p.config.MaxRetries) {
		p.record(func(s *Stats) { s.Dead++; s.LastError = err.Error() })
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error(), p.now()); markErr != nil {
			p.logger.Error("failed to dead-letter message", "id", msg.ID, "error", markErr)
		}
		return
	}

	p.record(func(s *Stats) { s.Failed++; s.LastError = err.Error() })
	next := p.now().Add(p.backoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), next); markErr != nil {
		p.logger.Error("failed to mark message as failed", "id", msg.ID, "error", markErr)
	}
}

// Purge deletes published messages older than the retention window.
func (p *Processor) Purge(ctx context.Context) (int64, error) {
	if p.config.Retention <= 0 {
		return 0, nil
	}
	n, err := p.repo.DeleteOld(ctx, p.now().Add(-p.config.Retention))
	if err != nil {
		return 0, err
	}
	p.record(func(s *Stats) { s.Purged += n })
	return n, nil
}

// backoff doubles from the base per attempt, capped at the max.
func (p *Processor) backoff(attempt int) time.Duration {
	base, max := p.config.RetryBackoffBase, p.config.RetryBackoffMax
	if base <= 0 {
		base = time.Second
	}
	if max <= 0 {
		max = time.Minute
	}
	d := base
	for i := 1; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		return max
	}
	return d
}

// Stats returns current processor statistics.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Processor) record(fn func(*Stats)) {
	p.mu.Lock()
	fn(&p.stats)
	p.mu.Unlock()
}

func decodeMetadata(msg *Message) domain.EventMetadata {
	var meta domain.EventMetadata
	if len(msg.Metadata) > 0 {
		_ = json.Unmarshal(msg.Metadata, &meta)
	}
	return meta
}
