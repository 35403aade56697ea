package outbox

import (
	"context"
	"time"
)

// Repository defines the interface for outbox persistence.
type Repository interface {
	// Save stores a new outbox message.
	Save(ctx context.Context, msg *Message) error

	// SaveBatch stores multiple outbox messages atomically.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns messages that are neither published nor dead and
	// whose retry time, if any, has passed. Oldest first.
	GetUnpublished(ctx context.Context, limit int, now time.Time) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error

	// DeleteOld removes published messages created before the cutoff.
	DeleteOld(ctx context.Context, before time.Time) (int64, error)
}
