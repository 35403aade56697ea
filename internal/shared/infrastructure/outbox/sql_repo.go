package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/database"
)

// SQLRepository implements Repository on any database.Connection.
type SQLRepository struct {
	conn database.Connection
}

// NewSQLRepository creates a new outbox repository.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn}
}

const insertMessage = `INSERT INTO outbox (
	event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Save stores a new outbox message.
func (r *SQLRepository) Save(ctx context.Context, msg *Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	metadata := string(msg.Metadata)
	if metadata == "" {
		metadata = "{}"
	}
	_, err := exec.Exec(ctx, insertMessage,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		metadata,
		database.FormatTime(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert outbox message %s: %w", msg.RoutingKey, err)
	}
	return nil
}

// SaveBatch stores messages inside the caller's transaction, or a new one.
func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return database.RunInTx(ctx, r.conn, func(txCtx context.Context) error {
		for _, msg := range msgs {
			if err := r.Save(txCtx, msg); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetUnpublished returns messages due for a publish attempt.
func (r *SQLRepository) GetUnpublished(ctx context.Context, limit int, now time.Time) ([]*Message, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `SELECT
		id, event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata,
		created_at, published_at, next_retry_at, retry_count, last_error, dead_lettered_at, dead_letter_reason
	FROM outbox
	WHERE published_at IS NULL
		AND dead_lettered_at IS NULL
		AND (next_retry_at IS NULL OR next_retry_at <= ?)
	ORDER BY created_at, id
	LIMIT ?`, database.FormatTime(now), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// MarkPublished marks a message as successfully published.
func (r *SQLRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE outbox SET published_at = ? WHERE id = ?`, database.FormatTime(at), id)
	return err
}

// MarkFailed records a failed attempt and schedules the next one.
func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`,
		errMsg, database.FormatTime(nextRetryAt), id)
	return err
}

// MarkDead stops further attempts for a message.
func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, dead_letter_reason = ?, dead_lettered_at = ? WHERE id = ?`,
		reason, reason, database.FormatTime(at), id)
	return err
}

// DeleteOld removes published messages created before the cutoff.
func (r *SQLRepository) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND created_at < ?`, database.FormatTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMessage(row database.Row) (*Message, error) {
	var (
		msg                                              Message
		eventID, aggregateID, payload, metadata, created string
		published, nextRetry, dead                       sql.NullString
		lastError, deadReason                            sql.NullString
	)
	if err := row.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.EventType, &msg.RoutingKey,
		&payload, &metadata, &created, &published, &nextRetry, &msg.RetryCount,
		&lastError, &dead, &deadReason,
	); err != nil {
		return nil, err
	}

	var err error
	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("outbox %d event id: %w", msg.ID, err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("outbox %d aggregate id: %w", msg.ID, err)
	}
	msg.Payload = []byte(payload)
	msg.Metadata = []byte(metadata)
	if msg.CreatedAt, err = database.ParseTime(created); err != nil {
		return nil, err
	}
	if msg.PublishedAt, err = database.ParseNullableTime(published); err != nil {
		return nil, err
	}
	if msg.NextRetryAt, err = database.ParseNullableTime(nextRetry); err != nil {
		return nil, err
	}
	if msg.DeadLetteredAt, err = database.ParseNullableTime(dead); err != nil {
		return nil, err
	}
	if lastError.Valid {
		msg.LastError = &lastError.String
	}
	if deadReason.Valid {
		msg.DeadLetterReason = &deadReason.String
	}
	return &msg, nil
}
