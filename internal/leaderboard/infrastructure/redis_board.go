package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/starfocus/starfocus/internal/leaderboard/domain"
)

const (
	defaultPrefix    = "starfocus:leaderboard"
	defaultRetention = 30 * 7 * 24 * time.Hour
)

// RedisBoard keeps one sorted set of points and one of minutes per week.
// Keys: {prefix}:{week}:points, {prefix}:{week}:minutes and
// {prefix}:seen:{event_id} for delivery dedupe.
type RedisBoard struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

var _ domain.Board = (*RedisBoard)(nil)

// NewRedisBoard creates a Redis-backed board. Weekly keys expire after
// retention.
func NewRedisBoard(client *redis.Client, prefix string, retention time.Duration) *RedisBoard {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if retention <= 0 {
		retention = defaultRetention
	}
	return &RedisBoard{client: client, prefix: prefix, retention: retention}
}

func (b *RedisBoard) pointsKey(week domain.Week) string {
	return fmt.Sprintf("%s:%s:points", b.prefix, week)
}

func (b *RedisBoard) minutesKey(week domain.Week) string {
	return fmt.Sprintf("%s:%s:minutes", b.prefix, week)
}

func (b *RedisBoard) seenKey(eventID uuid.UUID) string {
	return fmt.Sprintf("%s:seen:%s", b.prefix, eventID)
}

// Add credits the session unless eventID was already applied.
func (b *RedisBoard) Add(ctx context.Context, eventID, userID uuid.UUID, week domain.Week, points float64, minutes int) (bool, error) {
	seen := b.seenKey(eventID)
	fresh, err := b.client.SetNX(ctx, seen, 1, b.retention).Result()
	if err != nil {
		return false, err
	}
	if !fresh {
		return false, nil
	}

	member := userID.String()
	pointsKey, minutesKey := b.pointsKey(week), b.minutesKey(week)
	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZIncrBy(ctx, pointsKey, points, member)
		pipe.ZIncrBy(ctx, minutesKey, float64(minutes), member)
		pipe.Expire(ctx, pointsKey, b.retention)
		pipe.Expire(ctx, minutesKey, b.retention)
		return nil
	})
	if err != nil {
		// let a redelivery try again
		_ = b.client.Del(context.WithoutCancel(ctx), seen).Err()
		return false, err
	}
	return true, nil
}

// Top lists the week's leaders with their minutes.
func (b *RedisBoard) Top(ctx context.Context, week domain.Week, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidLimit
	}
	scored, err := b.client.ZRevRangeWithScores(ctx, b.pointsKey(week), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return []domain.Entry{}, nil
	}

	members := make([]string, len(scored))
	for i, z := range scored {
		members[i] = z.Member.(string)
	}
	minutes, err := b.client.ZMScore(ctx, b.minutesKey(week), members...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.Entry, 0, len(scored))
	for i, z := range scored {
		id, err := uuid.Parse(members[i])
		if err != nil {
			return nil, fmt.Errorf("leaderboard member %q: %w", members[i], err)
		}
		entry := domain.Entry{Rank: i + 1, UserID: id, Points: z.Score}
		if i < len(minutes) {
			entry.Minutes = int(minutes[i])
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Points returns every member's points for the week.
func (b *RedisBoard) Points(ctx context.Context, week domain.Week) (map[uuid.UUID]float64, error) {
	scored, err := b.client.ZRangeWithScores(ctx, b.pointsKey(week), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]float64, len(scored))
	for _, z := range scored {
		id, err := uuid.Parse(z.Member.(string))
		if err != nil {
			continue
		}
		out[id] = z.Score
	}
	return out, nil
}

// Rank returns the user's zero-based position, highest points first.
func (b *RedisBoard) Rank(ctx context.Context, week domain.Week, userID uuid.UUID) (int, bool, error) {
	rank, err := b.client.ZRevRank(ctx, b.pointsKey(week), userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return int(rank), true, nil
}
