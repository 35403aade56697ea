package infrastructure

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/starfocus/starfocus/internal/leaderboard/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupBoard needs a Redis at REDIS_ADDR (default localhost:6379) and skips
// otherwise.
func setupBoard(t *testing.T) *RedisBoard {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	prefix := fmt.Sprintf("starfocus-test:%s", uuid.NewString())
	t.Cleanup(func() {
		var cursor uint64
		for {
			keys, next, err := client.Scan(ctx, cursor, prefix+":*", 100).Result()
			if err != nil {
				break
			}
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
			if cursor = next; cursor == 0 {
				break
			}
		}
		_ = client.Close()
	})
	return NewRedisBoard(client, prefix, time.Hour)
}

func TestRedisBoard_AddAndTop(t *testing.T) {
	board := setupBoard(t)
	ctx := context.Background()
	week := domain.Week{Year: 2026, Number: 12}
	alice, bob := uuid.New(), uuid.New()

	for _, s := range []struct {
		user    uuid.UUID
		points  float64
		minutes int
	}{
		{alice, 80, 30},
		{bob, 95, 45},
		{alice, 40, 20},
	} {
		added, err := board.Add(ctx, uuid.New(), s.user, week, s.points, s.minutes)
		require.NoError(t, err)
		assert.True(t, added)
	}

	top, err := board.Top(ctx, week, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, domain.Entry{Rank: 1, UserID: alice, Points: 120, Minutes: 50}, top[0])
	assert.Equal(t, domain.Entry{Rank: 2, UserID: bob, Points: 95, Minutes: 45}, top[1])

	rank, ok, err := board.Rank(ctx, week, bob)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, rank)

	_, ok, err = board.Rank(ctx, week, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	points, err := board.Points(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]float64{alice: 120, bob: 95}, points)
}

func TestRedisBoard_AddIsIdempotentPerEvent(t *testing.T) {
	board := setupBoard(t)
	ctx := context.Background()
	week := domain.Week{Year: 2026, Number: 12}
	user, event := uuid.New(), uuid.New()

	added, err := board.Add(ctx, event, user, week, 50, 25)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = board.Add(ctx, event, user, week, 50, 25)
	require.NoError(t, err)
	assert.False(t, added)

	points, err := board.Points(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, 50.0, points[user])
}

func TestRedisBoard_EmptyWeek(t *testing.T) {
	board := setupBoard(t)
	top, err := board.Top(context.Background(), domain.Week{Year: 2020, Number: 1}, 5)
	require.NoError(t, err)
	assert.Empty(t, top)
}
