package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Save(ctx context.Context, msg *Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockRepo) SaveBatch(ctx context.Context, msgs []*Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockRepo) GetUnpublished(ctx context.Context, limit int, now time.Time) ([]*Message, error) {
	args := m.Called(ctx, limit, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Message), args.Error(1)
}

func (m *mockRepo) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockRepo) MarkFailed(ctx context.Context, id int64, errMsg string, next time.Time) error {
	return m.Called(ctx, id, errMsg, next).Error(0)
}

func (m *mockRepo) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	return m.Called(ctx, id, reason, at).Error(0)
}

func (m *mockRepo) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	return m.Called(ctx, routingKey, payload).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

var fixedNow = time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)

func newTestProcessor(repo Repository, pub *mockPublisher) *Processor {
	p := NewProcessor(repo, pub, DefaultProcessorConfig(), nil)
	p.now = func() time.Time { return fixedNow }
	return p
}

func testMessage(id int64, retries int) *Message {
	return &Message{
		ID:         id,
		EventID:    uuid.New(),
		RoutingKey: "focus.session.completed",
		Payload:    []byte(`{}`),
		CreatedAt:  fixedNow.Add(-2 * time.Second),
		RetryCount: retries,
	}
}

func TestProcessor_ProcessOnce_Publishes(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	pub := &mockPublisher{}
	msg := testMessage(1, 0)

	repo.On("GetUnpublished", ctx, 100, fixedNow).Return([]*Message{msg}, nil)
	pub.On("Publish", ctx, msg.RoutingKey, []byte(msg.Payload)).Return(nil)
	repo.On("MarkPublished", ctx, int64(1), fixedNow).Return(nil)

	p := newTestProcessor(repo, pub)
	require.NoError(t, p.ProcessOnce(ctx))

	stats := p.Stats()
	assert.Equal(t, uint64(1), stats.Published)
	assert.Equal(t, int64(2000), stats.OldestLagMs)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestProcessor_ProcessOnce_SchedulesRetry(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	pub := &mockPublisher{}
	msg := testMessage(2, 1)

	repo.On("GetUnpublished", ctx, 100, fixedNow).Return([]*Message{msg}, nil)
	pub.On("Publish", ctx, msg.RoutingKey, []byte(msg.Payload)).Return(errors.New("broker down"))
	// second attempt backs off 2s
	repo.On("MarkFailed", ctx, int64(2), "broker down", fixedNow.Add(2*time.Second)).Return(nil)

	p := newTestProcessor(repo, pub)
	require.NoError(t, p.ProcessOnce(ctx))

	assert.Equal(t, uint64(1), p.Stats().Failed)
	assert.Equal(t, "broker down", p.Stats().LastError)
	repo.AssertExpectations(t)
}

func TestProcessor_ProcessOnce_DeadLetters(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	pub := &mockPublisher{}
	msg := testMessage(3, 4)

	repo.On("GetUnpublished", ctx, 100, fixedNow).Return([]*Message{msg}, nil)
	pub.On("Publish", ctx, msg.RoutingKey, []byte(msg.Payload)).Return(errors.New("rejected"))
	repo.On("MarkDead", ctx, int64(3), "rejected", fixedNow).Return(nil)

	p := newTestProcessor(repo, pub)
	require.NoError(t, p.ProcessOnce(ctx))

	assert.Equal(t, uint64(1), p.Stats().Dead)
	repo.AssertExpectations(t)
}

func TestProcessor_ProcessOnce_RepoError(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	repo.On("GetUnpublished", ctx, 100, fixedNow).Return(nil, errors.New("locked"))

	p := newTestProcessor(repo, &mockPublisher{})
	assert.Error(t, p.ProcessOnce(ctx))
	assert.Equal(t, "locked", p.Stats().LastError)
}

func TestProcessor_Purge(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	repo.On("DeleteOld", ctx, fixedNow.Add(-7*24*time.Hour)).Return(int64(4), nil)

	p := newTestProcessor(repo, &mockPublisher{})
	n, err := p.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, int64(4), p.Stats().Purged)
}

func TestProcessor_Backoff(t *testing.T) {
	p := NewProcessor(&mockRepo{}, &mockPublisher{}, ProcessorConfig{
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  10 * time.Second,
	}, nil)

	assert.Equal(t, time.Second, p.backoff(1))
	assert.Equal(t, 4*time.Second, p.backoff(3))
	assert.Equal(t, 10*time.Second, p.backoff(8))
}

func TestProcessor_RunStopsOnCancel(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetUnpublished", mock.Anything, mock.Anything, mock.Anything).Return([]*Message{}, nil).Maybe()
	repo.On("DeleteOld", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()

	p := NewProcessor(repo, &mockPublisher{}, ProcessorConfig{PollInterval: 5 * time.Millisecond}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("processor did not stop")
	}
}
