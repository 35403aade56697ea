package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/starfocus/starfocus/internal/progression/domain"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/outbox"
)

type mockStreakRepo struct {
	mock.Mock
}

func (m *mockStreakRepo) Find(ctx context.Context, userID uuid.UUID) (domain.State, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.State), args.Error(1)
}

func (m *mockStreakRepo) Save(ctx context.Context, userID uuid.UUID, state domain.State, at time.Time) error {
	return m.Called(ctx, userID, state, at).Error(0)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int, now time.Time) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit, now)
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, err string, next time.Time) error {
	return m.Called(ctx, id, err, next).Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	return m.Called(ctx, id, reason, at).Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestUseFreezeTokenHandler_Handle(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 1, 9, 20, 0, 0, 0, time.UTC)

	t.Run("spends a token", func(t *testing.T) {
		streaks := new(mockStreakRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewUseFreezeTokenHandler(streaks, outboxRepo, uow, time.UTC)
		handler.clock = func() time.Time { return now }

		ctx := context.Background()
		uow.On("Begin", ctx).Return(ctx, nil)
		uow.On("Commit", ctx).Return(nil)
		streaks.On("Find", ctx, userID).Return(domain.State{
			CurrentStreak: 8,
			LongestStreak: 8,
			FreezeTokens:  1,
			LastFocusDate: sharedDomain.MustParseDay("2024-01-08"),
		}, nil)
		streaks.On("Save", ctx, userID, mock.AnythingOfType("domain.State"), now).Return(nil)
		outboxRepo.On("SaveBatch", ctx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeyFreezeTokenUsed
		})).Return(nil)

		next, err := handler.Handle(ctx, UseFreezeTokenCommand{UserID: userID})
		require.NoError(t, err)
		assert.Equal(t, 0, next.FreezeTokens)
		assert.Equal(t, 1, next.FreezeTokensUsed)
		assert.Equal(t, 8, next.CurrentStreak)
		assert.Equal(t, "2024-01-09", next.LastFocusDate.String())
		streaks.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("fails without tokens", func(t *testing.T) {
		streaks := new(mockStreakRepo)
		uow := new(mockUnitOfWork)
		handler := NewUseFreezeTokenHandler(streaks, new(mockOutboxRepo), uow, time.UTC)
		handler.clock = func() time.Time { return now }

		ctx := context.Background()
		uow.On("Begin", ctx).Return(ctx, nil)
		uow.On("Rollback", ctx).Return(nil)
		streaks.On("Find", ctx, userID).Return(domain.State{CurrentStreak: 2}, nil)

		_, err := handler.Handle(ctx, UseFreezeTokenCommand{UserID: userID})
		assert.ErrorIs(t, err, domain.ErrNoFreezeTokens)
		streaks.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
