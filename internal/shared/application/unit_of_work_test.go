package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUoW struct {
	mock.Mock
}

func (m *mockUoW) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUoW) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUoW) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestWithUnitOfWork(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		uow := new(mockUoW)
		uow.On("Begin", ctx).Return(ctx, nil)
		uow.On("Commit", ctx).Return(nil)

		called := false
		err := WithUnitOfWork(ctx, uow, func(context.Context) error {
			called = true
			return nil
		})

		require.NoError(t, err)
		assert.True(t, called)
		uow.AssertNotCalled(t, "Rollback", mock.Anything)
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		uow := new(mockUoW)
		uow.On("Begin", ctx).Return(ctx, nil)
		uow.On("Rollback", ctx).Return(nil)
		boom := errors.New("boom")

		err := WithUnitOfWork(ctx, uow, func(context.Context) error { return boom })

		assert.ErrorIs(t, err, boom)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("reports rollback failure alongside cause", func(t *testing.T) {
		uow := new(mockUoW)
		uow.On("Begin", ctx).Return(ctx, nil)
		rbErr := errors.New("rollback failed")
		uow.On("Rollback", ctx).Return(rbErr)
		boom := errors.New("boom")

		err := WithUnitOfWork(ctx, uow, func(context.Context) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, err, rbErr)
	})

	t.Run("begin failure skips fn", func(t *testing.T) {
		uow := new(mockUoW)
		uow.On("Begin", ctx).Return(nil, errors.New("no conn"))

		err := WithUnitOfWork(ctx, uow, func(context.Context) error {
			t.Fatal("fn must not run")
			return nil
		})

		assert.ErrorContains(t, err, "begin unit of work")
	})
}
