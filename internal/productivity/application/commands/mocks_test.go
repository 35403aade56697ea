package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/outbox"
	"github.com/stretchr/testify/mock"
)

// mockTaskRepo is a mock implementation of task.Repository.
type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindByCourseWork(ctx context.Context, userID uuid.UUID, courseWorkID string) (*task.Task, error) {
	args := m.Called(ctx, userID, courseWorkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockOutboxRepo is a mock implementation of outbox.Repository.
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error {
	return m.Called(ctx, id, err, nextRetryAt).Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	return m.Called(ctx, id, reason, at).Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// mockUnitOfWork is a mock implementation of UnitOfWork.
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

type mockCourseworkSource struct {
	mock.Mock
}

func (m *mockCourseworkSource) FetchCoursework(ctx context.Context) ([]task.Coursework, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Coursework), args.Error(1)
}

type ctxKey string

// txContext returns the context the mocked unit of work hands to repositories.
func txContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey("tx"), "transaction")
}
