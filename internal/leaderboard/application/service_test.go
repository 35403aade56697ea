package application

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/leaderboard/domain"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBoard struct {
	mock.Mock
}

func (m *mockBoard) Add(ctx context.Context, eventID, userID uuid.UUID, week domain.Week, points float64, minutes int) (bool, error) {
	args := m.Called(ctx, eventID, userID, week, points, minutes)
	return args.Bool(0), args.Error(1)
}

func (m *mockBoard) Top(ctx context.Context, week domain.Week, limit int) ([]domain.Entry, error) {
	args := m.Called(ctx, week, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Entry), args.Error(1)
}

func (m *mockBoard) Points(ctx context.Context, week domain.Week) (map[uuid.UUID]float64, error) {
	args := m.Called(ctx, week)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]float64), args.Error(1)
}

func (m *mockBoard) Rank(ctx context.Context, week domain.Week, userID uuid.UUID) (int, bool, error) {
	args := m.Called(ctx, week, userID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func TestService_RecordSession_BucketsByLocalWeek(t *testing.T) {
	board := new(mockBoard)
	loc := time.FixedZone("UTC+10", 10*3600)
	svc := NewService(board, loc, nil)

	eventID, userID := uuid.New(), uuid.New()
	// Sunday 20:00 UTC is already Monday in UTC+10.
	endedAt := time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)
	board.On("Add", mock.Anything, eventID, userID, domain.Week{Year: 2026, Number: 12}, 72.5, 25).
		Return(true, nil).Once()

	require.NoError(t, svc.RecordSession(context.Background(), eventID, userID, endedAt, 72.5, 25))
	board.AssertExpectations(t)
}

func TestService_RecordSession_DuplicateIsNoop(t *testing.T) {
	board := new(mockBoard)
	svc := NewService(board, nil, nil)
	board.On("Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(false, nil)

	err := svc.RecordSession(context.Background(), uuid.New(), uuid.New(), time.Now(), 10, 5)
	assert.NoError(t, err)
}

func TestService_Standing(t *testing.T) {
	board := new(mockBoard)
	svc := NewService(board, nil, nil)

	me, rival := uuid.New(), uuid.New()
	day := sharedDomain.MustParseDay("2026-03-18")
	w12 := domain.Week{Year: 2026, Number: 12}
	w11 := domain.Week{Year: 2026, Number: 11}
	w10 := domain.Week{Year: 2026, Number: 10}

	board.On("Points", mock.Anything, w12).Return(map[uuid.UUID]float64{me: 400, rival: 500}, nil)
	board.On("Points", mock.Anything, w11).Return(map[uuid.UUID]float64{me: 150, rival: 480}, nil)
	board.On("Rank", mock.Anything, w12, me).Return(1, true, nil)
	board.On("Rank", mock.Anything, w11, me).Return(2, true, nil)
	board.On("Rank", mock.Anything, w10, me).Return(3, true, nil)

	standing, err := svc.Standing(context.Background(), me, day)
	require.NoError(t, err)
	assert.Equal(t, 250.0, standing.WeeklyImprovement)
	require.NotNil(t, standing.GroupMaxImprovement)
	assert.Equal(t, 250.0, *standing.GroupMaxImprovement)
	assert.Equal(t, 2, standing.ConsecutiveWeeksTop3)
}

func TestService_Standing_NewUser(t *testing.T) {
	board := new(mockBoard)
	svc := NewService(board, nil, nil)
	me := uuid.New()

	board.On("Points", mock.Anything, mock.Anything).Return(map[uuid.UUID]float64{}, nil)
	board.On("Rank", mock.Anything, mock.Anything, me).Return(0, false, nil)

	standing, err := svc.Standing(context.Background(), me, sharedDomain.MustParseDay("2026-03-18"))
	require.NoError(t, err)
	assert.Zero(t, standing.WeeklyImprovement)
	assert.Nil(t, standing.GroupMaxImprovement)
	assert.Zero(t, standing.ConsecutiveWeeksTop3)
}

func TestService_Top_RejectsBadLimit(t *testing.T) {
	svc := NewService(new(mockBoard), nil, nil)
	_, err := svc.Top(context.Background(), sharedDomain.MustParseDay("2026-03-18"), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
}

type blockingBoard struct {
	mockBoard
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingBoard) Top(ctx context.Context, week domain.Week, limit int) ([]domain.Entry, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	<-b.release
	return []domain.Entry{{Rank: 1, UserID: uuid.Nil, Points: 90, Minutes: 30}}, nil
}

func TestService_Top_SharesConcurrentReads(t *testing.T) {
	board := &blockingBoard{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(board, nil, nil)
	day := sharedDomain.MustParseDay("2026-03-18")

	var wg sync.WaitGroup
	results := make([][]domain.Entry, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, err := svc.Top(context.Background(), day, 10)
			assert.NoError(t, err)
			results[i] = entries
		}()
	}

	<-board.started
	// give the other callers time to join the in-flight read
	time.Sleep(50 * time.Millisecond)
	close(board.release)
	wg.Wait()

	assert.Equal(t, int32(1), board.calls.Load())
	for _, entries := range results {
		require.Len(t, entries, 1)
		assert.Equal(t, 90.0, entries[0].Points)
	}
}
