package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/timerange"
)

type mockAvailabilityRepo struct{ mock.Mock }

func (m *mockAvailabilityRepo) Create(ctx context.Context, w *domain.AvailabilityWindow) (*domain.AvailabilityWindow, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilityWindow), args.Error(1)
}

func (m *mockAvailabilityRepo) ListIntersecting(ctx context.Context, rng timerange.Range) ([]*domain.AvailabilityWindow, error) {
	args := m.Called(ctx, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AvailabilityWindow), args.Error(1)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestList_DefaultPeriodStartsToday(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	dayStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	repo := new(mockAvailabilityRepo)
	repo.On("ListIntersecting", ctx, timerange.New(dayStart, dayStart.Add(31*24*time.Hour))).
		Return([]*domain.AvailabilityWindow{
			{ID: 1, StartTime: dayStart.Add(9 * time.Hour), EndTime: dayStart.Add(12 * time.Hour)},
			{ID: 2, StartTime: dayStart.Add(10 * time.Hour), EndTime: dayStart.Add(13 * time.Hour)},
		}, nil)

	resp, err := NewService(repo, nopLogger{}).WithTimeProvider(fixedClock{now: now}).
		List(ctx, &models.ListWindowsRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Windows, 2)
	repo.AssertExpectations(t)
}

func TestList_RejectsBadPeriod(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(new(mockAvailabilityRepo), nopLogger{})

	_, err := svc.List(ctx, &models.ListWindowsRequest{From: ptr.Ptr(from), To: ptr.Ptr(from)})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = svc.List(ctx, &models.ListWindowsRequest{From: ptr.Ptr(from), To: ptr.Ptr(from.AddDate(2, 0, 0))})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("valid window", func(t *testing.T) {
		repo := new(mockAvailabilityRepo)
		repo.On("Create", ctx, &domain.AvailabilityWindow{StartTime: start, EndTime: start.Add(3 * time.Hour)}).
			Return(&domain.AvailabilityWindow{ID: 4, StartTime: start, EndTime: start.Add(3 * time.Hour)}, nil)

		resp, err := NewService(repo, nopLogger{}).Create(ctx, &models.CreateWindowRequest{
			StartTime: start, EndTime: start.Add(3 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4), resp.ID)
	})

	t.Run("start equals end", func(t *testing.T) {
		repo := new(mockAvailabilityRepo)
		_, err := NewService(repo, nopLogger{}).Create(ctx, &models.CreateWindowRequest{StartTime: start, EndTime: start})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing end", func(t *testing.T) {
		_, err := NewService(new(mockAvailabilityRepo), nopLogger{}).Create(ctx, &models.CreateWindowRequest{StartTime: start})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
