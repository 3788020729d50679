package delete_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/timerange"
)

type mockAvailabilityRepo struct{ mock.Mock }

func (m *mockAvailabilityRepo) GetByID(ctx context.Context, id int64) (*domain.AvailabilityWindow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilityWindow), args.Error(1)
}

func (m *mockAvailabilityRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockAppointmentRepo struct{ mock.Mock }

func (m *mockAppointmentRepo) ListOpenWithin(ctx context.Context, rng timerange.Range) ([]*domain.Appointment, error) {
	args := m.Called(ctx, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, id int64, change domain.StatusChange) error {
	return m.Called(ctx, id, change).Error(0)
}

type mockEventRepo struct{ mock.Mock }

func (m *mockEventRepo) Create(ctx context.Context, e *domain.AppointmentEvent) error {
	return m.Called(ctx, e).Error(0)
}

// passThroughTx выполняет функцию без транзакции и считает вызовы
type passThroughTx struct{ calls int }

func (m *passThroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type nopMetrics struct{}

func (nopMetrics) IncTransition(string, string) {}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestDeleteAvailability_CancelsAppointmentsInside(t *testing.T) {
	ctx := context.Background()
	w := &domain.AvailabilityWindow{
		ID:        4,
		StartTime: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	windows, appts, events, tx := new(mockAvailabilityRepo), new(mockAppointmentRepo), new(mockEventRepo), &passThroughTx{}
	windows.On("GetByID", ctx, int64(4)).Return(w, nil)
	windows.On("Delete", ctx, int64(4)).Return(nil)
	appts.On("ListOpenWithin", ctx, w.Range()).Return([]*domain.Appointment{
		{ID: 1, Status: domain.StatusPending},
		{ID: 2, Status: domain.StatusConfirmed, PaymentReference: ptr.Ptr("pi_2")},
		{ID: 3, Status: domain.StatusPending},
	}, nil)
	appts.On("UpdateStatus", ctx, int64(1), domain.StatusChange{
		From: []domain.AppointmentStatus{domain.StatusPending}, To: domain.StatusCanceled,
	}).Return(nil)
	appts.On("UpdateStatus", ctx, int64(2), domain.StatusChange{
		From: []domain.AppointmentStatus{domain.StatusConfirmed}, To: domain.StatusCanceled,
	}).Return(nil)
	appts.On("UpdateStatus", ctx, int64(3), mock.Anything).Return(appointmentRepo.ErrStatusConflict)
	events.On("Create", ctx, mock.Anything).Return(nil)

	resp, err := NewUseCase(windows, appts, events, tx, nopMetrics{}, nopLogger{}).Execute(ctx, &Request{WindowID: 4})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, resp.CanceledAppointments)
	assert.Equal(t, []int64{2}, resp.PaidCanceled)
	assert.Equal(t, 1, tx.calls)
	events.AssertNumberOfCalls(t, "Create", 2)
	windows.AssertExpectations(t)
}

func TestDeleteAvailability_NotFound(t *testing.T) {
	ctx := context.Background()
	windows := new(mockAvailabilityRepo)
	windows.On("GetByID", ctx, int64(9)).Return(nil, availabilityRepo.ErrWindowNotFound)

	_, err := NewUseCase(windows, new(mockAppointmentRepo), new(mockEventRepo), &passThroughTx{}, nopMetrics{}, nopLogger{}).
		Execute(ctx, &Request{WindowID: 9})
	assert.ErrorIs(t, err, ErrWindowNotFound)
	windows.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
