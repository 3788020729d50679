package cancel_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type mockAppointmentRepo struct{ mock.Mock }

func (m *mockAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, id int64, change domain.StatusChange) error {
	return m.Called(ctx, id, change).Error(0)
}

type mockEventRepo struct{ mock.Mock }

func (m *mockEventRepo) Create(ctx context.Context, e *domain.AppointmentEvent) error {
	return m.Called(ctx, e).Error(0)
}

type mockProvider struct {
	mock.Mock
	available bool
}

func (m *mockProvider) IsAvailable() bool { return m.available }

func (m *mockProvider) GetPayment(ctx context.Context, ref string) (*payments.Payment, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Payment), args.Error(1)
}

func (m *mockProvider) Refund(ctx context.Context, ref string, amount int64, key string) (*payments.Refund, error) {
	args := m.Called(ctx, ref, amount, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Refund), args.Error(1)
}

type countingMetrics struct {
	refunds map[string]int
}

func (m *countingMetrics) IncTransition(string, string) {}
func (m *countingMetrics) IncRefund(mode string) {
	if m.refunds == nil {
		m.refunds = map[string]int{}
	}
	m.refunds[mode]++
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var start = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func appointment(status domain.AppointmentStatus, paymentRef *string) *domain.Appointment {
	return &domain.Appointment{
		ID:               21,
		UserID:           7,
		StartTime:        start,
		EndTime:          start.Add(time.Hour),
		Status:           status,
		PaymentReference: paymentRef,
		DepositCents:     1000,
	}
}

type fixture struct {
	appts    *mockAppointmentRepo
	events   *mockEventRepo
	provider *mockProvider
	metrics  *countingMetrics
}

func newFixture(a *domain.Appointment, available bool) *fixture {
	f := &fixture{
		appts:    new(mockAppointmentRepo),
		events:   new(mockEventRepo),
		provider: &mockProvider{available: available},
		metrics:  &countingMetrics{},
	}
	f.appts.On("GetByID", mock.Anything, a.ID).Return(a, nil)
	f.events.On("Create", mock.Anything, mock.Anything).Return(nil)
	return f
}

func (f *fixture) execute(t *testing.T, now time.Time) (*Response, error) {
	t.Helper()
	uc := NewUseCase(f.appts, f.events, f.provider, f.metrics, Options{CancellationWindowHours: 24}, nopLogger{}).
		WithTimeProvider(fixedClock{now: now})
	return uc.Execute(context.Background(), &Request{AppointmentID: 21, UserID: 7})
}

func expectStatus(f *fixture, from, to domain.AppointmentStatus, refunded *int64) {
	f.appts.On("UpdateStatus", mock.Anything, int64(21), domain.StatusChange{
		From:          []domain.AppointmentStatus{from},
		To:            to,
		RefundedCents: refunded,
	}).Return(nil)
}

func TestCancel_MoreThanWindowWithPaymentRefunds(t *testing.T) {
	f := newFixture(appointment(domain.StatusConfirmed, ptr.Ptr("pi_1")), true)
	f.provider.On("GetPayment", mock.Anything, "pi_1").Return(&payments.Payment{ID: "pi_1", CapturedCents: 1000}, nil)
	f.provider.On("Refund", mock.Anything, "pi_1", int64(1000), "cancel-refund-21").
		Return(&payments.Refund{ID: "re_1", AmountCents: 1000}, nil)
	expectStatus(f, domain.StatusConfirmed, domain.StatusRefunded, ptr.Ptr(int64(1000)))

	resp, err := f.execute(t, time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusRefunded), resp.Status)
	assert.True(t, resp.Refunded)
	assert.False(t, resp.Simulated)
	assert.False(t, resp.DepositForfeited)
	assert.Equal(t, int64(1000), resp.RefundAmountCents)
	require.NotNil(t, resp.RefundReference)
	assert.Equal(t, "re_1", *resp.RefundReference)
	assert.Equal(t, 1, f.metrics.refunds[refundModeReal])
}

func TestCancel_InsideWindowForfeitsDeposit(t *testing.T) {
	f := newFixture(appointment(domain.StatusConfirmed, ptr.Ptr("pi_1")), true)
	expectStatus(f, domain.StatusConfirmed, domain.StatusCanceled, nil)

	resp, err := f.execute(t, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCanceled), resp.Status)
	assert.True(t, resp.DepositForfeited)
	assert.False(t, resp.Refunded)
	f.provider.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_ExactlyWindowBoundaryForfeits(t *testing.T) {
	f := newFixture(appointment(domain.StatusConfirmed, ptr.Ptr("pi_1")), true)
	expectStatus(f, domain.StatusConfirmed, domain.StatusCanceled, nil)

	resp, err := f.execute(t, start.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCanceled), resp.Status)
	assert.True(t, resp.DepositForfeited)

	g := newFixture(appointment(domain.StatusConfirmed, ptr.Ptr("pi_1")), false)
	expectStatus(g, domain.StatusConfirmed, domain.StatusRefunded, ptr.Ptr(int64(1000)))

	resp, err = g.execute(t, start.Add(-24*time.Hour-time.Second))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRefunded), resp.Status)
}

func TestCancel_NoPaymentCancels(t *testing.T) {
	f := newFixture(appointment(domain.StatusPending, nil), true)
	expectStatus(f, domain.StatusPending, domain.StatusCanceled, nil)

	resp, err := f.execute(t, start.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCanceled), resp.Status)
	assert.False(t, resp.DepositForfeited)
	assert.False(t, resp.Refunded)
}

func TestCancel_SimulatedRefunds(t *testing.T) {
	early := start.Add(-48 * time.Hour)

	t.Run("provider not configured", func(t *testing.T) {
		f := newFixture(appointment(domain.StatusConfirmed, ptr.Ptr("pi_1")), false)
		expectStatus(f, domain.StatusConfirmed, domain.StatusRefunded, ptr.Ptr(int64(1000)))

		resp, err := f.execute(t, early)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusRefunded), resp.Status)
		assert.True(t, resp.Simulated)
		assert.NotEmpty(t, resp.SimulationReason)
		assert.Equal(t, 1, f.metrics.refunds[refundModeSimulated])
	})

	t.Run("refund call fails", func(t *testing.T) {
		f := newFixture(appointment(domain.StatusConfirmed, ptr.Ptr("pi_1")), true)
		f.provider.On("GetPayment", mock.Anything, "pi_1").Return(&payments.Payment{CapturedCents: 600}, nil)
		f.provider.On("Refund", mock.Anything, "pi_1", int64(600), mock.Anything).Return(nil, payments.ErrProvider)
		expectStatus(f, domain.StatusConfirmed, domain.StatusRefunded, ptr.Ptr(int64(600)))

		resp, err := f.execute(t, early)
		require.NoError(t, err)
		assert.True(t, resp.Simulated)
		assert.Equal(t, int64(600), resp.RefundAmountCents)
	})

	t.Run("settlement lookup fails", func(t *testing.T) {
		f := newFixture(appointment(domain.StatusConfirmed, ptr.Ptr("pi_1")), true)
		f.provider.On("GetPayment", mock.Anything, "pi_1").Return(nil, payments.ErrProvider)
		expectStatus(f, domain.StatusConfirmed, domain.StatusRefunded, ptr.Ptr(int64(1000)))

		resp, err := f.execute(t, early)
		require.NoError(t, err)
		assert.True(t, resp.Simulated)
		f.provider.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCancel_Rejections(t *testing.T) {
	early := start.Add(-48 * time.Hour)

	t.Run("already canceled is idempotent", func(t *testing.T) {
		f := newFixture(appointment(domain.StatusCanceled, nil), true)
		resp, err := f.execute(t, early)
		require.NoError(t, err)
		assert.True(t, resp.AlreadyFinal)
		assert.Equal(t, string(domain.StatusCanceled), resp.Status)
		f.appts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already refunded is idempotent", func(t *testing.T) {
		f := newFixture(appointment(domain.StatusRefunded, ptr.Ptr("pi_1")), true)
		resp, err := f.execute(t, early)
		require.NoError(t, err)
		assert.True(t, resp.AlreadyFinal)
		assert.True(t, resp.Refunded)
	})

	t.Run("completed", func(t *testing.T) {
		_, err := newFixture(appointment(domain.StatusCompleted, nil), true).execute(t, early)
		assert.ErrorIs(t, err, ErrCannotCancel)
	})

	t.Run("already started", func(t *testing.T) {
		_, err := newFixture(appointment(domain.StatusConfirmed, nil), true).execute(t, start)
		assert.ErrorIs(t, err, ErrAppointmentStarted)
	})

	t.Run("not the owner", func(t *testing.T) {
		a := appointment(domain.StatusConfirmed, nil)
		a.UserID = 99
		_, err := newFixture(a, true).execute(t, early)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("not found", func(t *testing.T) {
		f := &fixture{appts: new(mockAppointmentRepo), events: new(mockEventRepo), provider: &mockProvider{}, metrics: &countingMetrics{}}
		f.appts.On("GetByID", mock.Anything, int64(21)).Return(nil, appointmentRepo.ErrAppointmentNotFound)
		_, err := f.execute(t, early)
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("lost race", func(t *testing.T) {
		f := newFixture(appointment(domain.StatusPending, nil), true)
		f.appts.On("UpdateStatus", mock.Anything, int64(21), mock.Anything).Return(appointmentRepo.ErrStatusConflict)
		_, err := f.execute(t, early)
		assert.ErrorIs(t, err, ErrConcurrentUpdate)
	})
	t.Run("lost race with payment issues no refund", func(t *testing.T) {
		f := newFixture(appointment(domain.StatusConfirmed, ptr.Ptr("pi_1")), true)
		f.provider.On("GetPayment", mock.Anything, "pi_1").Return(&payments.Payment{ID: "pi_1", CapturedCents: 1000}, nil)
		f.appts.On("UpdateStatus", mock.Anything, int64(21), mock.Anything).Return(appointmentRepo.ErrStatusConflict)

		_, err := f.execute(t, start.Add(-72*time.Hour))
		assert.ErrorIs(t, err, ErrConcurrentUpdate)
		f.provider.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.metrics.refunds)
	})
}
