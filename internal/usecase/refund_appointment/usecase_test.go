package refund_appointment

import (
	"context"
	"testing"

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

func (m *mockAppointmentRepo) AddRefundedCents(ctx context.Context, id int64, cents int64) error {
	return m.Called(ctx, id, cents).Error(0)
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

type nopMetrics struct{}

func (nopMetrics) IncTransition(string, string) {}
func (nopMetrics) IncRefund(string)             {}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	appts    *mockAppointmentRepo
	events   *mockEventRepo
	provider *mockProvider
}

func newFixture(a *domain.Appointment, payment *payments.Payment) *fixture {
	f := &fixture{
		appts:    new(mockAppointmentRepo),
		events:   new(mockEventRepo),
		provider: &mockProvider{available: true},
	}
	f.appts.On("GetByID", mock.Anything, a.ID).Return(a, nil)
	f.events.On("Create", mock.Anything, mock.Anything).Return(nil)
	if payment != nil {
		f.provider.On("GetPayment", mock.Anything, payment.ID).Return(payment, nil)
	}
	return f
}

func (f *fixture) execute(req *Request) (*Response, error) {
	return NewUseCase(f.appts, f.events, f.provider, nopMetrics{}, nopLogger{}).Execute(context.Background(), req)
}

func paid() *domain.Appointment {
	return &domain.Appointment{ID: 31, Status: domain.StatusConfirmed, PaymentReference: ptr.Ptr("pi_9"), DepositCents: 1000}
}

func TestRefund_ExactCapturedMarksRefunded(t *testing.T) {
	f := newFixture(paid(), &payments.Payment{ID: "pi_9", CapturedCents: 1000})
	f.provider.On("Refund", mock.Anything, "pi_9", int64(1000), "admin-refund-31-1000").
		Return(&payments.Refund{ID: "re_9", AmountCents: 1000}, nil)
	f.appts.On("UpdateStatus", mock.Anything, int64(31), domain.StatusChange{
		From:          []domain.AppointmentStatus{domain.StatusConfirmed},
		To:            domain.StatusRefunded,
		RefundedCents: ptr.Ptr(int64(1000)),
	}).Return(nil)

	resp, err := f.execute(&Request{AppointmentID: 31, AmountCents: ptr.Ptr(int64(1000))})
	require.NoError(t, err)

	assert.True(t, resp.FullRefund)
	assert.Equal(t, string(domain.StatusRefunded), resp.Status)
	assert.Equal(t, "re_9", resp.RefundReference)
	f.events.AssertNumberOfCalls(t, "Create", 1)
}

func TestRefund_OmittedAmountRefundsRemainder(t *testing.T) {
	f := newFixture(paid(), &payments.Payment{ID: "pi_9", CapturedCents: 1000, RefundedCents: 400})
	f.provider.On("Refund", mock.Anything, "pi_9", int64(600), mock.Anything).Return(&payments.Refund{ID: "re_10"}, nil)
	f.appts.On("UpdateStatus", mock.Anything, int64(31), mock.Anything).Return(nil)

	resp, err := f.execute(&Request{AppointmentID: 31})
	require.NoError(t, err)
	assert.Equal(t, int64(600), resp.RefundAmountCents)
	assert.Equal(t, int64(1000), resp.TotalRefundedCents)
	assert.True(t, resp.FullRefund)
}

func TestRefund_PartialKeepsStatus(t *testing.T) {
	f := newFixture(paid(), &payments.Payment{ID: "pi_9", CapturedCents: 1000})
	f.provider.On("Refund", mock.Anything, "pi_9", int64(250), mock.Anything).Return(&payments.Refund{ID: "re_11"}, nil)
	f.appts.On("AddRefundedCents", mock.Anything, int64(31), int64(250)).Return(nil)

	resp, err := f.execute(&Request{AppointmentID: 31, AmountCents: ptr.Ptr(int64(250))})
	require.NoError(t, err)

	assert.False(t, resp.FullRefund)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	f.appts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRefund_Rejections(t *testing.T) {
	t.Run("amount above captured", func(t *testing.T) {
		f := newFixture(paid(), &payments.Payment{ID: "pi_9", CapturedCents: 1000})
		_, err := f.execute(&Request{AppointmentID: 31, AmountCents: ptr.Ptr(int64(1001))})
		assert.ErrorIs(t, err, ErrRefundExceedsCaptured)
		f.provider.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("amount above remainder", func(t *testing.T) {
		f := newFixture(paid(), &payments.Payment{ID: "pi_9", CapturedCents: 1000, RefundedCents: 900})
		_, err := f.execute(&Request{AppointmentID: 31, AmountCents: ptr.Ptr(int64(200))})
		assert.ErrorIs(t, err, ErrRefundExceedsCaptured)
	})

	t.Run("not settled", func(t *testing.T) {
		f := newFixture(paid(), &payments.Payment{ID: "pi_9", AmountCents: 1000})
		_, err := f.execute(&Request{AppointmentID: 31})
		assert.ErrorIs(t, err, ErrPaymentNotSettled)
	})

	t.Run("no payment", func(t *testing.T) {
		a := paid()
		a.PaymentReference = nil
		_, err := newFixture(a, nil).execute(&Request{AppointmentID: 31})
		assert.ErrorIs(t, err, ErrNoPayment)
	})

	t.Run("payments unavailable", func(t *testing.T) {
		f := newFixture(paid(), nil)
		f.provider.available = false
		_, err := f.execute(&Request{AppointmentID: 31})
		assert.ErrorIs(t, err, ErrPaymentsUnavailable)
	})

	t.Run("final status", func(t *testing.T) {
		a := paid()
		a.Status = domain.StatusRefunded
		_, err := newFixture(a, nil).execute(&Request{AppointmentID: 31})
		assert.ErrorIs(t, err, ErrAppointmentFinal)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := newFixture(paid(), nil).execute(&Request{AppointmentID: 31, AmountCents: ptr.Ptr(int64(0))})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("provider failure", func(t *testing.T) {
		f := newFixture(paid(), &payments.Payment{ID: "pi_9", CapturedCents: 1000})
		f.provider.On("Refund", mock.Anything, "pi_9", int64(1000), mock.Anything).Return(nil, payments.ErrProvider)
		_, err := f.execute(&Request{AppointmentID: 31})
		assert.ErrorIs(t, err, ErrProvider)
	})
}

func TestRefund_LostRaceAfterRefund(t *testing.T) {
	conflictThenStatus := func(status domain.AppointmentStatus) *fixture {
		f := &fixture{appts: new(mockAppointmentRepo), events: new(mockEventRepo), provider: &mockProvider{available: true}}
		current := paid()
		current.Status = status
		f.appts.On("GetByID", mock.Anything, int64(31)).Return(paid(), nil).Once()
		f.appts.On("GetByID", mock.Anything, int64(31)).Return(current, nil)
		f.events.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.provider.On("GetPayment", mock.Anything, "pi_9").Return(&payments.Payment{ID: "pi_9", CapturedCents: 1000}, nil)
		f.provider.On("Refund", mock.Anything, "pi_9", int64(1000), mock.Anything).Return(&payments.Refund{ID: "re_12"}, nil)
		f.appts.On("UpdateStatus", mock.Anything, int64(31), domain.StatusChange{
			From:          []domain.AppointmentStatus{domain.StatusConfirmed},
			To:            domain.StatusRefunded,
			RefundedCents: ptr.Ptr(int64(1000)),
		}).Return(appointmentRepo.ErrStatusConflict)
		return f
	}

	t.Run("already refunded by the other writer", func(t *testing.T) {
		f := conflictThenStatus(domain.StatusRefunded)

		resp, err := f.execute(&Request{AppointmentID: 31})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusRefunded), resp.Status)
		f.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("canceled by the other writer", func(t *testing.T) {
		f := conflictThenStatus(domain.StatusCanceled)

		_, err := f.execute(&Request{AppointmentID: 31})
		assert.ErrorIs(t, err, ErrConcurrentUpdate)
	})
}

func TestRefund_RetryAfterProviderRefundReconcilesStatus(t *testing.T) {
	f := newFixture(paid(), &payments.Payment{ID: "pi_9", CapturedCents: 1000, RefundedCents: 1000})
	f.appts.On("UpdateStatus", mock.Anything, int64(31), domain.StatusChange{
		From:          []domain.AppointmentStatus{domain.StatusConfirmed},
		To:            domain.StatusRefunded,
		RefundedCents: ptr.Ptr(int64(1000)),
	}).Return(nil)

	resp, err := f.execute(&Request{AppointmentID: 31, AmountCents: ptr.Ptr(int64(1000))})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusRefunded), resp.Status)
	assert.True(t, resp.FullRefund)
	assert.Zero(t, resp.RefundAmountCents)
	f.provider.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.events.AssertNumberOfCalls(t, "Create", 1)
}
