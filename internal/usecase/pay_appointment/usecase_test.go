package pay_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/idempotency"
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

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
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

func (m *mockProvider) ListPaymentMethods(ctx context.Context, customerRef string) ([]payments.Card, error) {
	args := m.Called(ctx, customerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payments.Card), args.Error(1)
}

func (m *mockProvider) ChargeSavedMethod(ctx context.Context, req payments.ChargeRequest) (*payments.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Payment), args.Error(1)
}

type nopMetrics struct{}

func (nopMetrics) IncTransition(string, string) {}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var (
	now   = time.Date(2025, 5, 25, 9, 0, 0, 0, time.UTC)
	start = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	appts    *mockAppointmentRepo
	users    *mockUserRepo
	events   *mockEventRepo
	provider *mockProvider
}

func newFixture(a *domain.Appointment) *fixture {
	f := &fixture{
		appts:    new(mockAppointmentRepo),
		users:    new(mockUserRepo),
		events:   new(mockEventRepo),
		provider: &mockProvider{available: true},
	}
	f.appts.On("GetByID", mock.Anything, a.ID).Return(a, nil)
	f.users.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7, PaymentCustomerReference: ptr.Ptr("cus_7")}, nil)
	f.events.On("Create", mock.Anything, mock.Anything).Return(nil)
	return f
}

func (f *fixture) execute(req *Request) (*Response, error) {
	return NewUseCase(f.appts, f.users, f.events, f.provider, idempotency.NoopGuard{}, nopMetrics{}, nopLogger{}).
		WithTimeProvider(fixedClock{now: now}).
		Execute(context.Background(), req)
}

func pending() *domain.Appointment {
	return &domain.Appointment{ID: 51, UserID: 7, Status: domain.StatusPending, StartTime: start, DepositCents: 1000}
}

func TestPay_ConfirmsWithSavedCard(t *testing.T) {
	f := newFixture(pending())
	f.provider.On("ListPaymentMethods", mock.Anything, "cus_7").Return([]payments.Card{{ID: "pm_a"}, {ID: "pm_b"}}, nil)
	f.provider.On("ChargeSavedMethod", mock.Anything, payments.ChargeRequest{
		AppointmentID: 51, AmountCents: 1000, CustomerRef: "cus_7", PaymentMethodRef: "pm_b",
	}).Return(&payments.Payment{ID: "pi_51", Succeeded: true, AmountCents: 1000, CapturedCents: 1000}, nil)
	f.appts.On("UpdateStatus", mock.Anything, int64(51), domain.StatusChange{
		From:             []domain.AppointmentStatus{domain.StatusPending},
		To:               domain.StatusConfirmed,
		PaymentReference: ptr.Ptr("pi_51"),
	}).Return(nil)

	resp, err := f.execute(&Request{AppointmentID: 51, UserID: 7, PaymentMethodRef: "pm_b"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, "pi_51", resp.PaymentReference)
	f.appts.AssertExpectations(t)
}

func TestPay_AmountMismatchDoesNotConfirm(t *testing.T) {
	f := newFixture(pending())
	f.provider.On("ListPaymentMethods", mock.Anything, "cus_7").Return([]payments.Card{{ID: "pm_a"}}, nil)
	f.provider.On("ChargeSavedMethod", mock.Anything, mock.Anything).
		Return(&payments.Payment{ID: "pi_51", Succeeded: true, AmountCents: 900}, nil)

	_, err := f.execute(&Request{AppointmentID: 51, UserID: 7})
	assert.ErrorIs(t, err, ErrAmountMismatch)
	f.appts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestPay_Declined(t *testing.T) {
	f := newFixture(pending())
	f.provider.On("ListPaymentMethods", mock.Anything, "cus_7").Return([]payments.Card{{ID: "pm_a"}}, nil)
	f.provider.On("ChargeSavedMethod", mock.Anything, mock.Anything).Return(nil, payments.ErrPaymentFailed)

	_, err := f.execute(&Request{AppointmentID: 51, UserID: 7})
	assert.ErrorIs(t, err, ErrPaymentDeclined)
}

func TestPay_Rejections(t *testing.T) {
	t.Run("foreign card", func(t *testing.T) {
		f := newFixture(pending())
		f.provider.On("ListPaymentMethods", mock.Anything, "cus_7").Return([]payments.Card{{ID: "pm_a"}}, nil)
		_, err := f.execute(&Request{AppointmentID: 51, UserID: 7, PaymentMethodRef: "pm_other"})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("no saved cards", func(t *testing.T) {
		f := newFixture(pending())
		f.provider.On("ListPaymentMethods", mock.Anything, "cus_7").Return([]payments.Card{}, nil)
		_, err := f.execute(&Request{AppointmentID: 51, UserID: 7})
		assert.ErrorIs(t, err, ErrNoSavedMethod)
	})

	t.Run("already confirmed", func(t *testing.T) {
		a := pending()
		a.Status = domain.StatusConfirmed
		_, err := newFixture(a).execute(&Request{AppointmentID: 51, UserID: 7})
		assert.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("other owner", func(t *testing.T) {
		a := pending()
		a.UserID = 8
		_, err := newFixture(a).execute(&Request{AppointmentID: 51, UserID: 7})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("zero deposit", func(t *testing.T) {
		a := pending()
		a.DepositCents = 0
		_, err := newFixture(a).execute(&Request{AppointmentID: 51, UserID: 7})
		assert.ErrorIs(t, err, ErrNothingToPay)
	})

	t.Run("payments disabled", func(t *testing.T) {
		f := newFixture(pending())
		f.provider.available = false
		_, err := f.execute(&Request{AppointmentID: 51, UserID: 7})
		assert.ErrorIs(t, err, ErrPaymentsUnavailable)
	})
}
