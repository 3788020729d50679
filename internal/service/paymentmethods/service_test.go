package paymentmethods

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
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

func (m *mockProvider) DetachPaymentMethod(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func withCustomer() *mockUserRepo {
	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, int64(7)).
		Return(&domain.User{ID: 7, PaymentCustomerReference: ptr.Ptr("cus_7")}, nil)
	return users
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("saved cards", func(t *testing.T) {
		provider := &mockProvider{available: true}
		provider.On("ListPaymentMethods", ctx, "cus_7").
			Return([]payments.Card{{ID: "pm_1", Brand: "visa", Last4: "4242"}}, nil)

		resp, err := NewService(withCustomer(), provider, nopLogger{}).List(ctx, 7)
		require.NoError(t, err)
		require.Len(t, resp.Methods, 1)
		assert.Equal(t, "4242", resp.Methods[0].Last4)
	})

	t.Run("no customer yet", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetByID", ctx, int64(7)).Return(&domain.User{ID: 7}, nil)
		provider := &mockProvider{available: true}

		resp, err := NewService(users, provider, nopLogger{}).List(ctx, 7)
		require.NoError(t, err)
		assert.Empty(t, resp.Methods)
		provider.AssertNotCalled(t, "ListPaymentMethods", mock.Anything, mock.Anything)
	})

	t.Run("payments disabled", func(t *testing.T) {
		resp, err := NewService(new(mockUserRepo), &mockProvider{}, nopLogger{}).List(ctx, 7)
		require.NoError(t, err)
		assert.NotNil(t, resp.Methods)
		assert.Empty(t, resp.Methods)
	})
}

func TestDetach(t *testing.T) {
	ctx := context.Background()

	t.Run("own card", func(t *testing.T) {
		provider := &mockProvider{available: true}
		provider.On("ListPaymentMethods", ctx, "cus_7").Return([]payments.Card{{ID: "pm_1"}}, nil)
		provider.On("DetachPaymentMethod", ctx, "pm_1").Return(nil)

		require.NoError(t, NewService(withCustomer(), provider, nopLogger{}).Detach(ctx, 7, "pm_1"))
		provider.AssertExpectations(t)
	})

	t.Run("foreign card", func(t *testing.T) {
		provider := &mockProvider{available: true}
		provider.On("ListPaymentMethods", ctx, "cus_7").Return([]payments.Card{{ID: "pm_1"}}, nil)

		err := NewService(withCustomer(), provider, nopLogger{}).Detach(ctx, 7, "pm_2")
		assert.ErrorIs(t, err, ErrMethodNotFound)
		provider.AssertNotCalled(t, "DetachPaymentMethod", mock.Anything, mock.Anything)
	})

	t.Run("payments disabled", func(t *testing.T) {
		err := NewService(new(mockUserRepo), &mockProvider{}, nopLogger{}).Detach(ctx, 7, "pm_1")
		assert.ErrorIs(t, err, ErrPaymentsUnavailable)
	})

	t.Run("provider failure", func(t *testing.T) {
		provider := &mockProvider{available: true}
		provider.On("ListPaymentMethods", ctx, "cus_7").Return(nil, payments.ErrProvider)

		err := NewService(withCustomer(), provider, nopLogger{}).Detach(ctx, 7, "pm_1")
		assert.ErrorIs(t, err, ErrProvider)
	})
}
