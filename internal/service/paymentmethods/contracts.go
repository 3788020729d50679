package paymentmethods

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
)

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// PaymentProvider операции провайдера с сохраненными картами
type PaymentProvider interface {
	IsAvailable() bool
	ListPaymentMethods(ctx context.Context, customerRef string) ([]payments.Card, error)
	DetachPaymentMethod(ctx context.Context, paymentMethodRef string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
