package confirm_payment

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/idempotency"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, change domain.StatusChange) error
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	SetPaymentCustomerReference(ctx context.Context, id int64, ref string) error
}

// EventRepository интерфейс журнала смены статусов
type EventRepository interface {
	Create(ctx context.Context, event *domain.AppointmentEvent) error
}

// PaymentEventRepository учет уже обработанных событий провайдера
type PaymentEventRepository interface {
	MarkProcessed(ctx context.Context, provider, eventID, eventType string) error
	Forget(ctx context.Context, provider, eventID string) error
}

// PaymentProvider интерфейс платежного провайдера
type PaymentProvider interface {
	IsAvailable() bool
	GetPayment(ctx context.Context, paymentRef string) (*payments.Payment, error)
	EnsureCustomer(ctx context.Context, existingRef *string, email string) (string, error)
	AttachPaymentMethod(ctx context.Context, customerRef, paymentMethodRef string) error
}

// Mailer отправка писем
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Guard кратковременная блокировка по ключу
type Guard interface {
	Acquire(ctx context.Context, key string) (idempotency.ReleaseFunc, error)
}

// Metrics бизнес-метрики
type Metrics interface {
	IncTransition(from, to string)
	IncWebhookOutcome(outcome string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
