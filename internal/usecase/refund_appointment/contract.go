package refund_appointment

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, change domain.StatusChange) error
	AddRefundedCents(ctx context.Context, id int64, cents int64) error
}

// EventRepository интерфейс журнала смены статусов
type EventRepository interface {
	Create(ctx context.Context, event *domain.AppointmentEvent) error
}

// PaymentProvider интерфейс платежного провайдера
type PaymentProvider interface {
	IsAvailable() bool
	GetPayment(ctx context.Context, paymentRef string) (*payments.Payment, error)
	Refund(ctx context.Context, paymentRef string, amountCents int64, idempotencyKey string) (*payments.Refund, error)
}

// Metrics бизнес-метрики
type Metrics interface {
	IncTransition(from, to string)
	IncRefund(mode string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
