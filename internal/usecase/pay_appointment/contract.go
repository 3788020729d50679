package pay_appointment

import (
	"context"
	"time"

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
}

// EventRepository интерфейс журнала смены статусов
type EventRepository interface {
	Create(ctx context.Context, event *domain.AppointmentEvent) error
}

// PaymentProvider интерфейс платежного провайдера
type PaymentProvider interface {
	IsAvailable() bool
	ListPaymentMethods(ctx context.Context, customerRef string) ([]payments.Card, error)
	ChargeSavedMethod(ctx context.Context, req payments.ChargeRequest) (*payments.Payment, error)
}

// Guard кратковременная блокировка по ключу
type Guard interface {
	Acquire(ctx context.Context, key string) (idempotency.ReleaseFunc, error)
}

// Metrics бизнес-метрики
type Metrics interface {
	IncTransition(from, to string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
