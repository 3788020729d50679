package delete_availability

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/timerange"
)

// AvailabilityRepository интерфейс репозитория окон доступности
type AvailabilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.AvailabilityWindow, error)
	Delete(ctx context.Context, id int64) error
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// ListOpenWithin получает незавершенные записи, целиком лежащие внутри интервала
	ListOpenWithin(ctx context.Context, rng timerange.Range) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, change domain.StatusChange) error
}

// EventRepository интерфейс журнала смены статусов
type EventRepository interface {
	Create(ctx context.Context, event *domain.AppointmentEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics бизнес-метрики
type Metrics interface {
	IncTransition(from, to string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
