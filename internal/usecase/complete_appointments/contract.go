package complete_appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	ListConfirmedEndedBefore(ctx context.Context, t time.Time, limit uint64) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, change domain.StatusChange) error
}

// EventRepository интерфейс журнала смены статусов
type EventRepository interface {
	Create(ctx context.Context, event *domain.AppointmentEvent) error
}

// Metrics бизнес-метрики
type Metrics interface {
	IncTransition(from, to string)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реализация TimeProvider
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
