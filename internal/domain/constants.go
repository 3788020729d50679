package domain

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Business validation constants
const (
	MaxServiceTitleLength       = 200
	MaxServiceDescriptionLength = 4000
	MaxServiceImages            = 20
	MaxServiceDurationMinutes   = 24 * 60
	MaxRefundReasonLength       = 500
)

// DefaultCancellationWindowHours за сколько часов до начала отмена еще возвращает депозит
const DefaultCancellationWindowHours = 24

// InactiveStatuses статусы, не занимающие время в расписании
var InactiveStatuses = []AppointmentStatus{
	StatusCanceled,
	StatusRefunded,
}

// ActiveStatuses статусы, занимающие время в расписании (участвуют в проверке пересечений)
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}

// OpenStatuses нетерминальные статусы: запись еще можно отменить, вернуть или подтвердить
var OpenStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}
