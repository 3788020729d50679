package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/timerange"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCanceled  AppointmentStatus = "canceled"
	StatusRefunded  AppointmentStatus = "refunded"
	StatusCompleted AppointmentStatus = "completed"
)

// IsValid returns true for a known status value
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCanceled, StatusRefunded, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal returns true if no further transitions are allowed
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCanceled || s == StatusRefunded || s == StatusCompleted
}

// Appointment a customer's booking of a service for [StartTime, EndTime)
type Appointment struct {
	ID        int64
	UserID    int64
	ServiceID int64
	StartTime time.Time
	EndTime   time.Time
	Status    AppointmentStatus

	// Provider references. PaymentReference is set once a payment settled,
	// PaymentSessionReference once a hosted checkout session was opened.
	PaymentReference        *string
	PaymentSessionReference *string

	// Denormalized at booking time
	ServiceTitle string
	DepositCents int64

	RefundedCents int64
	CanceledAt    *time.Time

	// Read-only, filled by joins for admin listings
	CustomerEmail string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Range returns the appointment's half-open time range
func (a *Appointment) Range() timerange.Range {
	return timerange.New(a.StartTime, a.EndTime)
}

// IsActive returns true if the appointment occupies its time range
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCanceled && a.Status != StatusRefunded
}

// IsTerminal returns true if the appointment is canceled, refunded or completed
func (a *Appointment) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// HasPayment returns true if a settled payment is attached
func (a *Appointment) HasPayment() bool {
	return a.PaymentReference != nil && *a.PaymentReference != ""
}

// HoursUntilStart returns fractional hours between now and the start
func (a *Appointment) HoursUntilStart(now time.Time) float64 {
	return a.StartTime.Sub(now).Hours()
}

// AppointmentsFilter фильтр выборки записей
type AppointmentsFilter struct {
	UserID   *int64             // Только записи пользователя (опционально)
	Status   *AppointmentStatus // Фильтр по статусу (опционально)
	From     *time.Time         // StartTime >= From (опционально)
	To       *time.Time         // StartTime < To (опционально)
	WithUser bool               // Подтянуть email клиента
}

// StatusChange conditional status update: applied only while the current
// status is one of From
type StatusChange struct {
	From                    []AppointmentStatus
	To                      AppointmentStatus
	PaymentReference        *string
	PaymentSessionReference *string
	RefundedCents           *int64
}
