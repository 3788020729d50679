package domain

import "time"

// Actor инициатор смены статуса
type Actor string

const (
	ActorCustomer        Actor = "customer"
	ActorAdmin           Actor = "admin"
	ActorPaymentProvider Actor = "payment_provider"
	ActorSystem          Actor = "system"
)

// AppointmentEvent запись журнала смены статусов (append-only)
type AppointmentEvent struct {
	ID            int64
	AppointmentID int64
	FromStatus    *AppointmentStatus // nil для создания записи
	ToStatus      AppointmentStatus
	Reason        string
	Actor         Actor
	CreatedAt     time.Time
}

// NewTransitionEvent builds the audit event for a status change
func NewTransitionEvent(appointmentID int64, from, to AppointmentStatus, actor Actor, reason string) *AppointmentEvent {
	return &AppointmentEvent{
		AppointmentID: appointmentID,
		FromStatus:    &from,
		ToStatus:      to,
		Reason:        reason,
		Actor:         actor,
	}
}
