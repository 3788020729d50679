package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// ListUserAppointmentsRequest запрос на получение записей пользователя
type ListUserAppointmentsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// ListAppointmentsRequest запрос администратора на получение всех записей
type ListAppointmentsRequest struct {
	Status *string    `json:"status,omitempty"` // Фильтр по статусу (опционально)
	From   *time.Time `json:"from,omitempty"`   // Начало периода по времени начала записи (опционально)
	To     *time.Time `json:"to,omitempty"`     // Конец периода, не включительно (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		From:     r.From,
		To:       r.To,
		WithUser: true,
	}

	if r.Status != nil {
		status, err := ToDomainAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	ServiceID    int64     `json:"serviceId"`
	ServiceTitle string    `json:"serviceTitle"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Status       string    `json:"status"`

	DepositCents            int64   `json:"depositCents"`
	RefundedCents           int64   `json:"refundedCents"`
	PaymentReference        *string `json:"paymentReference,omitempty"`
	PaymentSessionReference *string `json:"paymentSessionReference,omitempty"`

	CustomerEmail *string `json:"customerEmail,omitempty"` // только в выдаче администратора
	CanceledAt    *string `json:"canceledAt,omitempty"`    // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// EventResponse запись журнала смены статусов
type EventResponse struct {
	ID         int64     `json:"id"`
	FromStatus *string   `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus"`
	Reason     string    `json:"reason"`
	Actor      string    `json:"actor"`
	CreatedAt  time.Time `json:"createdAt"`
}

// EventListResponse журнал записи
type EventListResponse struct {
	AppointmentID int64           `json:"appointmentId"`
	Events        []EventResponse `json:"events"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                      a.ID,
		UserID:                  a.UserID,
		ServiceID:               a.ServiceID,
		ServiceTitle:            a.ServiceTitle,
		StartTime:               a.StartTime.UTC(),
		EndTime:                 a.EndTime.UTC(),
		Status:                  string(a.Status),
		DepositCents:            a.DepositCents,
		RefundedCents:           a.RefundedCents,
		PaymentReference:        a.PaymentReference,
		PaymentSessionReference: a.PaymentSessionReference,
		CreatedAt:               a.CreatedAt,
		UpdatedAt:               a.UpdatedAt,
	}

	if a.CustomerEmail != "" {
		email := a.CustomerEmail
		resp.CustomerEmail = &email
	}
	if a.CanceledAt != nil {
		canceled := a.CanceledAt.UTC().Format(time.RFC3339)
		resp.CanceledAt = &canceled
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}
	for _, a := range appointments {
		if item := FromDomainAppointment(a); item != nil {
			resp.Appointments = append(resp.Appointments, *item)
		}
	}
	return resp
}

// FromDomainEvents конвертирует журнал в DTO
func FromDomainEvents(appointmentID int64, events []*domain.AppointmentEvent) *EventListResponse {
	resp := &EventListResponse{
		AppointmentID: appointmentID,
		Events:        make([]EventResponse, 0, len(events)),
	}
	for _, e := range events {
		item := EventResponse{
			ID:        e.ID,
			ToStatus:  string(e.ToStatus),
			Reason:    e.Reason,
			Actor:     string(e.Actor),
			CreatedAt: e.CreatedAt,
		}
		if e.FromStatus != nil {
			from := string(*e.FromStatus)
			item.FromStatus = &from
		}
		resp.Events = append(resp.Events, item)
	}
	return resp
}

// ToDomainAppointmentStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainAppointmentStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
