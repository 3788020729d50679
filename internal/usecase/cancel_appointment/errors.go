package cancel_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("cancel_appointment: appointment not found")

	// ErrAccessDenied возвращается, когда запись принадлежит другому пользователю
	ErrAccessDenied = errors.New("cancel_appointment: access denied")

	// ErrAppointmentStarted возвращается при отмене уже начавшейся записи
	ErrAppointmentStarted = errors.New("cancel_appointment: appointment has already started")

	// ErrCannotCancel возвращается при отмене завершенной записи
	ErrCannotCancel = errors.New("cancel_appointment: completed appointment cannot be canceled")

	// ErrConcurrentUpdate возвращается, когда статус записи изменился параллельно
	ErrConcurrentUpdate = errors.New("cancel_appointment: appointment was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_appointment: internal error")
)
