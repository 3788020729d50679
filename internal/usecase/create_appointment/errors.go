package create_appointment

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrServiceInactive возвращается, когда услуга выключена
	ErrServiceInactive = errors.New("create_appointment: service is not active")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("create_appointment: user not found")

	// ErrStartInPast возвращается при попытке записаться на прошедшее время
	ErrStartInPast = errors.New("create_appointment: start time is in the past")

	// ErrSlotTaken возвращается, когда интервал пересекается с активной записью
	ErrSlotTaken = errors.New("create_appointment: time slot is already booked")

	// ErrPaymentsUnavailable возвращается, когда услуга требует депозит, а провайдер не настроен
	ErrPaymentsUnavailable = errors.New("create_appointment: payments are not available")

	// ErrCheckoutFailed возвращается, когда не удалось открыть checkout-сессию (запись отменена)
	ErrCheckoutFailed = errors.New("create_appointment: failed to start payment")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
