package paymentmethods

import "errors"

var (
	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("paymentmethods: user not found")

	// ErrMethodNotFound возвращается, когда карта не найдена среди карт пользователя
	ErrMethodNotFound = errors.New("paymentmethods: payment method not found")

	// ErrPaymentsUnavailable возвращается, когда платежный провайдер не настроен
	ErrPaymentsUnavailable = errors.New("paymentmethods: payments are not configured")

	// ErrProvider возвращается при ошибке платежного провайдера
	ErrProvider = errors.New("paymentmethods: payment provider error")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("paymentmethods: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("paymentmethods: internal error")
)
