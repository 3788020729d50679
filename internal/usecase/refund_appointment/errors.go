package refund_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("refund_appointment: appointment not found")

	// ErrAppointmentFinal возвращается для отмененных, возвращенных и завершенных записей
	ErrAppointmentFinal = errors.New("refund_appointment: appointment is in a final status")

	// ErrNoPayment возвращается, когда у записи нет платежа
	ErrNoPayment = errors.New("refund_appointment: appointment has no payment to refund")

	// ErrPaymentsUnavailable возвращается, когда платежный провайдер не настроен
	ErrPaymentsUnavailable = errors.New("refund_appointment: payments are not available")

	// ErrPaymentNotSettled возвращается, когда платеж еще не получен (captured <= 0)
	ErrPaymentNotSettled = errors.New("refund_appointment: payment has not settled")

	// ErrRefundExceedsCaptured возвращается, когда сумма превышает доступную к возврату
	ErrRefundExceedsCaptured = errors.New("refund_appointment: refund amount exceeds captured amount")

	// ErrProvider возвращается при ошибке платежного провайдера
	ErrProvider = errors.New("refund_appointment: payment provider error")

	// ErrConcurrentUpdate возвращается, когда статус записи изменился параллельно
	ErrConcurrentUpdate = errors.New("refund_appointment: appointment was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("refund_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("refund_appointment: internal error")
)
