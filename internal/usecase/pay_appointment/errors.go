package pay_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("pay_appointment: appointment not found")

	// ErrAccessDenied возвращается, когда запись или карта принадлежат другому пользователю
	ErrAccessDenied = errors.New("pay_appointment: access denied")

	// ErrNotPending возвращается, когда запись не ожидает оплаты
	ErrNotPending = errors.New("pay_appointment: appointment is not awaiting payment")

	// ErrNothingToPay возвращается для услуг без депозита
	ErrNothingToPay = errors.New("pay_appointment: appointment has no deposit")

	// ErrAppointmentStarted возвращается при оплате уже начавшейся записи
	ErrAppointmentStarted = errors.New("pay_appointment: appointment has already started")

	// ErrPaymentsUnavailable возвращается, когда платежный провайдер не настроен
	ErrPaymentsUnavailable = errors.New("pay_appointment: payments are not available")

	// ErrNoSavedMethod возвращается, когда у пользователя нет сохраненной карты
	ErrNoSavedMethod = errors.New("pay_appointment: no saved payment method")

	// ErrPaymentDeclined возвращается, когда провайдер отклонил списание
	ErrPaymentDeclined = errors.New("pay_appointment: payment declined")

	// ErrAmountMismatch возвращается, когда списанная сумма не совпадает с депозитом
	ErrAmountMismatch = errors.New("pay_appointment: charged amount does not match deposit")

	// ErrPaymentInProgress возвращается, когда запись уже оплачивается параллельно
	ErrPaymentInProgress = errors.New("pay_appointment: payment already in progress")

	// ErrProvider возвращается при ошибке платежного провайдера
	ErrProvider = errors.New("pay_appointment: payment provider error")

	// ErrConcurrentUpdate возвращается, когда статус записи изменился параллельно
	ErrConcurrentUpdate = errors.New("pay_appointment: appointment was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("pay_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("pay_appointment: internal error")
)
