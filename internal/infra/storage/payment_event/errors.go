package payment_event

import "errors"

var (
	// ErrDuplicateEvent возвращается, когда событие провайдера уже было обработано
	ErrDuplicateEvent = errors.New("payment_event.repository: event already processed")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("payment_event.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("payment_event.repository: failed to execute query")
)
