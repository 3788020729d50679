package cancel_appointment

// Options настройки политики отмены
type Options struct {
	// CancellationWindowHours при отмене за это число часов или меньше депозит не возвращается
	CancellationWindowHours int
}

// Request модель запроса на отмену записи владельцем
type Request struct {
	AppointmentID int64
	UserID        int64
}

// Response результат отмены
type Response struct {
	ID             int64
	Status         string // Итоговый статус записи
	PreviousStatus string

	// AlreadyFinal запись уже была отменена или возвращена, ничего не изменилось
	AlreadyFinal bool

	// DepositForfeited отмена внутри окна: депозит не возвращается
	DepositForfeited bool

	Refunded          bool
	RefundAmountCents int64
	RefundReference   *string

	// Simulated возврат не выполнен у провайдера, статус выставлен в деградированном режиме
	Simulated        bool
	SimulationReason string
}
