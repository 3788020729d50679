package delete_availability

// Request модель запроса на удаление окна доступности
type Request struct {
	WindowID int64
}

// Response результат удаления
type Response struct {
	WindowID             int64
	CanceledAppointments []int64 // Записи, отмененные вместе с окном
	PaidCanceled         []int64 // Из них оплаченные: депозит нужно вернуть отдельно
}
