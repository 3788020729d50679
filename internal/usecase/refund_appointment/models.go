package refund_appointment

// Request модель запроса на возврат администратором
type Request struct {
	AppointmentID int64
	AmountCents   *int64 // nil - вернуть весь остаток
	Reason        string
}

// Response результат возврата
type Response struct {
	ID                 int64
	Status             string // Итоговый статус записи
	PreviousStatus     string
	RefundAmountCents  int64
	RefundReference    string
	TotalRefundedCents int64 // Всего возвращено по платежу
	CapturedCents      int64
	FullRefund         bool // Возвращена вся полученная сумма, запись переведена в REFUNDED
}
