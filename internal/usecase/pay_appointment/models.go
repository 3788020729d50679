package pay_appointment

// Request оплата депозита сохраненной картой
type Request struct {
	AppointmentID    int64
	UserID           int64
	PaymentMethodRef string // пусто - первая сохраненная карта
}

// Response результат оплаты
type Response struct {
	ID               int64
	Status           string
	PaymentReference string
	AmountCents      int64
	PaymentMethodRef string
}
