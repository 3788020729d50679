package payments

// CheckoutRequest параметры hosted checkout для депозита
type CheckoutRequest struct {
	AppointmentID int64
	Title         string
	AmountCents   int64
	CustomerEmail string
}

// CheckoutSession открытая checkout-сессия
type CheckoutSession struct {
	ID  string
	URL string
}

// ChargeRequest списание с сохраненной карты
type ChargeRequest struct {
	AppointmentID    int64
	AmountCents      int64
	CustomerRef      string
	PaymentMethodRef string
}

// Payment состояние платежа у провайдера
type Payment struct {
	ID               string
	Status           string
	Succeeded        bool
	AmountCents      int64 // авторизованная сумма
	CapturedCents    int64 // фактически полученная сумма
	RefundedCents    int64 // уже возвращено
	PaymentMethodRef string
	CustomerRef      string
}

// Refund созданный возврат
type Refund struct {
	ID          string
	AmountCents int64
	Status      string
}

// Card сохраненная карта клиента
type Card struct {
	ID       string
	Brand    string
	Last4    string
	ExpMonth int64
	ExpYear  int64
}
