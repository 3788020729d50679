package pay_appointment

import payAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/pay_appointment"

// PayRequest HTTP request model. Пустое тело - первая сохраненная карта.
type PayRequest struct {
	PaymentMethodID string `json:"paymentMethodId,omitempty"`
}

// PayResponse HTTP response model
type PayResponse struct {
	ID               int64  `json:"id"`
	Status           string `json:"status"`
	PaymentReference string `json:"paymentReference"`
	AmountCents      int64  `json:"amountCents"`
	PaymentMethodID  string `json:"paymentMethodId"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *payAppointment.Response) *PayResponse {
	return &PayResponse{
		ID:               resp.ID,
		Status:           resp.Status,
		PaymentReference: resp.PaymentReference,
		AmountCents:      resp.AmountCents,
		PaymentMethodID:  resp.PaymentMethodRef,
	}
}
