package cancel_appointment

import cancelAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_appointment"

// CancelResponse HTTP response model
type CancelResponse struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	PreviousStatus    string  `json:"previousStatus"`
	AlreadyFinal      bool    `json:"alreadyFinal"`
	DepositForfeited  bool    `json:"depositForfeited"`
	Refunded          bool    `json:"refunded"`
	RefundAmountCents int64   `json:"refundAmountCents"`
	RefundReference   *string `json:"refundReference,omitempty"`
	Simulated         bool    `json:"simulated"`
	SimulationReason  string  `json:"simulationReason,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelAppointment.Response) *CancelResponse {
	return &CancelResponse{
		ID:                resp.ID,
		Status:            resp.Status,
		PreviousStatus:    resp.PreviousStatus,
		AlreadyFinal:      resp.AlreadyFinal,
		DepositForfeited:  resp.DepositForfeited,
		Refunded:          resp.Refunded,
		RefundAmountCents: resp.RefundAmountCents,
		RefundReference:   resp.RefundReference,
		Simulated:         resp.Simulated,
		SimulationReason:  resp.SimulationReason,
	}
}
