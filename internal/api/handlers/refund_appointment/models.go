package refund_appointment

import refundAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/refund_appointment"

// RefundRequest HTTP request model
type RefundRequest struct {
	AmountCents *int64 `json:"amountCents,omitempty"` // не указан - весь остаток
	Reason      string `json:"reason"`
}

// ToUseCaseRequest конвертирует HTTP request в use case request
func (r *RefundRequest) ToUseCaseRequest(appointmentID int64) *refundAppointment.Request {
	return &refundAppointment.Request{
		AppointmentID: appointmentID,
		AmountCents:   r.AmountCents,
		Reason:        r.Reason,
	}
}

// RefundResponse HTTP response model
type RefundResponse struct {
	ID                 int64  `json:"id"`
	Status             string `json:"status"`
	PreviousStatus     string `json:"previousStatus"`
	RefundAmountCents  int64  `json:"refundAmountCents"`
	RefundReference    string `json:"refundReference"`
	TotalRefundedCents int64  `json:"totalRefundedCents"`
	CapturedCents      int64  `json:"capturedCents"`
	FullRefund         bool   `json:"fullRefund"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *refundAppointment.Response) *RefundResponse {
	return &RefundResponse{
		ID:                 resp.ID,
		Status:             resp.Status,
		PreviousStatus:     resp.PreviousStatus,
		RefundAmountCents:  resp.RefundAmountCents,
		RefundReference:    resp.RefundReference,
		TotalRefundedCents: resp.TotalRefundedCents,
		CapturedCents:      resp.CapturedCents,
		FullRefund:         resp.FullRefund,
	}
}
