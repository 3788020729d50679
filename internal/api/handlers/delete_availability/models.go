package delete_availability

import deleteAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/delete_availability"

// DeleteWindowResponse HTTP response model
type DeleteWindowResponse struct {
	WindowID             int64   `json:"windowId"`
	CanceledAppointments []int64 `json:"canceledAppointments"`
	// PaidCanceled отмененные записи с оплаченным депозитом, возврат выполняется отдельно
	PaidCanceled []int64 `json:"paidCanceled"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *deleteAvailability.Response) *DeleteWindowResponse {
	out := &DeleteWindowResponse{
		WindowID:             resp.WindowID,
		CanceledAppointments: resp.CanceledAppointments,
		PaidCanceled:         resp.PaidCanceled,
	}
	if out.CanceledAppointments == nil {
		out.CanceledAppointments = []int64{}
	}
	if out.PaidCanceled == nil {
		out.PaidCanceled = []int64{}
	}
	return out
}
