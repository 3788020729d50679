package create_appointment

import (
	"time"

	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	ServiceID int64  `json:"serviceId"`
	StartTime string `json:"startTime"` // RFC 3339, "2025-06-01T09:00:00Z"
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID                int64   `json:"id"`
	UserID            int64   `json:"userId"`
	ServiceID         int64   `json:"serviceId"`
	ServiceTitle      string  `json:"serviceTitle"`
	StartTime         string  `json:"startTime"`
	EndTime           string  `json:"endTime"`
	Status            string  `json:"status"`
	DepositCents      int64   `json:"depositCents"`
	CheckoutURL       *string `json:"checkoutUrl,omitempty"`
	PaymentSessionRef *string `json:"paymentSessionRef,omitempty"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(userID int64) (*createAppointment.Request, error) {
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		UserID:    userID,
		ServiceID: r.ServiceID,
		StartTime: start.UTC(),
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:                resp.ID,
		UserID:            resp.UserID,
		ServiceID:         resp.ServiceID,
		ServiceTitle:      resp.ServiceTitle,
		StartTime:         resp.StartTime.UTC().Format(time.RFC3339),
		EndTime:           resp.EndTime.UTC().Format(time.RFC3339),
		Status:            resp.Status,
		DepositCents:      resp.DepositCents,
		CheckoutURL:       resp.CheckoutURL,
		PaymentSessionRef: resp.PaymentSessionRef,
		CreatedAt:         resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         resp.UpdatedAt.Format(time.RFC3339),
	}
}
