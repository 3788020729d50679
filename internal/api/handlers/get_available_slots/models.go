package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
)

// SlotsResponse HTTP response model
type SlotsResponse struct {
	Date            string      `json:"date"` // "2025-06-01"
	ServiceID       int64       `json:"serviceId"`
	DurationMinutes int         `json:"durationMinutes"`
	Slots           []time.Time `json:"slots"` // RFC 3339, UTC
}

// ToUseCaseRequest конвертирует параметры запроса в модель use case
func ToUseCaseRequest(serviceID int64, date string) (*getAvailableSlots.Request, error) {
	day, err := time.Parse(domain.DateFormat, date)
	if err != nil {
		return nil, err
	}
	return &getAvailableSlots.Request{
		ServiceID: serviceID,
		Date:      day,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *SlotsResponse {
	slots := resp.Slots
	if slots == nil {
		slots = []time.Time{}
	}
	return &SlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		ServiceID:       resp.ServiceID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}
