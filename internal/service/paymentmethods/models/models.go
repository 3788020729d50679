package models

import "github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"

// CardResponse сохраненная карта
type CardResponse struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"expMonth"`
	ExpYear  int64  `json:"expYear"`
}

// CardListResponse список сохраненных карт
type CardListResponse struct {
	Methods []CardResponse `json:"methods"`
}

// FromCards конвертирует карты провайдера в DTO
func FromCards(cards []payments.Card) *CardListResponse {
	resp := &CardListResponse{
		Methods: make([]CardResponse, 0, len(cards)),
	}
	for _, c := range cards {
		resp.Methods = append(resp.Methods, CardResponse{
			ID:       c.ID,
			Brand:    c.Brand,
			Last4:    c.Last4,
			ExpMonth: c.ExpMonth,
			ExpYear:  c.ExpYear,
		})
	}
	return resp
}
