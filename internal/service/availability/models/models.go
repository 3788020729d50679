package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// ListWindowsRequest запрос на получение окон, пересекающих период
type ListWindowsRequest struct {
	From *time.Time `json:"from,omitempty"` // по умолчанию начало текущего дня
	To   *time.Time `json:"to,omitempty"`   // по умолчанию From + 31 день
}

// CreateWindowRequest запрос на создание окна доступности
type CreateWindowRequest struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// Response модели

// WindowResponse ответ с данными окна
type WindowResponse struct {
	ID        int64     `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	CreatedAt time.Time `json:"createdAt"`
}

// WindowListResponse ответ со списком окон
type WindowListResponse struct {
	Windows []WindowResponse `json:"windows"`
}

// FromDomainWindow конвертирует domain модель в DTO
func FromDomainWindow(w *domain.AvailabilityWindow) *WindowResponse {
	if w == nil {
		return nil
	}
	return &WindowResponse{
		ID:        w.ID,
		StartTime: w.StartTime.UTC(),
		EndTime:   w.EndTime.UTC(),
		CreatedAt: w.CreatedAt,
	}
}

// FromDomainWindowList конвертирует список domain моделей в DTO
func FromDomainWindowList(windows []*domain.AvailabilityWindow) *WindowListResponse {
	resp := &WindowListResponse{
		Windows: make([]WindowResponse, 0, len(windows)),
	}
	for _, w := range windows {
		if item := FromDomainWindow(w); item != nil {
			resp.Windows = append(resp.Windows, *item)
		}
	}
	return resp
}
