package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// ListServicesRequest запрос на получение каталога
type ListServicesRequest struct {
	IncludeInactive bool `json:"includeInactive,omitempty"` // только для администратора
}

// CreateServiceRequest запрос на создание услуги
type CreateServiceRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	DurationMinutes int      `json:"durationMinutes"`
	PriceCents      int64    `json:"priceCents"`
	DepositCents    int64    `json:"depositCents"`
	Images          []string `json:"images"`
	IsActive        *bool    `json:"isActive,omitempty"` // по умолчанию true
}

// ToDomainService конвертирует request в domain модель
func (r *CreateServiceRequest) ToDomainService() *domain.Service {
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}
	images := r.Images
	if images == nil {
		images = []string{}
	}
	return &domain.Service{
		Title:           r.Title,
		Description:     r.Description,
		DurationMinutes: r.DurationMinutes,
		PriceCents:      r.PriceCents,
		DepositCents:    r.DepositCents,
		Images:          images,
		IsActive:        isActive,
	}
}

// UpdateServiceRequest запрос на обновление услуги
// Все поля опциональны - обновляются только переданные значения
type UpdateServiceRequest struct {
	Title           *string   `json:"title,omitempty"`
	Description     *string   `json:"description,omitempty"`
	DurationMinutes *int      `json:"durationMinutes,omitempty"`
	PriceCents      *int64    `json:"priceCents,omitempty"`
	DepositCents    *int64    `json:"depositCents,omitempty"`
	Images          *[]string `json:"images,omitempty"`
	IsActive        *bool     `json:"isActive,omitempty"`
}

// ApplyTo переносит переданные поля в domain модель
func (r *UpdateServiceRequest) ApplyTo(s *domain.Service) {
	if r.Title != nil {
		s.Title = *r.Title
	}
	if r.Description != nil {
		s.Description = *r.Description
	}
	if r.DurationMinutes != nil {
		s.DurationMinutes = *r.DurationMinutes
	}
	if r.PriceCents != nil {
		s.PriceCents = *r.PriceCents
	}
	if r.DepositCents != nil {
		s.DepositCents = *r.DepositCents
	}
	if r.Images != nil {
		s.Images = *r.Images
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
}

// Response модели

// ServiceResponse ответ с данными услуги
type ServiceResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"durationMinutes"`
	PriceCents      int64     `json:"priceCents"`
	DepositCents    int64     `json:"depositCents"`
	Images          []string  `json:"images"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ServiceListResponse ответ со списком услуг
type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
}

// FromDomainService конвертирует domain модель в DTO
func FromDomainService(s *domain.Service) *ServiceResponse {
	if s == nil {
		return nil
	}
	images := s.Images
	if images == nil {
		images = []string{}
	}
	return &ServiceResponse{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		DurationMinutes: s.DurationMinutes,
		PriceCents:      s.PriceCents,
		DepositCents:    s.DepositCents,
		Images:          images,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// FromDomainServiceList конвертирует список domain моделей в DTO
func FromDomainServiceList(services []*domain.Service) *ServiceListResponse {
	resp := &ServiceListResponse{
		Services: make([]ServiceResponse, 0, len(services)),
	}
	for _, s := range services {
		if item := FromDomainService(s); item != nil {
			resp.Services = append(resp.Services, *item)
		}
	}
	return resp
}
