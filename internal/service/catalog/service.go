package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

// Options настройки каталога
type Options struct {
	// HideDemoContent скрывать демо-услуги из выдачи (вне dev-окружения)
	HideDemoContent bool
	Demo            domain.DemoContent
}

// Service сервис для работы с каталогом услуг
type Service struct {
	serviceRepo ServiceRepository
	opts        Options
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(serviceRepo ServiceRepository, opts Options, logger Logger) *Service {
	return &Service{
		serviceRepo: serviceRepo,
		opts:        opts,
		logger:      logger,
	}
}

// List получает услуги каталога.
// Публичная выдача содержит только активные услуги; неактивные видит администратор.
func (s *Service) List(ctx context.Context, req *models.ListServicesRequest) (*models.ServiceListResponse, error) {
	s.logger.Info("List: fetching services, includeInactive=%v", req.IncludeInactive)

	services, err := s.serviceRepo.List(ctx, !req.IncludeInactive)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	if s.opts.HideDemoContent {
		visible := make([]*domain.Service, 0, len(services))
		for _, svc := range services {
			if !s.opts.Demo.IsDemoService(svc) {
				visible = append(visible, svc)
			}
		}
		services = visible
	}

	s.logger.Info("List: successfully fetched %d services", len(services))
	return models.FromDomainServiceList(services), nil
}

// GetByID получает услугу по ID
// Скрытая демо-услуга считается несуществующей
func (s *Service) GetByID(ctx context.Context, id int64) (*models.ServiceResponse, error) {
	s.logger.Info("GetByID: fetching service id=%d", id)

	svc, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if s.opts.HideDemoContent && s.opts.Demo.IsDemoService(svc) {
		s.logger.Warn("GetByID: service id=%d is demo content", id)
		return nil, ErrServiceNotFound
	}

	return models.FromDomainService(svc), nil
}

// Create создает новую услугу
// Доступно только администратору
func (s *Service) Create(ctx context.Context, req *models.CreateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("Create: creating service title=%q", req.Title)

	svc := req.ToDomainService()
	svc.Title = strings.TrimSpace(svc.Title)
	if err := s.validate(svc); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	created, err := s.serviceRepo.Create(ctx, svc)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created service id=%d", created.ID)
	return models.FromDomainService(created), nil
}

// Update частично обновляет услугу
// Изменения не затрагивают уже созданные записи: название и депозит в них зафиксированы
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("Update: updating service id=%d", id)

	svc, err := s.get(ctx, "Update", id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(svc)
	svc.Title = strings.TrimSpace(svc.Title)
	if err := s.validate(svc); err != nil {
		s.logger.Warn("Update: validation failed for service id=%d: %v", id, err)
		return nil, err
	}

	updated, err := s.serviceRepo.Update(ctx, svc)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		s.logger.Error("Update: repository error for service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated service id=%d", id)
	return models.FromDomainService(updated), nil
}

// Delete удаляет услугу без записей.
// Услугу с записями удалить нельзя, ее можно только деактивировать.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.logger.Info("Delete: deleting service id=%d", id)

	if err := s.serviceRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, serviceRepo.ErrServiceNotFound):
			s.logger.Warn("Delete: service id=%d not found", id)
			return ErrServiceNotFound
		case errors.Is(err, serviceRepo.ErrServiceInUse):
			s.logger.Warn("Delete: service id=%d has appointments", id)
			return ErrServiceInUse
		}
		s.logger.Error("Delete: repository error for service id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted service id=%d", id)
	return nil
}

// Вспомогательные методы

func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			s.logger.Warn("%s: service id=%d not found", op, id)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("%s: repository error for service id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return svc, nil
}

// validate проверяет поля услуги.
// Депозит больше цены допускается, но логируется.
func (s *Service) validate(svc *domain.Service) error {
	if svc.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(svc.Title) > domain.MaxServiceTitleLength {
		return fmt.Errorf("%w: title must not exceed %d characters", ErrInvalidInput, domain.MaxServiceTitleLength)
	}
	// Название попадает в заголовок письма
	if strings.IndexFunc(svc.Title, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: title must not contain control characters", ErrInvalidInput)
	}
	if len(svc.Description) > domain.MaxServiceDescriptionLength {
		return fmt.Errorf("%w: description must not exceed %d characters", ErrInvalidInput, domain.MaxServiceDescriptionLength)
	}
	if svc.DurationMinutes <= 0 || svc.DurationMinutes > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("%w: durationMinutes must be between 1 and %d", ErrInvalidInput, domain.MaxServiceDurationMinutes)
	}
	if svc.PriceCents < 0 || svc.DepositCents < 0 {
		return fmt.Errorf("%w: price and deposit must not be negative", ErrInvalidInput)
	}
	if len(svc.Images) > domain.MaxServiceImages {
		return fmt.Errorf("%w: no more than %d images allowed", ErrInvalidInput, domain.MaxServiceImages)
	}
	for _, img := range svc.Images {
		if strings.TrimSpace(img) == "" {
			return fmt.Errorf("%w: image url must not be empty", ErrInvalidInput)
		}
	}
	if svc.DepositCents > svc.PriceCents {
		s.logger.Warn("validate: deposit %d exceeds price %d for service %q", svc.DepositCents, svc.PriceCents, svc.Title)
	}
	return nil
}
