package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Options настройки выдачи записей
type Options struct {
	// HideDemoContent скрывать записи демо-аккаунтов из выдачи администратора
	HideDemoContent bool
	Demo            domain.DemoContent
}

// Service сервис для чтения записей и их журнала
type Service struct {
	appointmentRepo AppointmentRepository
	eventRepo       EventRepository
	opts            Options
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	eventRepo EventRepository,
	opts Options,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		eventRepo:       eventRepo,
		opts:            opts,
		logger:          logger,
	}
}

// GetByID получает запись по ID
// Пользователь видит только свою запись, администратор - любую
func (s *Service) GetByID(ctx context.Context, id int64, userID int64, isAdmin bool) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d", id, userID)

	appointment, err := s.getAccessible(ctx, "GetByID", id, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched appointment id=%d", id)
	return models.FromDomainAppointment(appointment), nil
}

// ListMine получает записи пользователя, ближайшие сверху
// Опционально фильтрует по статусу
func (s *Service) ListMine(ctx context.Context, req *models.ListUserAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListMine: fetching appointments for user=%d, status=%v", req.UserID, req.Status)

	filter := domain.AppointmentsFilter{UserID: &req.UserID}
	if req.Status != nil {
		status, err := models.ToDomainAppointmentStatus(*req.Status)
		if err != nil {
			s.logger.Warn("ListMine: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	list, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ListMine: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: ListMine - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListMine: successfully fetched %d appointments for user=%d", len(list), req.UserID)
	return models.FromDomainAppointmentList(list), nil
}

// ListAll получает все записи с фильтрацией
// Доступно только администратору; записи демо-аккаунтов скрываются по флагу
func (s *Service) ListAll(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	logMsg := "ListAll: fetching appointments"
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.From != nil && req.To != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))
	}
	s.logger.Info(logMsg)

	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		s.logger.Warn("ListAll: from is not before to")
		return nil, ErrInvalidTimeRange
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListAll: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	list, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ListAll: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListAll - repository error: %v", ErrInternal, err)
	}

	if s.opts.HideDemoContent {
		visible := make([]*domain.Appointment, 0, len(list))
		for _, a := range list {
			if !s.opts.Demo.IsDemoEmail(a.CustomerEmail) {
				visible = append(visible, a)
			}
		}
		list = visible
	}

	s.logger.Info("ListAll: successfully fetched %d appointments", len(list))
	return models.FromDomainAppointmentList(list), nil
}

// ListEvents получает журнал смены статусов записи в порядке появления
func (s *Service) ListEvents(ctx context.Context, id int64, userID int64, isAdmin bool) (*models.EventListResponse, error) {
	s.logger.Info("ListEvents: fetching events of appointment id=%d for user=%d", id, userID)

	if _, err := s.getAccessible(ctx, "ListEvents", id, userID, isAdmin); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ListByAppointment(ctx, id)
	if err != nil {
		s.logger.Error("ListEvents: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: ListEvents - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainEvents(id, events), nil
}

// Вспомогательные методы

// getAccessible получает запись и проверяет, что она принадлежит пользователю
func (s *Service) getAccessible(ctx context.Context, op string, id, userID int64, isAdmin bool) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	if !isAdmin && appointment.UserID != userID {
		s.logger.Warn("%s: access denied for user=%d to appointment id=%d", op, userID, id)
		return nil, ErrAccessDenied
	}

	return appointment, nil
}
