package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/timerange"
)

const (
	defaultListPeriod = 31 * 24 * time.Hour
	maxListPeriod     = 366 * 24 * time.Hour
)

// Service сервис для работы с окнами доступности
type Service struct {
	availabilityRepo AvailabilityRepository
	timeProvider     TimeProvider
	logger           Logger
}

// NewService создает новый экземпляр сервиса окон доступности
func NewService(availabilityRepo AvailabilityRepository, logger Logger) *Service {
	return &Service{
		availabilityRepo: availabilityRepo,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// List получает окна, пересекающие период [From, To).
// Пересекающиеся окна возвращаются как есть, без объединения.
func (s *Service) List(ctx context.Context, req *models.ListWindowsRequest) (*models.WindowListResponse, error) {
	from := timerange.Day(s.timeProvider.Now()).Start
	if req.From != nil {
		from = req.From.UTC()
	}
	to := from.Add(defaultListPeriod)
	if req.To != nil {
		to = req.To.UTC()
	}

	rng := timerange.New(from, to)
	if !rng.Valid() {
		s.logger.Warn("List: invalid period %s - %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidTimeRange)
	}
	if rng.Duration() > maxListPeriod {
		return nil, fmt.Errorf("%w: period must not exceed %d days", ErrInvalidInput, int(maxListPeriod.Hours()/24))
	}

	s.logger.Info("List: fetching windows for %s - %s", from.Format(time.RFC3339), to.Format(time.RFC3339))

	windows, err := s.availabilityRepo.ListIntersecting(ctx, rng)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d windows", len(windows))
	return models.FromDomainWindowList(windows), nil
}

// Create создает окно доступности
// Доступно только администратору; пересечение с другими окнами допускается
func (s *Service) Create(ctx context.Context, req *models.CreateWindowRequest) (*models.WindowResponse, error) {
	s.logger.Info("Create: creating window %s - %s",
		req.StartTime.Format(time.RFC3339), req.EndTime.Format(time.RFC3339))

	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return nil, fmt.Errorf("%w: startTime and endTime are required", ErrInvalidInput)
	}
	if !timerange.New(req.StartTime, req.EndTime).Valid() {
		s.logger.Warn("Create: start is not before end")
		return nil, fmt.Errorf("%w: startTime must be before endTime", ErrInvalidTimeRange)
	}

	created, err := s.availabilityRepo.Create(ctx, &domain.AvailabilityWindow{
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
	})
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created window id=%d", created.ID)
	return models.FromDomainWindow(created), nil
}
