package complete_appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
)

// UseCase use case для перевода прошедших подтвержденных записей в COMPLETED
type UseCase struct {
	appointmentRepo AppointmentRepository
	eventRepo       EventRepository
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	eventRepo EventRepository,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		eventRepo:       eventRepo,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute завершает одну пачку записей, у которых end_time <= now
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	limit := req.Limit
	switch {
	case limit < 0 || limit > MaxLimit:
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxLimit)
	case limit == 0:
		limit = DefaultLimit
	}

	now := uc.timeProvider.Now()
	uc.logger.Info("CompleteAppointments: ended before %s, limit=%d", now.Format(time.RFC3339), limit)

	appointments, err := uc.appointmentRepo.ListConfirmedEndedBefore(ctx, now, uint64(limit))
	if err != nil {
		uc.logger.Error("CompleteAppointments: failed to list appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	resp := &Response{
		Completed: make([]int64, 0, len(appointments)),
		Skipped:   make([]int64, 0),
	}

	for _, a := range appointments {
		err := uc.appointmentRepo.UpdateStatus(ctx, a.ID, domain.StatusChange{
			From: domain.SourcesFor(domain.StatusCompleted),
			To:   domain.StatusCompleted,
		})
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			uc.logger.Warn("CompleteAppointments: appointment id=%d is no longer confirmed", a.ID)
			resp.Skipped = append(resp.Skipped, a.ID)
			continue
		}
		if err != nil {
			// Уже завершенные в этом проходе остаются завершенными
			uc.logger.Error("CompleteAppointments: failed to complete appointment id=%d: %v", a.ID, err)
			return nil, fmt.Errorf("%w: failed to complete appointment %d: %v", ErrInternal, a.ID, err)
		}

		uc.metrics.IncTransition(string(domain.StatusConfirmed), string(domain.StatusCompleted))

		event := domain.NewTransitionEvent(a.ID, domain.StatusConfirmed, domain.StatusCompleted, domain.ActorSystem, "appointment ended")
		if err := uc.eventRepo.Create(ctx, event); err != nil {
			uc.logger.Warn("CompleteAppointments: failed to record event for appointment id=%d: %v", a.ID, err)
		}

		resp.Completed = append(resp.Completed, a.ID)
	}

	uc.logger.Info("CompleteAppointments: completed=%d, skipped=%d", len(resp.Completed), len(resp.Skipped))

	return resp, nil
}
