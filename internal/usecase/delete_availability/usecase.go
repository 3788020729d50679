package delete_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
)

// UseCase use case для удаления окна доступности с отменой попавших в него записей
type UseCase struct {
	availabilityRepo AvailabilityRepository
	appointmentRepo  AppointmentRepository
	eventRepo        EventRepository
	txManager        TransactionManager
	metrics          Metrics
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	availabilityRepo AvailabilityRepository,
	appointmentRepo AppointmentRepository,
	eventRepo EventRepository,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		availabilityRepo: availabilityRepo,
		appointmentRepo:  appointmentRepo,
		eventRepo:        eventRepo,
		txManager:        txManager,
		metrics:          metrics,
		logger:           logger,
	}
}

// Execute удаляет окно и отменяет PENDING/CONFIRMED записи, целиком лежащие внутри него.
// Все изменения выполняются в одной транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("DeleteAvailability: window=%d", req.WindowID)

	if req.WindowID <= 0 {
		return nil, fmt.Errorf("%w: windowID must be positive", ErrInvalidInput)
	}

	resp := &Response{
		WindowID:             req.WindowID,
		CanceledAppointments: make([]int64, 0),
		PaidCanceled:         make([]int64, 0),
	}
	transitions := make([]domain.AppointmentStatus, 0)

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		window, err := uc.availabilityRepo.GetByID(txCtx, req.WindowID)
		if err != nil {
			if errors.Is(err, availabilityRepo.ErrWindowNotFound) {
				uc.logger.Warn("DeleteAvailability: window id=%d not found", req.WindowID)
				return ErrWindowNotFound
			}
			uc.logger.Error("DeleteAvailability: failed to get window id=%d: %v", req.WindowID, err)
			return fmt.Errorf("%w: failed to get window: %v", ErrInternal, err)
		}

		appointments, err := uc.appointmentRepo.ListOpenWithin(txCtx, window.Range())
		if err != nil {
			uc.logger.Error("DeleteAvailability: failed to get appointments for window id=%d: %v", window.ID, err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		for _, a := range appointments {
			err := uc.appointmentRepo.UpdateStatus(txCtx, a.ID, domain.StatusChange{
				From: []domain.AppointmentStatus{a.Status},
				To:   domain.StatusCanceled,
			})
			if errors.Is(err, appointmentRepo.ErrStatusConflict) {
				uc.logger.Warn("DeleteAvailability: appointment id=%d changed status concurrently, skipping", a.ID)
				continue
			}
			if err != nil {
				uc.logger.Error("DeleteAvailability: failed to cancel appointment id=%d: %v", a.ID, err)
				return fmt.Errorf("%w: failed to cancel appointment %d: %v", ErrInternal, a.ID, err)
			}

			event := domain.NewTransitionEvent(a.ID, a.Status, domain.StatusCanceled, domain.ActorAdmin,
				fmt.Sprintf("availability window %d removed", window.ID))
			if err := uc.eventRepo.Create(txCtx, event); err != nil {
				uc.logger.Error("DeleteAvailability: failed to record event for appointment id=%d: %v", a.ID, err)
				return fmt.Errorf("%w: failed to record event: %v", ErrInternal, err)
			}

			resp.CanceledAppointments = append(resp.CanceledAppointments, a.ID)
			transitions = append(transitions, a.Status)
			if a.HasPayment() {
				resp.PaidCanceled = append(resp.PaidCanceled, a.ID)
			}
		}

		if err := uc.availabilityRepo.Delete(txCtx, window.ID); err != nil {
			if errors.Is(err, availabilityRepo.ErrWindowNotFound) {
				return ErrWindowNotFound
			}
			uc.logger.Error("DeleteAvailability: failed to delete window id=%d: %v", window.ID, err)
			return fmt.Errorf("%w: failed to delete window: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, from := range transitions {
		uc.metrics.IncTransition(string(from), string(domain.StatusCanceled))
	}
	if len(resp.PaidCanceled) > 0 {
		uc.logger.Warn("DeleteAvailability: canceled paid appointments %v, deposits were not refunded", resp.PaidCanceled)
	}

	uc.logger.Info("DeleteAvailability: window id=%d deleted, canceled %d appointments",
		req.WindowID, len(resp.CanceledAppointments))

	return resp, nil
}
