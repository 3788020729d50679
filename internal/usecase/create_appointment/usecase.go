package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	userRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/user"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
	"github.com/m04kA/SMC-AppointmentService/pkg/timerange"
)

const (
	checkoutHosted = "hosted"
	checkoutNone   = "none"
)

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	serviceRepo     ServiceRepository
	userRepo        UserRepository
	eventRepo       EventRepository
	provider        PaymentProvider
	txManager       TransactionManager
	metrics         Metrics
	opts            Options
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	serviceRepo ServiceRepository,
	userRepo UserRepository,
	eventRepo EventRepository,
	provider PaymentProvider,
	txManager TransactionManager,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
		userRepo:        userRepo,
		eventRepo:       eventRepo,
		provider:        provider,
		txManager:       txManager,
		metrics:         metrics,
		opts:            opts,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания записи.
// Проверка пересечений, вставка и событие журнала выполняются в одной транзакции;
// при SerializeConflictCheck она сериализуемая.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: user=%d, service=%d, start=%s",
		req.UserID, req.ServiceID, req.StartTime.UTC().Format("2006-01-02T15:04:05Z"))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем услугу
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("CreateAppointment: service id=%d is not active", req.ServiceID)
		return nil, ErrServiceInactive
	}
	if service.DurationMinutes <= 0 {
		uc.logger.Error("CreateAppointment: service id=%d has invalid duration %d", service.ID, service.DurationMinutes)
		return nil, fmt.Errorf("%w: service has non-positive duration", ErrInternal)
	}

	// 3. Нельзя записаться на прошедшее время
	if !req.StartTime.After(now) {
		uc.logger.Warn("CreateAppointment: start %s is not after now %s", req.StartTime, now)
		return nil, ErrStartInPast
	}

	// 4. Депозит без платежного провайдера принять невозможно: отказываем до вставки
	if service.RequiresDeposit() && !uc.provider.IsAvailable() {
		uc.logger.Warn("CreateAppointment: service id=%d requires deposit but payments are disabled", service.ID)
		return nil, ErrPaymentsUnavailable
	}

	user, err := uc.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			uc.logger.Warn("CreateAppointment: user id=%d not found", req.UserID)
			return nil, ErrUserNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get user id=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: failed to get user: %v", ErrInternal, err)
	}

	slot := timerange.FromDuration(req.StartTime.UTC(), service.Duration())

	// 5. Проверка пересечений и вставка
	var created *domain.Appointment
	insert := func(ctx context.Context) error {
		appointments, err := uc.appointmentRepo.ListActiveInRange(ctx, slot)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		if domain.HasConflict(slot.Start, slot.End, appointments) {
			uc.logger.Warn("CreateAppointment: slot %s-%s overlaps an active appointment", slot.Start, slot.End)
			return ErrSlotTaken
		}

		appointment, err := uc.appointmentRepo.Create(ctx, &domain.Appointment{
			UserID:       user.ID,
			ServiceID:    service.ID,
			StartTime:    slot.Start,
			EndTime:      slot.End,
			Status:       domain.StatusPending,
			ServiceTitle: service.Title,
			DepositCents: service.DepositCents,
		})
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		if err := uc.eventRepo.Create(ctx, &domain.AppointmentEvent{
			AppointmentID: appointment.ID,
			ToStatus:      domain.StatusPending,
			Reason:        "booked",
			Actor:         domain.ActorCustomer,
		}); err != nil {
			uc.logger.Error("CreateAppointment: failed to record event for appointment id=%d: %v", appointment.ID, err)
			return fmt.Errorf("%w: failed to record event: %v", ErrInternal, err)
		}

		created = appointment
		return nil
	}

	if uc.opts.SerializeConflictCheck {
		err = uc.txManager.DoSerializable(ctx, insert)
	} else {
		err = uc.txManager.Do(ctx, insert)
	}
	if err != nil {
		return nil, err
	}

	resp := toResponse(created)

	// 6. Депозит: открываем hosted checkout
	if !service.RequiresDeposit() {
		uc.metrics.IncAppointmentCreated(checkoutNone)
		uc.logger.Info("CreateAppointment: created appointment id=%d without deposit", created.ID)
		return resp, nil
	}

	session, err := uc.provider.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		AppointmentID: created.ID,
		Title:         service.Title,
		AmountCents:   service.DepositCents,
		CustomerEmail: user.Email,
	})
	if err != nil {
		uc.logger.Error("CreateAppointment: checkout failed for appointment id=%d: %v", created.ID, err)
		uc.cancelAfterCheckoutFailure(ctx, created.ID)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}

	if err := uc.appointmentRepo.SetPaymentSession(ctx, created.ID, session.ID); err != nil {
		// Webhook сопоставит платеж по client_reference_id, ссылка на сессию не обязательна
		uc.logger.Warn("CreateAppointment: failed to store session for appointment id=%d: %v", created.ID, err)
	}

	resp.CheckoutURL = &session.URL
	resp.PaymentSessionRef = &session.ID

	uc.metrics.IncAppointmentCreated(checkoutHosted)
	uc.logger.Info("CreateAppointment: created appointment id=%d, checkout session=%s", created.ID, session.ID)

	return resp, nil
}

// cancelAfterCheckoutFailure отменяет только что созданную запись, чтобы она не занимала слот
func (uc *UseCase) cancelAfterCheckoutFailure(ctx context.Context, id int64) {
	err := uc.appointmentRepo.UpdateStatus(ctx, id, domain.StatusChange{
		From: []domain.AppointmentStatus{domain.StatusPending},
		To:   domain.StatusCanceled,
	})
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to cancel appointment id=%d after checkout failure: %v", id, err)
		return
	}

	uc.metrics.IncTransition(string(domain.StatusPending), string(domain.StatusCanceled))

	event := domain.NewTransitionEvent(id, domain.StatusPending, domain.StatusCanceled, domain.ActorSystem, "checkout failed")
	if err := uc.eventRepo.Create(ctx, event); err != nil {
		uc.logger.Warn("CreateAppointment: failed to record cancel event for appointment id=%d: %v", id, err)
	}
}

func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}
	return nil
}

func toResponse(a *domain.Appointment) *Response {
	return &Response{
		ID:           a.ID,
		UserID:       a.UserID,
		ServiceID:    a.ServiceID,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		Status:       string(a.Status),
		ServiceTitle: a.ServiceTitle,
		DepositCents: a.DepositCents,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
