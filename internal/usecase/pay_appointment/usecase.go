package pay_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/idempotency"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	userRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/user"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
)

// UseCase use case для синхронной оплаты депозита сохраненной картой
type UseCase struct {
	appointmentRepo AppointmentRepository
	userRepo        UserRepository
	eventRepo       EventRepository
	provider        PaymentProvider
	guard           Guard
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	userRepo UserRepository,
	eventRepo EventRepository,
	provider PaymentProvider,
	guard Guard,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		eventRepo:       eventRepo,
		provider:        provider,
		guard:           guard,
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

// Execute списывает депозит с сохраненной карты и подтверждает запись.
// Запись подтверждается, только если списанная сумма равна депозиту.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("PayAppointment: appointment=%d, user=%d", req.AppointmentID, req.UserID)

	if req.AppointmentID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: appointmentID and userID must be positive", ErrInvalidInput)
	}

	if !uc.provider.IsAvailable() {
		uc.logger.Warn("PayAppointment: payments are not configured")
		return nil, ErrPaymentsUnavailable
	}

	// Тот же ключ, что у webhook: не списываем, пока запись подтверждается checkout-ом
	release, err := uc.guard.Acquire(ctx, fmt.Sprintf("payment-confirm:%d", req.AppointmentID))
	switch {
	case errors.Is(err, idempotency.ErrLockHeld):
		uc.logger.Warn("PayAppointment: appointment id=%d is being paid concurrently", req.AppointmentID)
		return nil, ErrPaymentInProgress
	case err != nil:
		uc.logger.Warn("PayAppointment: guard unavailable for appointment id=%d: %v", req.AppointmentID, err)
	default:
		defer release(context.WithoutCancel(ctx))
	}

	appointment, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("PayAppointment: appointment id=%d not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("PayAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	if err := uc.checkPayable(appointment, req.UserID); err != nil {
		uc.logger.Warn("PayAppointment: appointment id=%d is not payable: %v", appointment.ID, err)
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, ErrAccessDenied
		}
		uc.logger.Error("PayAppointment: failed to get user id=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: failed to get user: %v", ErrInternal, err)
	}
	if !user.HasPaymentCustomer() {
		uc.logger.Warn("PayAppointment: user id=%d has no payment customer", user.ID)
		return nil, ErrNoSavedMethod
	}
	customerRef := *user.PaymentCustomerReference

	methodRef, err := uc.resolveMethod(ctx, customerRef, req.PaymentMethodRef)
	if err != nil {
		return nil, err
	}

	payment, err := uc.provider.ChargeSavedMethod(ctx, payments.ChargeRequest{
		AppointmentID:    appointment.ID,
		AmountCents:      appointment.DepositCents,
		CustomerRef:      customerRef,
		PaymentMethodRef: methodRef,
	})
	if err != nil {
		uc.logger.Warn("PayAppointment: charge failed for appointment id=%d: %v", appointment.ID, err)
		if errors.Is(err, payments.ErrPaymentFailed) {
			return nil, fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if !payment.Succeeded {
		uc.logger.Warn("PayAppointment: payment %s for appointment id=%d ended in status %s", payment.ID, appointment.ID, payment.Status)
		return nil, fmt.Errorf("%w: payment status %s", ErrPaymentDeclined, payment.Status)
	}
	if payment.AmountCents != appointment.DepositCents {
		uc.logger.Error("PayAppointment: payment %s amount %d != deposit %d for appointment id=%d",
			payment.ID, payment.AmountCents, appointment.DepositCents, appointment.ID)
		return nil, ErrAmountMismatch
	}

	err = uc.appointmentRepo.UpdateStatus(ctx, appointment.ID, domain.StatusChange{
		From:             []domain.AppointmentStatus{domain.StatusPending},
		To:               domain.StatusConfirmed,
		PaymentReference: &payment.ID,
	})
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			uc.logger.Error("PayAppointment: appointment id=%d left pending while payment %s was charged", appointment.ID, payment.ID)
			return nil, ErrConcurrentUpdate
		}
		uc.logger.Error("PayAppointment: failed to confirm appointment id=%d: %v", appointment.ID, err)
		return nil, fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
	}

	uc.metrics.IncTransition(string(domain.StatusPending), string(domain.StatusConfirmed))

	event := domain.NewTransitionEvent(appointment.ID, domain.StatusPending, domain.StatusConfirmed,
		domain.ActorCustomer, "deposit paid with saved card")
	if err := uc.eventRepo.Create(ctx, event); err != nil {
		uc.logger.Warn("PayAppointment: failed to record event for appointment id=%d: %v", appointment.ID, err)
	}

	uc.logger.Info("PayAppointment: appointment id=%d confirmed, payment=%s", appointment.ID, payment.ID)

	return &Response{
		ID:               appointment.ID,
		Status:           string(domain.StatusConfirmed),
		PaymentReference: payment.ID,
		AmountCents:      payment.AmountCents,
		PaymentMethodRef: methodRef,
	}, nil
}

func (uc *UseCase) checkPayable(a *domain.Appointment, userID int64) error {
	if a.UserID != userID {
		return ErrAccessDenied
	}
	if a.Status != domain.StatusPending {
		return fmt.Errorf("%w: status is %s", ErrNotPending, a.Status)
	}
	if a.DepositCents <= 0 {
		return ErrNothingToPay
	}
	if !uc.timeProvider.Now().Before(a.StartTime) {
		return ErrAppointmentStarted
	}
	return nil
}

// resolveMethod проверяет, что карта принадлежит клиенту; без явной карты берет первую сохраненную
func (uc *UseCase) resolveMethod(ctx context.Context, customerRef, requested string) (string, error) {
	cards, err := uc.provider.ListPaymentMethods(ctx, customerRef)
	if err != nil {
		uc.logger.Error("PayAppointment: failed to list payment methods for customer %s: %v", customerRef, err)
		return "", fmt.Errorf("%w: failed to list payment methods: %v", ErrProvider, err)
	}
	if len(cards) == 0 {
		return "", ErrNoSavedMethod
	}
	if requested == "" {
		return cards[0].ID, nil
	}
	for _, card := range cards {
		if card.ID == requested {
			return card.ID, nil
		}
	}
	uc.logger.Warn("PayAppointment: payment method %s does not belong to customer %s", requested, customerRef)
	return "", ErrAccessDenied
}
