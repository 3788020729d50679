package cancel_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
)

const (
	refundModeReal      = "real"
	refundModeSimulated = "simulated"
)

// UseCase use case для отмены записи владельцем
type UseCase struct {
	appointmentRepo AppointmentRepository
	eventRepo       EventRepository
	provider        PaymentProvider
	metrics         Metrics
	opts            Options
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	eventRepo EventRepository,
	provider PaymentProvider,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	if opts.CancellationWindowHours <= 0 {
		opts.CancellationWindowHours = domain.DefaultCancellationWindowHours
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		eventRepo:       eventRepo,
		provider:        provider,
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

// Execute выполняет отмену записи по политике:
//   - до начала осталось не больше окна (включительно): CANCELED, депозит не возвращается
//   - больше окна, платежа нет: CANCELED
//   - больше окна, платеж есть: возврат min(депозит, получено), REFUNDED;
//     если провайдер недоступен или вернул ошибку, REFUNDED в режиме симуляции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelAppointment: appointment=%d, user=%d", req.AppointmentID, req.UserID)

	if req.AppointmentID <= 0 {
		return nil, fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}
	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	appointment, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("CancelAppointment: appointment id=%d not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("CancelAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	if appointment.UserID != req.UserID {
		uc.logger.Warn("CancelAppointment: user %d is not the owner of appointment id=%d", req.UserID, appointment.ID)
		return nil, ErrAccessDenied
	}

	// Повторная отмена идемпотентна: возвращаем текущее состояние
	switch appointment.Status {
	case domain.StatusCanceled, domain.StatusRefunded:
		uc.logger.Info("CancelAppointment: appointment id=%d is already %s", appointment.ID, appointment.Status)
		return &Response{
			ID:                appointment.ID,
			Status:            string(appointment.Status),
			PreviousStatus:    string(appointment.Status),
			AlreadyFinal:      true,
			Refunded:          appointment.Status == domain.StatusRefunded,
			RefundAmountCents: appointment.RefundedCents,
		}, nil
	case domain.StatusCompleted:
		uc.logger.Warn("CancelAppointment: appointment id=%d is completed", appointment.ID)
		return nil, ErrCannotCancel
	}

	now := uc.timeProvider.Now()
	if !now.Before(appointment.StartTime) {
		uc.logger.Warn("CancelAppointment: appointment id=%d started at %s", appointment.ID, appointment.StartTime)
		return nil, ErrAppointmentStarted
	}

	resp := &Response{
		ID:             appointment.ID,
		PreviousStatus: string(appointment.Status),
	}

	hoursUntilStart := appointment.HoursUntilStart(now)
	switch {
	case hoursUntilStart <= float64(uc.opts.CancellationWindowHours):
		resp.Status = string(domain.StatusCanceled)
		resp.DepositForfeited = true
	case !appointment.HasPayment():
		resp.Status = string(domain.StatusCanceled)
	default:
		uc.planRefund(ctx, appointment, resp)
		resp.Status = string(domain.StatusRefunded)
		resp.Refunded = true
	}

	// Сначала занимаем переход, деньги уходят только после него
	change := domain.StatusChange{
		From: []domain.AppointmentStatus{appointment.Status},
		To:   domain.AppointmentStatus(resp.Status),
	}
	if resp.Refunded {
		change.RefundedCents = &resp.RefundAmountCents
	}

	if err := uc.appointmentRepo.UpdateStatus(ctx, appointment.ID, change); err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			uc.logger.Warn("CancelAppointment: appointment id=%d changed status concurrently", appointment.ID)
			return nil, ErrConcurrentUpdate
		}
		uc.logger.Error("CancelAppointment: failed to update appointment id=%d: %v", appointment.ID, err)
		return nil, fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
	}

	if resp.Refunded {
		if !resp.Simulated {
			uc.issueRefund(ctx, appointment, resp)
		}
		if resp.Simulated {
			uc.metrics.IncRefund(refundModeSimulated)
		} else {
			uc.metrics.IncRefund(refundModeReal)
		}
	}

	uc.metrics.IncTransition(resp.PreviousStatus, resp.Status)
	uc.recordEvent(ctx, appointment, change.To, cancelReason(resp))

	uc.logger.Info("CancelAppointment: appointment id=%d %s -> %s (hoursUntilStart=%.2f, forfeited=%t, refund=%d, simulated=%t)",
		appointment.ID, resp.PreviousStatus, resp.Status, hoursUntilStart, resp.DepositForfeited, resp.RefundAmountCents, resp.Simulated)

	return resp, nil
}

// planRefund определяет сумму возврата min(депозит, получено) до смены статуса.
// Если провайдер недоступен, возврат сразу помечается симулированным.
func (uc *UseCase) planRefund(ctx context.Context, appointment *domain.Appointment, resp *Response) {
	paymentRef := *appointment.PaymentReference
	resp.RefundAmountCents = appointment.DepositCents

	if !uc.provider.IsAvailable() {
		uc.simulate(appointment, resp, "payments are not configured")
		return
	}

	payment, err := uc.provider.GetPayment(ctx, paymentRef)
	if err != nil {
		uc.logger.Error("CancelAppointment: failed to get payment %s: %v", paymentRef, err)
		uc.simulate(appointment, resp, "settlement lookup failed")
		return
	}

	resp.RefundAmountCents = min(appointment.DepositCents, payment.CapturedCents)
	if resp.RefundAmountCents <= 0 {
		uc.simulate(appointment, resp, "nothing captured to refund")
	}
}

// issueRefund возвращает деньги у провайдера для уже занятого перехода в REFUNDED
func (uc *UseCase) issueRefund(ctx context.Context, appointment *domain.Appointment, resp *Response) {
	refund, err := uc.provider.Refund(ctx, *appointment.PaymentReference, resp.RefundAmountCents,
		fmt.Sprintf("cancel-refund-%d", appointment.ID))
	if err != nil {
		uc.logger.Error("CancelAppointment: refund failed for appointment id=%d: %v", appointment.ID, err)
		uc.simulate(appointment, resp, "refund request failed")
		return
	}

	resp.RefundReference = &refund.ID
}

func (uc *UseCase) simulate(appointment *domain.Appointment, resp *Response, reason string) {
	resp.Simulated = true
	resp.SimulationReason = reason
	uc.logger.Warn("CancelAppointment: simulated refund of %d for appointment id=%d: %s",
		resp.RefundAmountCents, appointment.ID, reason)
}

func (uc *UseCase) recordEvent(ctx context.Context, appointment *domain.Appointment, to domain.AppointmentStatus, reason string) {
	event := domain.NewTransitionEvent(appointment.ID, appointment.Status, to, domain.ActorCustomer, reason)
	if err := uc.eventRepo.Create(ctx, event); err != nil {
		uc.logger.Warn("CancelAppointment: failed to record event for appointment id=%d: %v", appointment.ID, err)
	}
}

func cancelReason(resp *Response) string {
	switch {
	case resp.DepositForfeited:
		return "canceled inside cancellation window, deposit forfeited"
	case resp.Simulated:
		return "canceled with simulated refund: " + resp.SimulationReason
	case resp.Refunded:
		return fmt.Sprintf("canceled with refund of %d cents", resp.RefundAmountCents)
	default:
		return "canceled by customer"
	}
}
