package refund_appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
)

// UseCase use case для возврата платежа администратором
type UseCase struct {
	appointmentRepo AppointmentRepository
	eventRepo       EventRepository
	provider        PaymentProvider
	metrics         Metrics
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	eventRepo EventRepository,
	provider PaymentProvider,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		eventRepo:       eventRepo,
		provider:        provider,
		metrics:         metrics,
		logger:          logger,
	}
}

// Execute выполняет возврат.
// Потолок возврата = получено - уже возвращено (по данным провайдера).
// Возврат, доводящий сумму возвратов до полученной, переводит запись в REFUNDED;
// частичный возврат статус не меняет.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RefundAppointment: appointment=%d, amount=%s", req.AppointmentID, formatAmount(req.AmountCents))

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RefundAppointment: validation failed: %v", err)
		return nil, err
	}

	appointment, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("RefundAppointment: appointment id=%d not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("RefundAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	if !domain.CanTransition(appointment.Status, domain.StatusRefunded) {
		uc.logger.Warn("RefundAppointment: appointment id=%d is %s", appointment.ID, appointment.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrAppointmentFinal, appointment.Status)
	}
	if !appointment.HasPayment() {
		uc.logger.Warn("RefundAppointment: appointment id=%d has no payment reference", appointment.ID)
		return nil, ErrNoPayment
	}
	if !uc.provider.IsAvailable() {
		uc.logger.Warn("RefundAppointment: payments are not configured")
		return nil, ErrPaymentsUnavailable
	}

	paymentRef := *appointment.PaymentReference

	payment, err := uc.provider.GetPayment(ctx, paymentRef)
	if err != nil {
		uc.logger.Error("RefundAppointment: failed to get payment %s: %v", paymentRef, err)
		return nil, fmt.Errorf("%w: failed to get payment: %v", ErrProvider, err)
	}

	if payment.CapturedCents <= 0 {
		uc.logger.Warn("RefundAppointment: payment %s has not settled (status=%s)", paymentRef, payment.Status)
		return nil, ErrPaymentNotSettled
	}

	ceiling := refundCeiling(payment)
	if ceiling <= 0 && payment.RefundedCents >= payment.CapturedCents {
		// Провайдер уже вернул все, а статус остался прежним: доводим запись до REFUNDED без нового возврата
		uc.logger.Warn("RefundAppointment: payment %s already refunded in full (%d/%d), reconciling appointment id=%d",
			paymentRef, payment.RefundedCents, payment.CapturedCents, appointment.ID)
		resp := &Response{
			ID:                 appointment.ID,
			Status:             string(appointment.Status),
			PreviousStatus:     string(appointment.Status),
			TotalRefundedCents: payment.RefundedCents,
			CapturedCents:      payment.CapturedCents,
			FullRefund:         true,
		}
		return uc.completeRefund(ctx, appointment, req, resp)
	}

	amount := ceiling
	if req.AmountCents != nil {
		amount = *req.AmountCents
	}
	if ceiling <= 0 || amount > ceiling {
		uc.logger.Warn("RefundAppointment: amount %d exceeds refundable %d (captured=%d, refunded=%d)",
			amount, ceiling, payment.CapturedCents, payment.RefundedCents)
		return nil, fmt.Errorf("%w: at most %d cents can be refunded", ErrRefundExceedsCaptured, max(ceiling, 0))
	}

	totalRefunded := payment.RefundedCents + amount
	idempotencyKey := fmt.Sprintf("admin-refund-%d-%d", appointment.ID, totalRefunded)

	refund, err := uc.provider.Refund(ctx, paymentRef, amount, idempotencyKey)
	if err != nil {
		uc.logger.Error("RefundAppointment: refund of %d failed for appointment id=%d: %v", amount, appointment.ID, err)
		if errors.Is(err, payments.ErrNotConfigured) {
			return nil, ErrPaymentsUnavailable
		}
		return nil, fmt.Errorf("%w: refund failed: %v", ErrProvider, err)
	}
	uc.metrics.IncRefund("real")

	resp := &Response{
		ID:                 appointment.ID,
		Status:             string(appointment.Status),
		PreviousStatus:     string(appointment.Status),
		RefundAmountCents:  amount,
		RefundReference:    refund.ID,
		TotalRefundedCents: totalRefunded,
		CapturedCents:      payment.CapturedCents,
		FullRefund:         totalRefunded >= payment.CapturedCents,
	}

	if !resp.FullRefund {
		if err := uc.appointmentRepo.AddRefundedCents(ctx, appointment.ID, amount); err != nil {
			// Деньги уже возвращены у провайдера, расхождение только в локальном счетчике
			uc.logger.Error("RefundAppointment: failed to store partial refund for appointment id=%d: %v", appointment.ID, err)
			return nil, fmt.Errorf("%w: failed to store refund: %v", ErrInternal, err)
		}
		uc.logger.Info("RefundAppointment: partial refund %d/%d for appointment id=%d, status stays %s",
			totalRefunded, payment.CapturedCents, appointment.ID, appointment.Status)
		return resp, nil
	}

	return uc.completeRefund(ctx, appointment, req, resp)
}

// completeRefund переводит запись в REFUNDED после полного возврата у провайдера.
// Если статус успел смениться, перечитывает запись и повторяет переход из нового статуса.
func (uc *UseCase) completeRefund(ctx context.Context, appointment *domain.Appointment, req *Request, resp *Response) (*Response, error) {
	from := appointment.Status
	for attempt := 0; ; attempt++ {
		err := uc.appointmentRepo.UpdateStatus(ctx, appointment.ID, domain.StatusChange{
			From:          []domain.AppointmentStatus{from},
			To:            domain.StatusRefunded,
			RefundedCents: &resp.TotalRefundedCents,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, appointmentRepo.ErrStatusConflict) {
			uc.logger.Error("RefundAppointment: failed to update appointment id=%d: %v", appointment.ID, err)
			return nil, fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
		}

		current, getErr := uc.appointmentRepo.GetByID(ctx, appointment.ID)
		if getErr != nil {
			uc.logger.Error("RefundAppointment: failed to re-read appointment id=%d: %v", appointment.ID, getErr)
			return nil, fmt.Errorf("%w: failed to re-read appointment: %v", ErrInternal, getErr)
		}
		if current.Status == domain.StatusRefunded {
			uc.logger.Info("RefundAppointment: appointment id=%d was marked refunded concurrently", appointment.ID)
			resp.Status = string(domain.StatusRefunded)
			return resp, nil
		}
		if attempt > 0 || !domain.CanTransition(current.Status, domain.StatusRefunded) {
			uc.logger.Error("RefundAppointment: appointment id=%d is %s after refund of payment %s",
				appointment.ID, current.Status, *appointment.PaymentReference)
			return nil, ErrConcurrentUpdate
		}
		from = current.Status
	}

	resp.PreviousStatus = string(from)
	resp.Status = string(domain.StatusRefunded)
	uc.metrics.IncTransition(resp.PreviousStatus, resp.Status)

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = fmt.Sprintf("refunded %d cents by admin", resp.TotalRefundedCents)
	}
	event := domain.NewTransitionEvent(appointment.ID, from, domain.StatusRefunded, domain.ActorAdmin, reason)
	if err := uc.eventRepo.Create(ctx, event); err != nil {
		uc.logger.Warn("RefundAppointment: failed to record event for appointment id=%d: %v", appointment.ID, err)
	}

	uc.logger.Info("RefundAppointment: appointment id=%d refunded in full (%d cents, refund=%s)",
		appointment.ID, resp.TotalRefundedCents, resp.RefundReference)

	return resp, nil
}

// refundCeiling сколько еще можно вернуть: от полученной суммы, а если провайдер
// ее не сообщил, от большей из полученной и авторизованной
func refundCeiling(p *payments.Payment) int64 {
	base := p.CapturedCents
	if base <= 0 {
		base = max(p.CapturedCents, p.AmountCents)
	}
	return base - p.RefundedCents
}

func validateRequest(req *Request) error {
	if req.AppointmentID <= 0 {
		return fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}
	if req.AmountCents != nil && *req.AmountCents <= 0 {
		return fmt.Errorf("%w: amount must be a positive number of cents", ErrInvalidInput)
	}
	if len(req.Reason) > domain.MaxRefundReasonLength {
		return fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxRefundReasonLength)
	}
	return nil
}

func formatAmount(amount *int64) string {
	if amount == nil {
		return "full"
	}
	return fmt.Sprintf("%d", *amount)
}
