package confirm_payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/idempotency"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	paymentEventRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/payment_event"
)

const confirmTimeFormat = "Mon, 02 Jan 2006 15:04 MST"

// UseCase сверка асинхронных уведомлений об оплате с записями
type UseCase struct {
	appointmentRepo  AppointmentRepository
	userRepo         UserRepository
	eventRepo        EventRepository
	paymentEventRepo PaymentEventRepository
	provider         PaymentProvider
	mailer           Mailer
	guard            Guard
	metrics          Metrics
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	userRepo UserRepository,
	eventRepo EventRepository,
	paymentEventRepo PaymentEventRepository,
	provider PaymentProvider,
	mailer Mailer,
	guard Guard,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo:  appointmentRepo,
		userRepo:         userRepo,
		eventRepo:        eventRepo,
		paymentEventRepo: paymentEventRepo,
		provider:         provider,
		mailer:           mailer,
		guard:            guard,
		metrics:          metrics,
		logger:           logger,
	}
}

// OnPaymentCompleted переводит запись PENDING -> CONFIRMED ровно один раз.
// Повторные доставки дают OutcomeDuplicate, нераспознанные ссылки OutcomeIgnored;
// ни то ни другое не ошибка. Сохранение карты и письмо выполняются best-effort.
func (uc *UseCase) OnPaymentCompleted(ctx context.Context, c Completion) (*Result, error) {
	result, err := uc.reconcile(ctx, c)
	if result != nil {
		uc.metrics.IncWebhookOutcome(string(result.Outcome))
	}
	return result, err
}

func (uc *UseCase) reconcile(ctx context.Context, c Completion) (_ *Result, retErr error) {
	uc.logger.Info("ConfirmPayment: event=%s, reference=%q, payment=%s, session=%s",
		c.ProviderEventID, c.ClientReference, c.PaymentReference, c.SessionReference)

	// 1. Повторная доставка того же события провайдера
	if c.ProviderEventID != "" {
		err := uc.paymentEventRepo.MarkProcessed(ctx, c.Provider, c.ProviderEventID, c.EventType)
		if errors.Is(err, paymentEventRepo.ErrDuplicateEvent) {
			uc.logger.Info("ConfirmPayment: event %s already processed", c.ProviderEventID)
			return &Result{Outcome: OutcomeDuplicate, Reason: "event already processed"}, nil
		}
		if err == nil {
			// Ошибка хранилища ниже снимает отметку, иначе повторная доставка будет принята за дубль
			defer func() {
				if retErr != nil {
					uc.forgetEvent(ctx, c)
				}
			}()
		} else {
			// Условное обновление статуса все равно не даст подтвердить запись дважды
			uc.logger.Warn("ConfirmPayment: failed to mark event %s processed: %v", c.ProviderEventID, err)
		}
	}

	// 2. Ссылка на запись
	appointmentID, err := strconv.ParseInt(strings.TrimSpace(c.ClientReference), 10, 64)
	if err != nil || appointmentID <= 0 {
		uc.logger.Warn("ConfirmPayment: malformed client reference %q, ignoring", c.ClientReference)
		return &Result{Outcome: OutcomeIgnored, Reason: "malformed appointment reference"}, nil
	}
	if strings.TrimSpace(c.PaymentReference) == "" {
		uc.logger.Warn("ConfirmPayment: appointment id=%d: notification without payment reference, ignoring", appointmentID)
		return &Result{Outcome: OutcomeIgnored, AppointmentID: appointmentID, Reason: "missing payment reference"}, nil
	}

	// 3. Параллельные доставки одного уведомления
	release, err := uc.guard.Acquire(ctx, fmt.Sprintf("payment-confirm:%d", appointmentID))
	switch {
	case errors.Is(err, idempotency.ErrLockHeld):
		uc.logger.Info("ConfirmPayment: appointment id=%d is being confirmed by another delivery", appointmentID)
		return &Result{Outcome: OutcomeDuplicate, AppointmentID: appointmentID, Reason: "confirmation in progress"}, nil
	case err != nil:
		uc.logger.Warn("ConfirmPayment: guard unavailable for appointment id=%d, relying on conditional update: %v", appointmentID, err)
	default:
		defer release(context.WithoutCancel(ctx))
	}

	// 4. Запись и ее текущий статус
	appointment, err := uc.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("ConfirmPayment: appointment id=%d not found, ignoring", appointmentID)
			return &Result{Outcome: OutcomeIgnored, AppointmentID: appointmentID, Reason: "appointment not found"}, nil
		}
		uc.logger.Error("ConfirmPayment: failed to get appointment id=%d: %v", appointmentID, err)
		return &Result{Outcome: OutcomeIgnored, AppointmentID: appointmentID, Reason: "storage failure"},
			fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	switch appointment.Status {
	case domain.StatusPending:
	case domain.StatusConfirmed:
		uc.logger.Info("ConfirmPayment: appointment id=%d already confirmed", appointmentID)
		return &Result{Outcome: OutcomeDuplicate, AppointmentID: appointmentID, Reason: "already confirmed"}, nil
	default:
		// Оплата пришла для отмененной записи: деньги нужно вернуть вручную
		uc.logger.Error("ConfirmPayment: payment %s received for appointment id=%d in status %s",
			c.PaymentReference, appointmentID, appointment.Status)
		return &Result{Outcome: OutcomeIgnored, AppointmentID: appointmentID, Reason: "appointment is " + string(appointment.Status)}, nil
	}

	// 5. Атомарный переход PENDING -> CONFIRMED
	change := domain.StatusChange{
		From:             domain.SourcesFor(domain.StatusConfirmed),
		To:               domain.StatusConfirmed,
		PaymentReference: &c.PaymentReference,
	}
	if c.SessionReference != "" {
		change.PaymentSessionReference = &c.SessionReference
	}

	if err := uc.appointmentRepo.UpdateStatus(ctx, appointmentID, change); err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			uc.logger.Info("ConfirmPayment: appointment id=%d left pending concurrently", appointmentID)
			return &Result{Outcome: OutcomeDuplicate, AppointmentID: appointmentID, Reason: "status changed concurrently"}, nil
		}
		uc.logger.Error("ConfirmPayment: failed to confirm appointment id=%d: %v", appointmentID, err)
		return &Result{Outcome: OutcomeIgnored, AppointmentID: appointmentID, Reason: "storage failure"},
			fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
	}

	uc.metrics.IncTransition(string(domain.StatusPending), string(domain.StatusConfirmed))
	uc.logger.Info("ConfirmPayment: appointment id=%d confirmed, payment=%s", appointmentID, c.PaymentReference)

	event := domain.NewTransitionEvent(appointmentID, domain.StatusPending, domain.StatusConfirmed,
		domain.ActorPaymentProvider, "deposit paid via hosted checkout")
	if err := uc.eventRepo.Create(ctx, event); err != nil {
		uc.logger.Warn("ConfirmPayment: failed to record event for appointment id=%d: %v", appointmentID, err)
	}

	// 6. Побочные эффекты best-effort
	user := uc.loadUser(ctx, appointment.UserID)
	uc.savePaymentMethod(ctx, user, c)
	uc.sendConfirmation(ctx, appointment, user, c.CustomerEmail)

	return &Result{Outcome: OutcomeConfirmed, AppointmentID: appointmentID}, nil
}

func (uc *UseCase) forgetEvent(ctx context.Context, c Completion) {
	if err := uc.paymentEventRepo.Forget(context.WithoutCancel(ctx), c.Provider, c.ProviderEventID); err != nil {
		uc.logger.Error("ConfirmPayment: failed to forget event %s, redelivery will be skipped: %v", c.ProviderEventID, err)
	}
}

func (uc *UseCase) loadUser(ctx context.Context, userID int64) *domain.User {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		uc.logger.Warn("ConfirmPayment: failed to load user id=%d: %v", userID, err)
		return nil
	}
	return user
}

// savePaymentMethod сохраняет карту клиента для повторных оплат. Ошибки только логируются.
func (uc *UseCase) savePaymentMethod(ctx context.Context, user *domain.User, c Completion) {
	if user == nil {
		return
	}
	if !uc.provider.IsAvailable() {
		uc.logger.Info("ConfirmPayment: payments not configured, skipping payment method save")
		return
	}

	payment, err := uc.provider.GetPayment(ctx, c.PaymentReference)
	if err != nil {
		uc.logger.Warn("ConfirmPayment: failed to get payment %s: %v", c.PaymentReference, err)
		return
	}

	email := c.CustomerEmail
	if email == "" {
		email = user.Email
	}

	customerRef, err := uc.provider.EnsureCustomer(ctx, user.PaymentCustomerReference, email)
	if err != nil {
		uc.logger.Warn("ConfirmPayment: failed to ensure customer for user id=%d: %v", user.ID, err)
		return
	}
	if !user.HasPaymentCustomer() || *user.PaymentCustomerReference != customerRef {
		if err := uc.userRepo.SetPaymentCustomerReference(ctx, user.ID, customerRef); err != nil {
			uc.logger.Warn("ConfirmPayment: failed to store customer %s for user id=%d: %v", customerRef, user.ID, err)
		}
	}

	if payment.PaymentMethodRef == "" {
		return
	}
	if err := uc.provider.AttachPaymentMethod(ctx, customerRef, payment.PaymentMethodRef); err != nil {
		uc.logger.Warn("ConfirmPayment: could not attach payment method %s to customer %s: %v",
			payment.PaymentMethodRef, customerRef, err)
		return
	}

	uc.logger.Info("ConfirmPayment: saved payment method %s for user id=%d", payment.PaymentMethodRef, user.ID)
}

// sendConfirmation письмо владельцу записи. Ошибки только логируются.
func (uc *UseCase) sendConfirmation(ctx context.Context, appointment *domain.Appointment, user *domain.User, fallbackEmail string) {
	to := fallbackEmail
	if user != nil && user.Email != "" {
		to = user.Email
	}
	if to == "" {
		uc.logger.Warn("ConfirmPayment: no email for appointment id=%d, skipping confirmation", appointment.ID)
		return
	}

	subject := fmt.Sprintf("Booking confirmed: %s", appointment.ServiceTitle)
	body := fmt.Sprintf("Your booking for %s on %s is confirmed.",
		appointment.ServiceTitle, appointment.StartTime.UTC().Format(confirmTimeFormat))

	if err := uc.mailer.Send(ctx, to, subject, body); err != nil {
		uc.logger.Warn("ConfirmPayment: failed to send confirmation for appointment id=%d: %v", appointment.ID, err)
	}
}
