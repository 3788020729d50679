package pay_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	payAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/pay_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "запись не найдена"
	msgForbidden            = "доступ запрещен"
	msgNotPending           = "запись не ожидает оплаты"
	msgNothingToPay         = "у записи нет депозита"
	msgAppointmentStarted   = "запись уже началась"
	msgPaymentsUnavailable  = "оплата временно недоступна"
	msgNoSavedMethod        = "нет сохраненной карты"
	msgPaymentDeclined      = "платеж отклонен"
	msgAmountMismatch       = "сумма платежа не совпала с депозитом"
	msgPaymentInProgress    = "оплата уже выполняется"
	msgProviderError        = "ошибка платежного провайдера"
	msgConcurrentUpdate     = "запись изменилась во время оплаты"
)

type Handler struct {
	useCase PayAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase PayAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/pay
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := handlers.PathID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/pay - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments/{id}/pay - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req PayRequest
	if r.ContentLength != 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("POST /appointments/{id}/pay - Invalid request body: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	result, err := h.useCase.Execute(r.Context(), &payAppointment.Request{
		AppointmentID:    appointmentID,
		UserID:           userID,
		PaymentMethodRef: req.PaymentMethodID,
	})
	if err != nil {
		switch {
		case errors.Is(err, payAppointment.ErrAppointmentNotFound):
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, payAppointment.ErrAccessDenied):
			h.logger.Warn("POST /appointments/{id}/pay - Access denied: appointment_id=%d, user_id=%d", appointmentID, userID)
			handlers.RespondForbidden(w, msgForbidden)
		case errors.Is(err, payAppointment.ErrNotPending):
			handlers.RespondConflict(w, msgNotPending)
		case errors.Is(err, payAppointment.ErrNothingToPay):
			handlers.RespondConflict(w, msgNothingToPay)
		case errors.Is(err, payAppointment.ErrAppointmentStarted):
			handlers.RespondConflict(w, msgAppointmentStarted)
		case errors.Is(err, payAppointment.ErrPaymentInProgress):
			handlers.RespondConflict(w, msgPaymentInProgress)
		case errors.Is(err, payAppointment.ErrConcurrentUpdate):
			handlers.RespondConflict(w, msgConcurrentUpdate)
		case errors.Is(err, payAppointment.ErrNoSavedMethod):
			handlers.RespondConflict(w, msgNoSavedMethod)
		case errors.Is(err, payAppointment.ErrPaymentsUnavailable):
			handlers.RespondServiceUnavailable(w, msgPaymentsUnavailable)
		case errors.Is(err, payAppointment.ErrPaymentDeclined):
			h.logger.Warn("POST /appointments/{id}/pay - Payment declined: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentDeclined)
		case errors.Is(err, payAppointment.ErrAmountMismatch):
			handlers.RespondBadGateway(w, msgAmountMismatch)
		case errors.Is(err, payAppointment.ErrProvider):
			h.logger.Error("POST /appointments/{id}/pay - Provider error: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondBadGateway(w, msgProviderError)
		case errors.Is(err, payAppointment.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())
		default:
			h.logger.Error("POST /appointments/{id}/pay - Failed to pay appointment: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/pay - Appointment paid: appointment_id=%d, payment=%s", appointmentID, result.PaymentReference)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
