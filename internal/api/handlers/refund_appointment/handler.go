package refund_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	refundAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/refund_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgNotFound             = "запись не найдена"
	msgAppointmentFinal     = "запись в финальном статусе"
	msgNoPayment            = "по записи нет платежа"
	msgPaymentNotSettled    = "платеж еще не проведен"
	msgRefundExceeds        = "сумма возврата превышает полученную"
	msgPaymentsUnavailable  = "платежи временно недоступны"
	msgProviderError        = "ошибка платежного провайдера"
	msgConcurrentUpdate     = "запись изменилась, повторите запрос"
)

type Handler struct {
	useCase RefundAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase RefundAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/appointments/{appointmentId}/refund
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := handlers.PathID(r, "appointmentId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req RefundRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/appointments/{id}/refund - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(appointmentID))
	if err != nil {
		switch {
		case errors.Is(err, refundAppointment.ErrAppointmentNotFound):
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, refundAppointment.ErrAppointmentFinal):
			handlers.RespondConflict(w, msgAppointmentFinal)
		case errors.Is(err, refundAppointment.ErrNoPayment):
			handlers.RespondConflict(w, msgNoPayment)
		case errors.Is(err, refundAppointment.ErrPaymentNotSettled):
			handlers.RespondConflict(w, msgPaymentNotSettled)
		case errors.Is(err, refundAppointment.ErrRefundExceedsCaptured):
			handlers.RespondBadRequest(w, msgRefundExceeds)
		case errors.Is(err, refundAppointment.ErrConcurrentUpdate):
			handlers.RespondConflict(w, msgConcurrentUpdate)
		case errors.Is(err, refundAppointment.ErrPaymentsUnavailable):
			handlers.RespondServiceUnavailable(w, msgPaymentsUnavailable)
		case errors.Is(err, refundAppointment.ErrProvider):
			h.logger.Error("POST /admin/appointments/{id}/refund - Provider error: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondBadGateway(w, msgProviderError)
		case errors.Is(err, refundAppointment.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())
		default:
			h.logger.Error("POST /admin/appointments/{id}/refund - Failed to refund: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/appointments/{id}/refund - Refunded: appointment_id=%d, amount=%d, full=%v",
		appointmentID, result.RefundAmountCents, result.FullRefund)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
