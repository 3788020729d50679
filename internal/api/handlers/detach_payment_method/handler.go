package detach_payment_method

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/paymentmethods"
)

const (
	msgMissingUserID       = "отсутствует ID пользователя"
	msgInvalidMethodID     = "некорректный ID карты"
	msgNotFound            = "карта не найдена"
	msgPaymentsUnavailable = "платежи временно недоступны"
	msgProviderError       = "ошибка платежного провайдера"
)

type Handler struct {
	service PaymentMethodService
	logger  Logger
}

func NewHandler(service PaymentMethodService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/payments/methods/{methodId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	methodID := mux.Vars(r)["methodId"]

	if err := h.service.Detach(r.Context(), userID, methodID); err != nil {
		switch {
		case errors.Is(err, paymentmethods.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidMethodID)
		case errors.Is(err, paymentmethods.ErrMethodNotFound), errors.Is(err, paymentmethods.ErrUserNotFound):
			h.logger.Warn("DELETE /payments/methods/{id} - Method not found: user_id=%d, method=%s", userID, methodID)
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, paymentmethods.ErrPaymentsUnavailable):
			handlers.RespondServiceUnavailable(w, msgPaymentsUnavailable)
		case errors.Is(err, paymentmethods.ErrProvider):
			h.logger.Error("DELETE /payments/methods/{id} - Provider error: user_id=%d, error=%v", userID, err)
			handlers.RespondBadGateway(w, msgProviderError)
		default:
			h.logger.Error("DELETE /payments/methods/{id} - Failed to detach method: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /payments/methods/{id} - Method detached: user_id=%d, method=%s", userID, methodID)
	w.WriteHeader(http.StatusNoContent)
}
