package list_payment_methods

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/paymentmethods"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgUserNotFound  = "пользователь не найден"
	msgProviderError = "ошибка платежного провайдера"
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

// Handle GET /api/v1/payments/methods
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	list, err := h.service.List(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, paymentmethods.ErrUserNotFound):
			handlers.RespondNotFound(w, msgUserNotFound)
		case errors.Is(err, paymentmethods.ErrProvider):
			h.logger.Error("GET /payments/methods - Provider error: user_id=%d, error=%v", userID, err)
			handlers.RespondBadGateway(w, msgProviderError)
		default:
			h.logger.Error("GET /payments/methods - Failed to list methods: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /payments/methods - Retrieved %d methods for user_id=%d", len(list.Methods), userID)
	handlers.RespondJSON(w, http.StatusOK, list)
}
