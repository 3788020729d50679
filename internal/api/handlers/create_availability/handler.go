package create_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTimeRange   = "начало окна должно быть раньше окончания"
	msgMissingTime        = "startTime и endTime обязательны"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWindowRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	window, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidTimeRange):
			handlers.RespondBadRequest(w, msgInvalidTimeRange)
		case errors.Is(err, availability.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgMissingTime)
		default:
			h.logger.Error("POST /admin/availability - Failed to create window: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/availability - Window created: window_id=%d", window.ID)
	handlers.RespondJSON(w, http.StatusCreated, window)
}
