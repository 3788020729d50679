package list_appointments

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

const (
	msgInvalidFrom      = "некорректный параметр from, ожидается RFC 3339"
	msgInvalidTo        = "некорректный параметр to, ожидается RFC 3339"
	msgInvalidStatus    = "некорректный статус записи"
	msgInvalidTimeRange = "from должен быть раньше to"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/appointments?status={status}&from={from}&to={to}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := &models.ListAppointmentsRequest{
		Status: handlers.QueryString(r, "status"),
	}

	if from := handlers.QueryString(r, "from"); from != nil {
		t, err := time.Parse(time.RFC3339, *from)
		if err != nil {
			h.logger.Warn("GET /admin/appointments - Invalid from: %s", *from)
			handlers.RespondBadRequest(w, msgInvalidFrom)
			return
		}
		req.From = &t
	}
	if to := handlers.QueryString(r, "to"); to != nil {
		t, err := time.Parse(time.RFC3339, *to)
		if err != nil {
			h.logger.Warn("GET /admin/appointments - Invalid to: %s", *to)
			handlers.RespondBadRequest(w, msgInvalidTo)
			return
		}
		req.To = &t
	}

	list, err := h.service.ListAll(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidTimeRange):
			handlers.RespondBadRequest(w, msgInvalidTimeRange)
		case errors.Is(err, appointments.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidStatus)
		default:
			h.logger.Error("GET /admin/appointments - Failed to list appointments: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /admin/appointments - Retrieved %d appointments", len(list.Appointments))
	handlers.RespondJSON(w, http.StatusOK, list)
}
