package list_availability

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
)

const (
	msgInvalidFrom   = "некорректный параметр from, ожидается RFC 3339"
	msgInvalidTo     = "некорректный параметр to, ожидается RFC 3339"
	msgInvalidPeriod = "некорректный период"
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

// Handle GET /api/v1/availability?from={from}&to={to}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := &models.ListWindowsRequest{}

	var ok bool
	if req.From, ok = parseTime(r, "from"); !ok {
		handlers.RespondBadRequest(w, msgInvalidFrom)
		return
	}
	if req.To, ok = parseTime(r, "to"); !ok {
		handlers.RespondBadRequest(w, msgInvalidTo)
		return
	}

	list, err := h.service.List(r.Context(), req)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidTimeRange) || errors.Is(err, availability.ErrInvalidInput) {
			h.logger.Warn("GET /availability - Invalid period: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}
		h.logger.Error("GET /availability - Failed to list windows: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /availability - Retrieved %d windows", len(list.Windows))
	handlers.RespondJSON(w, http.StatusOK, list)
}

func parseTime(r *http.Request, name string) (*time.Time, bool) {
	raw := handlers.QueryString(r, name)
	if raw == nil {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
