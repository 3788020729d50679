package list_services

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

const msgInvalidIncludeInactive = "некорректный параметр includeInactive"

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/services и GET /api/v1/admin/services?includeInactive=true
// Неактивные услуги видит только администратор
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := &models.ListServicesRequest{}

	if raw := handlers.QueryString(r, "includeInactive"); raw != nil {
		include, err := strconv.ParseBool(*raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidIncludeInactive)
			return
		}
		req.IncludeInactive = include && middleware.IsAdmin(r.Context())
	}

	list, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("GET /services - Failed to list services: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /services - Retrieved %d services", len(list.Services))
	handlers.RespondJSON(w, http.StatusOK, list)
}
