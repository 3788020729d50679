package complete_appointments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	completeAppointments "github.com/m04kA/SMC-AppointmentService/internal/usecase/complete_appointments"
)

const msgInvalidLimit = "некорректный параметр limit"

// CompleteResponse HTTP response model
type CompleteResponse struct {
	Completed []int64 `json:"completed"`
	Skipped   []int64 `json:"skipped"`
}

type Handler struct {
	useCase CompleteAppointmentsUseCase
	logger  Logger
}

func NewHandler(useCase CompleteAppointmentsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/appointments/complete?limit={limit}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := &completeAppointments.Request{}
	if raw := handlers.QueryString(r, "limit"); raw != nil {
		limit, err := strconv.Atoi(*raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidLimit)
			return
		}
		req.Limit = limit
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		if errors.Is(err, completeAppointments.ErrInvalidInput) {
			handlers.RespondBadRequest(w, msgInvalidLimit)
			return
		}
		h.logger.Error("POST /admin/appointments/complete - Failed to complete appointments: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	resp := CompleteResponse{Completed: result.Completed, Skipped: result.Skipped}
	if resp.Completed == nil {
		resp.Completed = []int64{}
	}
	if resp.Skipped == nil {
		resp.Skipped = []int64{}
	}

	h.logger.Info("POST /admin/appointments/complete - Completed %d appointments, skipped %d", len(resp.Completed), len(resp.Skipped))
	handlers.RespondJSON(w, http.StatusOK, resp)
}
