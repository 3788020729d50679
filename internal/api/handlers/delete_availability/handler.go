package delete_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	deleteAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/delete_availability"
)

const (
	msgInvalidWindowID = "некорректный ID окна"
	msgNotFound        = "окно доступности не найдено"
)

type Handler struct {
	useCase DeleteAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase DeleteAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/admin/availability/{windowId}
// Записи внутри окна отменяются
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	windowID, err := handlers.PathID(r, "windowId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidWindowID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &deleteAvailability.Request{WindowID: windowID})
	if err != nil {
		switch {
		case errors.Is(err, deleteAvailability.ErrWindowNotFound):
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, deleteAvailability.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidWindowID)
		default:
			h.logger.Error("DELETE /admin/availability/{id} - Failed to delete window: window_id=%d, error=%v", windowID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /admin/availability/{id} - Window deleted: window_id=%d, canceled=%d",
		windowID, len(result.CanceledAppointments))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
