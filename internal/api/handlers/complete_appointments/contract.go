package complete_appointments

import (
	"context"

	completeAppointments "github.com/m04kA/SMC-AppointmentService/internal/usecase/complete_appointments"
)

type CompleteAppointmentsUseCase interface {
	Execute(ctx context.Context, req *completeAppointments.Request) (*completeAppointments.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
