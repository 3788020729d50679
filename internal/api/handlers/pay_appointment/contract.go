package pay_appointment

import (
	"context"

	payAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/pay_appointment"
)

type PayAppointmentUseCase interface {
	Execute(ctx context.Context, req *payAppointment.Request) (*payAppointment.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
