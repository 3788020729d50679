package refund_appointment

import (
	"context"

	refundAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/refund_appointment"
)

type RefundAppointmentUseCase interface {
	Execute(ctx context.Context, req *refundAppointment.Request) (*refundAppointment.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
