package stripe_webhook

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
	confirmPayment "github.com/m04kA/SMC-AppointmentService/internal/usecase/confirm_payment"
)

type EventParser interface {
	Parse(payload []byte, signatureHeader string) (*payments.Event, error)
}

type PaymentReconciler interface {
	OnPaymentCompleted(ctx context.Context, c confirmPayment.Completion) (*confirmPayment.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
