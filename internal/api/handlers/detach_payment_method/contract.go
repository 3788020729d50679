package detach_payment_method

import "context"

type PaymentMethodService interface {
	Detach(ctx context.Context, userID int64, methodRef string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
