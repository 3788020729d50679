package list_payment_methods

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/paymentmethods/models"
)

type PaymentMethodService interface {
	List(ctx context.Context, userID int64) (*models.CardListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
