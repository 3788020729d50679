package payments

import "errors"

var (
	// ErrNotConfigured возвращается, когда платежный провайдер не настроен
	ErrNotConfigured = errors.New("payments: provider not configured")

	// ErrProvider возвращается при ошибке вызова API провайдера
	ErrProvider = errors.New("payments: provider request failed")

	// ErrPaymentFailed возвращается, когда провайдер отклонил списание (карта отклонена и т.п.)
	ErrPaymentFailed = errors.New("payments: payment declined")

	// ErrWebhookNotConfigured возвращается, когда секрет подписи webhook не задан
	ErrWebhookNotConfigured = errors.New("payments: webhook secret not configured")

	// ErrInvalidSignature возвращается при неверной подписи webhook
	ErrInvalidSignature = errors.New("payments: invalid webhook signature")

	// ErrInvalidPayload возвращается, когда тело webhook не удалось разобрать
	ErrInvalidPayload = errors.New("payments: invalid webhook payload")
)
