package payments

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// EventCheckoutCompleted тип события завершения hosted checkout
const EventCheckoutCompleted = "checkout.session.completed"

// Event разобранное событие провайдера
type Event struct {
	ID                string
	Type              string
	CheckoutCompleted *CheckoutCompleted // заполнено только для checkout.session.completed
}

// CheckoutCompleted данные завершенной checkout-сессии
type CheckoutCompleted struct {
	SessionRef      string
	ClientReference string // ID записи в виде строки, может быть пустым или мусорным
	PaymentRef      string
	CustomerEmail   string
}

// WebhookVerifier проверяет подпись Stripe-Signature и разбирает событие
type WebhookVerifier struct {
	secret        string
	tolerance     time.Duration
	allowUnsigned bool
}

// NewWebhookVerifier создает verifier. allowUnsigned разрешает прием событий без подписи,
// когда секрет не задан (только для локальной разработки).
func NewWebhookVerifier(secret string, tolerance time.Duration, allowUnsigned bool) *WebhookVerifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &WebhookVerifier{
		secret:        strings.TrimSpace(secret),
		tolerance:     tolerance,
		allowUnsigned: allowUnsigned,
	}
}

// Parse проверяет подпись и возвращает событие
func (v *WebhookVerifier) Parse(payload []byte, signatureHeader string) (*Event, error) {
	var evt stripe.Event

	if v.secret == "" {
		if !v.allowUnsigned {
			return nil, ErrWebhookNotConfigured
		}
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	} else {
		if strings.TrimSpace(signatureHeader) == "" {
			return nil, fmt.Errorf("%w: missing Stripe-Signature header", ErrInvalidSignature)
		}
		var err error
		evt, err = webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
			Tolerance:                v.tolerance,
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}
	if evt.Data == nil {
		return nil, fmt.Errorf("%w: event without data", ErrInvalidPayload)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("%w: checkout session: %v", ErrInvalidPayload, err)
	}

	completed := &CheckoutCompleted{
		SessionRef:      session.ID,
		ClientReference: strings.TrimSpace(session.ClientReferenceID),
		CustomerEmail:   session.CustomerEmail,
	}
	if session.PaymentIntent != nil {
		completed.PaymentRef = session.PaymentIntent.ID
	}
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		completed.CustomerEmail = session.CustomerDetails.Email
	}
	out.CheckoutCompleted = completed

	return out, nil
}
