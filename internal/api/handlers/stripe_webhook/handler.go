package stripe_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
	confirmPayment "github.com/m04kA/SMC-AppointmentService/internal/usecase/confirm_payment"
)

const (
	// HeaderSignature заголовок с подписью Stripe
	HeaderSignature = "Stripe-Signature"

	providerName = "stripe"

	msgInvalidPayload       = "некорректное тело события"
	msgInvalidSignature     = "некорректная подпись"
	msgWebhookNotConfigured = "прием событий не настроен"
)

type receivedResponse struct {
	Received bool `json:"received"`
}

type Handler struct {
	parser     EventParser
	reconciler PaymentReconciler
	logger     Logger
}

func NewHandler(parser EventParser, reconciler PaymentReconciler, logger Logger) *Handler {
	return &Handler{
		parser:     parser,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Handle POST /api/v1/webhooks/stripe
// Ошибка хранилища отдает 500, чтобы провайдер повторил доставку; остальные события подтверждаются
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, handlers.MaxBodyBytes))
	if err != nil {
		h.logger.Warn("POST /webhooks/stripe - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	event, err := h.parser.Parse(payload, r.Header.Get(HeaderSignature))
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrWebhookNotConfigured):
			h.logger.Error("POST /webhooks/stripe - Webhook secret is not configured, event rejected")
			handlers.RespondServiceUnavailable(w, msgWebhookNotConfigured)
		case errors.Is(err, payments.ErrInvalidSignature):
			h.logger.Warn("POST /webhooks/stripe - Invalid signature: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSignature)
		default:
			h.logger.Warn("POST /webhooks/stripe - Invalid payload: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPayload)
		}
		return
	}

	if event.Type != payments.EventCheckoutCompleted || event.CheckoutCompleted == nil {
		h.logger.Info("POST /webhooks/stripe - Event skipped: id=%s, type=%s", event.ID, event.Type)
		handlers.RespondJSON(w, http.StatusOK, receivedResponse{Received: true})
		return
	}

	session := event.CheckoutCompleted
	result, err := h.reconciler.OnPaymentCompleted(r.Context(), confirmPayment.Completion{
		Provider:         providerName,
		ProviderEventID:  event.ID,
		EventType:        event.Type,
		ClientReference:  session.ClientReference,
		PaymentReference: session.PaymentRef,
		SessionReference: session.SessionRef,
		CustomerEmail:    session.CustomerEmail,
	})
	if err != nil {
		h.logger.Error("POST /webhooks/stripe - Failed to reconcile payment: event=%s, error=%v", event.ID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /webhooks/stripe - Event processed: id=%s, outcome=%s, appointment_id=%d",
		event.ID, result.Outcome, result.AppointmentID)
	handlers.RespondJSON(w, http.StatusOK, receivedResponse{Received: true})
}
