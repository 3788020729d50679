package stripe_webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
	confirmPayment "github.com/m04kA/SMC-AppointmentService/internal/usecase/confirm_payment"
)

const testSecret = "whsec_handler_secret"

type mockReconciler struct{ mock.Mock }

func (m *mockReconciler) OnPaymentCompleted(ctx context.Context, c confirmPayment.Completion) (*confirmPayment.Result, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*confirmPayment.Result), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func eventPayload(t *testing.T, eventType string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":          "evt_42",
		"object":      "event",
		"type":        eventType,
		"created":     time.Now().Unix(),
		"api_version": stripe.APIVersion,
		"data": map[string]any{
			"object": map[string]any{
				"id":                  "cs_42",
				"object":              "checkout.session",
				"client_reference_id": "17",
				"payment_intent":      "pi_42",
				"customer_details":    map[string]any{"email": "jane@example.com"},
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func post(h *Handler, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set(HeaderSignature, signature)
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func signed(payload []byte) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testSecret,
		Timestamp: time.Now(),
	}).Header
}

func TestHandle_CheckoutCompleted(t *testing.T) {
	rec := new(mockReconciler)
	rec.On("OnPaymentCompleted", mock.Anything, confirmPayment.Completion{
		Provider:         "stripe",
		ProviderEventID:  "evt_42",
		EventType:        payments.EventCheckoutCompleted,
		ClientReference:  "17",
		PaymentReference: "pi_42",
		SessionReference: "cs_42",
		CustomerEmail:    "jane@example.com",
	}).Return(&confirmPayment.Result{Outcome: confirmPayment.OutcomeConfirmed, AppointmentID: 17}, nil)

	h := NewHandler(payments.NewWebhookVerifier(testSecret, 0, false), rec, nopLogger{})
	payload := eventPayload(t, payments.EventCheckoutCompleted)

	resp := post(h, payload, signed(payload))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"received":true}`, resp.Body.String())
	rec.AssertExpectations(t)
}

func TestHandle_OtherEventAcknowledged(t *testing.T) {
	rec := new(mockReconciler)
	h := NewHandler(payments.NewWebhookVerifier(testSecret, 0, false), rec, nopLogger{})
	payload := eventPayload(t, "payment_intent.created")

	assert.Equal(t, http.StatusOK, post(h, payload, signed(payload)).Code)
	rec.AssertNotCalled(t, "OnPaymentCompleted", mock.Anything, mock.Anything)
}

func TestHandle_Rejections(t *testing.T) {
	rec := new(mockReconciler)
	payload := eventPayload(t, payments.EventCheckoutCompleted)

	h := NewHandler(payments.NewWebhookVerifier(testSecret, 0, false), rec, nopLogger{})
	assert.Equal(t, http.StatusBadRequest, post(h, payload, "t=1,v1=deadbeef").Code)
	assert.Equal(t, http.StatusBadRequest, post(h, payload, "").Code)

	unconfigured := NewHandler(payments.NewWebhookVerifier("", 0, false), rec, nopLogger{})
	assert.Equal(t, http.StatusServiceUnavailable, post(unconfigured, payload, "").Code)

	rec.AssertNotCalled(t, "OnPaymentCompleted", mock.Anything, mock.Anything)
}

func TestHandle_ReconcileFailureAsksForRetry(t *testing.T) {
	rec := new(mockReconciler)
	rec.On("OnPaymentCompleted", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	h := NewHandler(payments.NewWebhookVerifier("", 0, true), rec, nopLogger{})
	assert.Equal(t, http.StatusInternalServerError, post(h, eventPayload(t, payments.EventCheckoutCompleted), "").Code)
}
