package payments

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

const testSecret = "whsec_test_secret"

func checkoutEvent(t *testing.T, clientRef string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":          "evt_test_1",
		"object":      "event",
		"type":        EventCheckoutCompleted,
		"created":     time.Now().Unix(),
		"api_version": stripe.APIVersion,
		"data": map[string]any{
			"object": map[string]any{
				"id":                  "cs_test_1",
				"object":              "checkout.session",
				"client_reference_id": clientRef,
				"payment_intent":      "pi_test_1",
				"customer_details":    map[string]any{"email": "jane@example.com"},
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func sign(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	}).Header
}

func TestParse_SignedCheckoutCompleted(t *testing.T) {
	v := NewWebhookVerifier(testSecret, 5*time.Minute, false)
	payload := checkoutEvent(t, "42")

	evt, err := v.Parse(payload, sign(payload, testSecret))
	require.NoError(t, err)

	assert.Equal(t, "evt_test_1", evt.ID)
	require.NotNil(t, evt.CheckoutCompleted)
	assert.Equal(t, "42", evt.CheckoutCompleted.ClientReference)
	assert.Equal(t, "pi_test_1", evt.CheckoutCompleted.PaymentRef)
	assert.Equal(t, "cs_test_1", evt.CheckoutCompleted.SessionRef)
	assert.Equal(t, "jane@example.com", evt.CheckoutCompleted.CustomerEmail)
}

func TestParse_InvalidSignature(t *testing.T) {
	v := NewWebhookVerifier(testSecret, 5*time.Minute, false)
	payload := checkoutEvent(t, "42")

	_, err := v.Parse(payload, sign(payload, "whsec_other"))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = v.Parse(payload, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParse_UnsignedMode(t *testing.T) {
	payload := checkoutEvent(t, "7")

	_, err := NewWebhookVerifier("", 0, false).Parse(payload, "")
	assert.ErrorIs(t, err, ErrWebhookNotConfigured)

	evt, err := NewWebhookVerifier("", 0, true).Parse(payload, "")
	require.NoError(t, err)
	require.NotNil(t, evt.CheckoutCompleted)
	assert.Equal(t, "7", evt.CheckoutCompleted.ClientReference)

	_, err = NewWebhookVerifier("", 0, true).Parse([]byte("{not json"), "")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestParse_OtherEventTypes(t *testing.T) {
	payload, err := json.Marshal(map[string]any{
		"id":          "evt_test_2",
		"object":      "event",
		"type":        "payment_intent.created",
		"api_version": stripe.APIVersion,
		"data":        map[string]any{"object": map[string]any{"id": "pi_1", "object": "payment_intent"}},
	})
	require.NoError(t, err)

	evt, err := NewWebhookVerifier(testSecret, 0, false).Parse(payload, sign(payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.created", evt.Type)
	assert.Nil(t, evt.CheckoutCompleted)
}
