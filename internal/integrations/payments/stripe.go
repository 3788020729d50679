package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// StripeOptions параметры checkout
type StripeOptions struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

// StripeClient клиент Stripe; каждый вызов несет context запроса
type StripeClient struct {
	api  *client.API
	opts StripeOptions
	log  Logger
}

// NewStripeClient создает клиент Stripe с собственным API-ключом (без глобального stripe.Key)
func NewStripeClient(secretKey string, opts StripeOptions, log Logger) *StripeClient {
	if opts.Currency == "" {
		opts.Currency = string(stripe.CurrencyUSD)
	}
	return &StripeClient{
		api:  client.New(secretKey, nil),
		opts: opts,
		log:  log,
	}
}

func (c *StripeClient) IsAvailable() bool { return true }

// CreateCheckoutSession создает hosted checkout на сумму депозита.
// client_reference_id = ID записи, по нему webhook находит запись.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	appointmentID := strconv.FormatInt(req.AppointmentID, 10)

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(c.opts.SuccessURL),
		CancelURL:         stripe.String(c.opts.CancelURL),
		ClientReferenceID: stripe.String(appointmentID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(c.opts.Currency),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Deposit: " + req.Title),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			SetupFutureUsage: stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession)),
			Metadata:         map[string]string{"appointment_id": appointmentID},
		},
		Metadata: map[string]string{"appointment_id": appointmentID},
	}
	if strings.TrimSpace(req.CustomerEmail) != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String("checkout-" + appointmentID)

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, wrapStripeError("CreateCheckoutSession", err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ChargeSavedMethod синхронно списывает сумму с сохраненной карты (off-session)
func (c *StripeClient) ChargeSavedMethod(ctx context.Context, req ChargeRequest) (*Payment, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.AmountCents),
		Currency:      stripe.String(c.opts.Currency),
		Customer:      stripe.String(req.CustomerRef),
		PaymentMethod: stripe.String(req.PaymentMethodRef),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
	}
	params.AddMetadata("appointment_id", strconv.FormatInt(req.AppointmentID, 10))
	params.Context = ctx
	params.IdempotencyKey = stripe.String(fmt.Sprintf("charge-%d-%s", req.AppointmentID, req.PaymentMethodRef))

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, wrapStripeError("ChargeSavedMethod", err)
	}

	return toPayment(pi), nil
}

// GetPayment получает платеж вместе с последним charge (для суммы возвратов)
func (c *StripeClient) GetPayment(ctx context.Context, paymentRef string) (*Payment, error) {
	params := &stripe.PaymentIntentParams{}
	params.AddExpand("latest_charge")
	params.Context = ctx

	pi, err := c.api.PaymentIntents.Get(paymentRef, params)
	if err != nil {
		return nil, wrapStripeError("GetPayment", err)
	}

	return toPayment(pi), nil
}

// Refund создает возврат по платежу
func (c *StripeClient) Refund(ctx context.Context, paymentRef string, amountCents int64, idempotencyKey string) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentRef),
		Amount:        stripe.Int64(amountCents),
	}
	params.Context = ctx
	if idempotencyKey != "" {
		params.IdempotencyKey = stripe.String(idempotencyKey)
	}

	refund, err := c.api.Refunds.New(params)
	if err != nil {
		return nil, wrapStripeError("Refund", err)
	}

	return &Refund{ID: refund.ID, AmountCents: refund.Amount, Status: string(refund.Status)}, nil
}

// EnsureCustomer возвращает существующего клиента или создает нового по email
func (c *StripeClient) EnsureCustomer(ctx context.Context, existingRef *string, email string) (string, error) {
	if existingRef != nil && *existingRef != "" {
		return *existingRef, nil
	}

	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx

	cus, err := c.api.Customers.New(params)
	if err != nil {
		return "", wrapStripeError("EnsureCustomer", err)
	}

	c.log.Info("Stripe: created customer %s", cus.ID)
	return cus.ID, nil
}

// AttachPaymentMethod привязывает карту к клиенту и делает её картой по умолчанию
func (c *StripeClient) AttachPaymentMethod(ctx context.Context, customerRef, paymentMethodRef string) error {
	attach := &stripe.PaymentMethodAttachParams{Customer: stripe.String(customerRef)}
	attach.Context = ctx

	if _, err := c.api.PaymentMethods.Attach(paymentMethodRef, attach); err != nil {
		// Карта, сохраненная через setup_future_usage, уже привязана к клиенту
		var stripeErr *stripe.Error
		if !errors.As(err, &stripeErr) || stripeErr.Code != stripe.ErrorCodeResourceAlreadyExists {
			return wrapStripeError("AttachPaymentMethod", err)
		}
	}

	update := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodRef),
		},
	}
	update.Context = ctx

	if _, err := c.api.Customers.Update(customerRef, update); err != nil {
		return wrapStripeError("AttachPaymentMethod", err)
	}

	return nil
}

// ListPaymentMethods список сохраненных карт клиента
func (c *StripeClient) ListPaymentMethods(ctx context.Context, customerRef string) ([]Card, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerRef),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	params.Context = ctx

	cards := make([]Card, 0)
	iter := c.api.PaymentMethods.List(params)
	for iter.Next() {
		pm := iter.PaymentMethod()
		card := Card{ID: pm.ID}
		if pm.Card != nil {
			card.Brand = string(pm.Card.Brand)
			card.Last4 = pm.Card.Last4
			card.ExpMonth = pm.Card.ExpMonth
			card.ExpYear = pm.Card.ExpYear
		}
		cards = append(cards, card)
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStripeError("ListPaymentMethods", err)
	}

	return cards, nil
}

// DetachPaymentMethod отвязывает карту от клиента
func (c *StripeClient) DetachPaymentMethod(ctx context.Context, paymentMethodRef string) error {
	params := &stripe.PaymentMethodDetachParams{}
	params.Context = ctx

	if _, err := c.api.PaymentMethods.Detach(paymentMethodRef, params); err != nil {
		return wrapStripeError("DetachPaymentMethod", err)
	}
	return nil
}

func toPayment(pi *stripe.PaymentIntent) *Payment {
	p := &Payment{
		ID:            pi.ID,
		Status:        string(pi.Status),
		Succeeded:     pi.Status == stripe.PaymentIntentStatusSucceeded,
		AmountCents:   pi.Amount,
		CapturedCents: pi.AmountReceived,
	}
	if pi.PaymentMethod != nil {
		p.PaymentMethodRef = pi.PaymentMethod.ID
	}
	if pi.Customer != nil {
		p.CustomerRef = pi.Customer.ID
	}
	if pi.LatestCharge != nil {
		p.RefundedCents = pi.LatestCharge.AmountRefunded
	}
	return p
}

// wrapStripeError отделяет отказ по карте от прочих ошибок провайдера
func wrapStripeError(method string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
		return fmt.Errorf("%w: %s - %s: %s", ErrPaymentFailed, method, stripeErr.Code, stripeErr.Msg)
	}
	return fmt.Errorf("%w: %s - %v", ErrProvider, method, err)
}
