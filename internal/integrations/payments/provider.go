package payments

import "context"

// Provider возможности платежного провайдера.
// IsAvailable фиксируется при создании и не меняется за время жизни процесса.
type Provider interface {
	IsAvailable() bool
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ChargeSavedMethod(ctx context.Context, req ChargeRequest) (*Payment, error)
	GetPayment(ctx context.Context, paymentRef string) (*Payment, error)
	Refund(ctx context.Context, paymentRef string, amountCents int64, idempotencyKey string) (*Refund, error)
	EnsureCustomer(ctx context.Context, existingRef *string, email string) (string, error)
	AttachPaymentMethod(ctx context.Context, customerRef, paymentMethodRef string) error
	ListPaymentMethods(ctx context.Context, customerRef string) ([]Card, error)
	DetachPaymentMethod(ctx context.Context, paymentMethodRef string) error
}

// Disabled провайдер-заглушка, когда секретный ключ не задан
type Disabled struct{}

func NewDisabled() *Disabled {
	return &Disabled{}
}

func (d *Disabled) IsAvailable() bool { return false }

func (d *Disabled) CreateCheckoutSession(context.Context, CheckoutRequest) (*CheckoutSession, error) {
	return nil, ErrNotConfigured
}

func (d *Disabled) ChargeSavedMethod(context.Context, ChargeRequest) (*Payment, error) {
	return nil, ErrNotConfigured
}

func (d *Disabled) GetPayment(context.Context, string) (*Payment, error) {
	return nil, ErrNotConfigured
}

func (d *Disabled) Refund(context.Context, string, int64, string) (*Refund, error) {
	return nil, ErrNotConfigured
}

func (d *Disabled) EnsureCustomer(context.Context, *string, string) (string, error) {
	return "", ErrNotConfigured
}

func (d *Disabled) AttachPaymentMethod(context.Context, string, string) error {
	return ErrNotConfigured
}

func (d *Disabled) ListPaymentMethods(context.Context, string) ([]Card, error) {
	return nil, ErrNotConfigured
}

func (d *Disabled) DetachPaymentMethod(context.Context, string) error {
	return ErrNotConfigured
}
