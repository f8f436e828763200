package port

import (
	"context"

	"github.com/nikolayk812/checkout-demo/internal/domain"
)

// PaymentGateway is the boundary to the hosted payment provider.
// Every failure is reported as domain.ErrGateway.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req domain.CheckoutSessionRequest) (domain.CheckoutSession, error)
	CreatePercentDiscount(ctx context.Context, percentOff int) (string, error)
	Refund(ctx context.Context, paymentIntentID, reason string) (domain.Refund, error)
}

// WebhookGuard deduplicates concurrent deliveries of the same provider event.
type WebhookGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
