package payment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/port"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type Config struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
	// Timeout bounds every call to the provider.
	Timeout time.Duration
}

type stripeGateway struct {
	api        *client.API
	successURL string
	cancelURL  string
}

func NewStripeGateway(cfg Config) (port.PaymentGateway, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return NewStripeGatewayWithBackends(cfg, stripe.NewBackends(httpClient))
}

// NewStripeGatewayWithBackends lets callers point the client at another API host.
func NewStripeGatewayWithBackends(cfg Config, backends *stripe.Backends) (port.PaymentGateway, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("secret key is empty")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, fmt.Errorf("success and cancel URLs are required")
	}

	return &stripeGateway{
		api:        client.New(cfg.SecretKey, backends),
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}, nil
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, req domain.CheckoutSessionRequest) (domain.CheckoutSession, error) {
	if len(req.LineItems) == 0 {
		return domain.CheckoutSession{}, fmt.Errorf("%w: checkout session without line items", domain.ErrInvalidInput)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(g.successURL),
		CancelURL:          stripe.String(g.cancelURL),
		LineItems:          mapLineItems(req.LineItems),
	}
	params.Context = ctx

	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}
	for _, discountID := range req.DiscountIDs {
		params.Discounts = append(params.Discounts, &stripe.CheckoutSessionDiscountParams{
			Coupon: stripe.String(discountID),
		})
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return domain.CheckoutSession{}, gatewayError("CheckoutSessions.New", err)
	}

	return domain.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// CreatePercentDiscount creates a single-use percentage coupon on the provider side.
func (g *stripeGateway) CreatePercentDiscount(ctx context.Context, percentOff int) (string, error) {
	if percentOff < domain.CouponMinAmount || percentOff > domain.CouponMaxAmount {
		return "", fmt.Errorf("%w: percent off %d", domain.ErrInvalidInput, percentOff)
	}

	params := &stripe.CouponParams{
		PercentOff: stripe.Float64(float64(percentOff)),
		Duration:   stripe.String(string(stripe.CouponDurationOnce)),
	}
	params.Context = ctx

	coupon, err := g.api.Coupons.New(params)
	if err != nil {
		return "", gatewayError("Coupons.New", err)
	}

	return coupon.ID, nil
}

func (g *stripeGateway) Refund(ctx context.Context, paymentIntentID, reason string) (domain.Refund, error) {
	if paymentIntentID == "" {
		return domain.Refund{}, fmt.Errorf("%w: payment intent is empty", domain.ErrInvalidInput)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	if reason != "" {
		params.Reason = stripe.String(reason)
	}
	params.Context = ctx

	refund, err := g.api.Refunds.New(params)
	if err != nil {
		return domain.Refund{}, gatewayError("Refunds.New", err)
	}

	return domain.Refund{ID: refund.ID, Status: string(refund.Status)}, nil
}

func mapLineItems(items []domain.CheckoutLineItem) []*stripe.CheckoutSessionLineItemParams {
	result := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))

	for _, item := range items {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{item.ImageURL})
		}

		result = append(result, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(item.Currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	return result
}

func gatewayError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrGateway, op, err)
}
