package payment

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	SignatureHeader = "Stripe-Signature"

	EventCheckoutSessionCompleted = "checkout.session.completed"

	orderIDMetadataKey = "orderId"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// WebhookParser verifies provider signatures and extracts payment confirmations.
type WebhookParser struct {
	secret string
}

// NewWebhookParser returns a parser. With an empty secret signatures are not checked.
func NewWebhookParser(secret string) *WebhookParser {
	return &WebhookParser{secret: secret}
}

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			Metadata      map[string]string `json:"metadata"`
			PaymentIntent string            `json:"payment_intent"`
		} `json:"object"`
	} `json:"data"`
}

// Parse returns ok=false for well-formed events that do not confirm a payment.
// An event without a type is treated as a confirmation.
func (p *WebhookParser) Parse(payload []byte, signature string) (_ domain.PaymentConfirmation, ok bool, _ error) {
	if p.secret != "" {
		if err := webhook.ValidatePayload(payload, signature, p.secret); err != nil {
			return domain.PaymentConfirmation{}, false, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return domain.PaymentConfirmation{}, false, fmt.Errorf("%w: webhook payload: %v", domain.ErrInvalidInput, err)
	}

	if event.Type != "" && event.Type != EventCheckoutSessionCompleted {
		return domain.PaymentConfirmation{EventID: event.ID, EventType: event.Type}, false, nil
	}

	orderID := event.Data.Object.Metadata[orderIDMetadataKey]
	if orderID == "" {
		return domain.PaymentConfirmation{}, false, fmt.Errorf("%w: webhook metadata has no %s", domain.ErrInvalidInput, orderIDMetadataKey)
	}

	return domain.PaymentConfirmation{
		EventID:       event.ID,
		EventType:     event.Type,
		OrderID:       orderID,
		PaymentIntent: event.Data.Object.PaymentIntent,
	}, true, nil
}
