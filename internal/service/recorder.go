package service

import "github.com/nikolayk812/checkout-demo/internal/domain"

// Recorder receives checkout outcomes for metrics.
type Recorder interface {
	OrderStatusChanged(status domain.OrderStatus, method domain.PaymentMethod)
	WebhookDuplicate()
	GatewayFailure(operation string)
}

type nopRecorder struct{}

func (nopRecorder) OrderStatusChanged(domain.OrderStatus, domain.PaymentMethod) {}
func (nopRecorder) WebhookDuplicate()                                          {}
func (nopRecorder) GatewayFailure(string)                                      {}
