package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/middleware"
	"github.com/nikolayk812/checkout-demo/internal/payment"
	"github.com/nikolayk812/checkout-demo/internal/service"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput) (domain.Order, error)
	CreatePaymentSession(ctx context.Context, orderID uuid.UUID, actor domain.Actor) (string, error)
	HandlePaymentConfirmed(ctx context.Context, confirmation domain.PaymentConfirmation) (service.WebhookResult, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, actor domain.Actor) (domain.Order, error)
	ListOrders(ctx context.Context, customerID string) ([]domain.Order, error)
}

type WebhookParser interface {
	Parse(payload []byte, signature string) (domain.PaymentConfirmation, bool, error)
}

type OrderHandler struct {
	orders  OrderService
	webhook WebhookParser
	log     *slog.Logger
}

func NewOrderHandler(orders OrderService, webhook WebhookParser, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		webhook: webhook,
		log:     log,
	}
}

type createOrderRequest struct {
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	PaymentMethod string `json:"paymentMethod"`
	CouponCode    string `json:"couponCode,omitempty"`
}

type orderIDRequest struct {
	OrderID uuid.UUID `json:"orderId"`
}

type orderEnvelope struct {
	Message string        `json:"message"`
	Order   orderResponse `json:"order"`
}

type paymentResponse struct {
	URL string `json:"url"`
}

type webhookResponse struct {
	Received  bool       `json:"received"`
	Ignored   bool       `json:"ignored,omitempty"`
	OrderID   *uuid.UUID `json:"orderId,omitempty"`
	Duplicate bool       `json:"duplicate"`
	Refunded  bool       `json:"refunded,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// CreateOrder handles POST /orders/create
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r, h.log)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), service.CreateOrderInput{
		CustomerID:    actor.ID,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentMethod: method,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	WriteJSON(w, http.StatusCreated, orderEnvelope{Message: "Order created successfully", Order: mapOrder(order)}, h.log)
}

// CreatePayment handles POST /orders/payment
func (h *OrderHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r, h.log)
	if !ok {
		return
	}

	var req orderIDRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	url, err := h.orders.CreatePaymentSession(r.Context(), req.OrderID, actor)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, paymentResponse{URL: url}, h.log)
}

// Webhook handles POST /orders/webhook. Provider retries are expected, so
// duplicates are acknowledged with 200.
func (h *OrderHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeServiceError(w, r, fmt.Errorf("%w: webhook body: %v", domain.ErrInvalidInput, err), h.log)
		return
	}

	confirmation, ok, err := h.webhook.Parse(payload, r.Header.Get(payment.SignatureHeader))
	if errors.Is(err, payment.ErrInvalidSignature) {
		h.log.WarnContext(r.Context(), "webhook signature rejected", "error", err)
		WriteError(w, http.StatusUnauthorized, "invalid signature", h.log)
		return
	}
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	if !ok {
		h.log.InfoContext(r.Context(), "webhook event ignored", "event_id", confirmation.EventID, "event_type", confirmation.EventType)
		WriteJSON(w, http.StatusOK, webhookResponse{Received: true, Ignored: true}, h.log)
		return
	}

	result, err := h.orders.HandlePaymentConfirmed(r.Context(), confirmation)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, webhookResponse{
		Received:  true,
		OrderID:   &result.OrderID,
		Duplicate: result.Duplicate,
		Refunded:  result.Refunded,
	}, h.log)
}

// PaymentSuccess handles GET /orders/success
func (h *OrderHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, messageResponse{Message: "Payment success"}, h.log)
}

// PaymentCancelled handles GET /orders/cancel
func (h *OrderHandler) PaymentCancelled(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, messageResponse{Message: "Payment cancelled"}, h.log)
}

// CancelOrder handles PATCH /orders/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r, h.log)
	if !ok {
		return
	}

	var req orderIDRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	order, err := h.orders.CancelOrder(r.Context(), req.OrderID, actor)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, orderEnvelope{Message: "Order cancelled successfully", Order: mapOrder(order)}, h.log)
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r, h.log)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), actor.ID)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, mapOrder(o))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"orders": resp}, h.log)
}

func actorOrUnauthorized(w http.ResponseWriter, r *http.Request, log *slog.Logger) (domain.Actor, bool) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "user identity required", log)
	}
	return actor, ok
}
