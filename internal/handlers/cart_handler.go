package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
)

type CartService interface {
	Get(ctx context.Context, customerID string) (domain.Cart, error)
	AddLine(ctx context.Context, customerID string, productID uuid.UUID, quantity int) (domain.Cart, error)
	RemoveLine(ctx context.Context, customerID string, productID uuid.UUID) (domain.Cart, error)
	UpdateQuantity(ctx context.Context, customerID string, productID uuid.UUID, quantity int) (domain.Cart, error)
}

type CartHandler struct {
	carts CartService
	log   *slog.Logger
}

func NewCartHandler(carts CartService, log *slog.Logger) *CartHandler {
	return &CartHandler{
		carts: carts,
		log:   log,
	}
}

type cartLineRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type cartEnvelope struct {
	Message string       `json:"message,omitempty"`
	Cart    cartResponse `json:"cart"`
}

// AddLine handles POST /carts/add
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Product added to cart successfully", func(ctx context.Context, customerID string, req cartLineRequest) (domain.Cart, error) {
		return h.carts.AddLine(ctx, customerID, req.ProductID, req.Quantity)
	})
}

// RemoveLine handles PATCH /carts/remove
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Product removed from cart successfully", func(ctx context.Context, customerID string, req cartLineRequest) (domain.Cart, error) {
		return h.carts.RemoveLine(ctx, customerID, req.ProductID)
	})
}

// UpdateQuantity handles PATCH /carts/update
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Quantity updated successfully", func(ctx context.Context, customerID string, req cartLineRequest) (domain.Cart, error) {
		return h.carts.UpdateQuantity(ctx, customerID, req.ProductID, req.Quantity)
	})
}

// GetCart handles GET /carts
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r, h.log)
	if !ok {
		return
	}

	cart, err := h.carts.Get(r.Context(), actor.ID)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, cartEnvelope{Cart: mapCart(cart)}, h.log)
}

func (h *CartHandler) mutate(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	fn func(ctx context.Context, customerID string, req cartLineRequest) (domain.Cart, error),
) {
	actor, ok := actorOrUnauthorized(w, r, h.log)
	if !ok {
		return
	}

	var req cartLineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	if req.ProductID == uuid.Nil {
		WriteError(w, http.StatusBadRequest, "productId is required", h.log)
		return
	}

	cart, err := fn(r.Context(), actor.ID, req)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, cartEnvelope{Message: message, Cart: mapCart(cart)}, h.log)
}
