package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
)

type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)
	GetCartByID(ctx context.Context, cartID uuid.UUID) (domain.Cart, error)
	AddItem(ctx context.Context, ownerID string, item domain.CartItem) (domain.Cart, error)
	DeleteItem(ctx context.Context, ownerID string, productID uuid.UUID) (bool, error)
	UpdateItemQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (bool, error)
	Clear(ctx context.Context, cartID uuid.UUID) error
}
