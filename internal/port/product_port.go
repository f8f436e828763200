package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
)

// ProductRepository is the catalog read side plus the stock ledger.
type ProductRepository interface {
	AddProduct(ctx context.Context, product domain.Product) error
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)
	GetProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]domain.Product, error)
	// DecrementStock succeeds only if stock >= quantity.
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error
	IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) error
}
