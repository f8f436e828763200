package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkout-demo/internal/db"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/port"
	"golang.org/x/text/currency"
)

type productRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewProductWithTx(tx pgx.Tx) port.ProductRepository {
	return &productRepository{
		q: db.New(tx),
	}
}

func (r *productRepository) AddProduct(ctx context.Context, product domain.Product) error {
	if product.ID == uuid.Nil {
		return fmt.Errorf("product.ID is empty")
	}

	err := r.q.InsertProduct(ctx, db.InsertProductParams{
		ID:             product.ID,
		Name:           product.Name,
		ImageUrl:       product.ImageURL,
		PriceAmount:    product.Price.Amount,
		PriceCurrency:  product.Price.Currency.String(),
		Discount:       product.Discount,
		SubPriceAmount: product.SubPrice.Amount,
		Stock:          int32(product.Stock),
		Quantity:       int32(product.Quantity),
	})
	if err != nil {
		return fmt.Errorf("q.InsertProduct: %w", mapError(err, "product "+product.ID.String()))
	}

	return nil
}

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	dbProduct, err := r.q.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", mapError(err, "product "+productID.String()))
	}

	product, err := mapProductToDomain(dbProduct)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapProductToDomain: %w", err)
	}

	return product, nil
}

// GetProducts returns the products that exist among productIDs, keyed by id.
func (r *productRepository) GetProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]domain.Product, error) {
	dbProducts, err := r.q.GetProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("q.GetProducts: %w", err)
	}

	products := make(map[uuid.UUID]domain.Product, len(dbProducts))
	for _, dbProduct := range dbProducts {
		product, err := mapProductToDomain(dbProduct)
		if err != nil {
			return nil, fmt.Errorf("mapProductToDomain: %w", err)
		}
		products[product.ID] = product
	}

	return products, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	rowsAffected, err := r.q.DecrementStock(ctx, db.DecrementStockParams{
		Quantity: int32(quantity),
		ID:       productID,
	})
	if err != nil {
		return fmt.Errorf("q.DecrementStock: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// tell a missing product apart from a short one
	if _, err := r.q.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
		}
		return fmt.Errorf("q.GetProduct: %w", err)
	}

	return fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, productID)
}

func (r *productRepository) IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	rowsAffected, err := r.q.IncrementStock(ctx, db.IncrementStockParams{
		Quantity: int32(quantity),
		ID:       productID,
	})
	if err != nil {
		return fmt.Errorf("q.IncrementStock: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
	}

	return nil
}

func mapProductToDomain(row db.Product) (domain.Product, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.Product{
		ID:       row.ID,
		Name:     row.Name,
		ImageURL: row.ImageUrl,
		Price:    domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Discount: row.Discount,
		SubPrice: domain.Money{Amount: row.SubPriceAmount, Currency: parsedCurrency},
		Stock:    int(row.Stock),
		Quantity: int(row.Quantity),
	}, nil
}
