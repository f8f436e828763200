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

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	dbCart, err := r.q.GetCartByOwner(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCartByOwner: %w", mapError(err, "cart of "+ownerID))
	}

	return loadCart(ctx, r.q, dbCart)
}

func (r *cartRepository) GetCartByID(ctx context.Context, cartID uuid.UUID) (domain.Cart, error) {
	if cartID == uuid.Nil {
		return domain.Cart{}, fmt.Errorf("cartID is empty")
	}

	dbCart, err := r.q.GetCartByID(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCartByID: %w", mapError(err, "cart "+cartID.String()))
	}

	return loadCart(ctx, r.q, dbCart)
}

// AddItem creates the owner's cart on first use. Adding a product that is
// already in the cart fails with domain.ErrConflict.
func (r *cartRepository) AddItem(ctx context.Context, ownerID string, item domain.CartItem) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}
	if item.Quantity <= 0 {
		return domain.Cart{}, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Cart, error) {
		dbCart, err := q.UpsertCart(ctx, db.UpsertCartParams{
			ID:               uuid.New(),
			OwnerID:          ownerID,
			SubTotalCurrency: item.Price.Currency.String(),
		})
		if err != nil {
			return domain.Cart{}, fmt.Errorf("q.UpsertCart: %w", err)
		}

		rowsAffected, err := q.AddCartItem(ctx, db.AddCartItemParams{
			CartID:        dbCart.ID,
			ProductID:     item.ProductID,
			Quantity:      int32(item.Quantity),
			PriceAmount:   item.Price.Amount,
			PriceCurrency: item.Price.Currency.String(),
		})
		if err != nil {
			return domain.Cart{}, fmt.Errorf("q.AddCartItem: %w", err)
		}
		if rowsAffected == 0 {
			return domain.Cart{}, fmt.Errorf("%w: product %s is already in the cart", domain.ErrConflict, item.ProductID)
		}

		if dbCart.SubTotalAmount, err = q.RecalculateSubTotal(ctx, dbCart.ID); err != nil {
			return domain.Cart{}, fmt.Errorf("q.RecalculateSubTotal: %w", err)
		}

		return loadCart(ctx, q, dbCart)
	})
}

func (r *cartRepository) DeleteItem(ctx context.Context, ownerID string, productID uuid.UUID) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (bool, error) {
		dbCart, err := q.GetCartByOwner(ctx, ownerID)
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("q.GetCartByOwner: %w", err)
		}

		rowsAffected, err := q.DeleteCartItem(ctx, db.DeleteCartItemParams{
			CartID:    dbCart.ID,
			ProductID: productID,
		})
		if err != nil {
			return false, fmt.Errorf("q.DeleteCartItem: %w", err)
		}
		if rowsAffected == 0 {
			return false, nil
		}

		if _, err := q.RecalculateSubTotal(ctx, dbCart.ID); err != nil {
			return false, fmt.Errorf("q.RecalculateSubTotal: %w", err)
		}

		return true, nil
	})
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}
	if quantity <= 0 {
		return false, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (bool, error) {
		dbCart, err := q.GetCartByOwner(ctx, ownerID)
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("q.GetCartByOwner: %w", err)
		}

		rowsAffected, err := q.UpdateCartItemQuantity(ctx, db.UpdateCartItemQuantityParams{
			CartID:    dbCart.ID,
			ProductID: productID,
			Quantity:  int32(quantity),
		})
		if err != nil {
			return false, fmt.Errorf("q.UpdateCartItemQuantity: %w", err)
		}
		if rowsAffected == 0 {
			return false, nil
		}

		if _, err := q.RecalculateSubTotal(ctx, dbCart.ID); err != nil {
			return false, fmt.Errorf("q.RecalculateSubTotal: %w", err)
		}

		return true, nil
	})
}

func (r *cartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	_, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		if err := q.ClearCartItems(ctx, cartID); err != nil {
			return struct{}{}, fmt.Errorf("q.ClearCartItems: %w", err)
		}

		if _, err := q.RecalculateSubTotal(ctx, cartID); err != nil {
			return struct{}{}, fmt.Errorf("q.RecalculateSubTotal: %w", mapError(err, "cart "+cartID.String()))
		}

		return struct{}{}, nil
	})
	return err
}

func loadCart(ctx context.Context, q *db.Queries, dbCart db.Cart) (domain.Cart, error) {
	dbItems, err := q.GetCartItems(ctx, dbCart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCartItems: %w", err)
	}

	items, err := mapCartItemsToDomain(dbItems)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapCartItemsToDomain: %w", err)
	}

	subTotalCurrency, err := currency.ParseISO(dbCart.SubTotalCurrency)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("currency[%s] is not valid: %w", dbCart.SubTotalCurrency, err)
	}

	return domain.Cart{
		ID:        dbCart.ID,
		OwnerID:   dbCart.OwnerID,
		Items:     items,
		SubTotal:  domain.Money{Amount: dbCart.SubTotalAmount, Currency: subTotalCurrency},
		UpdatedAt: dbCart.UpdatedAt,
	}, nil
}

func mapCartItemToDomain(row db.CartItem) (domain.CartItem, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.CartItem{
		ProductID: row.ProductID,
		Quantity:  int(row.Quantity),
		Price:     domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		CreatedAt: row.CreatedAt,
	}, nil
}

func mapCartItemsToDomain(rows []db.CartItem) ([]domain.CartItem, error) {
	var items []domain.CartItem

	for _, row := range rows {
		item, err := mapCartItemToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartItemToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
