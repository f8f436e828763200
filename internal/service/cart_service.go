package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/port"
	"golang.org/x/text/currency"
)

// CartService keeps every cart in the checkout currency, so a cart sub total
// never mixes currencies.
type CartService struct {
	store    port.Store
	currency currency.Unit
	log      *slog.Logger
}

func NewCartService(store port.Store, checkoutCurrency currency.Unit, log *slog.Logger) *CartService {
	return &CartService{
		store:    store,
		currency: checkoutCurrency,
		log:      log,
	}
}

func (s *CartService) Get(ctx context.Context, customerID string) (domain.Cart, error) {
	return s.store.Carts().GetCart(ctx, customerID)
}

// AddLine adds a product to the customer's cart at the product's current sub price.
func (s *CartService) AddLine(ctx context.Context, customerID string, productID uuid.UUID, quantity int) (domain.Cart, error) {
	product, err := s.availableProduct(ctx, productID, quantity)
	if err != nil {
		return domain.Cart{}, err
	}

	if product.SubPrice.Currency != s.currency {
		return domain.Cart{}, fmt.Errorf("%w: product %s is priced in %s, carts are kept in %s",
			domain.ErrInvalidInput, product.ID, product.SubPrice.Currency, s.currency)
	}

	cart, err := s.store.Carts().AddItem(ctx, customerID, domain.CartItem{
		ProductID: product.ID,
		Quantity:  quantity,
		Price:     product.SubPrice,
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.AddItem: %w", err)
	}

	s.log.InfoContext(ctx, "cart line added",
		"customer_id", customerID,
		"product_id", productID,
		"quantity", quantity)

	return cart, nil
}

func (s *CartService) RemoveLine(ctx context.Context, customerID string, productID uuid.UUID) (domain.Cart, error) {
	if _, err := s.store.Products().GetProduct(ctx, productID); err != nil {
		return domain.Cart{}, fmt.Errorf("products.GetProduct: %w", err)
	}

	deleted, err := s.store.Carts().DeleteItem(ctx, customerID, productID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.DeleteItem: %w", err)
	}
	if !deleted {
		return domain.Cart{}, fmt.Errorf("%w: product %s is not in the cart", domain.ErrNotFound, productID)
	}

	return s.store.Carts().GetCart(ctx, customerID)
}

// UpdateQuantity overwrites the line quantity. The line price stays frozen.
func (s *CartService) UpdateQuantity(ctx context.Context, customerID string, productID uuid.UUID, quantity int) (domain.Cart, error) {
	cart, err := s.store.Carts().GetCart(ctx, customerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.GetCart: %w", err)
	}

	if _, ok := cart.Item(productID); !ok {
		return domain.Cart{}, fmt.Errorf("%w: product %s is not in the cart", domain.ErrNotFound, productID)
	}

	if _, err := s.availableProduct(ctx, productID, quantity); err != nil {
		return domain.Cart{}, err
	}

	updated, err := s.store.Carts().UpdateItemQuantity(ctx, customerID, productID, quantity)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.UpdateItemQuantity: %w", err)
	}
	if !updated {
		return domain.Cart{}, fmt.Errorf("%w: product %s is not in the cart", domain.ErrNotFound, productID)
	}

	return s.store.Carts().GetCart(ctx, customerID)
}

func (s *CartService) Clear(ctx context.Context, customerID string) error {
	cart, err := s.store.Carts().GetCart(ctx, customerID)
	if err != nil {
		return fmt.Errorf("carts.GetCart: %w", err)
	}

	if err := s.store.Carts().Clear(ctx, cart.ID); err != nil {
		return fmt.Errorf("carts.Clear: %w", err)
	}

	return nil
}

func (s *CartService) availableProduct(ctx context.Context, productID uuid.UUID, quantity int) (domain.Product, error) {
	if quantity <= 0 {
		return domain.Product{}, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	product, err := s.store.Products().GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("products.GetProduct: %w", err)
	}

	if product.Quantity > 0 && quantity > product.Quantity {
		return domain.Product{}, fmt.Errorf("%w: quantity exceeds the listed quantity of %d", domain.ErrInvalidInput, product.Quantity)
	}

	if !product.HasStock(quantity) {
		return domain.Product{}, fmt.Errorf("%w: product %s has %d in stock", domain.ErrInsufficientStock, productID, product.Stock)
	}

	return product, nil
}
