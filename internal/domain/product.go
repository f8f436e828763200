package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the read model the checkout core needs from the catalog.
type Product struct {
	ID       uuid.UUID
	Name     string
	ImageURL string
	Price    Money
	// Discount is a percentage in [0, 100].
	Discount decimal.Decimal
	// SubPrice is Price after Discount.
	SubPrice Money
	Stock    int
	// Quantity is the quantity in the listing.
	Quantity int
}

func (p Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}
