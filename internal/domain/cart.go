package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID       uuid.UUID
	OwnerID  string
	Items    []CartItem
	SubTotal Money

	UpdatedAt time.Time
}

type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
	// Price is the product sub price frozen when the line was added.
	Price Money

	CreatedAt time.Time
}

func (i CartItem) Total() Money {
	return i.Price.Mul(i.Quantity)
}

// CalculateSubTotal is the sum of quantity * price over the current lines.
func (c Cart) CalculateSubTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Total().Amount)
	}
	return total
}

func (c Cart) Item(productID uuid.UUID) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
