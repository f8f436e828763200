package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
)

type moneyResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func mapMoney(m domain.Money) moneyResponse {
	return moneyResponse{
		Amount:   m.Amount.StringFixed(2),
		Currency: m.Currency.String(),
	}
}

type cartItemResponse struct {
	ProductID uuid.UUID     `json:"productId"`
	Quantity  int           `json:"quantity"`
	Price     moneyResponse `json:"price"`
	Total     moneyResponse `json:"total"`
}

type cartResponse struct {
	ID       uuid.UUID          `json:"id"`
	OwnerID  string             `json:"ownerId"`
	Items    []cartItemResponse `json:"items"`
	SubTotal moneyResponse      `json:"subTotal"`
}

func mapCart(c domain.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, cartItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     mapMoney(item.Price),
			Total:     mapMoney(item.Total()),
		})
	}
	return cartResponse{
		ID:       c.ID,
		OwnerID:  c.OwnerID,
		Items:    items,
		SubTotal: mapMoney(c.SubTotal),
	}
}

type orderItemResponse struct {
	ProductID uuid.UUID     `json:"productId"`
	Quantity  int           `json:"quantity"`
	Price     moneyResponse `json:"price"`
}

type orderChangesResponse struct {
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CancelledBy string     `json:"cancelledBy,omitempty"`
	RefundedAt  *time.Time `json:"refundedAt,omitempty"`
	RefundedBy  string     `json:"refundedBy,omitempty"`
}

type orderResponse struct {
	ID            uuid.UUID            `json:"id"`
	CustomerID    string               `json:"customerId"`
	CartID        uuid.UUID            `json:"cartId"`
	CouponID      *uuid.UUID           `json:"couponId,omitempty"`
	Items         []orderItemResponse  `json:"items"`
	TotalPrice    moneyResponse        `json:"totalPrice"`
	Phone         string               `json:"phone"`
	Address       string               `json:"address"`
	PaymentMethod string               `json:"paymentMethod"`
	Status        string               `json:"status"`
	PaymentIntent string               `json:"paymentIntent,omitempty"`
	Changes       orderChangesResponse `json:"orderChanges"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func mapOrder(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     mapMoney(item.Price),
		})
	}
	return orderResponse{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		CartID:        o.CartID,
		CouponID:      o.CouponID,
		Items:         items,
		TotalPrice:    mapMoney(o.TotalPrice),
		Phone:         o.Phone,
		Address:       o.Address,
		PaymentMethod: string(o.PaymentMethod),
		Status:        o.Status.String(),
		PaymentIntent: o.PaymentIntent,
		Changes: orderChangesResponse{
			PaidAt:      o.Changes.PaidAt,
			CancelledAt: o.Changes.CancelledAt,
			CancelledBy: o.Changes.CancelledBy,
			RefundedAt:  o.Changes.RefundedAt,
			RefundedBy:  o.Changes.RefundedBy,
		},
		CreatedAt: o.CreatedAt,
	}
}

type couponResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Amount    int       `json:"amount"`
	FromDate  time.Time `json:"fromDate"`
	ToDate    time.Time `json:"toDate"`
	CreatedBy string    `json:"createdBy"`
	UsedBy    []string  `json:"usedBy"`
}

func mapCoupon(c domain.Coupon) couponResponse {
	usedBy := c.UsedBy
	if usedBy == nil {
		usedBy = []string{}
	}
	return couponResponse{
		ID:        c.ID,
		Code:      c.Code,
		Amount:    c.Amount,
		FromDate:  c.FromDate,
		ToDate:    c.ToDate,
		CreatedBy: c.CreatedBy,
		UsedBy:    usedBy,
	}
}
