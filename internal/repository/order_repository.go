package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkout-demo/internal/db"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/port"
	"golang.org/x/text/currency"
)

type orderRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q: db.New(tx),
	}
}

// CreateOrder stores the order together with its line snapshot.
func (r *orderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	if order.ID == uuid.Nil {
		return fmt.Errorf("order.ID is empty")
	}
	if order.CustomerID == "" {
		return fmt.Errorf("order.CustomerID is empty")
	}

	_, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		err := q.InsertOrder(ctx, db.InsertOrderParams{
			ID:            order.ID,
			CustomerID:    order.CustomerID,
			CartID:        order.CartID,
			CouponID:      order.CouponID,
			TotalAmount:   order.TotalPrice.Amount,
			TotalCurrency: order.TotalPrice.Currency.String(),
			Phone:         order.Phone,
			Address:       order.Address,
			PaymentMethod: string(order.PaymentMethod),
			Status:        string(order.Status),
		})
		if err != nil {
			return struct{}{}, fmt.Errorf("q.InsertOrder: %w", mapError(err, "order "+order.ID.String()))
		}

		for i, item := range order.Items {
			err := q.InsertOrderItem(ctx, db.InsertOrderItemParams{
				OrderID:       order.ID,
				LineNo:        int32(i + 1),
				ProductID:     item.ProductID,
				Quantity:      int32(item.Quantity),
				PriceAmount:   item.Price.Amount,
				PriceCurrency: item.Price.Currency.String(),
			})
			if err != nil {
				return struct{}{}, fmt.Errorf("q.InsertOrderItem: %w", err)
			}
		}

		return struct{}{}, nil
	})
	return err
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	dbOrder, err := r.q.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrder: %w", mapError(err, "order "+orderID.String()))
	}

	return loadOrder(ctx, r.q, dbOrder)
}

func (r *orderRepository) GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	if r.pool != nil {
		return domain.Order{}, fmt.Errorf("GetOrderForUpdate requires a transaction")
	}

	dbOrder, err := r.q.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrderForUpdate: %w", mapError(err, "order "+orderID.String()))
	}

	return loadOrder(ctx, r.q, dbOrder)
}

// ListOrders returns the customer's orders, newest first.
func (r *orderRepository) ListOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	if customerID == "" {
		return nil, fmt.Errorf("customerID is empty")
	}

	dbOrders, err := r.q.ListCustomerOrders(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("q.ListCustomerOrders: %w", err)
	}

	orders := make([]domain.Order, 0, len(dbOrders))
	for _, dbOrder := range dbOrders {
		order, err := loadOrder(ctx, r.q, dbOrder)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time, paymentIntent string) (bool, error) {
	var intent *string
	if paymentIntent != "" {
		intent = &paymentIntent
	}

	rowsAffected, err := r.q.MarkOrderPaid(ctx, db.MarkOrderPaidParams{
		PaidAt:        &paidAt,
		PaymentIntent: intent,
		ID:            orderID,
		FromStatuses:  statusStrings(domain.SourceStatuses(domain.OrderStatusPaid, domain.PaymentMethodCard)),
	})
	if err != nil {
		return false, fmt.Errorf("q.MarkOrderPaid: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *orderRepository) MarkCancelled(ctx context.Context, orderID uuid.UUID, customerID string, at time.Time) (bool, error) {
	if customerID == "" {
		return false, fmt.Errorf("customerID is empty")
	}

	rowsAffected, err := r.q.MarkOrderCancelled(ctx, db.MarkOrderCancelledParams{
		CancelledAt:  &at,
		CancelledBy:  &customerID,
		ID:           orderID,
		CustomerID:   customerID,
		FromStatuses: statusStrings(domain.SourceStatuses(domain.OrderStatusCancelled, domain.PaymentMethodCard)),
	})
	if err != nil {
		return false, fmt.Errorf("q.MarkOrderCancelled: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *orderRepository) MarkRefunded(ctx context.Context, orderID uuid.UUID, by string, at time.Time) (bool, error) {
	rowsAffected, err := r.q.MarkOrderRefunded(ctx, db.MarkOrderRefundedParams{
		RefundedAt:   &at,
		RefundedBy:   &by,
		ID:           orderID,
		FromStatuses: statusStrings(domain.SourceStatuses(domain.OrderStatusRefunded, domain.PaymentMethodCard)),
	})
	if err != nil {
		return false, fmt.Errorf("q.MarkOrderRefunded: %w", err)
	}

	return rowsAffected > 0, nil
}

func loadOrder(ctx context.Context, q *db.Queries, dbOrder db.Order) (domain.Order, error) {
	dbItems, err := q.GetOrderItems(ctx, dbOrder.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	order, err := mapOrderToDomain(dbOrder)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapOrderToDomain: %w", err)
	}

	for _, dbItem := range dbItems {
		item, err := mapOrderItemToDomain(dbItem)
		if err != nil {
			return domain.Order{}, fmt.Errorf("mapOrderItemToDomain: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	return order, nil
}

func mapOrderToDomain(row db.Order) (domain.Order, error) {
	parsedCurrency, err := currency.ParseISO(row.TotalCurrency)
	if err != nil {
		return domain.Order{}, fmt.Errorf("currency[%s] is not valid: %w", row.TotalCurrency, err)
	}

	method, err := domain.ParsePaymentMethod(row.PaymentMethod)
	if err != nil {
		return domain.Order{}, err
	}

	return domain.Order{
		ID:            row.ID,
		CustomerID:    row.CustomerID,
		CartID:        row.CartID,
		CouponID:      row.CouponID,
		TotalPrice:    domain.Money{Amount: row.TotalAmount, Currency: parsedCurrency},
		Phone:         row.Phone,
		Address:       row.Address,
		PaymentMethod: method,
		Status:        domain.OrderStatus(row.Status),
		PaymentIntent: deref(row.PaymentIntent),
		Changes: domain.OrderChanges{
			PaidAt:      row.PaidAt,
			CancelledAt: row.CancelledAt,
			CancelledBy: deref(row.CancelledBy),
			RefundedAt:  row.RefundedAt,
			RefundedBy:  deref(row.RefundedBy),
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func mapOrderItemToDomain(row db.OrderItem) (domain.OrderItem, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.OrderItem{
		ProductID: row.ProductID,
		Quantity:  int(row.Quantity),
		Price:     domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
