package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/beemanhoney/shop/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, user_id, status, total_amount, shipping_cost, tax, discount,
			promo_code, shipping_address, billing_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	createOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, price_at_purchase)
		VALUES ($1, $2, $3, $4, $5)`

	getOrderByIDSQL = `SELECT id, user_id, status, total_amount, shipping_cost, tax, discount,
			promo_code, shipping_address, billing_address, created_at, shipped_at, delivered_at, return_reason
		FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT id, user_id, status, total_amount, shipping_cost, tax, discount,
			promo_code, shipping_address, billing_address, created_at, shipped_at, delivered_at, return_reason
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	listOrderItemsSQL = `SELECT id, order_id, product_id, quantity, price_at_purchase
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`

	updateOrderStatusSQL = `UPDATE orders SET
			status       = $2,
			shipped_at   = COALESCE($3, shipped_at),
			delivered_at = COALESCE($4, delivered_at)
		WHERE id = $1
		RETURNING id, user_id, status, total_amount, shipping_cost, tax, discount,
			promo_code, shipping_address, billing_address, created_at, shipped_at, delivered_at, return_reason`
)

var _ order.Ledger = (*OrderRepository)(nil)

// OrderRepository implements order.Ledger backed by PostgreSQL.
type OrderRepository struct {
	db DB
}

// NewOrderRepository returns an OrderRepository over the given pool or
// transaction.
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Commit persists the order and all its items. Callers run it inside a
// transaction through the store's Transactor; the item inserts are batched
// so a mid-write failure aborts the whole order.
func (r *OrderRepository) Commit(ctx context.Context, o *order.Order) (*order.Order, error) {
	_, err := r.db.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, string(o.Status), o.TotalAmount, o.ShippingCost, o.Tax, o.Discount,
		o.PromoCode, o.ShippingAddress, o.BillingAddress, o.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for _, item := range o.Items {
		_, err := r.db.Exec(ctx, createOrderItemSQL,
			item.ID, o.ID, item.ProductID, item.Quantity, item.PriceAtPurchase,
		)
		if err != nil {
			return nil, fmt.Errorf("creating item for order %q: %w", o.ID, err)
		}
	}
	return o, nil
}

// GetByID returns the order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.db.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	if err := r.attachItems(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns a user's orders with items, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}

	refs := make([]*order.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus sets the order status and stamps the shipped/delivered
// timestamps when provided. Existing timestamps are kept.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, st order.Status, shippedAt, deliveredAt *time.Time) (*order.Order, error) {
	rows, err := r.db.Query(ctx, updateOrderStatusSQL, id, string(st), shippedAt, deliveredAt)
	if err != nil {
		return nil, fmt.Errorf("updating status of order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("updating status of order %q: %w", id, err)
	}

	if err := r.attachItems(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*order.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := r.db.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}
	for _, item := range items {
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o            order.Order
		status       string
		total        decimal.Decimal
		shipping     decimal.Decimal
		tax          decimal.Decimal
		discount     decimal.Decimal
		returnReason *string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &status, &total, &shipping, &tax, &discount,
		&o.PromoCode, &o.ShippingAddress, &o.BillingAddress,
		&o.CreatedAt, &o.ShippedAt, &o.DeliveredAt, &returnReason,
	)
	o.Status = order.Status(status)
	o.TotalAmount = total
	o.ShippingCost = shipping
	o.Tax = tax
	o.Discount = discount
	if returnReason != nil {
		o.ReturnReason = *returnReason
	}
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var (
		item     order.Item
		quantity int32
		price    decimal.Decimal
	)
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &quantity, &price)
	item.Quantity = int(quantity)
	item.PriceAtPurchase = price
	return item, err
}
