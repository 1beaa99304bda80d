package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beemanhoney/shop/internal/domain/product"
	"github.com/beemanhoney/shop/internal/domain/promo"
)

// Status is the lifecycle state of an order.
//
// Transitions are deliberately unrestricted: any status may follow any other,
// as callers with stricter lifecycle needs are expected to guard on their own.
// Only membership in the enum is enforced.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusReturned   Status = "returned"
)

// Valid reports whether s is a member of the status enum.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
		StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// Order is a committed customer order with its frozen monetary breakdown.
// TotalAmount is computed once at creation and never derived from live
// catalog prices afterwards.
type Order struct {
	ID              string
	UserID          string
	Status          Status
	TotalAmount     decimal.Decimal
	ShippingCost    decimal.Decimal
	Tax             decimal.Decimal
	Discount        decimal.Decimal
	PromoCode       string
	ShippingAddress string
	BillingAddress  string
	CreatedAt       time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	ReturnReason    string

	Items []Item
}

// Item is a single order line with the unit price frozen at purchase time.
// Immutable after creation.
type Item struct {
	ID              string
	OrderID         string
	ProductID       string
	Quantity        int
	PriceAtPurchase decimal.Decimal
}

// CartLine is a requested product and quantity submitted at checkout.
type CartLine struct {
	ProductID string
	Quantity  int
}

// Ledger defines persistence operations for orders.
//
// Commit is a single atomic write of the order and all its items; concurrent
// readers never observe a partially written order.
type Ledger interface {
	Commit(ctx context.Context, o *Order) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, st Status, shippedAt, deliveredAt *time.Time) (*Order, error)
}

// TxStores bundles transaction-bound instances of the stores the order
// workflow mutates together.
type TxStores struct {
	Products product.Repository
	Promos   promo.Registry
	Orders   Ledger
}

// Transactor runs fn inside a single isolated storage transaction with a
// bounded timeout. All reads and conditional writes performed through the
// provided stores either commit together or leave no trace.
type Transactor interface {
	InTx(ctx context.Context, fn func(TxStores) error) error
}

// LifecycleEvent signals an order creation or status change to the
// notification dispatcher.
type LifecycleEvent struct {
	OrderID   string          `json:"order_id"`
	UserEmail string          `json:"user_email"`
	UserName  string          `json:"user_name"`
	Status    Status          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// EventDispatcher delivers lifecycle events. Delivery is best-effort: the
// workflow logs dispatch failures and never propagates them.
type EventDispatcher interface {
	Dispatch(ctx context.Context, ev LifecycleEvent) error
}
