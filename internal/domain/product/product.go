package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// InsufficientStockError indicates a requested quantity exceeds the stock
// available at the moment of the check or mutation.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return errors.Errorf(
		"insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available,
	).Error()
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	Category      string
	StockQuantity int
	ImageURL      string
	IsFeatured    bool
	IsActive      bool
}

// Update is the typed whitelist of fields an admin may change on a product.
// Nil fields are left untouched. Stock is mutated here only through catalog
// administration; order placement goes through DecrementStock.
type Update struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	Category      *string
	StockQuantity *int
	ImageURL      *string
	IsFeatured    *bool
	IsActive      *bool
}

// Repository defines catalog operations.
//
// DecrementStock must be atomic: the stock check and the decrement happen in
// one conditional write, so that losing a race for the last units yields an
// InsufficientStockError rather than negative stock.
type Repository interface {
	List(ctx context.Context, search string, offset, limit int) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	DecrementStock(ctx context.Context, id string, quantity int) error

	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id string, upd Update) (*Product, error)
	Delete(ctx context.Context, id string) error
}
