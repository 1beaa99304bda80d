package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/beemanhoney/shop/internal/domain/product"
	"github.com/beemanhoney/shop/internal/domain/promo"
)

// ProductReader is the read slice of the catalog the pricer needs.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

// PromoReader is the read slice of the promo registry the pricer needs.
type PromoReader interface {
	FindByCode(ctx context.Context, code string) (*promo.PromoCode, error)
}

// PriceOpts carries the caller-supplied pricing inputs. Tax and ShippingCost
// are pass-through values, not computed here.
type PriceOpts struct {
	PromoCode    string
	Tax          decimal.Decimal
	ShippingCost decimal.Decimal
}

// PricedLine is a cart line with its unit price frozen at lookup time.
type PricedLine struct {
	ProductID       string
	Quantity        int
	PriceAtPurchase decimal.Decimal
}

// PricedCart is the validated monetary breakdown of a cart.
type PricedCart struct {
	Lines    []PricedLine
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Promo    *promo.PromoCode
	Total    decimal.Decimal
}

// Pricer computes cart totals against live catalog and promo state. It
// performs no mutation; the order workflow re-runs it inside the commit
// transaction so the priced state is the state that gets mutated.
type Pricer struct {
	now func() time.Time
}

func NewPricer(now func() time.Time) *Pricer {
	if now == nil {
		now = time.Now
	}
	return &Pricer{now: now}
}

// PriceCart validates and prices the cart, in input order.
//
// Per line: the product must exist and be active, the quantity must be
// positive, and current stock must cover it. The unit price is snapshotted at
// lookup time. An optional promo code is then validated (active, temporal
// window, usage cap, order minimum) and its discount applied. The discount is
// not clamped to the subtotal, so a large flat discount can drive the total
// negative.
func (p *Pricer) PriceCart(ctx context.Context, products ProductReader, promos PromoReader, lines []CartLine, opts PriceOpts) (*PricedCart, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	cart := &PricedCart{
		Lines:    make([]PricedLine, 0, len(lines)),
		Subtotal: decimal.Zero,
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: line.ProductID, Quantity: line.Quantity}
		}
		prod, err := products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, errors.Wrapf(err, "look up product %s", line.ProductID)
		}
		if !prod.IsActive {
			return nil, errors.Wrapf(product.ErrNotFound, "product %s", line.ProductID)
		}
		if prod.StockQuantity < line.Quantity {
			return nil, &product.InsufficientStockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: prod.StockQuantity,
			}
		}
		cart.Lines = append(cart.Lines, PricedLine{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: prod.Price,
		})
		cart.Subtotal = cart.Subtotal.Add(prod.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	cart.Discount = decimal.Zero
	if opts.PromoCode != "" {
		code, err := promos.FindByCode(ctx, opts.PromoCode)
		if err != nil {
			return nil, errors.Wrapf(err, "look up promo %s", opts.PromoCode)
		}
		if err := code.Validate(p.now()); err != nil {
			return nil, err
		}
		if cart.Subtotal.LessThan(code.MinOrderValue) {
			return nil, &promo.MinimumNotMetError{
				Code:     code.Code,
				Minimum:  code.MinOrderValue,
				Subtotal: cart.Subtotal,
			}
		}
		cart.Promo = code
		cart.Discount = code.Discount(cart.Subtotal)
	}

	cart.Total = cart.Subtotal.Add(opts.Tax).Add(opts.ShippingCost).Sub(cart.Discount)
	return cart, nil
}
