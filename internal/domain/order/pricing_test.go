package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beemanhoney/shop/internal/domain/product"
	"github.com/beemanhoney/shop/internal/domain/promo"
)

type mapProducts map[string]*product.Product

func (m mapProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

type mapPromos map[string]*promo.PromoCode

func (m mapPromos) FindByCode(_ context.Context, code string) (*promo.PromoCode, error) {
	p, ok := m[code]
	if !ok {
		return nil, promo.ErrInvalid
	}
	return p, nil
}

func testProduct(id string, price string, stock int) *product.Product {
	return &product.Product{
		ID:            id,
		Name:          id,
		Price:         decimal.RequireFromString(price),
		Category:      "honey",
		StockQuantity: stock,
		IsActive:      true,
	}
}

func fixedPricer() *Pricer {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return NewPricer(func() time.Time { return now })
}

func TestPriceCart_EmptyCart(t *testing.T) {
	_, err := fixedPricer().PriceCart(context.Background(), mapProducts{}, mapPromos{}, nil, PriceOpts{})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPriceCart_InvalidQuantity(t *testing.T) {
	products := mapProducts{"honey-A": testProduct("honey-A", "10.00", 5)}

	_, err := fixedPricer().PriceCart(context.Background(), products, mapPromos{}, []CartLine{
		{ProductID: "honey-A", Quantity: 0},
	}, PriceOpts{})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, "honey-A", iqErr.ProductID)
}

func TestPriceCart_ProductNotFound(t *testing.T) {
	_, err := fixedPricer().PriceCart(context.Background(), mapProducts{}, mapPromos{}, []CartLine{
		{ProductID: "missing", Quantity: 1},
	}, PriceOpts{})
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestPriceCart_InactiveProduct(t *testing.T) {
	p := testProduct("retired", "10.00", 5)
	p.IsActive = false

	_, err := fixedPricer().PriceCart(context.Background(), mapProducts{"retired": p}, mapPromos{}, []CartLine{
		{ProductID: "retired", Quantity: 1},
	}, PriceOpts{})
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestPriceCart_InsufficientStock(t *testing.T) {
	products := mapProducts{"honey-A": testProduct("honey-A", "10.00", 1)}

	_, err := fixedPricer().PriceCart(context.Background(), products, mapPromos{}, []CartLine{
		{ProductID: "honey-A", Quantity: 2},
	}, PriceOpts{})

	var isErr *product.InsufficientStockError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, "honey-A", isErr.ProductID)
	assert.Equal(t, 2, isErr.Requested)
	assert.Equal(t, 1, isErr.Available)
}

func TestPriceCart_NoPromo(t *testing.T) {
	products := mapProducts{"honey-A": testProduct("honey-A", "10.00", 10)}

	cart, err := fixedPricer().PriceCart(context.Background(), products, mapPromos{}, []CartLine{
		{ProductID: "honey-A", Quantity: 2},
	}, PriceOpts{})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("20.00").Equal(cart.Subtotal))
	assert.True(t, decimal.Zero.Equal(cart.Discount))
	assert.True(t, decimal.RequireFromString("20.00").Equal(cart.Total))
	require.Len(t, cart.Lines, 1)
	assert.True(t, decimal.RequireFromString("10.00").Equal(cart.Lines[0].PriceAtPurchase))
}

func TestPriceCart_TaxAndShippingPassThrough(t *testing.T) {
	products := mapProducts{"honey-A": testProduct("honey-A", "10.00", 10)}

	cart, err := fixedPricer().PriceCart(context.Background(), products, mapPromos{}, []CartLine{
		{ProductID: "honey-A", Quantity: 2},
	}, PriceOpts{
		Tax:          decimal.RequireFromString("1.50"),
		ShippingCost: decimal.RequireFromString("4.99"),
	})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("26.49").Equal(cart.Total))
}

func TestPriceCart_PercentPromo(t *testing.T) {
	products := mapProducts{"honey-A": testProduct("honey-A", "10.00", 10)}
	promos := mapPromos{"SAVE10": {
		Code:            "SAVE10",
		DiscountPercent: decimal.NewFromInt(10),
		MinOrderValue:   decimal.RequireFromString("15.00"),
		IsActive:        true,
	}}

	cart, err := fixedPricer().PriceCart(context.Background(), products, promos, []CartLine{
		{ProductID: "honey-A", Quantity: 2},
	}, PriceOpts{PromoCode: "SAVE10"})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.00").Equal(cart.Discount))
	assert.True(t, decimal.RequireFromString("18.00").Equal(cart.Total))
	require.NotNil(t, cart.Promo)
	assert.Equal(t, "SAVE10", cart.Promo.Code)
}

func TestPriceCart_PercentTakesPrecedenceOverAmount(t *testing.T) {
	products := mapProducts{"honey-A": testProduct("honey-A", "50.00", 10)}
	promos := mapPromos{"BOTH": {
		Code:            "BOTH",
		DiscountPercent: decimal.NewFromInt(20),
		DiscountAmount:  decimal.RequireFromString("3.00"),
		IsActive:        true,
	}}

	cart, err := fixedPricer().PriceCart(context.Background(), products, promos, []CartLine{
		{ProductID: "honey-A", Quantity: 1},
	}, PriceOpts{PromoCode: "BOTH"})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10.00").Equal(cart.Discount))
}

func TestPriceCart_FlatAmountPromo(t *testing.T) {
	products := mapProducts{"honey-A": testProduct("honey-A", "10.00", 10)}
	promos := mapPromos{"FLAT5": {
		Code:           "FLAT5",
		DiscountAmount: decimal.RequireFromString("5.00"),
		IsActive:       true,
	}}

	cart, err := fixedPricer().PriceCart(context.Background(), products, promos, []CartLine{
		{ProductID: "honey-A", Quantity: 2},
	}, PriceOpts{PromoCode: "FLAT5"})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("15.00").Equal(cart.Total))
}

func TestPriceCart_MinimumNotMet(t *testing.T) {
	products := mapProducts{"honey-A": testProduct("honey-A", "10.00", 10)}
	promos := mapPromos{"BIG": {
		Code:           "BIG",
		DiscountAmount: decimal.RequireFromString("5.00"),
		MinOrderValue:  decimal.RequireFromString("100.00"),
		IsActive:       true,
	}}

	_, err := fixedPricer().PriceCart(context.Background(), products, promos, []CartLine{
		{ProductID: "honey-A", Quantity: 2},
	}, PriceOpts{PromoCode: "BIG"})

	var mnmErr *promo.MinimumNotMetError
	require.ErrorAs(t, err, &mnmErr)
	assert.Equal(t, "BIG", mnmErr.Code)
	assert.True(t, decimal.RequireFromString("20.00").Equal(mnmErr.Subtotal))
}

func TestPriceCart_PromoEligibility(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name    string
		promo   *promo.PromoCode
		wantErr error
	}{
		{
			name:    "inactive code",
			promo:   &promo.PromoCode{Code: "OFF", DiscountAmount: decimal.NewFromInt(5)},
			wantErr: promo.ErrInvalid,
		},
		{
			name: "not yet valid",
			promo: &promo.PromoCode{
				Code: "SOON", DiscountAmount: decimal.NewFromInt(5),
				ValidFrom: &future, IsActive: true,
			},
			wantErr: promo.ErrNotYetValid,
		},
		{
			name: "expired",
			promo: &promo.PromoCode{
				Code: "OLD", DiscountAmount: decimal.NewFromInt(5),
				ValidUntil: &past, IsActive: true,
			},
			wantErr: promo.ErrExpired,
		},
		{
			name: "exhausted",
			promo: &promo.PromoCode{
				Code: "GONE", DiscountAmount: decimal.NewFromInt(5),
				MaxUses: 3, CurrentUses: 3, IsActive: true,
			},
			wantErr: promo.ErrExhausted,
		},
		{
			name: "unlimited uses never exhausts",
			promo: &promo.PromoCode{
				Code: "FREE", DiscountAmount: decimal.NewFromInt(5),
				MaxUses: 0, CurrentUses: 9999, IsActive: true,
			},
		},
		{
			name: "within window succeeds",
			promo: &promo.PromoCode{
				Code: "NOW", DiscountAmount: decimal.NewFromInt(5),
				ValidFrom: &past, ValidUntil: &future, IsActive: true,
			},
		},
	}

	products := mapProducts{"honey-A": testProduct("honey-A", "10.00", 10)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPricer(func() time.Time { return now })
			cart, err := p.PriceCart(context.Background(), products, mapPromos{tt.promo.Code: tt.promo}, []CartLine{
				{ProductID: "honey-A", Quantity: 2},
			}, PriceOpts{PromoCode: tt.promo.Code})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cart)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString("15.00").Equal(cart.Total))
		})
	}
}

func TestPriceCart_DiscountNotClamped(t *testing.T) {
	products := mapProducts{"honey-A": testProduct("honey-A", "10.00", 10)}
	promos := mapPromos{"HUGE": {
		Code:           "HUGE",
		DiscountAmount: decimal.RequireFromString("999.00"),
		IsActive:       true,
	}}

	cart, err := fixedPricer().PriceCart(context.Background(), products, promos, []CartLine{
		{ProductID: "honey-A", Quantity: 1},
	}, PriceOpts{PromoCode: "HUGE"})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-989.00").Equal(cart.Total))
}

func TestPriceCart_Idempotent(t *testing.T) {
	products := mapProducts{
		"honey-A": testProduct("honey-A", "10.00", 10),
		"honey-B": testProduct("honey-B", "7.50", 10),
	}
	promos := mapPromos{"SAVE10": {
		Code:            "SAVE10",
		DiscountPercent: decimal.NewFromInt(10),
		IsActive:        true,
	}}
	lines := []CartLine{
		{ProductID: "honey-A", Quantity: 2},
		{ProductID: "honey-B", Quantity: 1},
	}
	opts := PriceOpts{PromoCode: "SAVE10", Tax: decimal.NewFromInt(1)}

	p := fixedPricer()
	first, err := p.PriceCart(context.Background(), products, promos, lines, opts)
	require.NoError(t, err)
	second, err := p.PriceCart(context.Background(), products, promos, lines, opts)
	require.NoError(t, err)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Discount.Equal(second.Discount))
	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, first.Lines, second.Lines)
}
