package promo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for promo code validation.
var (
	// ErrInvalid is returned when a code is not found or is inactive.
	ErrInvalid = errors.New("invalid promo code")
	// ErrNotYetValid is returned when a code is used before its valid_from.
	ErrNotYetValid = errors.New("promo code not yet valid")
	// ErrExpired is returned when a code is used after its valid_until.
	ErrExpired = errors.New("promo code expired")
	// ErrExhausted is returned when a code has reached its usage cap.
	ErrExhausted = errors.New("promo code usage limit reached")
)

// MinimumNotMetError indicates the cart subtotal is below the promo's
// minimum order value.
type MinimumNotMetError struct {
	Code     string
	Minimum  decimal.Decimal
	Subtotal decimal.Decimal
}

func (e *MinimumNotMetError) Error() string {
	return "minimum order value of " + e.Minimum.StringFixed(2) + " required for promo " + e.Code
}

// PromoCode defines a discount rule redeemable at checkout.
// DiscountPercent takes precedence over DiscountAmount when both are nonzero.
// MaxUses of zero means unlimited.
type PromoCode struct {
	Code            string
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	MinOrderValue   decimal.Decimal
	ValidFrom       *time.Time
	ValidUntil      *time.Time
	MaxUses         int
	CurrentUses     int
	IsActive        bool
	CreatedAt       time.Time
}

// Validate checks the non-monetary eligibility of the code at the given time:
// temporal window and usage cap. The subtotal minimum is checked separately
// because it needs the priced cart.
func (p *PromoCode) Validate(now time.Time) error {
	if !p.IsActive {
		return ErrInvalid
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return ErrNotYetValid
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return ErrExpired
	}
	if p.MaxUses > 0 && p.CurrentUses >= p.MaxUses {
		return ErrExhausted
	}
	return nil
}

// Discount returns the discount this code grants on the given subtotal.
// Not clamped to the subtotal: a flat amount larger than the subtotal is
// returned as-is, matching the checkout totals formula.
func (p *PromoCode) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if p.DiscountPercent.IsPositive() {
		return subtotal.Mul(p.DiscountPercent).Div(decimal.NewFromInt(100)).Round(2)
	}
	if p.DiscountAmount.IsPositive() {
		return p.DiscountAmount
	}
	return decimal.Zero
}

// Registry provides lookup and mutation of promo codes.
//
// IncrementUses must be atomic: the cap check and the increment happen in one
// conditional write, so that losing a race for the last redemption yields
// ErrExhausted rather than a counter past the cap.
type Registry interface {
	FindByCode(ctx context.Context, code string) (*PromoCode, error)
	IncrementUses(ctx context.Context, code string) error

	List(ctx context.Context) ([]PromoCode, error)
	Upsert(ctx context.Context, p *PromoCode) error
}
