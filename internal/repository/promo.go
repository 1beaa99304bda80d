package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/beemanhoney/shop/internal/domain/promo"
)

const (
	getPromoByCodeSQL = `SELECT code, discount_percent, discount_amount, min_order_value,
			valid_from, valid_until, max_uses, current_uses, is_active, created_at
		FROM promo_codes WHERE UPPER(code) = UPPER($1)`

	incrementPromoUsesSQL = `UPDATE promo_codes SET current_uses = current_uses + 1
		WHERE UPPER(code) = UPPER($1) AND (max_uses = 0 OR current_uses < max_uses)`

	promoExistsSQL = `SELECT EXISTS (SELECT 1 FROM promo_codes WHERE UPPER(code) = UPPER($1))`

	listPromosSQL = `SELECT code, discount_percent, discount_amount, min_order_value,
			valid_from, valid_until, max_uses, current_uses, is_active, created_at
		FROM promo_codes ORDER BY created_at DESC`

	upsertPromoSQL = `INSERT INTO promo_codes (code, discount_percent, discount_amount, min_order_value,
			valid_from, valid_until, max_uses, current_uses, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (code) DO UPDATE SET
			discount_percent = EXCLUDED.discount_percent,
			discount_amount  = EXCLUDED.discount_amount,
			min_order_value  = EXCLUDED.min_order_value,
			valid_from       = EXCLUDED.valid_from,
			valid_until      = EXCLUDED.valid_until,
			max_uses         = EXCLUDED.max_uses,
			is_active        = EXCLUDED.is_active`
)

var _ promo.Registry = (*PromoRepository)(nil)

// PromoRepository implements promo.Registry backed by PostgreSQL.
type PromoRepository struct {
	db DB
}

// NewPromoRepository returns a PromoRepository over the given pool or
// transaction.
func NewPromoRepository(db DB) *PromoRepository {
	return &PromoRepository{db: db}
}

// FindByCode looks up a promo code case-insensitively. Returns
// promo.ErrInvalid when no such code exists.
func (r *PromoRepository) FindByCode(ctx context.Context, code string) (*promo.PromoCode, error) {
	rows, err := r.db.Query(ctx, getPromoByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding promo by code %q: %w", code, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promo.ErrInvalid
		}
		return nil, fmt.Errorf("finding promo by code %q: %w", code, err)
	}
	return &p, nil
}

// IncrementUses bumps the usage counter by one. The cap is re-validated in
// the UPDATE guard; a concurrent redemption that took the last use makes
// this call fail with promo.ErrExhausted instead of exceeding the cap.
func (r *PromoRepository) IncrementUses(ctx context.Context, code string) error {
	tag, err := r.db.Exec(ctx, incrementPromoUsesSQL, code)
	if err != nil {
		return fmt.Errorf("incrementing uses for promo %q: %w", code, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, promoExistsSQL, code).Scan(&exists); err != nil {
		return fmt.Errorf("checking promo %q: %w", code, err)
	}
	if !exists {
		return promo.ErrInvalid
	}
	return promo.ErrExhausted
}

// List returns all promo codes, newest first.
func (r *PromoRepository) List(ctx context.Context) ([]promo.PromoCode, error) {
	rows, err := r.db.Query(ctx, listPromosSQL)
	if err != nil {
		return nil, fmt.Errorf("listing promos: %w", err)
	}
	return pgx.CollectRows(rows, scanPromo)
}

// Upsert inserts a promo code or updates its rule fields, leaving the usage
// counter of an existing code untouched.
func (r *PromoRepository) Upsert(ctx context.Context, p *promo.PromoCode) error {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.Exec(ctx, upsertPromoSQL,
		p.Code, p.DiscountPercent, p.DiscountAmount, p.MinOrderValue,
		p.ValidFrom, p.ValidUntil, p.MaxUses, p.CurrentUses, p.IsActive, createdAt,
	)
	if err != nil {
		return fmt.Errorf("upserting promo %q: %w", p.Code, err)
	}
	return nil
}

func scanPromo(row pgx.CollectableRow) (promo.PromoCode, error) {
	var (
		p           promo.PromoCode
		percent     decimal.Decimal
		amount      decimal.Decimal
		minOrder    decimal.Decimal
		maxUses     int32
		currentUses int32
	)
	err := row.Scan(
		&p.Code, &percent, &amount, &minOrder,
		&p.ValidFrom, &p.ValidUntil, &maxUses, &currentUses, &p.IsActive, &p.CreatedAt,
	)
	p.DiscountPercent = percent
	p.DiscountAmount = amount
	p.MinOrderValue = minOrder
	p.MaxUses = int(maxUses)
	p.CurrentUses = int(currentUses)
	return p, err
}
