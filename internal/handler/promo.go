package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beemanhoney/shop/internal/domain/promo"
)

type promoRequest struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	MinOrderValue   decimal.Decimal `json:"min_order_value"`
	ValidFrom       *time.Time      `json:"valid_from"`
	ValidUntil      *time.Time      `json:"valid_until"`
	MaxUses         int             `json:"max_uses"`
	IsActive        *bool           `json:"is_active"`
}

type promoResponse struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	MinOrderValue   decimal.Decimal `json:"min_order_value"`
	ValidFrom       *time.Time      `json:"valid_from,omitempty"`
	ValidUntil      *time.Time      `json:"valid_until,omitempty"`
	MaxUses         int             `json:"max_uses"`
	CurrentUses     int             `json:"current_uses"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toPromoResponse(p *promo.PromoCode) promoResponse {
	return promoResponse{
		Code:            p.Code,
		DiscountPercent: p.DiscountPercent,
		DiscountAmount:  p.DiscountAmount,
		MinOrderValue:   p.MinOrderValue,
		ValidFrom:       p.ValidFrom,
		ValidUntil:      p.ValidUntil,
		MaxUses:         p.MaxUses,
		CurrentUses:     p.CurrentUses,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
	}
}

func (h *Handler) createPromo(w http.ResponseWriter, r *http.Request) {
	var req promoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}
	if req.DiscountPercent.IsNegative() || req.DiscountAmount.IsNegative() {
		respondError(w, http.StatusBadRequest, "discounts must not be negative")
		return
	}
	if req.MaxUses < 0 {
		respondError(w, http.StatusBadRequest, "max_uses must not be negative")
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p := &promo.PromoCode{
		Code:            code,
		DiscountPercent: req.DiscountPercent,
		DiscountAmount:  req.DiscountAmount,
		MinOrderValue:   req.MinOrderValue,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		MaxUses:         req.MaxUses,
		IsActive:        active,
		CreatedAt:       time.Now(),
	}
	if err := h.promos.Upsert(r.Context(), p); err != nil {
		mapError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPromoResponse(p))
}

func (h *Handler) listPromos(w http.ResponseWriter, r *http.Request) {
	promos, err := h.promos.List(r.Context())
	if err != nil {
		mapError(w, r, err)
		return
	}

	out := make([]promoResponse, len(promos))
	for i := range promos {
		out[i] = toPromoResponse(&promos[i])
	}
	respondJSON(w, http.StatusOK, out)
}
