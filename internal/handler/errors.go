package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/beemanhoney/shop/internal/auth"
	"github.com/beemanhoney/shop/internal/domain/order"
	"github.com/beemanhoney/shop/internal/domain/product"
	"github.com/beemanhoney/shop/internal/domain/promo"
	"github.com/beemanhoney/shop/internal/domain/user"
)

// errorResponse is the error body for every endpoint.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

// mapError translates domain errors to the stable status-code taxonomy:
// 400 for bad input, 401/403 for auth, 404 for missing references, 409 for
// stock/promo conflicts, 503 for retryable storage failures, 500 otherwise.
func mapError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		iqErr  *order.InvalidQuantityError
		isErr  *order.InvalidStatusError
		stkErr *product.InsufficientStockError
		mnmErr *promo.MinimumNotMetError
		trErr  *order.TransientError
	)

	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.As(err, &iqErr),
		errors.As(err, &isErr),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrPasswordTooShort):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, order.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")

	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, promo.ErrInvalid):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.As(err, &stkErr),
		errors.As(err, &mnmErr),
		errors.Is(err, promo.ErrExhausted),
		errors.Is(err, promo.ErrExpired),
		errors.Is(err, promo.ErrNotYetValid),
		errors.Is(err, user.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())

	case errors.As(err, &trErr):
		w.Header().Set("Retry-After", "1")
		respondError(w, http.StatusServiceUnavailable, "temporary failure, retry the request")

	default:
		zctx.From(r.Context()).Error("Unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
