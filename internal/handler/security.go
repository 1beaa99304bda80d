package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/beemanhoney/shop/internal/domain/user"
)

type principalKey struct{}

// principalFrom returns the authenticated principal stored by the
// authentication middleware.
func principalFrom(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}

// authenticated verifies the bearer token and injects the principal into the
// request context.
func (h *Handler) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		p, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			mapError(w, r, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
	})
}

// admin is authenticated plus a role gate.
func (h *Handler) admin(next http.HandlerFunc) http.Handler {
	return h.authenticated(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFrom(r.Context())
		if !ok || !p.IsAdmin() {
			respondError(w, http.StatusForbidden, "admin role required")
			return
		}
		next(w, r)
	})
}
