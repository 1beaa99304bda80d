// Package handler exposes the HTTP JSON API. Handlers decode requests,
// delegate to the domain services and map domain errors to the stable
// status-code taxonomy in errors.go.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/beemanhoney/shop/internal/auth"
	"github.com/beemanhoney/shop/internal/domain/order"
	"github.com/beemanhoney/shop/internal/domain/product"
	"github.com/beemanhoney/shop/internal/domain/promo"
	"github.com/beemanhoney/shop/internal/notify"
)

// Handler holds the domain dependencies behind the HTTP surface.
type Handler struct {
	auth     *auth.Service
	orders   *order.Service
	products product.Repository
	promos   promo.Registry

	emailConfig     notify.EmailConfig
	kafkaConfigured bool
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	authService *auth.Service,
	orderService *order.Service,
	products product.Repository,
	promos promo.Registry,
	emailConfig notify.EmailConfig,
	kafkaConfigured bool,
) *Handler {
	return &Handler{
		auth:            authService,
		orders:          orderService,
		products:        products,
		promos:          promos,
		emailConfig:     emailConfig,
		kafkaConfigured: kafkaConfigured,
	}
}

// Routes registers the API on a fresh mux. Auth-requiring routes are wrapped
// here so the wiring in one place shows who may call what.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/signup", h.signup)
	mux.HandleFunc("POST /api/v1/auth/token", h.token)
	mux.Handle("GET /api/v1/users/me", h.authenticated(h.me))

	mux.HandleFunc("GET /api/v1/products", h.listProducts)
	mux.HandleFunc("GET /api/v1/products/{id}", h.getProduct)
	mux.Handle("POST /api/v1/products", h.admin(h.createProduct))
	mux.Handle("PATCH /api/v1/products/{id}", h.admin(h.updateProduct))
	mux.Handle("DELETE /api/v1/products/{id}", h.admin(h.deleteProduct))

	mux.Handle("POST /api/v1/orders", h.authenticated(h.createOrder))
	mux.Handle("GET /api/v1/orders/me", h.authenticated(h.listMyOrders))
	mux.Handle("GET /api/v1/orders/{id}", h.authenticated(h.getOrder))
	mux.Handle("PUT /api/v1/orders/{id}/status", h.authenticated(h.updateOrderStatus))

	mux.Handle("GET /api/v1/promos", h.admin(h.listPromos))
	mux.Handle("POST /api/v1/promos", h.admin(h.createPromo))

	mux.Handle("GET /api/v1/notifications/config", h.admin(h.notificationConfig))

	return mux
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON rejects unknown fields so typos in request bodies fail loudly
// instead of being silently dropped.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
