package api

import (
	"net/http"

	"github.com/example/marketplace-orders/internal/api/middleware"
	"github.com/example/marketplace-orders/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type RouterConfig struct {
	Handlers *Handlers
	Metrics  *metrics.Metrics
	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Observe(cfg.Metrics))
	r.Use(chimw.Recoverer)

	r.Get("/health", h.Health)
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.Gatherer))
	}

	// Orders
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.GetOrders)
		r.Post("/place/{userId}", h.PlaceOrder)
		r.Get("/user/{userId}", h.GetUserOrders)
		r.Get("/vendor/{vendorId}/paid", h.GetVendorPaidOrders)

		r.Get("/{id}", h.GetOrder)
		r.Delete("/{id}", h.DeleteOrder)
		r.Post("/{id}/checkout", h.Checkout)

		r.Post("/{id}/mark-paid", h.MarkPaid)
		r.Put("/{id}/pack", h.PackOrder)
		r.Put("/{id}/items/{itemId}/pack", h.PackItem)
	})

	// Payments
	r.Route("/api/payments", func(r chi.Router) {
		r.Post("/create-order", h.CreatePayment)
		r.Post("/verify", h.VerifyPayment)
	})

	return r
}
