package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/metrics"
	"github.com/nikolayk812/checkout-demo/internal/middleware"
)

type RouterConfig struct {
	Orders         *OrderHandler
	Carts          *CartHandler
	Coupons        *CouponHandler
	Health         http.Handler
	Metrics        http.Handler
	ServerMetrics  *metrics.ServerMetrics
	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	if cfg.ServerMetrics != nil {
		r.Use(middleware.Metrics(cfg.ServerMetrics))
	}
	r.Use(chimiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Content-Type",
			middleware.HeaderUserID, middleware.HeaderUserRole, middleware.HeaderUserEmail,
		},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.ServeHTTP)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/orders", func(r chi.Router) {
		// Provider callbacks and redirect targets carry no user identity.
		r.Post("/webhook", cfg.Orders.Webhook)
		r.Get("/success", cfg.Orders.PaymentSuccess)
		r.Get("/cancel", cfg.Orders.PaymentCancelled)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate)
			r.Get("/", cfg.Orders.ListOrders)
			r.Post("/create", cfg.Orders.CreateOrder)
			r.Post("/payment", cfg.Orders.CreatePayment)
			r.Patch("/cancel", cfg.Orders.CancelOrder)
		})
	})

	r.Route("/carts", func(r chi.Router) {
		r.Use(middleware.Authenticate)
		r.Get("/", cfg.Carts.GetCart)
		r.Post("/add", cfg.Carts.AddLine)
		r.Patch("/remove", cfg.Carts.RemoveLine)
		r.Patch("/update", cfg.Carts.UpdateQuantity)
	})

	r.Route("/coupons", func(r chi.Router) {
		r.Use(middleware.Authenticate)
		r.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin))
		r.Post("/create", cfg.Coupons.CreateCoupon)
		r.Patch("/update/{id}", cfg.Coupons.UpdateCoupon)
		r.Delete("/delete/{id}", cfg.Coupons.DeleteCoupon)
	})

	return r
}
