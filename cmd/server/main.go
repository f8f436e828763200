package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkout-demo/internal/config"
	"github.com/nikolayk812/checkout-demo/internal/events"
	"github.com/nikolayk812/checkout-demo/internal/guard"
	"github.com/nikolayk812/checkout-demo/internal/handlers"
	"github.com/nikolayk812/checkout-demo/internal/metrics"
	"github.com/nikolayk812/checkout-demo/internal/payment"
	"github.com/nikolayk812/checkout-demo/internal/repository"
	"github.com/nikolayk812/checkout-demo/internal/service"
	"github.com/nikolayk812/checkout-demo/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting checkout api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"currency", cfg.Payment.Currency.String(),
		"log_level", cfg.LogLevel,
	)

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	store := repository.NewStore(pool, cfg.Events.Topic)
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("store.Ping: %w", err)
	}

	gateway, err := payment.NewStripeGateway(payment.Config{
		SecretKey:  cfg.Payment.SecretKey,
		SuccessURL: cfg.Payment.SuccessURL,
		CancelURL:  cfg.Payment.CancelURL,
		Timeout:    cfg.Payment.Timeout,
	})
	if err != nil {
		return fmt.Errorf("payment.NewStripeGateway: %w", err)
	}
	if cfg.Payment.WebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET is empty, webhook signatures are not verified")
	}
	webhookParser := payment.NewWebhookParser(cfg.Payment.WebhookSecret)

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
	serverMetrics := metrics.NewServerMetrics(prometheus.DefaultRegisterer)

	checkoutOpts := []service.CheckoutOption{service.WithRecorder(checkoutMetrics)}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("redis close failed", "error", err)
			}
		}()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis.Ping: %w", err)
		}
		checkoutOpts = append(checkoutOpts, service.WithWebhookGuard(guard.NewRedis(rdb, "checkout", cfg.Redis.GuardTTL)))
		log.Info("webhook guard enabled", "redis_addr", cfg.Redis.Addr, "ttl", cfg.Redis.GuardTTL)
	}

	cartService := service.NewCartService(store, cfg.Payment.Currency, log)
	couponService := service.NewCouponService(store, log)
	checkoutService := service.NewCheckoutService(store, gateway, cfg.Payment.Currency, log, checkoutOpts...)

	var wg sync.WaitGroup
	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	if publisher := events.NewKafkaPublisher(events.ParseBrokers(cfg.Events.Brokers), cfg.Payment.Timeout); publisher.Enabled() {
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("kafka writer close failed", "error", err)
			}
		}()

		relay := events.NewRelay(store, publisher, cfg.Events.Interval, cfg.Events.Batch, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Run(relayCtx)
		}()
	} else {
		log.Info("outbox relay disabled, order events stay in the outbox table", "topic", cfg.Events.Topic)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Orders:         handlers.NewOrderHandler(checkoutService, webhookParser, log),
		Carts:          handlers.NewCartHandler(cartService, log),
		Coupons:        handlers.NewCouponHandler(couponService, log),
		Health:         handlers.NewHealthHandler(store, version, log),
		Metrics:        metrics.Handler(prometheus.DefaultGatherer),
		ServerMetrics:  serverMetrics,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: 60 * time.Second,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	stopRelay()
	wg.Wait()

	return nil
}
