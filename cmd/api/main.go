package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/marketplace-orders/internal/api"
	"github.com/example/marketplace-orders/internal/command"
	"github.com/example/marketplace-orders/internal/config"
	"github.com/example/marketplace-orders/internal/email"
	"github.com/example/marketplace-orders/internal/infrastructure/kafka"
	"github.com/example/marketplace-orders/internal/infrastructure/redis"
	"github.com/example/marketplace-orders/internal/infrastructure/store"
	"github.com/example/marketplace-orders/internal/metrics"
	"github.com/example/marketplace-orders/internal/notification"
	"github.com/example/marketplace-orders/internal/payment"
	"github.com/example/marketplace-orders/internal/payment/attemptlog"
	"github.com/example/marketplace-orders/internal/payment/attemptlog/sqlite"
	"github.com/example/marketplace-orders/internal/query"
	"github.com/example/marketplace-orders/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry.InitLogger(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		fatal("invalid configuration", err)
	}
	telemetry.InitLogger(cfg.LogLevel)
	slog.Info("starting marketplace orders API", "component", "API", "config", cfg)

	shutdownTracer, err := telemetry.SetupTracer(ctx, "marketplace-api", cfg.OTLPEndpoint)
	if err != nil {
		fatal("failed to set up tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "component", "API", "error", err)
		}
	}()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Order store
	db, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal("failed to connect to PostgreSQL", err)
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		fatal("failed to migrate order schema", err)
	}
	orders := store.NewPostgresOrderStore(db)
	slog.Info("connected to order database", "component", "API")

	// Catalog
	pool, err := store.ConnectCatalog(ctx, cfg.CatalogDatabaseURL)
	if err != nil {
		fatal("failed to connect to catalog database", err)
	}
	defer pool.Close()
	catalog := store.NewCatalog(pool)

	// Notifications
	publisher, closePublisher := newPublisher(cfg)
	defer closePublisher()
	mailer := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	dispatcher := notification.NewDispatcher(publisher, mailer, catalog, m)

	// Payments
	gateway := payment.NewClient(payment.ClientConfig{
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		BaseURL:   cfg.Razorpay.BaseURL,
		Timeout:   cfg.Razorpay.Timeout,
	}, m)
	verifier := payment.NewVerifier(cfg.Razorpay.KeySecret)

	var attempts attemptlog.Repository = attemptlog.Nop{}
	if cfg.PaymentAttemptDB != "" {
		repo, err := sqlite.Open(cfg.PaymentAttemptDB)
		if err != nil {
			fatal("failed to open payment attempt log", err)
		}
		defer repo.Close()
		attempts = repo
		slog.Info("payment attempt log enabled", "component", "API", "path", cfg.PaymentAttemptDB)
	}

	// Handlers
	cmdHandler := command.NewHandler(orders, catalog, gateway, verifier, attempts, dispatcher, m, cfg.Currency)
	queryHandler := query.NewHandler(orders, catalog)
	router := api.NewRouter(api.RouterConfig{
		Handlers: api.NewHandlers(cmdHandler, queryHandler, orders),
		Metrics:  m,
		Gatherer: reg,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "component", "API", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down", "component", "API")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "component", "API", "error", err)
	}
}

// newPublisher returns the notification publisher chosen by NOTIFY_BACKEND
func newPublisher(cfg *config.Config) (notification.Publisher, func()) {
	switch cfg.NotifyBackend {
	case "redis":
		p := redis.NewPublisher(cfg.RedisAddr)
		slog.Info("publishing notifications to Redis", "component", "API", "addr", cfg.RedisAddr)
		return p, func() { _ = p.Close() }
	default:
		p := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		slog.Info("publishing notifications to Kafka", "component", "API",
			"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		return p, func() { _ = p.Close() }
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "component", "API", "error", err)
	os.Exit(1)
}
