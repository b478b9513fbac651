package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alugafacil/alugafacil-backend/internal/booking"
	"github.com/alugafacil/alugafacil-backend/internal/chat"
	"github.com/alugafacil/alugafacil-backend/internal/notifications"
	"github.com/alugafacil/alugafacil-backend/internal/payments"
	"github.com/alugafacil/alugafacil-backend/internal/pricing"
	"github.com/alugafacil/alugafacil-backend/internal/properties"
	"github.com/alugafacil/alugafacil-backend/internal/realtime"
	"github.com/alugafacil/alugafacil-backend/internal/reconcile"
	"github.com/alugafacil/alugafacil-backend/internal/users"
	"github.com/alugafacil/alugafacil-backend/pkg/config"
	"github.com/alugafacil/alugafacil-backend/pkg/db"
	"github.com/alugafacil/alugafacil-backend/pkg/instance"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"github.com/alugafacil/alugafacil-backend/pkg/mercadopago"
	"github.com/alugafacil/alugafacil-backend/pkg/metrics"
	"github.com/alugafacil/alugafacil-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "reconcile-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "reconcile-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	userRepo := users.NewRepository(dbClient.DB())
	propertyRepo := properties.NewRepository(dbClient.DB())
	bookingRepo := booking.NewRepository(dbClient.DB())
	paymentRepo := payments.NewRepository(dbClient.DB())

	publisher := realtime.NewPublisher(redisClient, logg)
	pricingEngine := pricing.NewEngine(
		float64(cfg.Booking.ClientFeePercent),
		float64(cfg.Booking.OwnerFeePercent),
	)

	bookingService, err := booking.NewService(booking.ServiceParams{
		Repo:       bookingRepo,
		Properties: propertyRepo,
		Pricing:    pricingEngine,
		Tx:         dbClient,
		Logger:     logg,
		Notifier:   publisher,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	mailer := notifications.NewMailer(notifications.MailerParams{
		Config:     cfg.Sendgrid,
		Users:      userRepo,
		Properties: propertyRepo,
		Logger:     logg,
	})

	mpClient, err := mercadopago.NewClient(context.Background(), cfg.MercadoPago, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mercadopago client", err)
		os.Exit(1)
	}

	chatService, err := chat.NewService(chat.ServiceParams{
		Repo:      chat.NewRepository(dbClient.DB()),
		Bookings:  bookingRepo,
		Publisher: publisher,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:            paymentRepo,
		Provider:        mpClient,
		Bookings:        bookingService,
		Notifier:        mailer,
		Announcer:       chatService,
		Metrics:         metrics.NewPaymentMetrics(prometheus.DefaultRegisterer),
		Logger:          logg,
		NotificationURL: cfg.MercadoPago.NotificationURL,
		PixReuseWindow:  cfg.MercadoPago.PixReuseWindow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	paymentsJob, err := reconcile.NewPaymentsJob(reconcile.PaymentsJobParams{
		Logger:   logg,
		Payments: paymentService,
		MinAge:   cfg.Reconcile.MinAge,
		Limit:    cfg.Reconcile.BatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments job", err)
		os.Exit(1)
	}

	lock, err := reconcile.NewRedisLock(redisClient, redisClient.LockKey("reconcile"), cfg.Reconcile.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile lock", err)
		os.Exit(1)
	}

	service, err := reconcile.NewService(reconcile.ServiceParams{
		Logger:   logg,
		Registry: reconcile.NewRegistry(paymentsJob),
		Lock:     lock,
		Metrics:  metrics.NewWorkerJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Reconcile.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})

	metricsServer := &http.Server{
		Addr:              ":" + cfg.Reconcile.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error shutting down metrics server", err)
		}
	}()

	logg.Info(ctx, "starting reconcile worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "reconcile worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "reconcile worker shutting down gracefully")
}
