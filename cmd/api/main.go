package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alugafacil/alugafacil-backend/api"
	"github.com/alugafacil/alugafacil-backend/api/routes"
	"github.com/alugafacil/alugafacil-backend/internal/booking"
	"github.com/alugafacil/alugafacil-backend/internal/chat"
	"github.com/alugafacil/alugafacil-backend/internal/notifications"
	"github.com/alugafacil/alugafacil-backend/internal/payments"
	"github.com/alugafacil/alugafacil-backend/internal/pricing"
	"github.com/alugafacil/alugafacil-backend/internal/properties"
	"github.com/alugafacil/alugafacil-backend/internal/realtime"
	"github.com/alugafacil/alugafacil-backend/internal/users"
	"github.com/alugafacil/alugafacil-backend/pkg/auth/session"
	"github.com/alugafacil/alugafacil-backend/pkg/config"
	"github.com/alugafacil/alugafacil-backend/pkg/db"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"github.com/alugafacil/alugafacil-backend/pkg/mercadopago"
	"github.com/alugafacil/alugafacil-backend/pkg/metrics"
	"github.com/alugafacil/alugafacil-backend/pkg/migrate"
	"github.com/alugafacil/alugafacil-backend/pkg/redis"
)

const webhookGuardTTL = 48 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	propertyRepo := properties.NewRepository(dbClient.DB())
	bookingRepo := booking.NewRepository(dbClient.DB())
	paymentRepo := payments.NewRepository(dbClient.DB())
	chatRepo := chat.NewRepository(dbClient.DB())

	userService, err := users.NewService(users.ServiceParams{
		Repo:           userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	propertyService, err := properties.NewService(properties.ServiceParams{
		Repo:   propertyRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create property service", err)
		os.Exit(1)
	}

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
		Repo:      chatRepo,
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

	webhookGuard, err := payments.NewIdempotencyGuard(redisClient, webhookGuardTTL, "mp-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port != "" {
		cfg.App.Port = port
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": ":" + cfg.App.Port,
	})
	logg.Info(ctx, "starting api server")

	router := routes.NewRouter(routes.Params{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		Sessions:     sessionManager,
		Users:        userService,
		Properties:   propertyService,
		Bookings:     bookingService,
		Payments:     paymentService,
		Chat:         chatService,
		WebhookGuard: webhookGuard,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(cfg, router, logg)
	if err := server.Run(runCtx); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
