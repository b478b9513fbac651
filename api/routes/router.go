package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alugafacil/alugafacil-backend/api/controllers"
	webhookcontrollers "github.com/alugafacil/alugafacil-backend/api/controllers/webhooks"
	"github.com/alugafacil/alugafacil-backend/api/middleware"
	"github.com/alugafacil/alugafacil-backend/internal/booking"
	"github.com/alugafacil/alugafacil-backend/internal/chat"
	"github.com/alugafacil/alugafacil-backend/internal/payments"
	"github.com/alugafacil/alugafacil-backend/internal/properties"
	"github.com/alugafacil/alugafacil-backend/internal/users"
	"github.com/alugafacil/alugafacil-backend/pkg/auth/session"
	"github.com/alugafacil/alugafacil-backend/pkg/config"
	"github.com/alugafacil/alugafacil-backend/pkg/db"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"github.com/alugafacil/alugafacil-backend/pkg/redis"
)

// Params bundles everything the HTTP surface needs. Grouping them in a
// struct keeps call sites readable as services get added.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	Users        *users.Service
	Properties   *properties.Service
	Bookings     *booking.Service
	Payments     *payments.Service
	Chat         *chat.Service
	WebhookGuard *payments.IdempotencyGuard
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRate.LoginWindow,
		cfg.AuthRate.LoginIPLimit,
		cfg.AuthRate.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRate.RegisterWindow,
		cfg.AuthRate.RegisterIPLimit,
		cfg.AuthRate.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, p.Redis))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Some provider configurations deliver notifications as GET with the
	// payment id in the query string, so both verbs land on the handler.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		hook := webhookcontrollers.MercadoPago(p.Payments, p.WebhookGuard, logg)
		r.Post("/mercadopago", hook)
		r.Get("/mercadopago", hook)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.Idempotency(p.Redis, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.Users, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Users, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Users, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(p.Users, cfg.JWT, logg))
	})

	// Catalog browse and listing detail are open. Detail takes an optional
	// token so owners and admins see their own unapproved listings through
	// the same route.
	r.Route("/api/v1/properties", func(r chi.Router) {
		r.Get("/", controllers.PropertiesList(p.Properties, logg))
		r.With(middleware.OptionalAuth(cfg.JWT, p.Sessions, logg)).
			Get("/{propertyId}", controllers.PropertiesGet(p.Properties, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
			r.Use(middleware.Idempotency(p.Redis, logg))
			r.Post("/", controllers.PropertiesCreate(p.Properties, logg))
			r.Get("/mine", controllers.PropertiesListMine(p.Properties, logg))
			r.Put("/{propertyId}", controllers.PropertiesUpdate(p.Properties, logg))
			r.Delete("/{propertyId}", controllers.PropertiesDelete(p.Properties, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.UsersMe(p.Users, logg))
			r.Patch("/me", controllers.UsersUpdateMe(p.Users, logg))
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/quote", controllers.BookingsQuote(p.Bookings, logg))
			r.Post("/", controllers.BookingsCreate(p.Bookings, logg))
			r.Get("/", controllers.BookingsList(p.Bookings, logg))
			r.Get("/{bookingId}", controllers.BookingsGet(p.Bookings, logg))

			r.Post("/{bookingId}/mark-paid", controllers.BookingsAction(p.Bookings, logg, enums.BookingStatusConfirmed))
			r.Post("/{bookingId}/check-in", controllers.BookingsAction(p.Bookings, logg, enums.BookingStatusCheckedIn))
			r.Post("/{bookingId}/check-out", controllers.BookingsAction(p.Bookings, logg, enums.BookingStatusCheckedOut))
			r.Post("/{bookingId}/cancel", controllers.BookingsAction(p.Bookings, logg, enums.BookingStatusCancelled))

			r.Route("/{bookingId}/payments", func(r chi.Router) {
				r.Post("/", controllers.PaymentsCreate(p.Payments, logg))
				r.Get("/latest", controllers.PaymentsLatest(p.Payments, logg))
				r.Post("/check", controllers.PaymentsCheck(p.Payments, logg))
			})

			r.Route("/{bookingId}/chat", func(r chi.Router) {
				r.Get("/", controllers.ChatOpenForBooking(p.Chat, logg))
				r.Post("/messages", controllers.ChatSendForBooking(p.Chat, logg))
			})
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", controllers.ChatListConversations(p.Chat, logg))
			r.Get("/{conversationId}/messages", controllers.ChatListMessages(p.Chat, logg))
			r.Post("/{conversationId}/messages", controllers.ChatSendMessage(p.Chat, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", controllers.AdminPropertiesList(p.Properties, logg))
			r.Post("/{propertyId}/moderate", controllers.AdminPropertiesModerate(p.Properties, logg))
		})
		r.Get("/bookings", controllers.AdminBookingsList(p.Bookings, logg))
		r.Get("/transactions", controllers.AdminTransactionsList(p.Payments, logg))
		r.Post("/conversations/{conversationId}/status", controllers.AdminConversationsModerate(p.Chat, logg))
		r.Post("/users/{userId}/host-verification", controllers.AdminSetHostVerified(p.Users, logg))
	})

	return r
}
