package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/pratik-mahalle/mealplanner/docs"
	"github.com/pratik-mahalle/mealplanner/internal/api/handlers"
	"github.com/pratik-mahalle/mealplanner/internal/api/middleware"
	"github.com/pratik-mahalle/mealplanner/internal/auth"
	"github.com/pratik-mahalle/mealplanner/internal/config"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/metrics"
)

// Handlers groups the HTTP handlers mounted by New
type Handlers struct {
	Health   *handlers.HealthHandler
	Plan     *handlers.PlanHandler
	Quota    *handlers.QuotaHandler
	MealPlan *handlers.MealPlanHandler
	Payment  *handlers.PaymentHandler
}

// Limiters are the rate limiters shared across requests
type Limiters struct {
	IP   *middleware.RateLimiter
	User *middleware.RateLimiter
}

// NewLimiters builds limiters from cfg
func NewLimiters(cfg config.RateLimitConfig) Limiters {
	return Limiters{
		IP:   middleware.NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		User: middleware.NewRateLimiter(cfg.UserRequestsPerSecond, cfg.UserBurst),
	}
}

// New builds the API router
func New(cfg *config.Config, log *logger.Logger, verifier auth.Verifier, limiters Limiters, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(metrics.Middleware)
	// Logger must wrap the writer seen by handlers so AddLogField reaches it
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(limiters.IP))

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
		r.Handle("/metrics", metrics.Handler())

		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)

		r.Get("/api/v1/plans", h.Plan.List)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(verifier, log))
		r.Use(middleware.UserRateLimit(limiters.User))

		r.Route("/api/v1/quota", func(r chi.Router) {
			r.Get("/", h.Quota.Info)
			r.Post("/reserve", h.Quota.Reserve)
		})

		r.Route("/api/v1/mealplans", func(r chi.Router) {
			r.Get("/", h.MealPlan.List)
			r.Post("/", h.MealPlan.Generate)
			r.Get("/{id}", h.MealPlan.Get)
		})

		r.Route("/api/v1/payments", func(r chi.Router) {
			r.Post("/verify", h.Payment.Verify)
			r.Get("/callback", h.Payment.Callback)
		})

		r.Post("/api/v1/subscription/cancel", h.Payment.CancelSubscription)
	})

	return r
}
