package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealplanner",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mealplanner",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mealplanner",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Quota metrics
	quotaDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealplanner",
			Name:      "quota_decisions_total",
			Help:      "Total number of quota decisions",
		},
		[]string{"action", "outcome"},
	)

	creditsChargedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealplanner",
			Subsystem: "quota",
			Name:      "credits_charged_total",
			Help:      "Total credits charged by successful reservations",
		},
		[]string{"plan"},
	)

	// Payment metrics
	paymentReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealplanner",
			Name:      "payment_reconciliations_total",
			Help:      "Total number of payment reconciliations by terminal state",
		},
		[]string{"state"},
	)

	subscriptionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mealplanner",
			Name:      "subscriptions_expired_total",
			Help:      "Total number of subscriptions soft-expired after their interval ended",
		},
	)

	gatewayFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mealplanner",
			Subsystem: "payment",
			Name:      "gateway_fetch_duration_seconds",
			Help:      "Duration of gateway payment lookups in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"gateway", "status"},
	)

	// Generation metrics
	generationTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealplanner",
			Name:      "generation_tokens_total",
			Help:      "Total tokens consumed by meal plan generation",
		},
		[]string{"provider"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mealplanner",
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Duration of meal plan generation in seconds",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 90},
		},
		[]string{"provider", "status"},
	)

	// Catalog metrics
	catalogPlans = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mealplanner",
			Subsystem: "catalog",
			Name:      "plans",
			Help:      "Number of plans in the loaded catalog snapshot",
		},
	)

	catalogRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealplanner",
			Subsystem: "catalog",
			Name:      "refresh_total",
			Help:      "Total number of catalog refreshes",
		},
		[]string{"status"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		// Get route pattern from chi
		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePattern = rctx.RoutePattern()
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordQuotaDecision records an allow/deny outcome for an action
func RecordQuotaDecision(action, outcome string) {
	quotaDecisionsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordCreditsCharged records credits consumed on a plan
func RecordCreditsCharged(planID string, credits int64) {
	creditsChargedTotal.WithLabelValues(planID).Add(float64(credits))
}

// RecordReconciliation records a terminal reconciliation state
func RecordReconciliation(state string) {
	paymentReconciliationsTotal.WithLabelValues(state).Inc()
}

// RecordSubscriptionsExpired records subscriptions moved to expired by a sweep
func RecordSubscriptionsExpired(n int64) {
	if n > 0 {
		subscriptionsExpiredTotal.Add(float64(n))
	}
}

// RecordGatewayFetch records a gateway payment lookup
func RecordGatewayFetch(gateway, status string, duration time.Duration) {
	gatewayFetchDuration.WithLabelValues(gateway, status).Observe(duration.Seconds())
}

// RecordGeneration records a generator call and the tokens it consumed
func RecordGeneration(provider, status string, tokens int, duration time.Duration) {
	generationDuration.WithLabelValues(provider, status).Observe(duration.Seconds())
	if tokens > 0 {
		generationTokensTotal.WithLabelValues(provider).Add(float64(tokens))
	}
}

// RecordCatalogRefresh records a catalog reload and the resulting plan count
func RecordCatalogRefresh(status string, plans int) {
	catalogRefreshTotal.WithLabelValues(status).Inc()
	if status == "success" {
		catalogPlans.Set(float64(plans))
	}
}
