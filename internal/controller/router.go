package controller

import (
	"net/http"
	"time"

	"github.com/cassiomorais/pawapay/internal/infrastructure/config"
	"github.com/cassiomorais/pawapay/internal/infrastructure/observability"
	customMW "github.com/cassiomorais/pawapay/internal/middleware"
	"github.com/cassiomorais/pawapay/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	DepositService *service.DepositService
	HealthChecks   map[string]Pinger
	Metrics        *observability.Metrics
	// Gatherer backs /metrics; the default registry when nil.
	Gatherer     prometheus.Gatherer
	ServerConfig config.ServerConfig
	AuthConfig   config.AuthConfig
	ServiceName  string
	Logger       zerolog.Logger
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	timeout := deps.ServerConfig.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing(deps.ServiceName))
	r.Use(chimw.RealIP)
	r.Use(customMW.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))
	r.Use(customMW.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.ServerConfig.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: deps.ServerConfig.CORS.AllowCredentials,
		MaxAge:           300,
	}))
	if deps.Metrics != nil {
		r.Use(customMW.Metrics(deps.Metrics))
	}

	healthH := NewHealthController(deps.HealthChecks)
	gatewayH := NewGatewayController(deps.DepositService, deps.Logger)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1/pawapay", func(r chi.Router) {
		if rl := deps.ServerConfig.RateLimit; rl.Requests > 0 {
			r.Use(customMW.RateLimit(rl.Requests, rl.Window))
		}
		if deps.AuthConfig.JWTSecret != "" {
			r.Use(customMW.RequireAuth(deps.AuthConfig.JWTSecret))
		}

		r.Post("/predict-provider", gatewayH.PredictProvider)
		r.Post("/payment-page", gatewayH.CreatePaymentPage)
		r.Post("/deposits", gatewayH.InitiateDeposit)
		r.Get("/deposits/{depositId}", gatewayH.DepositStatus)
		r.Get("/journal/{depositId}", gatewayH.Journal)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "route not found", Code: "not_found"})
	})

	return r
}
