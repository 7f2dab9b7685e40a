package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/cassiomorais/pawapay/internal/gateway"
	"github.com/cassiomorais/pawapay/internal/infrastructure/config"
	"github.com/cassiomorais/pawapay/internal/infrastructure/observability"
	infraRedis "github.com/cassiomorais/pawapay/internal/infrastructure/redis"
	"github.com/cassiomorais/pawapay/internal/infrastructure/transport"
	"github.com/cassiomorais/pawapay/internal/repository/postgres"
	"github.com/cassiomorais/pawapay/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Metrics  *observability.Metrics
	Registry *prometheus.Registry

	tracer *sdktrace.TracerProvider
}

func New(ctx context.Context, serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(cfg.Observability.LogLevel, os.Stdout).
		With().Str("service", serviceName).Str("instance", cfg.InstanceID).Logger()
	logger.Info().Str("environment", cfg.Gateway.Environment).Msg("Starting")

	app := &App{Config: cfg, Logger: logger}

	if cfg.Observability.EnableTracing {
		tp, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			app.tracer = tp
			logger.Info().Msg("Tracing enabled")
		}
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	var reg prometheus.Registerer = app.Registry
	if !cfg.Observability.EnableMetrics {
		reg = prometheus.NewRegistry()
	}
	app.Metrics = observability.NewMetrics(metricsNamespace, reg)
	logger.Info().Bool("exported", cfg.Observability.EnableMetrics).Msg("Metrics initialized")

	pool, err := postgres.NewPool(ctx, &cfg.Database)
	if err != nil {
		app.shutdownTracer(ctx)
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	app.Pool = pool
	logger.Info().Msg("Connected to PostgreSQL")

	redisClient, err := infraRedis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		pool.Close()
		app.shutdownTracer(ctx)
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	app.Redis = redisClient
	logger.Info().Msg("Connected to Redis")

	return app, nil
}

// GatewayClient builds the gateway client for the configured environment on
// top of the retrying, circuit-broken HTTP transport.
func (a *App) GatewayClient() *gateway.Client {
	gw := a.Config.Gateway
	logger := observability.Component(a.Logger, "gateway")

	httpTransport := transport.NewHTTPTransport(gw,
		transport.WithMetrics(a.Metrics),
		transport.WithLogger(logger),
	)
	return gateway.NewClient(gateway.Config{
		BaseURL: gw.BaseURL(),
		Token:   gw.Token,
		Headers: gw.DefaultHeaders,
	}, httpTransport, gateway.WithLogger(logger))
}

// DepositService wires the gateway client to the Postgres journal and the
// Redis status cache.
func (a *App) DepositService() *service.DepositService {
	cache := infraRedis.NewStatusCache(a.Redis, a.Config.Cache.FinalStatusTTL, a.Config.Cache.KeyPrefix)

	return service.NewDepositService(
		a.GatewayClient(),
		postgres.NewDepositRepository(a.Pool),
		postgres.NewTxManager(a.Pool),
		service.WithStatusCache(cache),
		service.WithMetrics(a.Metrics),
		service.WithLogger(observability.Component(a.Logger, "deposits")),
	)
}

// Close releases connections and flushes pending spans.
func (a *App) Close(ctx context.Context) {
	if err := a.Redis.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close Redis client")
	}
	a.Pool.Close()
	a.shutdownTracer(ctx)
}

func (a *App) shutdownTracer(ctx context.Context) {
	if a.tracer == nil {
		return
	}
	if err := observability.Shutdown(ctx, a.tracer); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to flush traces")
	}
}
