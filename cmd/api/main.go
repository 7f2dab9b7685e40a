package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/pawapay/internal/bootstrap"
	"github.com/cassiomorais/pawapay/internal/controller"
	"github.com/cassiomorais/pawapay/internal/infrastructure/observability"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "pawapay-api", "pawapay")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close(context.Background())

	router := controller.NewRouter(controller.RouterDeps{
		DepositService: app.DepositService(),
		HealthChecks: map[string]controller.Pinger{
			"database": app.Pool,
			"redis": controller.PingFunc(func(ctx context.Context) error {
				return app.Redis.Ping(ctx).Err()
			}),
		},
		Metrics:      app.Metrics,
		Gatherer:     app.Registry,
		ServerConfig: app.Config.Server,
		AuthConfig:   app.Config.Auth,
		ServiceName:  "pawapay-api",
		Logger:       observability.Component(app.Logger, "http"),
	})

	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Str("gateway", app.Config.Gateway.BaseURL()).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
