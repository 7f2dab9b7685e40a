package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cassiomorais/pawapay/internal/bootstrap"
	"github.com/cassiomorais/pawapay/internal/infrastructure/observability"
	infraRedis "github.com/cassiomorais/pawapay/internal/infrastructure/redis"
	"github.com/cassiomorais/pawapay/internal/repository/postgres"
	"github.com/cassiomorais/pawapay/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "pawapay-worker", "pawapay_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close(context.Background())

	workerCfg := app.Config.Worker
	poller := service.NewStatusPoller(
		app.DepositService(),
		postgres.NewDepositRepository(app.Pool),
		infraRedis.NewLocker(app.Redis, workerCfg.LockTTL),
		infraRedis.NewStreamProducer(app.Redis, workerCfg.StatusStream),
		service.PollerConfig{
			Interval:     workerCfg.PollInterval,
			RecheckAfter: workerCfg.RecheckAfter,
			BatchSize:    workerCfg.BatchSize,
			Concurrency:  workerCfg.Concurrency,
			Stream:       workerCfg.StatusStream,
		},
		app.Metrics,
		observability.Component(app.Logger, "poller"),
	)

	// Metrics endpoint for the worker.
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", workerCfg.MetricsPort),
		Handler:           promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	app.Logger.Info().
		Str("stream", workerCfg.StatusStream).
		Dur("interval", workerCfg.PollInterval).
		Int("concurrency", workerCfg.Concurrency).
		Msg("Worker started, polling unsettled deposits...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Status poller.
	g.Go(func() error {
		return poller.Run(gCtx)
	})

	// 2. Metrics server.
	g.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 3. Wait for shutdown signal.
	g.Go(func() error {
		select {
		case <-gCtx.Done():
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
		}
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancelShutdown()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}
