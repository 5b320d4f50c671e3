package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/matchxg/internal/adapters/http/api"
	"github.com/okian/matchxg/internal/adapters/http/live"
	"github.com/okian/matchxg/internal/adapters/http/swagger"
	"github.com/okian/matchxg/internal/adapters/schedule"
	service "github.com/okian/matchxg/internal/app"
	"github.com/okian/matchxg/internal/config"
	"github.com/okian/matchxg/pkg/logger"
	"github.com/okian/matchxg/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the match API, live feed and clock",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(ctx)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		defer func() { _ = logger.Sync() }()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()
	applyLogLevel(ctx, cfg)

	metrics.Init(metricsOptions(cfg)...)

	hub := live.NewHub(live.WithLogger(log.Named("live")), live.WithAllowedOrigins(cfg.Origins()))
	go hub.Run(ctx)

	ticker, err := schedule.NewTicker(cfg.TickInterval(), schedule.WithLogger(log.Named("clock")))
	if err != nil {
		return fmt.Errorf("create clock ticker: %w", err)
	}

	opts, err := serviceOptions(cfg, log)
	if err != nil {
		return err
	}
	svc := service.New(append(opts, service.WithTicker(ticker), service.WithBroadcaster(hub))...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(cfg, svc, hub),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.Duration("tick", cfg.TickInterval()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newHandler registers every route and applies CORS.
func newHandler(cfg *config.Config, svc *service.Service, hub http.Handler) http.Handler {
	server := api.NewServer(svc,
		api.WithLiveHandler(hub),
		api.WithDocsHandler(swagger.Handler()),
		api.WithAllowedOrigins(cfg.Origins()),
	)
	mux := http.NewServeMux()
	server.Register(mux)
	return server.Handler(mux)
}

// startSystemMetricsUpdater samples runtime stats until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		last := m.PauseNs[(m.NumGC+255)%256]
		metrics.RecordSystemGCPauseTime(float64(last) / nanosecondsPerMillisecond)
	}
}
