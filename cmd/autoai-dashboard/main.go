package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"autoai-dashboard/internal/charts"
	"autoai-dashboard/internal/config"
	"autoai-dashboard/internal/dashboard"
	"autoai-dashboard/internal/predictapi"
	"autoai-dashboard/internal/server"
	"autoai-dashboard/internal/supervisor"
	"autoai-dashboard/internal/view"
	"autoai-dashboard/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(2)
	}

	out, err := logOutput(cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log file error:", err)
		os.Exit(2)
	}
	logger := newLogger(cfg.LogLevel, out)

	logConfig(logger, cfg)

	metrics := supervisor.NewMetrics(prometheus.DefaultRegisterer)

	client, err := predictapi.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, logger, metrics)
	if err != nil {
		logger.Error("failed to create prediction api client", "err", err)
		os.Exit(2)
	}

	ctrl := dashboard.New(client, charts.NewAdapter(), metrics, logger, dashboard.Options{
		PollInterval:  cfg.HealthPollInterval,
		HealthTimeout: cfg.HealthCheckTimeout,
	})

	views, err := view.New(web.Templates())
	if err != nil {
		logger.Error("failed to load templates", "err", err)
		os.Exit(2)
	}

	h, err := server.New(ctrl, views, web.Static(), cfg, prometheus.DefaultGatherer, logger)
	if err != nil {
		logger.Error("failed to create server", "err", err)
		os.Exit(2)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting autoai-dashboard", "listen", cfg.ListenAddr, "api", cfg.APIBaseURL)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// The page is served while startup runs; interactions answer 503
		// until the controller is bound.
		ctrl.Start(gctx)
		<-gctx.Done()
		logger.Info("shutting down")

		ctrl.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("exited with error", "err", err)
		os.Exit(1)
	}
}

// logOutput returns stdout, or a daily rotated file when path is set.
func logOutput(path string) (io.Writer, error) {
	if path == "" {
		return os.Stdout, nil
	}
	rl, err := rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("rotatelogs %s: %w", path, err)
	}
	return rl, nil
}

func newLogger(level string, w io.Writer) *slog.Logger {
	lvl := new(slog.LevelVar)
	switch level {
	case "debug":
		lvl.Set(slog.LevelDebug)
	case "info":
		lvl.Set(slog.LevelInfo)
	case "warn", "warning":
		lvl.Set(slog.LevelWarn)
	case "error":
		lvl.Set(slog.LevelError)
	default:
		lvl.Set(slog.LevelInfo)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}

func logConfig(logger *slog.Logger, cfg config.Config) {
	logger.Info("configuration",
		"listen_addr", cfg.ListenAddr,
		"api_base_url", cfg.APIBaseURL,
		"request_timeout", cfg.RequestTimeout,
		"health_poll_interval", cfg.HealthPollInterval,
		"health_check_timeout", cfg.HealthCheckTimeout,
		"predict_rate", cfg.PredictRate,
		"stats_cache_ttl", cfg.StatsCacheTTL,
		"cors_allow_origin", cfg.CORSAllowOrigin,
		"metrics_enabled", cfg.MetricsEnabled,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)
}
