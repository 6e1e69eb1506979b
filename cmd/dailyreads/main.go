package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/deusflow/dailyreads/internal/app"
	"github.com/deusflow/dailyreads/internal/config"
	"github.com/deusflow/dailyreads/internal/logger"
	"github.com/deusflow/dailyreads/internal/metrics"
)

func main() {
	listSeen := flag.Bool("list-seen", false, "print the seen-URL store and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	logger.Init(cfg.Debug)
	if *listSeen {
		err = cfg.ValidateStore()
	}
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *listSeen {
		if err := printSeen(ctx, cfg); err != nil {
			logger.Error("Listing seen URLs failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if cfg.EnableHTTPMonitoring {
		go startMonitoringServer(cfg.MonitoringPort)
	}

	if cfg.Schedule == "" {
		if err := runOnce(ctx, cfg); err != nil {
			logger.Error("Digest run failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := runScheduled(ctx, cfg); err != nil {
		logger.Error("Scheduler failed", "err", err)
		os.Exit(1)
	}
}

func printSeen(ctx context.Context, cfg *config.Config) error {
	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return app.ListSeen(ctx, store, os.Stdout)
}

func runOnce(ctx context.Context, cfg *config.Config) error {
	pipeline, cleanup, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = pipeline.Run(ctx)
	return err
}

// runScheduled runs the digest on cfg.Schedule until ctx is cancelled.
// A tick that arrives while a run is in progress is skipped.
func runScheduled(ctx context.Context, cfg *config.Config) error {
	var running sync.Mutex
	c := cron.New()

	_, err := c.AddFunc(cfg.Schedule, func() {
		if !running.TryLock() {
			slog.Warn("Previous digest run still in progress, skipping")
			return
		}
		defer running.Unlock()

		slog.Info("Cron triggered digest run")
		if err := runOnce(ctx, cfg); err != nil {
			slog.Error("Scheduled digest run failed", "err", err)
			metrics.Global.SetError(err.Error())
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	slog.Info("Scheduler started", "schedule", cfg.Schedule)

	<-ctx.Done()
	slog.Info("Shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

func startMonitoringServer(port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("Starting monitoring server", "port", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Monitoring server error", "err", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")

	status := "ok"
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
