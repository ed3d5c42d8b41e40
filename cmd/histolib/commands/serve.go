package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/histolib/internal/api"
	"github.com/wonny/histolib/internal/api/handlers"
	"github.com/wonny/histolib/internal/scheduler"
	"github.com/wonny/histolib/pkg/metrics"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Long: `Start the HTTP/WebSocket dashboard server.

This command:
- loads the ticker list and every card in the background
- serves cards, detail views and the quiz over REST
- streams card updates over WebSocket
- optionally reloads the cards on a cron schedule (REFRESH_SCHEDULE)

Endpoints:
  GET  /health                      - Health check
  GET  /metrics                     - Prometheus metrics
  GET  /ws/cards                    - Live card stream
  GET  /api/cards?sort=&q=          - Cards in display order
  GET  /api/cards/{ticker}          - One card
  POST /api/cards/reload            - Reload every card
  GET  /api/tickers/{ticker}/detail - Detail view
  GET  /api/quiz                    - Quiz state
  POST /api/quiz/start|answer|advance
  POST /api/actions                 - Dispatch any dashboard action
  GET  /api/snapshot                - Full dashboard state
  GET  /api/scheduler               - Reload job runs (with --schedule)
  POST /api/scheduler/{job}/run     - Run a job now

Example:
  go run ./cmd/histolib serve
  go run ./cmd/histolib serve --port 8080`,
	RunE: runServe,
}

var (
	servePort     string
	serveSchedule string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default PORT or 8089)")
	serveCmd.Flags().StringVar(&serveSchedule, "schedule", "", "cron schedule for full reloads, overrides REFRESH_SCHEDULE")
}

func runServe(cmd *cobra.Command, args []string) error {
	out = cmd.OutOrStdout()
	fmt.Fprintln(out, "=== HistoLib API Server ===")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Load config, logger and core components
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, log := a.cfg, a.log
	if servePort != "" {
		cfg.Port = servePort
	}
	if serveSchedule != "" {
		cfg.RefreshSchedule = serveSchedule
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"env":         cfg.Env,
		"api":         cfg.API.BaseURL,
		"score_store": a.store.Backend,
	}).Info("Initializing API server")

	// 2. Create handlers
	hub := api.NewHub(a.registry, log)
	defer hub.Close()

	h := api.Handlers{
		Cards:   handlers.NewCardsHandler(a.dash, log),
		Detail:  handlers.NewDetailHandler(a.details, log),
		Quiz:    handlers.NewQuizHandler(a.dash, log),
		Actions: handlers.NewActionsHandler(a.dash, log),
		Stream:  hub,
		Health:  a.store.Ping,
	}

	// 3. Optional reload schedule
	var sched *scheduler.Scheduler
	if cfg.RefreshSchedule != "" {
		if err := scheduler.ValidateSchedule(cfg.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid refresh schedule: %w", err)
		}
		sched = scheduler.New(log)
		if err := sched.AddJob(scheduler.NewReloadJob(a.loader, cfg.RefreshSchedule, log)); err != nil {
			return fmt.Errorf("register reload job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		h.Scheduler = handlers.NewSchedulerHandler(sched, log)
	}

	// 4. Create router and server
	router := api.NewRouter(cfg, h, log)
	server := api.New(cfg, log, router)

	// 5. Separate metrics listener when a different port is configured
	var metricsServer *http.Server
	if cfg.MetricsEnabled && cfg.MetricsPort != "" && cfg.MetricsPort != cfg.Port {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	// 6. Initial load in the background; cards stream in as they arrive
	go func() {
		if err := a.loader.Reload(ctx); err != nil {
			log.WithError(err).Warn("Initial ticker load failed")
		}
	}()

	// 7. Start server with graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Fprintf(out, "\n✅ Server running on http://localhost:%s\n", cfg.Port)
	if metricsServer != nil {
		fmt.Fprintf(out, "   Metrics on http://localhost:%s/metrics\n", cfg.MetricsPort)
	}
	if sched != nil {
		fmt.Fprintf(out, "   Reload schedule: %s\n", cfg.RefreshSchedule)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Metrics server shutdown failed")
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
