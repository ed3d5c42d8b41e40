package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/histolib/internal/api/handlers"
	"github.com/wonny/histolib/pkg/config"
	"github.com/wonny/histolib/pkg/logger"
	"github.com/wonny/histolib/pkg/metrics"
)

// Handlers groups every route handler
type Handlers struct {
	Cards   *handlers.CardsHandler
	Detail  *handlers.DetailHandler
	Quiz    *handlers.QuizHandler
	Actions *handlers.ActionsHandler
	Stream  *Hub

	// Scheduler is nil when no reload schedule is configured
	Scheduler *handlers.SchedulerHandler

	// Health checks backing connections; nil means always healthy
	Health func(ctx context.Context) error
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(cfg *config.Config, h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(h.Health, log)).Methods("GET")

	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler()).Methods("GET")
	}

	// Live card updates
	r.HandleFunc("/ws/cards", h.Stream.ServeWS).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Cards
	api.HandleFunc("/cards", h.Cards.List).Methods("GET")
	api.HandleFunc("/cards/reload", h.Cards.Reload).Methods("POST")
	api.HandleFunc("/cards/{ticker}", h.Cards.Get).Methods("GET")

	// Detail
	api.HandleFunc("/tickers/{ticker}/detail", h.Detail.Get).Methods("GET")

	// Quiz
	api.HandleFunc("/quiz", h.Quiz.Get).Methods("GET")
	api.HandleFunc("/quiz/start", h.Quiz.Start).Methods("POST")
	api.HandleFunc("/quiz/answer", h.Quiz.Answer).Methods("POST")
	api.HandleFunc("/quiz/advance", h.Quiz.Advance).Methods("POST")

	// Generic action dispatch
	api.HandleFunc("/actions", h.Actions.Dispatch).Methods("POST")
	api.HandleFunc("/snapshot", h.Actions.Snapshot).Methods("GET")

	// Scheduled jobs
	if h.Scheduler != nil {
		api.HandleFunc("/scheduler", h.Scheduler.List).Methods("GET")
		api.HandleFunc("/scheduler/{job}/run", h.Scheduler.Run).Methods("POST")
	}

	api.Use(rateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, log))

	// Apply middleware
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status.
// 503 when the score store cannot be reached.
func healthCheckHandler(check func(ctx context.Context) error, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]interface{}{
			"status":  "ok",
			"service": "histolib-api",
		}

		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				log.WithError(err).Warn("Health check failed")
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["score_store"] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
