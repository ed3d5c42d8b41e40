package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/histolib/internal/api/handlers"
	"github.com/wonny/histolib/internal/contracts"
	"github.com/wonny/histolib/internal/dashboard"
	"github.com/wonny/histolib/internal/detail"
	"github.com/wonny/histolib/internal/gateway"
	"github.com/wonny/histolib/internal/quiz"
	"github.com/wonny/histolib/internal/registry"
	"github.com/wonny/histolib/internal/scheduler"
	"github.com/wonny/histolib/internal/scorestore"
	"github.com/wonny/histolib/pkg/config"
	"github.com/wonny/histolib/pkg/logger"
)

func fp(v float64) *float64 { return &v }

type fakeSource struct{}

func (fakeSource) FetchTickers(ctx context.Context) ([]string, error) {
	return []string{"MSFT", "AAPL"}, nil
}

func (fakeSource) FetchStats(ctx context.Context, t string) (*contracts.StatsSnapshot, error) {
	switch t {
	case "AAPL":
		return &contracts.StatsSnapshot{PriceChangePct: fp(5), AveragePrice: fp(180)}, nil
	case "MSFT":
		return &contracts.StatsSnapshot{PriceChangePct: fp(1)}, nil
	}
	return nil, &gateway.NetworkError{Path: "/stats/" + t, Status: 404}
}

func (fakeSource) FetchHistory(ctx context.Context, t string) (contracts.PriceHistory, error) {
	return contracts.PriceHistory{{Date: "2024-01-02", Close: 10}}, nil
}

type testEnv struct {
	server *httptest.Server
	reg    *registry.Registry
	hub    *Hub
}

func newTestEnv(t *testing.T, cfg *config.Config, opts ...func(*Handlers)) *testEnv {
	t.Helper()
	log := logger.Nop()
	src := fakeSource{}

	bank, err := quiz.DefaultBank()
	require.NoError(t, err)

	reg := registry.New(log)
	loader := registry.NewLoader(src, src, reg, log)
	details := detail.NewLoader(src, log)
	dash := dashboard.New(reg, loader, details, quiz.NewEngine(bank, scorestore.NewMemory(), log), log)
	hub := NewHub(reg, log)

	h := Handlers{
		Cards:   handlers.NewCardsHandler(dash, log),
		Detail:  handlers.NewDetailHandler(details, log),
		Quiz:    handlers.NewQuizHandler(dash, log),
		Actions: handlers.NewActionsHandler(dash, log),
		Stream:  hub,
	}
	for _, opt := range opts {
		opt(&h)
	}
	router := NewRouter(cfg, h, log)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return &testEnv{server: srv, reg: reg, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func cardTickers(t *testing.T, body map[string]interface{}) []string {
	t.Helper()
	raw, ok := body["cards"].([]interface{})
	require.True(t, ok, "cards missing: %v", body)
	out := make([]string, len(raw))
	for i, c := range raw {
		out[i] = c.(map[string]interface{})["ticker"].(string)
	}
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &config.Config{})

	resp, body := env.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestHealthDegraded(t *testing.T) {
	env := newTestEnv(t, &config.Config{}, func(h *Handlers) {
		h.Health = func(ctx context.Context) error { return errors.New("connection refused") }
	})

	resp, body := env.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "connection refused", body["score_store"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t, &config.Config{})

	req, _ := http.NewRequest("GET", env.server.URL+"/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestCardsReloadAndSort(t *testing.T) {
	env := newTestEnv(t, &config.Config{})

	resp, body := env.do(t, "POST", "/api/cards/reload", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"MSFT", "AAPL"}, cardTickers(t, body))

	resp, body = env.do(t, "GET", "/api/cards?sort=change-desc", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cardTickers(t, body))

	resp, _ = env.do(t, "GET", "/api/cards?sort=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, "GET", "/api/cards/AAPL", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["stats_state"])

	resp, _ = env.do(t, "GET", "/api/cards/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDetail(t *testing.T) {
	env := newTestEnv(t, &config.Config{})

	resp, body := env.do(t, "GET", "/api/tickers/AAPL/detail", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["state"])

	resp, body = env.do(t, "GET", "/api/tickers/ZZZZ/detail", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to load: HTTP 404", body["message"])
}

func TestQuizFlow(t *testing.T) {
	env := newTestEnv(t, &config.Config{})

	resp, body := env.do(t, "POST", "/api/quiz/advance", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = env.do(t, "POST", "/api/quiz/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "in_progress", body["phase"])

	resp, _ = env.do(t, "POST", "/api/quiz/answer", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "option is required")

	resp, _ = env.do(t, "POST", "/api/quiz/answer", map[string]int{"option": 9})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, "POST", "/api/quiz/answer", map[string]int{"option": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["score"])

	resp, _ = env.do(t, "POST", "/api/quiz/answer", map[string]int{"option": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = env.do(t, "POST", "/api/quiz/advance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["current_question_index"])
}

func TestActions(t *testing.T) {
	env := newTestEnv(t, &config.Config{})

	resp, _ := env.do(t, "POST", "/api/actions", map[string]string{"type": "fly"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, "POST", "/api/actions", map[string]string{"type": "openDetail"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "ticker required")

	resp, body := env.do(t, "POST", "/api/actions", map[string]string{"type": "reload"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, cardTickers(t, body), 2)

	resp, body = env.do(t, "POST", "/api/actions", map[string]string{"type": "setFilter", "query": "aa"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "aa", body["view"].(map[string]interface{})["query"])

	resp, body = env.do(t, "POST", "/api/actions", map[string]string{"type": "openDetail", "ticker": "MSFT"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MSFT", body["detail"].(map[string]interface{})["ticker"])
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, &config.Config{RateLimitRPS: 0.001, RateLimitBurst: 1})

	resp, _ := env.do(t, "GET", "/api/quiz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, "GET", "/api/quiz", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = env.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health is not throttled")
}

func TestMetricsRoute(t *testing.T) {
	env := newTestEnv(t, &config.Config{MetricsEnabled: true})

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	off := newTestEnv(t, &config.Config{})
	resp, err = http.Get(off.server.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusRecorderHijack(t *testing.T) {
	var w http.ResponseWriter = &statusRecorder{ResponseWriter: httptest.NewRecorder()}

	hj, ok := w.(http.Hijacker)
	require.True(t, ok, "the logging wrapper must not hide http.Hijacker")
	_, _, err := hj.Hijack()
	assert.Error(t, err, "the recorder underneath cannot be hijacked")
}

func TestWebSocketStream(t *testing.T) {
	env := newTestEnv(t, &config.Config{})

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/cards"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first Message
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first.Type)

	require.Eventually(t, func() bool { return env.hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	resp, _ := env.do(t, "POST", "/api/cards/reload", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msg Message
	for msg.Type != "card" {
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "list" {
			assert.Nil(t, msg.Card)
		}
	}
	require.NotNil(t, msg.Card)
	assert.Contains(t, []string{"MSFT", "AAPL"}, msg.Card.Ticker)
}

func TestHubDropsSupersededGenerations(t *testing.T) {
	reg := registry.New(logger.Nop())
	hub := NewHub(reg, logger.Nop())
	defer hub.Close()

	c := &client{send: make(chan []byte, 4)}
	hub.mu.Lock()
	hub.clients[c] = struct{}{}
	hub.mu.Unlock()

	old := reg.BeginList()
	current := reg.BeginList()
	// drain both list events
	require.Len(t, c.send, 2)
	<-c.send
	<-c.send

	hub.broadcast(registry.Event{Generation: old, Card: &registry.Card{}})
	assert.Len(t, c.send, 0, "card from a superseded reload must not reach clients")

	hub.broadcast(registry.Event{Generation: current, Card: &registry.Card{}})
	require.Len(t, c.send, 1)

	var msg Message
	require.NoError(t, json.Unmarshal(<-c.send, &msg))
	assert.Equal(t, "card", msg.Type)
}

type reloadFunc func(ctx context.Context) error

func (f reloadFunc) Reload(ctx context.Context) error { return f(ctx) }

func TestSchedulerRoutes(t *testing.T) {
	var reloads atomic.Int32
	sched := scheduler.New(logger.Nop())
	require.NoError(t, sched.AddJob(scheduler.NewReloadJob(reloadFunc(func(ctx context.Context) error {
		reloads.Add(1)
		return nil
	}), "@hourly", logger.Nop())))

	env := newTestEnv(t, &config.Config{}, func(h *Handlers) {
		h.Scheduler = handlers.NewSchedulerHandler(sched, logger.Nop())
	})

	resp, body := env.do(t, "GET", "/api/scheduler", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	jobs := body["jobs"].([]interface{})
	require.Len(t, jobs, 1)
	assert.Equal(t, "cards_reload", jobs[0].(map[string]interface{})["name"])
	assert.Equal(t, 0.0, jobs[0].(map[string]interface{})["runs"])

	resp, _ = env.do(t, "POST", "/api/scheduler/cards_reload/run", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		_, body := env.do(t, "GET", "/api/scheduler", nil)
		job := body["jobs"].([]interface{})[0].(map[string]interface{})
		return job["runs"] == 1.0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())

	resp, _ = env.do(t, "POST", "/api/scheduler/nightly/run", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSchedulerRoutesAbsentWithoutSchedule(t *testing.T) {
	env := newTestEnv(t, &config.Config{})

	resp, _ := env.do(t, "GET", "/api/scheduler", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
