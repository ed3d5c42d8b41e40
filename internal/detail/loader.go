package detail

import (
	"context"
	"sync"

	"github.com/wonny/histolib/internal/contracts"
	"github.com/wonny/histolib/internal/gateway"
	"github.com/wonny/histolib/pkg/format"
	"github.com/wonny/histolib/pkg/logger"
	"github.com/wonny/histolib/pkg/metrics"
)

// State of the open detail view
type State string

const (
	StateClosed  State = "closed"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Status is what the detail view currently shows
type Status struct {
	Ticker  contracts.Ticker `json:"ticker,omitempty"`
	State   State            `json:"state"`
	Message string           `json:"message,omitempty"`
	View    *View            `json:"view,omitempty"`
	Version uint64           `json:"version"`
}

// Pills returns the badges for the current state
func (s Status) Pills() []format.Pill {
	switch s.State {
	case StateLoading:
		return []format.Pill{{Label: "Loading…", Tone: format.ToneNeutral}}
	case StateFailed:
		return []format.Pill{{Label: s.Message, Tone: format.ToneNeutral}}
	case StateReady:
		return s.View.Pills
	default:
		return nil
	}
}

// Loader fetches and composes the detail view of one ticker at a time.
// Opening another ticker supersedes the previous one; a superseded fetch is
// not cancelled, its result is dropped when it arrives.
// ⭐ SSOT: 상세 화면 상태는 여기서만 관리
type Loader struct {
	market contracts.MarketSource
	logger *logger.Logger

	mu      sync.Mutex
	version uint64
	current Status
}

// NewLoader creates a detail loader
func NewLoader(market contracts.MarketSource, log *logger.Logger) *Loader {
	return &Loader{
		market:  market,
		logger:  log,
		current: Status{State: StateClosed},
	}
}

// Open makes ticker the current detail view and loads it. It blocks until
// both fetches settle and returns the resulting status. applied is false
// when another Open or Close happened meanwhile; the returned status is then
// the one that superseded it. Cancelling ctx does not abort the fetch.
func (l *Loader) Open(ctx context.Context, ticker contracts.Ticker) (status Status, applied bool) {
	ctx = context.WithoutCancel(ctx)

	l.mu.Lock()
	l.version++
	version := l.version
	l.current = Status{Ticker: ticker, State: StateLoading, Version: version}
	l.mu.Unlock()

	result := l.Fetch(ctx, ticker)
	result.Version = version

	l.mu.Lock()
	defer l.mu.Unlock()
	if version != l.version {
		metrics.StaleResults.WithLabelValues("detail").Inc()
		l.logger.WithTicker(ticker).Debug("Discarded stale detail result")
		return l.current, false
	}
	l.current = result
	return result, true
}

// Close hides the detail view. A fetch still in flight is discarded.
func (l *Loader) Close() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.version++
	l.current = Status{State: StateClosed, Version: l.version}
	return l.current
}

// Current returns the detail view status
func (l *Loader) Current() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Fetch loads and composes ticker without touching the current view.
// A history failure degrades to an empty history; a stats failure fails
// the whole view.
func (l *Loader) Fetch(ctx context.Context, ticker contracts.Ticker) Status {
	log := l.logger.WithTicker(ticker)

	var (
		wg       sync.WaitGroup
		stats    *contracts.StatsSnapshot
		statsErr error
		hist     contracts.PriceHistory
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		stats, statsErr = l.market.FetchStats(ctx, ticker)
	}()
	go func() {
		defer wg.Done()
		h, err := l.market.FetchHistory(ctx, ticker)
		if err != nil {
			log.WithError(err).WithField("kind", gateway.Kind(err)).Warn("Detail history unavailable")
			return
		}
		hist = h
	}()
	wg.Wait()

	if statsErr != nil {
		log.WithError(statsErr).WithField("kind", gateway.Kind(statsErr)).Warn("Detail stats failed")
		return failed(ticker, statsErr)
	}

	view, err := Compose(ticker, stats, hist)
	if err != nil {
		log.WithError(err).Error("Detail compose failed")
		return failed(ticker, err)
	}

	return Status{Ticker: ticker, State: StateReady, View: &view}
}

func failed(ticker contracts.Ticker, err error) Status {
	return Status{
		Ticker:  ticker,
		State:   StateFailed,
		Message: "Failed to load: " + err.Error(),
	}
}
