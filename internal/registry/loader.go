package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/histolib/internal/contracts"
	"github.com/wonny/histolib/internal/gateway"
	"github.com/wonny/histolib/pkg/logger"
)

// Loader populates a Registry from the remote API
// ⭐ SSOT: 카드 데이터 로딩 오케스트레이션은 여기서만
type Loader struct {
	tickers  contracts.TickerSource
	market   contracts.MarketSource
	registry *Registry
	logger   *logger.Logger
}

// NewLoader creates a loader writing into reg
func NewLoader(tickers contracts.TickerSource, market contracts.MarketSource, reg *Registry, log *logger.Logger) *Loader {
	return &Loader{
		tickers:  tickers,
		market:   market,
		registry: reg,
		logger:   log,
	}
}

// Reload performs a full reload: ticker list, then every card.
// Only a ticker-list failure is returned; per-ticker failures become card states.
// Blocks until every per-ticker fetch has settled. Cancelling ctx does not
// abort the fetches; each one is bounded by the HTTP client timeout.
func (l *Loader) Reload(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	gen := l.registry.BeginList()

	tickers, err := l.tickers.FetchTickers(ctx)
	if err != nil {
		l.logger.WithError(err).WithField("kind", gateway.Kind(err)).Error("Failed to load ticker list")
		l.registry.FailList(gen, err)
		return fmt.Errorf("load tickers: %w", err)
	}

	l.load(ctx, gen, tickers)
	return nil
}

// Load resets the registry to tickers and loads each one.
// Blocks until every per-ticker fetch has settled.
func (l *Loader) Load(ctx context.Context, tickers []contracts.Ticker) {
	ctx = context.WithoutCancel(ctx)
	gen := l.registry.BeginList()
	l.load(ctx, gen, tickers)
}

func (l *Loader) load(ctx context.Context, gen uint64, tickers []contracts.Ticker) {
	if !l.registry.Begin(gen, tickers) {
		return
	}

	l.logger.WithFields(map[string]interface{}{
		"generation": gen,
		"tickers":    len(tickers),
	}).Info("Loading cards")

	var wg sync.WaitGroup
	for _, t := range l.registry.Tickers() {
		wg.Add(2)
		go func(ticker contracts.Ticker) {
			defer wg.Done()
			l.loadStats(ctx, gen, ticker)
		}(t)
		go func(ticker contracts.Ticker) {
			defer wg.Done()
			l.loadHistory(ctx, gen, ticker)
		}(t)
	}
	wg.Wait()

	l.logger.WithField("generation", gen).Info("Card loading settled")
}

func (l *Loader) loadStats(ctx context.Context, gen uint64, ticker contracts.Ticker) {
	log := l.logger.WithTicker(ticker)

	stats, err := l.market.FetchStats(ctx, ticker)
	if err != nil {
		log.WithError(err).WithField("kind", gateway.Kind(err)).Warn("Stats pending")
		l.registry.FailStats(gen, ticker)
		return
	}

	if !l.registry.ApplyStats(gen, ticker, stats) {
		log.Debug("Discarded stale stats result")
	}
}

func (l *Loader) loadHistory(ctx context.Context, gen uint64, ticker contracts.Ticker) {
	log := l.logger.WithTicker(ticker)

	hist, err := l.market.FetchHistory(ctx, ticker)
	if err != nil {
		log.WithError(err).WithField("kind", gateway.Kind(err)).Warn("No history")
		l.registry.FailHistory(gen, ticker)
		return
	}

	if !l.registry.ApplyHistory(gen, ticker, hist) {
		log.Debug("Discarded stale history result")
	}
}
