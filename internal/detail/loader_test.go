package detail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/histolib/internal/contracts"
	"github.com/wonny/histolib/internal/gateway"
	"github.com/wonny/histolib/pkg/logger"
)

type fakeMarket struct {
	mu       sync.Mutex
	stats    map[string]*contracts.StatsSnapshot
	statsErr map[string]error
	hist     map[string]contracts.PriceHistory
	histErr  map[string]error
	gates    map[string]chan struct{}
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		stats:    map[string]*contracts.StatsSnapshot{},
		statsErr: map[string]error{},
		hist:     map[string]contracts.PriceHistory{},
		histErr:  map[string]error{},
		gates:    map[string]chan struct{}{},
	}
}

func (f *fakeMarket) wait(ctx context.Context, t string) error {
	f.mu.Lock()
	gate := f.gates[t]
	f.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return &gateway.TransportError{Path: "/fake/" + t, Err: ctx.Err()}
	}
}

func (f *fakeMarket) FetchStats(ctx context.Context, t string) (*contracts.StatsSnapshot, error) {
	if err := f.wait(ctx, t); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats[t], f.statsErr[t]
}

func (f *fakeMarket) FetchHistory(ctx context.Context, t string) (contracts.PriceHistory, error) {
	if err := f.wait(ctx, t); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hist[t], f.histErr[t]
}

func TestLoader_Open(t *testing.T) {
	market := newFakeMarket()
	market.stats["AAPL"] = &contracts.StatsSnapshot{AveragePrice: fp(10)}
	market.hist["AAPL"] = history(3)

	l := NewLoader(market, logger.Nop())
	assert.Equal(t, StateClosed, l.Current().State)

	status, applied := l.Open(context.Background(), "AAPL")
	require.True(t, applied)
	assert.Equal(t, StateReady, status.State)
	require.NotNil(t, status.View)
	assert.True(t, status.View.HasHistory())
	assert.Equal(t, status, l.Current())
}

func TestLoader_OpenSurvivesCallerCancellation(t *testing.T) {
	market := newFakeMarket()
	market.stats["AAPL"] = &contracts.StatsSnapshot{AveragePrice: fp(10)}
	market.hist["AAPL"] = history(3)
	gate := make(chan struct{})
	market.gates["AAPL"] = gate

	l := NewLoader(market, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	type opened struct {
		status  Status
		applied bool
	}
	done := make(chan opened, 1)
	go func() {
		status, applied := l.Open(ctx, "AAPL")
		done <- opened{status, applied}
	}()

	require.Eventually(t, func() bool {
		return l.Current().State == StateLoading
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(gate)

	res := <-done
	require.True(t, res.applied)
	assert.Equal(t, StateReady, res.status.State)
	require.NotNil(t, res.status.View)
	assert.True(t, res.status.View.HasHistory())
}

func TestLoader_HistoryFailureDegradesToEmpty(t *testing.T) {
	market := newFakeMarket()
	market.stats["AAPL"] = &contracts.StatsSnapshot{}
	market.histErr["AAPL"] = &gateway.NetworkError{Path: "/hist/AAPL", Status: 500}

	l := NewLoader(market, logger.Nop())
	status, _ := l.Open(context.Background(), "AAPL")

	assert.Equal(t, StateReady, status.State)
	assert.False(t, status.View.HasHistory())
}

func TestLoader_StatsFailure(t *testing.T) {
	market := newFakeMarket()
	market.statsErr["AAPL"] = &gateway.NetworkError{Path: "/stats/AAPL", Status: 404}
	market.hist["AAPL"] = history(3)

	l := NewLoader(market, logger.Nop())
	status, applied := l.Open(context.Background(), "AAPL")

	assert.True(t, applied)
	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, "Failed to load: HTTP 404", status.Message)
	assert.Nil(t, status.View)
	assert.Equal(t, "Failed to load: HTTP 404", status.Pills()[0].Label)
}

func TestLoader_SupersededOpenIsDiscarded(t *testing.T) {
	market := newFakeMarket()
	market.stats["AAPL"] = &contracts.StatsSnapshot{AveragePrice: fp(1)}
	market.stats["MSFT"] = &contracts.StatsSnapshot{AveragePrice: fp(2)}
	gate := make(chan struct{})
	market.gates["AAPL"] = gate

	l := NewLoader(market, logger.Nop())

	type result struct {
		status  Status
		applied bool
	}
	done := make(chan result, 1)
	go func() {
		s, ok := l.Open(context.Background(), "AAPL")
		done <- result{s, ok}
	}()

	require.Eventually(t, func() bool {
		c := l.Current()
		return c.Ticker == "AAPL" && c.State == StateLoading
	}, 2*time.Second, 5*time.Millisecond)

	msft, applied := l.Open(context.Background(), "MSFT")
	require.True(t, applied)
	assert.Equal(t, "MSFT", msft.Ticker)

	close(gate)
	r := <-done

	assert.False(t, r.applied)
	assert.Equal(t, "MSFT", r.status.Ticker)
	assert.Equal(t, "MSFT", l.Current().Ticker)
	assert.Equal(t, StateReady, l.Current().State)
}

func TestLoader_CloseDiscardsInFlight(t *testing.T) {
	market := newFakeMarket()
	market.stats["AAPL"] = &contracts.StatsSnapshot{}
	gate := make(chan struct{})
	market.gates["AAPL"] = gate

	l := NewLoader(market, logger.Nop())

	done := make(chan bool, 1)
	go func() {
		_, ok := l.Open(context.Background(), "AAPL")
		done <- ok
	}()

	require.Eventually(t, func() bool {
		return l.Current().State == StateLoading
	}, 2*time.Second, 5*time.Millisecond)

	l.Close()
	close(gate)

	assert.False(t, <-done)
	assert.Equal(t, StateClosed, l.Current().State)
}

func TestLoader_FetchDoesNotTouchCurrent(t *testing.T) {
	market := newFakeMarket()
	market.statsErr["AAPL"] = errors.New("boom")

	l := NewLoader(market, logger.Nop())
	status := l.Fetch(context.Background(), "AAPL")

	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, StateClosed, l.Current().State)
}
