package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/wonny/histolib/internal/contracts"
	"github.com/wonny/histolib/pkg/httputil"
	"github.com/wonny/histolib/pkg/logger"
	"github.com/wonny/histolib/pkg/metrics"
)

// Gateway is the only path to the remote read-only stats API.
// ⭐ SSOT: 원격 API 호출은 이 게이트웨이에서만
//
// Every request carries a strictly increasing ts query parameter so no two
// requests share a URL. There are no retries; callers own fallback.
type Gateway struct {
	httpClient *httputil.Client
	baseURL    string
	logger     *logger.Logger

	lastStamp atomic.Int64
	now       func() time.Time
}

// New creates a gateway for baseURL
func New(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Gateway {
	return &Gateway{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     log,
		now:        time.Now,
	}
}

// nextStamp returns max(now_ms, last+1)
func (g *Gateway) nextStamp() int64 {
	for {
		last := g.lastStamp.Load()
		next := g.now().UnixMilli()
		if next <= last {
			next = last + 1
		}
		if g.lastStamp.CompareAndSwap(last, next) {
			return next
		}
	}
}

// requestURL appends the cache-busting parameter to path
func (g *Gateway) requestURL(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%sts=%d", g.baseURL, path, sep, g.nextStamp())
}

// FetchJSON issues one GET for path and decodes the body into dest
func (g *Gateway) FetchJSON(ctx context.Context, path string, dest interface{}) error {
	endpoint := endpointLabel(path)
	start := time.Now()

	err := g.fetch(ctx, path, dest)

	metrics.GatewayLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	metrics.GatewayRequests.WithLabelValues(endpoint, Kind(err)).Inc()

	return err
}

func (g *Gateway) fetch(ctx context.Context, path string, dest interface{}) error {
	resp, err := g.httpClient.Get(ctx, g.requestURL(path))
	if err != nil {
		return &TransportError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		return &NetworkError{Path: path, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Path: path, Err: fmt.Errorf("read response body: %w", err)}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return &MalformedDataError{Path: path, Err: err}
	}

	return nil
}

// FetchTickers returns GET /tickers
func (g *Gateway) FetchTickers(ctx context.Context) ([]contracts.Ticker, error) {
	var tickers []contracts.Ticker
	if err := g.FetchJSON(ctx, "/tickers", &tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

// FetchStats returns GET /stats/{ticker}
func (g *Gateway) FetchStats(ctx context.Context, ticker contracts.Ticker) (*contracts.StatsSnapshot, error) {
	var stats contracts.StatsSnapshot
	if err := g.FetchJSON(ctx, "/stats/"+url.PathEscape(ticker), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// FetchHistory returns GET /hist/{ticker}; a null body decodes as empty
func (g *Gateway) FetchHistory(ctx context.Context, ticker contracts.Ticker) (contracts.PriceHistory, error) {
	var hist contracts.PriceHistory
	if err := g.FetchJSON(ctx, "/hist/"+url.PathEscape(ticker), &hist); err != nil {
		return nil, err
	}
	return hist, nil
}

// endpointLabel keeps metric cardinality bounded: /stats/AAPL -> stats
func endpointLabel(path string) string {
	p := strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(p, "/?"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "root"
	}
	return p
}
