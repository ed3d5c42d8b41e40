package contracts

import "context"

// TickerSource lists the known tickers
// ⭐ SSOT: 종목 목록 조회 인터페이스
type TickerSource interface {
	FetchTickers(ctx context.Context) ([]Ticker, error)
}

// MarketSource serves per-ticker stats and price history
// ⭐ SSOT: 종목별 통계/시세 조회 인터페이스
type MarketSource interface {
	FetchStats(ctx context.Context, ticker Ticker) (*StatsSnapshot, error)
	FetchHistory(ctx context.Context, ticker Ticker) (PriceHistory, error)
}

// ScoreStore persists the single best quiz score
// ⭐ SSOT: 퀴즈 최고점 저장 인터페이스
type ScoreStore interface {
	// Load returns the stored best score; ok is false when nothing is stored yet.
	Load(ctx context.Context) (score int, ok bool, err error)
	// Save stores score only if it beats the stored value. It returns the
	// stored best afterwards and whether this call raised it.
	Save(ctx context.Context, score int) (best int, raised bool, err error)
}
