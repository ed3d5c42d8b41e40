package contracts

// Derived holds the sortable metrics of a card
type Derived struct {
	Change     float64 `json:"change"`
	Volatility float64 `json:"volatility"`
	CAGR       float64 `json:"cagr"`
}

// DeriveFrom extracts the sortable metrics from a successful stats fetch.
// Missing fields become 0 so comparisons never see non-numeric values.
func DeriveFrom(stats *StatsSnapshot) Derived {
	if stats == nil {
		return Derived{}
	}
	ov := stats.OverallOrEmpty()
	return Derived{
		Change:     ValueOrZero(stats.PriceChangePct),
		Volatility: ValueOrZero(stats.Volatility),
		CAGR:       ValueOrZero(ov.CAGRPct),
	}
}

// CardEntry is the registry value for one ticker
type CardEntry struct {
	Ticker  Ticker  `json:"ticker"`
	Derived Derived `json:"derived"`
}

// StatsState is the stats half of a card's load state
type StatsState string

const (
	StatsLoading StatsState = "loading"
	StatsReady   StatsState = "ready"
	StatsPending StatsState = "pending" // fetch failed; derived left at last good value
)

// HistoryState is the sparkline half of a card's load state
type HistoryState string

const (
	HistoryLoading HistoryState = "loading"
	HistoryReady   HistoryState = "ready"
	HistoryNone    HistoryState = "none" // fetch failed or empty history
)
