package contracts

import "sort"

// Ticker is the stable identifier of a stock. Primary key everywhere.
type Ticker = string

// PricePoint is one daily close as served by GET /hist/{ticker}
type PricePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// PriceHistory is ascending by date and may be empty
type PriceHistory []PricePoint

// Closes returns the close column
func (h PriceHistory) Closes() []float64 {
	out := make([]float64, len(h))
	for i, p := range h {
		out[i] = p.Close
	}
	return out
}

// Dates returns the date column
func (h PriceHistory) Dates() []string {
	out := make([]string, len(h))
	for i, p := range h {
		out[i] = p.Date
	}
	return out
}

// StatsSnapshot is the GET /stats/{ticker} payload.
// ⭐ SSOT: 원격 API 통계 응답 형태
// Every numeric field is optional; nil means the API omitted it.
type StatsSnapshot struct {
	AveragePrice   *float64            `json:"average_price,omitempty"`
	PriceChangePct *float64            `json:"price_change_pct,omitempty"`
	Volatility     *float64            `json:"volatility,omitempty"`
	Overall        *OverallStats       `json:"overall,omitempty"`
	Years          []string            `json:"years,omitempty"`
	YearStats      map[string]YearStat `json:"year_stats,omitempty"`
}

// OverallStats holds whole-period metrics
type OverallStats struct {
	MA20Last    *float64 `json:"ma20_last,omitempty"`
	MA50Last    *float64 `json:"ma50_last,omitempty"`
	CAGRPct     *float64 `json:"cagr_pct,omitempty"`
	BestDayPct  *float64 `json:"best_day_pct,omitempty"`
	WorstDayPct *float64 `json:"worst_day_pct,omitempty"`
}

// YearStat holds one calendar year's metrics
type YearStat struct {
	ReturnPct *float64 `json:"return_pct,omitempty"`
}

// OverallOrEmpty never returns nil
func (s *StatsSnapshot) OverallOrEmpty() OverallStats {
	if s == nil || s.Overall == nil {
		return OverallStats{}
	}
	return *s.Overall
}

// YearList returns the explicit year list when present, otherwise the
// year_stats keys, sorted ascending.
func (s *StatsSnapshot) YearList() []string {
	if s == nil {
		return nil
	}

	var years []string
	if len(s.Years) > 0 {
		years = append(years, s.Years...)
	} else {
		years = make([]string, 0, len(s.YearStats))
		for y := range s.YearStats {
			years = append(years, y)
		}
	}

	sort.Strings(years)
	return years
}

// ValueOrZero dereferences v, defaulting to 0
func ValueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
