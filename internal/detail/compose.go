// Package detail builds the per-ticker detail view: close price with its
// moving averages, annual returns and the headline pills.
package detail

import (
	"fmt"

	"github.com/wonny/histolib/internal/contracts"
	"github.com/wonny/histolib/internal/indicator"
	"github.com/wonny/histolib/pkg/format"
)

// PriceSeries is the price chart data. All columns have the same length.
type PriceSeries struct {
	Dates []string   `json:"dates"`
	Close []float64  `json:"close"`
	MA20  []*float64 `json:"ma20"`
	MA50  []*float64 `json:"ma50"`
}

// AnnualReturn is one bar of the annual returns chart
type AnnualReturn struct {
	Year      string  `json:"year"`
	ReturnPct float64 `json:"return_pct"`
}

// View is the composed detail view of one ticker
type View struct {
	Ticker contracts.Ticker `json:"ticker"`

	// Price is nil when the ticker has no history. A nil Price is never
	// rendered as a flat zero line.
	Price *PriceSeries `json:"price"`

	AnnualReturns []AnnualReturn `json:"annual_returns"`

	// Passed through from stats.overall as served
	BestDayPct  *float64 `json:"best_day_pct"`
	WorstDayPct *float64 `json:"worst_day_pct"`
	CAGRPct     *float64 `json:"cagr_pct"`

	Pills []format.Pill `json:"pills"`
}

// HasHistory reports whether a price chart can be drawn
func (v View) HasHistory() bool {
	return v.Price != nil
}

// Compose assembles the detail view. It does no I/O.
func Compose(ticker contracts.Ticker, stats *contracts.StatsSnapshot, hist contracts.PriceHistory) (View, error) {
	if stats == nil {
		stats = &contracts.StatsSnapshot{}
	}
	ov := stats.OverallOrEmpty()

	view := View{
		Ticker:      ticker,
		BestDayPct:  ov.BestDayPct,
		WorstDayPct: ov.WorstDayPct,
		CAGRPct:     ov.CAGRPct,
		Pills:       pills(stats),
	}

	if len(hist) > 0 {
		price, err := priceSeries(hist)
		if err != nil {
			return View{}, fmt.Errorf("compose %s: %w", ticker, err)
		}
		view.Price = price
	}

	view.AnnualReturns = annualReturns(stats)
	return view, nil
}

func priceSeries(hist contracts.PriceHistory) (*PriceSeries, error) {
	closes := hist.Closes()

	ma20, err := indicator.SMA(closes, indicator.MA20)
	if err != nil {
		return nil, err
	}
	ma50, err := indicator.SMA(closes, indicator.MA50)
	if err != nil {
		return nil, err
	}

	return &PriceSeries{
		Dates: hist.Dates(),
		Close: closes,
		MA20:  ma20,
		MA50:  ma50,
	}, nil
}

// annualReturns lists years ascending; a listed year without stats is 0
func annualReturns(stats *contracts.StatsSnapshot) []AnnualReturn {
	years := stats.YearList()
	out := make([]AnnualReturn, 0, len(years))
	for _, y := range years {
		out = append(out, AnnualReturn{
			Year:      y,
			ReturnPct: contracts.ValueOrZero(stats.YearStats[y].ReturnPct),
		})
	}
	return out
}

func pills(stats *contracts.StatsSnapshot) []format.Pill {
	ov := stats.OverallOrEmpty()
	vol := contracts.ValueOrZero(stats.Volatility)

	return []format.Pill{
		{Label: "Avg", Value: format.Money(stats.AveragePrice), Stat: "avg", Tone: format.ToneNeutral},
		{Label: "Δ", Value: format.Percent(stats.PriceChangePct), Stat: "change", Tone: format.SignTone(stats.PriceChangePct)},
		{Label: "Vol", Value: format.Fixed2(&vol), Stat: "volatility", Tone: format.ToneNeutral},
		{Label: "Best", Value: format.Percent(ov.BestDayPct), Stat: "bestDay", Tone: format.ToneNeutral},
		{Label: "Worst", Value: format.Percent(ov.WorstDayPct), Stat: "worstDay", Tone: format.ToneNeutral},
		{Label: "CAGR", Value: format.Percent(ov.CAGRPct), Stat: "cagr", Tone: format.CAGRTone(ov.CAGRPct)},
	}
}
