package registry

import (
	"github.com/wonny/histolib/internal/contracts"
	"github.com/wonny/histolib/pkg/format"
)

// Pills renders the summary badges of a card.
// MA20, MA50 and CAGR only appear when the API supplied them.
func (c Card) Pills() []format.Pill {
	switch c.StatsState {
	case contracts.StatsLoading:
		return []format.Pill{{Label: "Loading stats...", Tone: format.ToneNeutral}}
	case contracts.StatsPending:
		return []format.Pill{{Label: "Stats pending", Tone: format.ToneNeutral}}
	}

	s := c.Stats
	ov := s.OverallOrEmpty()
	vol := contracts.ValueOrZero(s.Volatility)

	pills := []format.Pill{
		{Label: "Avg", Value: format.Money(s.AveragePrice), Stat: "avg", Tone: format.ToneNeutral},
		{Label: "Δ", Value: format.Percent(s.PriceChangePct), Stat: "change", Tone: format.SignTone(s.PriceChangePct)},
		{Label: "Vol", Value: format.Fixed2(&vol), Stat: "volatility", Tone: format.ToneNeutral},
	}
	if ov.MA20Last != nil {
		pills = append(pills, format.Pill{Label: "MA20", Value: format.Money(ov.MA20Last), Stat: "ma20", Tone: format.ToneNeutral})
	}
	if ov.MA50Last != nil {
		pills = append(pills, format.Pill{Label: "MA50", Value: format.Money(ov.MA50Last), Stat: "ma50", Tone: format.ToneNeutral})
	}
	if ov.CAGRPct != nil {
		pills = append(pills, format.Pill{Label: "CAGR", Value: format.Percent(ov.CAGRPct), Stat: "cagr", Tone: format.CAGRTone(ov.CAGRPct)})
	}
	return pills
}
