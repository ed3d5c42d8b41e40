// Package format renders the pill values shown on cards and in the detail
// view. Absent values render as an em dash.
package format

import (
	"github.com/shopspring/decimal"
)

// Missing is rendered for absent values
const Missing = "—"

// Tone classifies a pill for coloring
type Tone string

const (
	ToneNeutral  Tone = "neutral"
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
)

// Pill is one compact labeled badge
type Pill struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Stat  string `json:"stat,omitempty"` // key into the stat explanations
	Tone  Tone   `json:"tone"`
}

// Money formats v as $x.xx
func Money(v *float64) string {
	if v == nil {
		return Missing
	}
	return "$" + round2(*v).StringFixed(2)
}

// Percent formats v as a signed percentage, +x.xx% / -x.xx%
func Percent(v *float64) string {
	if v == nil {
		return Missing
	}
	d := round2(*v)
	sign := ""
	if !d.IsNegative() {
		sign = "+"
	}
	return sign + d.StringFixed(2) + "%"
}

// Fixed2 formats v with two decimals, treating nil as zero
func Fixed2(v *float64) string {
	if v == nil {
		return decimal.Zero.StringFixed(2)
	}
	return round2(*v).StringFixed(2)
}

// SignTone is positive above zero, negative below, neutral otherwise
func SignTone(v *float64) Tone {
	switch {
	case v == nil:
		return ToneNeutral
	case *v > 0:
		return TonePositive
	case *v < 0:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

// CAGRTone: above 10% is good, negative is bad
func CAGRTone(v *float64) Tone {
	switch {
	case v == nil:
		return ToneNeutral
	case *v > 10:
		return TonePositive
	case *v < 0:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
