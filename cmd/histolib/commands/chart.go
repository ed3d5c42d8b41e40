package commands

import (
	"math"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/wonny/histolib/internal/detail"
)

var (
	closeLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	ma20LineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	ma50LineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// bounds returns min/max over values, padded so a flat series still has height
func bounds(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	margin := (hi - lo) * 0.05
	if margin == 0 {
		margin = math.Max(math.Abs(hi)*0.01, 1)
	}
	return lo - margin, hi + margin
}

// renderSparkline draws closes as a braille line without axes.
// Returns "" for fewer than two points.
func renderSparkline(closes []float64, width, height int) string {
	if len(closes) < 2 {
		return ""
	}

	lo, hi := bounds(closes)
	style := positiveStyle
	if closes[len(closes)-1] < closes[0] {
		style = negativeStyle
	}

	lc := linechart.New(width, height,
		0, float64(len(closes)-1),
		lo, hi,
		linechart.WithXYSteps(0, 0),
		linechart.WithStyles(lipgloss.Style{}, lipgloss.Style{}, style),
	)
	for i := 0; i < len(closes)-1; i++ {
		p1 := canvas.Float64Point{X: float64(i), Y: closes[i]}
		p2 := canvas.Float64Point{X: float64(i + 1), Y: closes[i+1]}
		lc.DrawBrailleLineWithStyle(p1, p2, style)
	}
	return lc.View()
}

// renderPriceChart draws close, MA20 and MA50 on one axis.
// MA segments are skipped where the average is undefined.
func renderPriceChart(ps *detail.PriceSeries, width, height int) string {
	n := len(ps.Close)
	if n < 2 {
		return ""
	}

	lo, hi := bounds(ps.Close)

	xLabel := func(index int, value float64) string {
		i := int(math.Round(value))
		if i < 0 || i >= len(ps.Dates) {
			return ""
		}
		return ps.Dates[i]
	}
	yLabel := func(index int, value float64) string {
		return formatPrice(value)
	}

	lc := linechart.New(width, height,
		0, float64(n-1),
		lo, hi,
		linechart.WithXYSteps(4, 5),
		linechart.WithXLabelFormatter(xLabel),
		linechart.WithYLabelFormatter(yLabel),
		linechart.WithStyles(lipgloss.Style{}, lipgloss.Style{}, closeLineStyle),
	)

	drawOptional(&lc, ps.MA50, ma50LineStyle)
	drawOptional(&lc, ps.MA20, ma20LineStyle)
	for i := 0; i < n-1; i++ {
		p1 := canvas.Float64Point{X: float64(i), Y: ps.Close[i]}
		p2 := canvas.Float64Point{X: float64(i + 1), Y: ps.Close[i+1]}
		lc.DrawBrailleLineWithStyle(p1, p2, closeLineStyle)
	}

	lc.DrawXYAxisAndLabel()
	return lc.View()
}

func drawOptional(lc *linechart.Model, series []*float64, style lipgloss.Style) {
	for i := 0; i < len(series)-1; i++ {
		if series[i] == nil || series[i+1] == nil {
			continue
		}
		p1 := canvas.Float64Point{X: float64(i), Y: *series[i]}
		p2 := canvas.Float64Point{X: float64(i + 1), Y: *series[i+1]}
		lc.DrawBrailleLineWithStyle(p1, p2, style)
	}
}
