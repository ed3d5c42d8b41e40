// Package indicator holds the rolling-window transforms behind the detail
// charts.
package indicator

import "fmt"

// Standard chart windows
const (
	MA20 = 20
	MA50 = 50
)

// SMA returns the simple moving average of closes over window w.
// ⭐ SSOT: 이동평균 계산은 여기서만
//
// The result has len(closes) elements. Element i is nil while i < w-1 and
// the mean of closes[i-w+1..i] afterwards. A running sum keeps each step O(1).
func SMA(closes []float64, w int) ([]*float64, error) {
	if w < 1 {
		return nil, fmt.Errorf("sma window must be >= 1, got %d", w)
	}

	out := make([]*float64, len(closes))
	var sum float64
	for i, c := range closes {
		sum += c
		if i >= w {
			sum -= closes[i-w]
		}
		if i >= w-1 {
			mean := sum / float64(w)
			out[i] = &mean
		}
	}
	return out, nil
}

// Last returns the final defined value of a series, if any
func Last(series []*float64) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i] != nil {
			return *series[i], true
		}
	}
	return 0, false
}
