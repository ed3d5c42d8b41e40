// Package index orders and filters the known ticker set. Every function is
// pure: the same tickers, view and lookup always give the same result.
package index

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/wonny/histolib/internal/contracts"
)

// ErrUnknownSortMode is returned by ParseSortMode
var ErrUnknownSortMode = errors.New("unknown sort mode")

// SortMode is one of the fixed sort orders
type SortMode string

const (
	SortNone           SortMode = "" // load order
	SortAlphaAsc       SortMode = "alpha-asc"
	SortAlphaDesc      SortMode = "alpha-desc"
	SortChangeDesc     SortMode = "change-desc"
	SortChangeAsc      SortMode = "change-asc"
	SortVolatilityDesc SortMode = "volatility-desc"
	SortVolatilityAsc  SortMode = "volatility-asc"
	SortCAGRDesc       SortMode = "cagr-desc"
)

// SortModes lists every selectable mode
var SortModes = []SortMode{
	SortAlphaAsc,
	SortAlphaDesc,
	SortChangeDesc,
	SortChangeAsc,
	SortVolatilityDesc,
	SortVolatilityAsc,
	SortCAGRDesc,
}

// ParseSortMode validates s; "alpha" is accepted for alpha-asc
func ParseSortMode(s string) (SortMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortNone, nil
	}
	if s == "alpha" {
		return SortAlphaAsc, nil
	}
	for _, m := range SortModes {
		if string(m) == s {
			return m, nil
		}
	}
	return SortNone, fmt.Errorf("%w: %q", ErrUnknownSortMode, s)
}

// Lookup resolves a ticker's derived metrics; ok is false without an entry
type Lookup interface {
	Lookup(ticker contracts.Ticker) (contracts.Derived, bool)
}

// LookupFunc adapts a function to Lookup
type LookupFunc func(ticker contracts.Ticker) (contracts.Derived, bool)

// Lookup implements Lookup
func (f LookupFunc) Lookup(ticker contracts.Ticker) (contracts.Derived, bool) {
	return f(ticker)
}

// Matches reports whether query is a case-insensitive substring of ticker.
// An empty query matches everything.
func Matches(ticker contracts.Ticker, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(ticker), q)
}

// Filter keeps the tickers matching query, preserving order
func Filter(tickers []contracts.Ticker, query string) []contracts.Ticker {
	out := make([]contracts.Ticker, 0, len(tickers))
	for _, t := range tickers {
		if Matches(t, query) {
			out = append(out, t)
		}
	}
	return out
}

// Sort returns a new slice ordered by mode. Tickers without an entry sort
// as 0 on numeric modes. Equal keys keep their input order.
func Sort(tickers []contracts.Ticker, mode SortMode, lookup Lookup) []contracts.Ticker {
	out := make([]contracts.Ticker, len(tickers))
	copy(out, tickers)

	switch mode {
	case SortAlphaAsc, SortAlphaDesc:
		col := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			c := col.CompareString(out[i], out[j])
			if mode == SortAlphaDesc {
				return c > 0
			}
			return c < 0
		})
	case SortChangeDesc, SortChangeAsc, SortVolatilityDesc, SortVolatilityAsc, SortCAGRDesc:
		key := keyFor(mode)
		desc := mode == SortChangeDesc || mode == SortVolatilityDesc || mode == SortCAGRDesc

		// Resolve keys once so the comparator sees a consistent view even if
		// the registry is being written concurrently.
		keys := make(map[contracts.Ticker]float64, len(out))
		for _, t := range out {
			d, _ := lookup.Lookup(t)
			keys[t] = key(d)
		}
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return keys[out[i]] > keys[out[j]]
			}
			return keys[out[i]] < keys[out[j]]
		})
	}

	return out
}

func keyFor(mode SortMode) func(contracts.Derived) float64 {
	switch mode {
	case SortChangeDesc, SortChangeAsc:
		return func(d contracts.Derived) float64 { return d.Change }
	case SortVolatilityDesc, SortVolatilityAsc:
		return func(d contracts.Derived) float64 { return d.Volatility }
	default:
		return func(d contracts.Derived) float64 { return d.CAGR }
	}
}

// View is the user's current sort and filter selection
type View struct {
	Sort  SortMode `json:"sort"`
	Query string   `json:"query"`
}

// Row is one ticker in display order
type Row struct {
	Ticker  contracts.Ticker `json:"ticker"`
	Visible bool             `json:"visible"`
}

// Apply orders every known ticker by view.Sort and flags the ones matching
// view.Query. Hidden tickers keep their slot.
func Apply(tickers []contracts.Ticker, view View, lookup Lookup) []Row {
	ordered := Sort(tickers, view.Sort, lookup)
	rows := make([]Row, len(ordered))
	for i, t := range ordered {
		rows[i] = Row{Ticker: t, Visible: Matches(t, view.Query)}
	}
	return rows
}

// VisibleTickers returns the visible tickers of rows in order
func VisibleTickers(rows []Row) []contracts.Ticker {
	out := make([]contracts.Ticker, 0, len(rows))
	for _, r := range rows {
		if r.Visible {
			out = append(out, r.Ticker)
		}
	}
	return out
}
