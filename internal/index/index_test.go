package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/histolib/internal/contracts"
)

func mapLookup(m map[string]contracts.Derived) Lookup {
	return LookupFunc(func(t string) (contracts.Derived, bool) {
		d, ok := m[t]
		return d, ok
	})
}

func TestSort_DefaultForMissingEntry(t *testing.T) {
	lookup := mapLookup(map[string]contracts.Derived{
		"A": {Change: 5},
		"B": {Change: -2},
	})

	got := Sort([]string{"B", "C", "A"}, SortChangeDesc, lookup)
	assert.Equal(t, []string{"A", "C", "B"}, got)
}

func TestSort_NumericModes(t *testing.T) {
	lookup := mapLookup(map[string]contracts.Derived{
		"AAPL": {Change: 10, Volatility: 25, CAGR: 20},
		"MSFT": {Change: 3, Volatility: 18, CAGR: 15},
		"TSLA": {Change: -4, Volatility: 60, CAGR: 30},
	})
	tickers := []string{"MSFT", "TSLA", "AAPL"}

	tests := []struct {
		mode SortMode
		want []string
	}{
		{SortChangeDesc, []string{"AAPL", "MSFT", "TSLA"}},
		{SortChangeAsc, []string{"TSLA", "MSFT", "AAPL"}},
		{SortVolatilityDesc, []string{"TSLA", "AAPL", "MSFT"}},
		{SortVolatilityAsc, []string{"MSFT", "AAPL", "TSLA"}},
		{SortCAGRDesc, []string{"TSLA", "AAPL", "MSFT"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.want, Sort(tickers, tt.mode, lookup))
		})
	}
}

func TestSort_StableForEqualKeys(t *testing.T) {
	lookup := mapLookup(map[string]contracts.Derived{})
	tickers := []string{"Z", "M", "A", "Q"}

	assert.Equal(t, tickers, Sort(tickers, SortChangeDesc, lookup))
	assert.Equal(t, tickers, Sort(tickers, SortVolatilityAsc, lookup))
}

func TestSort_Alpha(t *testing.T) {
	lookup := mapLookup(nil)
	tickers := []string{"msft", "AAPL", "goog", "AMD"}

	assert.Equal(t, []string{"AAPL", "AMD", "goog", "msft"}, Sort(tickers, SortAlphaAsc, lookup))
	assert.Equal(t, []string{"msft", "goog", "AMD", "AAPL"}, Sort(tickers, SortAlphaDesc, lookup))
}

func TestSort_NoneKeepsOrderAndDoesNotAlias(t *testing.T) {
	tickers := []string{"B", "A"}
	got := Sort(tickers, SortNone, mapLookup(nil))
	assert.Equal(t, []string{"B", "A"}, got)

	got[0] = "X"
	assert.Equal(t, "B", tickers[0])
}

func TestMatchesAndFilter(t *testing.T) {
	assert.True(t, Matches("AAPL", "AA"))
	assert.True(t, Matches("AAPL", "aa"))
	assert.False(t, Matches("MSFT", "AA"))
	assert.True(t, Matches("MSFT", ""))
	assert.True(t, Matches("MSFT", "  "))

	all := []string{"AAPL", "MSFT", "AMZN"}
	assert.Equal(t, all, Filter(all, ""))
	assert.Equal(t, []string{"AAPL"}, Filter(all, "AA"))
	assert.Empty(t, Filter(all, "zzz"))
}

func TestParseSortMode(t *testing.T) {
	for _, m := range SortModes {
		got, err := ParseSortMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseSortMode("alpha")
	require.NoError(t, err)
	assert.Equal(t, SortAlphaAsc, got)

	got, err = ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortNone, got)

	_, err = ParseSortMode("price-desc")
	assert.ErrorIs(t, err, ErrUnknownSortMode)
}

func TestApply(t *testing.T) {
	lookup := mapLookup(map[string]contracts.Derived{
		"AAPL": {Change: 1},
		"MSFT": {Change: 9},
		"AMZN": {Change: 5},
	})

	rows := Apply([]string{"AAPL", "MSFT", "AMZN"}, View{Sort: SortChangeDesc, Query: "a"}, lookup)

	assert.Equal(t, []Row{
		{Ticker: "MSFT", Visible: false},
		{Ticker: "AMZN", Visible: true},
		{Ticker: "AAPL", Visible: true},
	}, rows)
	assert.Equal(t, []string{"AMZN", "AAPL"}, VisibleTickers(rows))
}
