package commands

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/histolib/internal/quiz"
	"github.com/wonny/histolib/internal/scorestore"
	"github.com/wonny/histolib/pkg/format"
	"github.com/wonny/histolib/pkg/logger"
)

func newStatsServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/tickers":
			w.Write([]byte(`["MSFT","AAPL"]`))
		case "/stats/AAPL":
			w.Write([]byte(`{"average_price":180,"price_change_pct":5,"volatility":1.2,
				"overall":{"cagr_pct":12,"best_day_pct":4,"worst_day_pct":-3},
				"year_stats":{"2023":{"return_pct":10},"2022":{"return_pct":-4}}}`))
		case "/stats/MSFT":
			w.Write([]byte(`{"average_price":300,"price_change_pct":1,"volatility":0.8}`))
		case "/hist/AAPL", "/hist/MSFT":
			w.Write([]byte(`[{"date":"2024-01-02","close":10},{"date":"2024-01-03","close":11},{"date":"2024-01-04","close":10.5}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// setupEnv points the CLI at apiBase with a fresh best-score file
func setupEnv(t *testing.T, apiBase string) {
	t.Helper()
	t.Setenv("ENV", "development")
	t.Setenv("API_BASE_URL", apiBase)
	t.Setenv("SCORE_STORE", "file")
	t.Setenv("SCORE_FILE", filepath.Join(t.TempDir(), "best.json"))
	t.Setenv("REFRESH_SCHEDULE", "")
}

// execute runs the root command with flags reset to their defaults
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cardsSort, cardsFilter, cardsSparklines, cardsAll = "", "", false, false
	detailJSON, detailWidth, detailHeight = false, 72, 16
	env, apiURL, verbose = "", "", false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCardsSortedByChange(t *testing.T) {
	server := newStatsServer(t)

	setupEnv(t, server.URL)
	output, err := execute(t, "", "cards", "--sort", "change-desc", "--sparklines")
	require.NoError(t, err)

	aapl := strings.Index(output, "AAPL")
	msft := strings.Index(output, "MSFT")
	require.NotEqual(t, -1, aapl)
	require.NotEqual(t, -1, msft)
	assert.Less(t, aapl, msft, "higher change first")
	assert.Contains(t, output, "+5.00%")
	assert.Contains(t, output, "2 of 2 cards shown")
}

func TestCardsFilter(t *testing.T) {
	server := newStatsServer(t)

	setupEnv(t, server.URL)
	output, err := execute(t, "", "cards", "--filter", " ms ")
	require.NoError(t, err)

	assert.Contains(t, output, "MSFT")
	assert.NotContains(t, output, "AAPL")
	assert.Contains(t, output, "1 of 2 cards shown")
}

func TestCardsUnknownSort(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")
	_, err := execute(t, "", "cards", "--sort", "random")
	assert.Error(t, err)
}

func TestCardsTickerListFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	setupEnv(t, server.URL)
	output, err := execute(t, "", "cards")
	assert.Error(t, err)
	assert.Contains(t, output, "HTTP 503")
}

func TestDetail(t *testing.T) {
	server := newStatsServer(t)

	setupEnv(t, server.URL)
	output, err := execute(t, "", "detail", "AAPL")
	require.NoError(t, err)

	assert.Contains(t, output, "AAPL")
	assert.Contains(t, output, "2022")
	assert.Contains(t, output, "+10.00%")
	assert.Contains(t, output, "CAGR +12.00%")
}

func TestDetailJSON(t *testing.T) {
	server := newStatsServer(t)

	setupEnv(t, server.URL)
	output, err := execute(t, "", "detail", "AAPL", "--json")
	require.NoError(t, err)

	assert.Contains(t, output, "ready")
	assert.Contains(t, output, "annual_returns")
}

func TestDetailFailure(t *testing.T) {
	server := newStatsServer(t)

	setupEnv(t, server.URL)
	output, err := execute(t, "", "detail", "NOPE")
	require.Error(t, err)
	assert.Contains(t, output, "Failed to load: HTTP 404")
}

func TestQuizAndBestScore(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")
	output, err := execute(t, strings.Repeat("2\n", 10), "quiz")
	require.NoError(t, err)
	assert.Contains(t, output, "Question 1 of 10")
	assert.Contains(t, output, "9/10")
	assert.Contains(t, output, "New best score: 9/10")

	output, err = execute(t, "", "best-score")
	require.NoError(t, err)
	assert.Contains(t, output, "9/10")
	assert.Contains(t, output, "file")
}

func TestBestScoreNone(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")
	output, err := execute(t, "", "best-score")
	require.NoError(t, err)
	assert.Contains(t, output, "No best score yet")
}

func TestPlayQuizRetriesInvalidInput(t *testing.T) {
	var buf bytes.Buffer
	out = &buf

	bank, err := quiz.DefaultBank()
	require.NoError(t, err)
	engine := quiz.NewEngine(bank, scorestore.NewMemory(), logger.Nop())

	input := "abc\n0\n99\n" + strings.Repeat("1\n", len(bank))
	err = playQuiz(context.Background(), engine, bufio.NewScanner(strings.NewReader(input)))
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(buf.String(), "Please enter a number between 1 and"))
	state := engine.State()
	assert.Equal(t, quiz.PhaseCompleted, state.Phase)
	assert.Equal(t, 0, state.Score, "no question has the first option as its answer")
}

func TestPlayQuizInputClosed(t *testing.T) {
	var buf bytes.Buffer
	out = &buf

	bank, err := quiz.DefaultBank()
	require.NoError(t, err)
	engine := quiz.NewEngine(bank, scorestore.NewMemory(), logger.Nop())

	err = playQuiz(context.Background(), engine, bufio.NewScanner(strings.NewReader("2\n")))
	assert.Error(t, err)
	assert.Equal(t, quiz.PhaseInProgress, engine.State().Phase)
}

func TestRenderPill(t *testing.T) {
	p := format.Pill{Label: "Δ", Value: "+1.00%", Tone: format.TonePositive}
	assert.Contains(t, renderPill(p), "Δ +1.00%")
	assert.Contains(t, renderPill(format.Pill{Label: "Stats pending"}), "Stats pending")
}

func TestSparklineNeedsTwoPoints(t *testing.T) {
	assert.Empty(t, renderSparkline([]float64{1}, 20, 3))
	assert.NotEmpty(t, renderSparkline([]float64{1, 2, 3}, 20, 3))
}
