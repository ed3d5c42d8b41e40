package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/wonny/histolib/internal/detail"
	"github.com/wonny/histolib/pkg/format"
)

// detailCmd represents the detail command
var detailCmd = &cobra.Command{
	Use:   "detail TICKER",
	Short: "Print the detail view of one ticker",
	Long: `Fetch stats and price history for one ticker and print the detail view:
headline pills, the close price with MA20/MA50, and annual returns.

Example:
  go run ./cmd/histolib detail AAPL
  go run ./cmd/histolib detail AAPL --json`,
	Args: cobra.ExactArgs(1),
	RunE: runDetail,
}

var (
	detailJSON   bool
	detailWidth  int
	detailHeight int
)

func init() {
	rootCmd.AddCommand(detailCmd)

	detailCmd.Flags().BoolVar(&detailJSON, "json", false, "print the composed view as JSON")
	detailCmd.Flags().IntVar(&detailWidth, "width", 72, "chart width")
	detailCmd.Flags().IntVar(&detailHeight, "height", 16, "chart height")
}

func runDetail(cmd *cobra.Command, args []string) error {
	out = cmd.OutOrStdout()

	ticker := strings.TrimSpace(args[0])
	if ticker == "" {
		return errors.New("ticker is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	status := a.details.Fetch(ctx, ticker)

	if detailJSON {
		raw, err := json.Marshal(status)
		if err != nil {
			return fmt.Errorf("encode detail: %w", err)
		}
		out.Write(pretty.Color(pretty.Pretty(raw), nil))
		if status.State == detail.StateFailed {
			return errors.New(status.Message)
		}
		return nil
	}

	if status.State == detail.StateFailed {
		PrintError(status.Message)
		return errors.New(status.Message)
	}

	printDetail(status.View)
	return nil
}

func printDetail(v *detail.View) {
	PrintHeader(v.Ticker)
	fmt.Fprintf(out, "   %s\n", renderPills(v.Pills))

	PrintSeparator()
	if v.HasHistory() {
		fmt.Fprintf(out, "   %s  %s  %s\n",
			closeLineStyle.Render("── close"),
			ma20LineStyle.Render("── MA20"),
			ma50LineStyle.Render("── MA50"))
		fmt.Fprintln(out, renderPriceChart(v.Price, detailWidth, detailHeight))
	} else {
		PrintInfo("No price history")
	}

	PrintSeparator()
	if len(v.AnnualReturns) == 0 {
		PrintInfo("No annual returns")
		return
	}

	widths := []int{6, 10}
	PrintTableHeader([]string{"YEAR", "RETURN"}, widths)
	for _, r := range v.AnnualReturns {
		pct := r.ReturnPct
		PrintTableRow([]string{r.Year, toneStyle(format.SignTone(&pct)).Render(format.Percent(&pct))}, widths)
	}
}

// formatPrice renders an axis label with two decimals
func formatPrice(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}
