package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/histolib/internal/contracts"
	"github.com/wonny/histolib/internal/dashboard"
	"github.com/wonny/histolib/internal/index"
	"github.com/wonny/histolib/internal/registry"
)

// cardsCmd represents the cards command
var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Load every ticker and print its summary card",
	Long: `Fetch the ticker list and every card, then print them in display order.

Sort modes: alpha-asc, alpha-desc, change-desc, change-asc,
volatility-desc, volatility-asc, cagr-desc

Example:
  go run ./cmd/histolib cards
  go run ./cmd/histolib cards --sort change-desc --filter aa
  go run ./cmd/histolib cards --sparklines`,
	RunE: runCards,
}

var (
	cardsSort       string
	cardsFilter     string
	cardsSparklines bool
	cardsAll        bool
)

func init() {
	rootCmd.AddCommand(cardsCmd)

	cardsCmd.Flags().StringVar(&cardsSort, "sort", "", "sort mode")
	cardsCmd.Flags().StringVar(&cardsFilter, "filter", "", "case-insensitive ticker substring")
	cardsCmd.Flags().BoolVar(&cardsSparklines, "sparklines", false, "draw a price sparkline under each card")
	cardsCmd.Flags().BoolVar(&cardsAll, "all", false, "also list cards hidden by the filter")
}

func runCards(cmd *cobra.Command, args []string) error {
	out = cmd.OutOrStdout()

	mode, err := index.ParseSortMode(cardsSort)
	if err != nil {
		return err
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

	if err := a.loader.Reload(ctx); err != nil {
		PrintError(a.registry.List().Message)
		return err
	}

	list := a.registry.List()
	if list.State == registry.ListEmpty {
		PrintWarning(list.Message)
		return nil
	}

	cards := a.dash.CardsFor(index.View{Sort: mode, Query: cardsFilter})
	printCards(cards)
	return nil
}

func printCards(cards []dashboard.CardView) {
	title := "Stock cards"
	if cardsSort != "" {
		title += " · sorted " + cardsSort
	}
	if strings.TrimSpace(cardsFilter) != "" {
		title += " · filter " + fmt.Sprintf("%q", strings.TrimSpace(cardsFilter))
	}
	PrintHeader(title)

	widths := []int{8, 9, 9}
	PrintTableHeader([]string{"TICKER", "STATS", "HISTORY"}, widths)

	shown := 0
	for _, c := range cards {
		if !c.Visible && !cardsAll {
			continue
		}
		shown++

		ticker := headingStyle.Render(c.Ticker)
		if !c.Visible {
			ticker = mutedStyle.Render(c.Ticker)
		}
		PrintTableRow([]string{ticker, string(c.StatsState), historyLabel(c.HistoryState)}, widths)
		fmt.Fprintf(out, "   %s\n", renderPills(c.Pills))

		if cardsSparklines && c.HistoryState == contracts.HistoryReady {
			if line := renderSparkline(c.Sparkline, 40, 4); line != "" {
				fmt.Fprintln(out, indent(line, "   "))
			}
		}
	}

	PrintSeparator()
	if shown == 0 {
		PrintInfo("No tickers match the filter")
		return
	}
	PrintSuccess(fmt.Sprintf("%d of %d cards shown", shown, len(cards)))
}

func historyLabel(s contracts.HistoryState) string {
	if s == contracts.HistoryNone {
		return "no history"
	}
	return string(s)
}

func indent(block, prefix string) string {
	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
