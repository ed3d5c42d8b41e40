package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	apiURL  string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "histolib",
	Short: "HistoLib - historical stock stats dashboard",
	Long: `HistoLib Unified CLI

Per-ticker stock summaries, detail charts and an investing quiz,
served over HTTP/WebSocket or rendered in the terminal.

Usage:
  go run ./cmd/histolib [command]

Examples:
  go run ./cmd/histolib serve
  go run ./cmd/histolib cards --sort change-desc
  go run ./cmd/histolib detail AAPL --json
  go run ./cmd/histolib quiz`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production), overrides ENV")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "remote stats API base URL, overrides API_BASE_URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
