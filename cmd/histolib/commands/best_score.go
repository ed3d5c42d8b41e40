package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// bestScoreCmd represents the best-score command
var bestScoreCmd = &cobra.Command{
	Use:   "best-score",
	Short: "Print the persisted best quiz score",
	RunE: func(cmd *cobra.Command, args []string) error {
		out = cmd.OutOrStdout()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		score, ok := a.engine.BestScore()
		if !ok {
			PrintInfo("No best score yet")
			return nil
		}
		PrintKeyValue("Best", fmt.Sprintf("%d/%d", score, a.engine.Total()), 4)
		PrintKeyValue("Store", a.store.Backend, 4)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bestScoreCmd)
}
