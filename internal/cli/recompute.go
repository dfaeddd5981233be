package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var recomputeYear int

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute submissions for every provider with facts in a year",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := format()
		if err != nil {
			return err
		}
		year := recomputeYear
		if year == 0 {
			year = time.Now().UTC().Year()
		}

		return withServices(cmd.Context(), func(ctx context.Context, svc services) error {
			providers, err := svc.Performance.ProvidersWithFacts(ctx, year)
			if err != nil {
				return err
			}
			result, batchErr := svc.Composite.ComputeBatch(ctx, year, providers)
			if out == formatJSON {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				renderBatch(cmd.OutOrStdout(), year, result)
			}
			return batchErr
		})
	},
}

func init() {
	recomputeCmd.Flags().IntVarP(&recomputeYear, "year", "y", 0, "Performance year (defaults to the current year)")
	rootCmd.AddCommand(recomputeCmd)
}
