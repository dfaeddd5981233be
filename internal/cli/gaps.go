package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	gapsProvider string
	gapsYear     int
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Re-derive and list data gaps for one provider and year",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := format()
		if err != nil {
			return err
		}
		providerID, year, err := providerYearFlags(gapsProvider, gapsYear)
		if err != nil {
			return err
		}

		return withServices(cmd.Context(), func(ctx context.Context, svc services) error {
			gaps, err := svc.Gaps.Analyze(ctx, providerID, year)
			if err != nil {
				return err
			}
			if out == formatJSON {
				return writeJSON(cmd.OutOrStdout(), gaps)
			}
			renderGaps(cmd.OutOrStdout(), gaps)
			return nil
		})
	},
}

func init() {
	gapsCmd.Flags().StringVarP(&gapsProvider, "provider", "p", "", "Provider id")
	gapsCmd.Flags().IntVarP(&gapsYear, "year", "y", 0, "Performance year (defaults to the current year)")
	_ = gapsCmd.MarkFlagRequired("provider")
	rootCmd.AddCommand(gapsCmd)
}
