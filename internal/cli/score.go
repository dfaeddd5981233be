package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	providerservice "github.com/smallbiznis/meritscore/internal/provider/service"
	"github.com/spf13/cobra"
)

var (
	scoreProvider string
	scoreYear     int
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute and store the submission for one provider and year",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := format()
		if err != nil {
			return err
		}
		providerID, year, err := providerYearFlags(scoreProvider, scoreYear)
		if err != nil {
			return err
		}

		return withServices(cmd.Context(), func(ctx context.Context, svc services) error {
			sub, err := svc.Composite.Compute(ctx, providerID, year)
			if err != nil {
				return err
			}
			if out == formatJSON {
				return writeJSON(cmd.OutOrStdout(), sub)
			}
			renderSubmission(cmd.OutOrStdout(), sub)
			return nil
		})
	},
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreProvider, "provider", "p", "", "Provider id")
	scoreCmd.Flags().IntVarP(&scoreYear, "year", "y", 0, "Performance year (defaults to the current year)")
	_ = scoreCmd.MarkFlagRequired("provider")
	rootCmd.AddCommand(scoreCmd)
}

func providerYearFlags(provider string, year int) (snowflake.ID, int, error) {
	id, err := providerservice.ParseID(provider)
	if err != nil {
		return 0, 0, fmt.Errorf("--provider %q: %w", provider, err)
	}
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	return id, year, nil
}
