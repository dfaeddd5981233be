package cli

import (
	"fmt"
	"time"

	"github.com/smallbiznis/meritscore/internal/timeline"
	"github.com/spf13/cobra"
)

var (
	phaseYear int
	phaseNow  string
)

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Show where a performance year stands in the program calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := format()
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if phaseNow != "" {
			now, err = time.Parse(time.RFC3339, phaseNow)
			if err != nil {
				return fmt.Errorf("--now must be RFC3339: %w", err)
			}
		}
		year := phaseYear
		if year == 0 {
			year = now.UTC().Year()
		}

		phase := timeline.GetPhase(year, now)
		if out == formatJSON {
			return writeJSON(cmd.OutOrStdout(), phase)
		}
		renderPhase(cmd.OutOrStdout(), phase)
		return nil
	},
}

func init() {
	phaseCmd.Flags().IntVarP(&phaseYear, "year", "y", 0, "Performance year (defaults to the current year)")
	phaseCmd.Flags().StringVar(&phaseNow, "now", "", "Evaluate at this RFC3339 instant instead of the wall clock")
	rootCmd.AddCommand(phaseCmd)
}
