package cli

import (
	"context"
	"fmt"

	"github.com/smallbiznis/meritscore/internal/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, conn *gorm.DB, log *zap.Logger) error {
			if err := migration.Migrate(conn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", conn.Dialector.Name())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
