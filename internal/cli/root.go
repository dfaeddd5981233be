// Package cli implements mipsctl, the operator command line for catalog
// imports, ad-hoc scoring and schema migrations.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	formatConsole = "console"
	formatJSON    = "json"
)

var (
	outputFormat string
	verbose      bool

	exitFunc = os.Exit
)

var rootCmd = &cobra.Command{
	Use:   "mipsctl",
	Short: "Operate the merit-based scoring engine",
	Long: `mipsctl imports measure catalogs, scores providers, analyzes data gaps and
runs schema migrations against the database configured through the usual
DATABASE_* environment variables (a .env file is honored).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitFunc(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", formatConsole, "Output format (console|json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log service activity to stderr")

	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func format() (string, error) {
	switch f := viper.GetString("format"); f {
	case "", formatConsole:
		return formatConsole, nil
	case formatJSON:
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q", f)
	}
}
