package cli

import (
	"context"
	"fmt"

	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	"github.com/smallbiznis/meritscore/internal/seed"
	"github.com/spf13/cobra"
)

var (
	catalogGlob   string
	catalogDryRun bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the quality, PI and improvement activity catalogs",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import catalog YAML files matching a glob",
	Long: `Import merges every YAML file matching --glob (doublestar syntax, e.g.
"catalogs/2024/**/*.yml") and upserts the entries by code. Entries marked
retired: true are deactivated; existing ids are preserved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCatalogImport(cmd)
	},
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled starter catalog into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), func(ctx context.Context, svc services) error {
			imported, err := seed.EnsureCatalog(ctx, svc.Measures, svc.Log)
			if err != nil {
				return err
			}
			if imported {
				fmt.Fprintln(cmd.OutOrStdout(), "bundled catalog imported")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog already populated, nothing to do")
			}
			return nil
		})
	},
}

func init() {
	catalogImportCmd.Flags().StringVarP(&catalogGlob, "glob", "g", "catalogs/**/*.yml", "Catalog files to import")
	catalogImportCmd.Flags().BoolVar(&catalogDryRun, "dry-run", false, "Parse and count without writing")

	catalogCmd.AddCommand(catalogImportCmd, catalogSeedCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogImport(cmd *cobra.Command) error {
	out, err := format()
	if err != nil {
		return err
	}
	catalog, paths, err := seed.LoadFiles(catalogGlob)
	if err != nil {
		return err
	}

	result := measuredomain.ImportResult{
		QualityMeasures: len(catalog.QualityMeasures),
		PIMeasures:      len(catalog.PIMeasures),
		Activities:      len(catalog.Activities),
	}
	if !catalogDryRun {
		err = withServices(cmd.Context(), func(ctx context.Context, svc services) error {
			result, err = svc.Measures.ImportCatalog(ctx, catalog)
			return err
		})
		if err != nil {
			return err
		}
	}

	if out == formatJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"files": paths, "result": result, "dry_run": catalogDryRun})
	}
	renderImport(cmd.OutOrStdout(), paths, result, catalogDryRun)
	return nil
}
