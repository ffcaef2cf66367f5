package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/mealclock/internal/catalog"
	"github.com/friendsincode/mealclock/internal/models"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the food catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import foods from a YAML catalog file",
	Long: `Import every food in FILE in one transaction. Foods whose short code is
already in the catalog are skipped; any other problem aborts the import.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Write the catalog as YAML (to stdout when FILE is omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogExport,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog foods",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show REF",
	Short: "Show one food by ID or short code",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete REF",
	Short: "Delete a food that no recipe uses",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogDelete,
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogDeleteCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	logger.Info().Str("file", args[0]).Msg("importing catalog")

	result, err := ws.catalog.Import(cmd.Context(), f, cliActor)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported: %d\n", len(result.Created))
	fmt.Fprintf(out, "Skipped:  %d\n", len(result.Skipped))
	for _, code := range result.Skipped {
		fmt.Fprintf(out, "  %s (already in catalog)\n", code)
	}
	return nil
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	var out io.Writer = cmd.OutOrStdout()
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := ws.catalog.Export(cmd.Context(), out); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	recs, err := ws.catalog.List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i := range recs {
		rec := &recs[i]
		fmt.Fprintf(out, "%-24s %-7s %10s  %s\n", rec.ShortCode, rec.Kind, durationLabel(rec), rec.ID)
	}
	fmt.Fprintf(out, "%d foods\n", len(recs))
	return nil
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	f, rec, err := ws.catalog.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", rec.ID)
	fmt.Fprintf(out, "Short code:  %s\n", rec.ShortCode)
	fmt.Fprintf(out, "Kind:        %s\n", rec.Kind)
	fmt.Fprintf(out, "Name:        %s\n", f.Name())
	fmt.Fprintf(out, "Duration:    %s\n", f.Duration())
	if len(rec.Ingredients) > 0 {
		fmt.Fprintln(out, "Ingredients:")
		for _, ing := range rec.Ingredients {
			fmt.Fprintf(out, "  %s %s %s\n", ing.Amount, ing.Unit, ing.ShortCode)
		}
	}
	if len(rec.Steps) > 0 {
		fmt.Fprintln(out, "Steps:")
		for _, step := range rec.Steps {
			fmt.Fprintf(out, "  %s (%s min)\n", step.ShortCode, step.Minutes)
		}
	}
	return nil
}

func runCatalogDelete(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	rec, err := ws.catalog.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := ws.catalog.Delete(cmd.Context(), rec.ID, cliActor); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", rec.ShortCode, rec.ID)
	return nil
}

func durationLabel(rec *models.FoodRecord) string {
	secs, err := catalog.DurationOf(rec)
	if err != nil {
		return "?"
	}
	return (time.Duration(secs) * time.Second).String()
}
