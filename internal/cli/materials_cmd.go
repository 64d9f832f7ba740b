package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/AutoNestCut/internal/cli/formatter"
	"github.com/piwi3910/AutoNestCut/internal/importer"
	"github.com/piwi3910/AutoNestCut/internal/store"
)

func newMaterialsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "materials",
		Short: "Manage the stock materials database",
	}

	cmd.AddCommand(
		newMaterialsListCmd(app),
		newMaterialsImportCmd(app),
		newMaterialsExportCmd(app),
		newMaterialsSeedCmd(app),
		newMaterialsDeleteCmd(app),
	)

	return cmd
}

func newMaterialsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored materials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			materials, err := store.NewMaterialRepo(db).List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if app.wantJSON() {
				return writeJSON(out, materials)
			}
			if len(materials) == 0 {
				fmt.Fprintln(out, "No materials found. Run 'autonestcut materials seed' to add the defaults.")
				return nil
			}

			headers := []string{"Name", "Width", "Height", "Price", "Supplier", "Notes"}
			rows := make([][]string, 0, len(materials))
			for _, m := range materials {
				rows = append(rows, []string{
					m.Name,
					fmt.Sprintf("%g", m.Width),
					fmt.Sprintf("%g", m.Height),
					fmt.Sprintf("%.2f", m.Price),
					m.Supplier,
					m.Notes,
				})
			}
			fmt.Fprint(out, formatter.RenderTable(headers, rows))
			return nil
		},
	}
}

func newMaterialsImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <materials.csv>",
		Short: "Add or update materials from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("cannot open materials file: %w", err)
			}
			defer f.Close()

			materials, warnings, err := importer.ImportMaterialsCSV(f)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				app.Logger.Warn("materials import warning", zap.String("file", args[0]), zap.String("detail", w))
			}

			db, err := app.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.ImportMaterials(cmd.Context(), db, materials); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d materials\n", len(materials))
			return nil
		},
	}
}

func newMaterialsExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export [materials.csv]",
		Short: "Write stored materials as CSV (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			materials, err := store.NewMaterialRepo(db).List(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("cannot create materials file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return importer.ExportMaterialsCSV(w, materials)
		},
	}
}

func newMaterialsSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the built-in materials that are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := store.NewMaterialRepo(db).Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d materials\n", n)
			return nil
		},
	}
}

func newMaterialsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.NewMaterialRepo(db).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
