package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/AutoNestCut/internal/cli/formatter"
	"github.com/piwi3910/AutoNestCut/internal/engine"
	"github.com/piwi3910/AutoNestCut/internal/export"
	"github.com/piwi3910/AutoNestCut/internal/model"
	"github.com/piwi3910/AutoNestCut/internal/project"
	"github.com/piwi3910/AutoNestCut/internal/report"
	"github.com/piwi3910/AutoNestCut/internal/store"
)

// Output formats accepted by --format.
var outputFormats = []string{"csv", "xlsx", "html", "pdf", "labels", "dxf", "json"}

type nestOptions struct {
	input        inputOptions
	outDir       string
	formats      []string
	name         string
	kerf         float64
	noRotation   bool
	dbMaterials  bool
	wastePercent float64
}

// nestSummary is what nest prints as JSON.
type nestSummary struct {
	Job       string               `json:"job"`
	Summary   report.Summary       `json:"summary"`
	Materials []report.MaterialRow `json:"materials"`
	Unplaced  []model.UnplacedPart `json:"unplaced"`
	Files     []string             `json:"files"`
}

func newNestCmd(app *App) *cobra.Command {
	opts := &nestOptions{}

	cmd := &cobra.Command{
		Use:   "nest <parts-file>",
		Short: "Nest a parts list or job file and write reports",
		Long: `Nest the parts in a CSV, XLSX or DXF parts list, or a saved JSON job,
onto stock boards and write the requested outputs.

Formats: csv, xlsx, html, pdf (cutting diagrams), labels (QR part labels),
dxf (board layout), json (saved result).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runNest(cmd, args[0], opts)
		},
	}

	opts.input.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", []string{"csv"}, "output formats: "+strings.Join(outputFormats, ", "))
	cmd.Flags().StringVar(&opts.name, "name", "", "job name used for output file names")
	cmd.Flags().Float64Var(&opts.kerf, "kerf", 0, "saw kerf in mm (overrides config and job)")
	cmd.Flags().BoolVar(&opts.noRotation, "no-rotation", false, "never rotate parts")
	cmd.Flags().BoolVar(&opts.dbMaterials, "db-materials", false, "add the materials database to the stock catalog")
	cmd.Flags().Float64Var(&opts.wastePercent, "waste-percent", 0, "add an area-based purchase estimate with this waste factor")

	return cmd
}

// settings returns the configured settings, extended with the materials
// database when requested.
func (app *App) settings(ctx context.Context, withDB bool) (model.Settings, error) {
	settings := app.Config.Settings()
	if !withDB {
		return settings, nil
	}
	db, err := app.openStore()
	if err != nil {
		return model.Settings{}, err
	}
	defer db.Close()

	materials, err := store.NewMaterialRepo(db).List(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	return settings.WithMaterials(materials), nil
}

func (app *App) runNest(cmd *cobra.Command, path string, opts *nestOptions) error {
	for _, f := range opts.formats {
		if !slices.Contains(outputFormats, f) {
			return fmt.Errorf("unknown format %q (valid: %s)", f, strings.Join(outputFormats, ", "))
		}
	}

	base, err := app.settings(cmd.Context(), opts.dbMaterials)
	if err != nil {
		return err
	}
	job, err := app.loadJob(path, base, opts.input)
	if err != nil {
		return err
	}
	if opts.name != "" {
		job.Name = opts.name
	}
	if cmd.Flags().Changed("kerf") {
		job.Settings.KerfWidth = opts.kerf
	}
	if opts.noRotation {
		job.Settings.AllowRotation = false
	}

	parts := job.PartsByMaterial()
	result, err := engine.New(job.Settings, app.Logger).Nest(parts)
	if err != nil {
		return err
	}
	engine.AssignDisplayIDs(result.Boards)

	rep := report.Generate(result)
	if opts.wastePercent > 0 {
		rep = rep.WithEstimates(parts, job.Settings.KerfWidth, opts.wastePercent)
	}

	files, err := writeOutputs(opts.outDir, job, result, rep, opts.formats)
	if err != nil {
		return err
	}
	for _, f := range files {
		app.Logger.Info("wrote output", zap.String("file", f))
	}

	out := cmd.OutOrStdout()
	if app.wantJSON() {
		return writeJSON(out, nestSummary{
			Job:       job.Name,
			Summary:   rep.Summary,
			Materials: rep.Materials,
			Unplaced:  rep.Unplaced,
			Files:     files,
		})
	}
	printNestSummary(out, job.Name, rep, files)
	return nil
}

// writeOutputs writes each requested format into dir and returns the
// paths written, in request order.
func writeOutputs(dir string, job project.Job, result model.NestResult, rep report.Report, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	base := job.Name
	if base == "" {
		base = "cutlist"
	}

	var files []string
	for _, f := range formats {
		var path string
		var err error
		switch f {
		case "csv":
			path = filepath.Join(dir, base+".csv")
			err = report.ExportCSV(path, rep)
		case "xlsx":
			path = filepath.Join(dir, base+".xlsx")
			err = report.ExportXLSX(path, rep)
		case "html":
			path = filepath.Join(dir, base+".html")
			err = report.ExportHTML(path, job.Name, rep)
		case "pdf":
			path = filepath.Join(dir, base+"-diagrams.pdf")
			err = export.ExportPDF(path, result, job.Settings)
		case "labels":
			path = filepath.Join(dir, base+"-labels.pdf")
			err = export.ExportLabels(path, result)
		case "dxf":
			path = filepath.Join(dir, base+".dxf")
			err = export.ExportDXF(path, result)
		case "json":
			path = filepath.Join(dir, base+"-result.json")
			err = project.SaveResult(path, job.Name, result)
		}
		if err != nil {
			return files, fmt.Errorf("writing %s output: %w", f, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func printNestSummary(w io.Writer, name string, rep report.Report, files []string) {
	fmt.Fprintln(w, formatter.Header("Cut list: "+name))
	fmt.Fprintln(w)

	headers := []string{"Material", "Sheet", "Boards", "Parts", "Unplaced", "Efficiency", "Cost"}
	rows := make([][]string, 0, len(rep.Materials))
	for _, m := range rep.Materials {
		sheet := fmt.Sprintf("%gx%g", m.StockWidth, m.StockHeight)
		if m.Defaulted {
			sheet += " (default)"
		}
		rows = append(rows, []string{
			m.Material,
			sheet,
			strconv.Itoa(m.Boards),
			strconv.Itoa(m.Parts),
			strconv.Itoa(m.Unplaced),
			formatter.Efficiency(m.Efficiency),
			fmt.Sprintf("%.2f", m.Cost),
		})
	}
	fmt.Fprint(w, formatter.RenderTable(headers, rows))
	fmt.Fprintln(w)

	s := rep.Summary
	fmt.Fprintf(w, "Boards: %d  Parts: %d  Efficiency: %s  Cost: %.2f\n",
		s.TotalBoards, s.TotalParts, formatter.Efficiency(s.OverallEfficiency), s.TotalCost)

	if len(rep.Unplaced) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, formatter.StyleRed.Render(fmt.Sprintf("Unplaced parts: %d", s.UnplacedParts)))
		for _, u := range rep.Unplaced {
			fmt.Fprintf(w, "  %s x%d (%s, %s)\n", u.Name, u.Count, u.Material, u.Reason)
		}
	}

	for _, f := range files {
		fmt.Fprintf(w, "Wrote %s\n", f)
	}
}
