package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/piwi3910/AutoNestCut/internal/importer"
	"github.com/piwi3910/AutoNestCut/internal/model"
	"github.com/piwi3910/AutoNestCut/internal/project"
)

// inputOptions controls how a parts file becomes a job.
type inputOptions struct {
	material    string
	thickness   float64
	boundingBox bool
}

func (o *inputOptions) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.material, "material", model.DefaultMaterialName, "material for parts that name none (and for DXF input)")
	fs.Float64Var(&o.thickness, "thickness", 0, "part thickness in mm for DXF input")
	fs.BoolVar(&o.boundingBox, "bounding-box", false, "treat width, height and thickness as unordered extents")
}

// jobName derives a job name from the input file name.
func jobName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// loadJob reads a job file or imports a parts list, choosing by extension.
// Row-level import problems are logged; the import fails only when it
// produced no parts at all.
func (app *App) loadJob(path string, base model.Settings, opts inputOptions) (project.Job, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err := os.ReadFile(path)
		if err != nil {
			return project.Job{}, fmt.Errorf("failed to read job file: %w", err)
		}
		job, err := project.DecodeJob(data, base)
		if err != nil {
			return project.Job{}, err
		}
		if job.Name == "" {
			job.Name = jobName(path)
		}
		return job, nil
	}

	importOpts := importer.Options{
		KnownMaterials:  base.MaterialNames(),
		DefaultMaterial: opts.material,
		BoundingBox:     opts.boundingBox,
	}

	var res importer.ImportResult
	switch ext {
	case ".csv", ".txt":
		res = importer.ImportCSV(path, importOpts)
	case ".xlsx", ".xlsm":
		res = importer.ImportExcel(path, importOpts)
	case ".dxf":
		res = importer.ImportDXF(path, opts.material, opts.thickness)
	default:
		return project.Job{}, fmt.Errorf("unsupported input %q: expected .csv, .xlsx, .dxf or .json", filepath.Base(path))
	}

	for _, w := range res.Warnings {
		app.Logger.Warn("import warning", zap.String("file", path), zap.String("detail", w))
	}
	for _, e := range res.Errors {
		app.Logger.Warn("import error", zap.String("file", path), zap.String("detail", e))
	}
	if len(res.Parts) == 0 {
		if len(res.Errors) > 0 {
			return project.Job{}, fmt.Errorf("no parts imported from %s: %s", filepath.Base(path), res.Errors[0])
		}
		return project.Job{}, fmt.Errorf("no parts imported from %s", filepath.Base(path))
	}

	app.Logger.Info("imported parts",
		zap.String("file", path),
		zap.Int("types", len(res.Parts)),
		zap.Int("instances", res.TotalQuantity()),
	)
	return project.NewJob(jobName(path), base, res.Parts), nil
}
