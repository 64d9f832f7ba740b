// Package cli implements the autonestcut command line.
package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/AutoNestCut/internal/config"
	"github.com/piwi3910/AutoNestCut/internal/logging"
	"github.com/piwi3910/AutoNestCut/internal/store"
)

// App holds what the commands share. Config and Logger are filled in
// before any command runs.
type App struct {
	// IsInteractive reports whether output goes to a terminal. Tables are
	// printed when it does, JSON otherwise. Nil means not interactive.
	IsInteractive func() bool

	Config *config.Config
	Logger *zap.Logger

	configPath string
	logLevel   string
	dbPath     string
	jsonOutput bool
}

// NewRootCmd creates the top-level "autonestcut" command and registers all
// subcommands against app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "autonestcut",
		Short: "Sheet goods nesting and cut list generator",
		Long: `Nest rectangular parts onto stock sheets, grouped by material, and
produce cut lists, diagrams and cost reports.

Examples:
  autonestcut nest cabinet.csv --format csv,pdf    # Nest a parts list
  autonestcut nest job.json --format html,json     # Nest a saved job
  autonestcut compare cabinet.csv                  # Compare settings variants
  autonestcut materials seed                       # Fill the materials database`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
	}

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (YAML)")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "log level override: debug, info, warn, error")
	root.PersistentFlags().StringVar(&app.dbPath, "db", "", "materials database path (overrides config)")
	root.PersistentFlags().BoolVar(&app.jsonOutput, "json", false, "print JSON even on a terminal")

	root.AddCommand(
		newNestCmd(app),
		newCompareCmd(app),
		newMaterialsCmd(app),
		newServeCmd(app),
	)

	return root
}

func (app *App) setup() error {
	cfg, err := config.Load(app.configPath)
	if err != nil {
		return err
	}
	if app.dbPath != "" {
		cfg.Database = app.dbPath
	}

	logger, err := logging.New(cfg.Logging, app.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Config = cfg
	app.Logger = logger
	return nil
}

func (app *App) wantJSON() bool {
	if app.jsonOutput {
		return true
	}
	return app.IsInteractive == nil || !app.IsInteractive()
}

func (app *App) openStore() (*sql.DB, error) {
	db, err := store.OpenDB(app.Config.Database)
	if err != nil {
		return nil, fmt.Errorf("opening materials database: %w", err)
	}
	return db, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
