package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/piwi3910/AutoNestCut/internal/cli/formatter"
	"github.com/piwi3910/AutoNestCut/internal/engine"
)

// scenarioRow is one compared scenario as printed in JSON.
type scenarioRow struct {
	Scenario      string  `json:"scenario"`
	KerfWidth     float64 `json:"kerf_width"`
	AllowRotation bool    `json:"allow_rotation"`
	BoardsUsed    int     `json:"boards_used"`
	PartsPlaced   int     `json:"parts_placed"`
	Unplaced      int     `json:"unplaced"`
	WastePercent  float64 `json:"waste_percent"`
	Error         string  `json:"error,omitempty"`
}

func newCompareCmd(app *App) *cobra.Command {
	var input inputOptions
	var dbMaterials bool

	cmd := &cobra.Command{
		Use:   "compare <parts-file>",
		Short: "Compare boards and waste across settings variants",
		Long: `Nest the same parts under the current settings, with rotation toggled,
and with half the kerf, then print the results side by side.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := app.settings(cmd.Context(), dbMaterials)
			if err != nil {
				return err
			}
			job, err := app.loadJob(args[0], base, input)
			if err != nil {
				return err
			}

			results := engine.CompareScenarios(engine.BuildDefaultScenarios(job.Settings), job.PartsByMaterial(), app.Logger)

			rows := make([]scenarioRow, 0, len(results))
			for _, r := range results {
				row := scenarioRow{
					Scenario:      r.Scenario.Name,
					KerfWidth:     r.Scenario.Settings.KerfWidth,
					AllowRotation: r.Scenario.Settings.AllowRotation,
					BoardsUsed:    r.BoardsUsed,
					PartsPlaced:   r.PartsPlaced,
					Unplaced:      r.UnplacedCount,
					WastePercent:  r.WastePercent,
				}
				if r.Err != nil {
					row.Error = r.Err.Error()
				}
				rows = append(rows, row)
			}

			out := cmd.OutOrStdout()
			if app.wantJSON() {
				return writeJSON(out, rows)
			}

			headers := []string{"Scenario", "Boards", "Placed", "Unplaced", "Waste"}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				if r.Error != "" {
					table = append(table, []string{r.Scenario, "-", "-", "-", formatter.StyleRed.Render(r.Error)})
					continue
				}
				table = append(table, []string{
					r.Scenario,
					strconv.Itoa(r.BoardsUsed),
					strconv.Itoa(r.PartsPlaced),
					strconv.Itoa(r.Unplaced),
					fmt.Sprintf("%.1f%%", r.WastePercent),
				})
			}
			fmt.Fprintln(out, formatter.Header("Scenario comparison: "+job.Name))
			fmt.Fprint(out, formatter.RenderTable(headers, table))
			return nil
		},
	}

	input.register(cmd.Flags())
	cmd.Flags().BoolVar(&dbMaterials, "db-materials", false, "add the materials database to the stock catalog")
	return cmd
}
