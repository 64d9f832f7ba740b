package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the nesting result and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        model.NestResult
	BoardsUsed    int
	PartsPlaced   int
	WastePercent  float64
	UnplacedCount int
	Err           error
}

// CompareScenarios nests the same parts under each scenario and returns the
// results in scenario order. Each run gets its own part instances, so
// scenarios never see each other's placements.
func CompareScenarios(scenarios []ComparisonScenario, parts model.PartsByMaterial, logger *zap.Logger) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := New(scenario.Settings, logger).Nest(parts)
		cr := ComparisonResult{Scenario: scenario, Result: result, Err: err}
		if err == nil {
			cr.BoardsUsed = len(result.Boards)
			cr.PartsPlaced = result.PlacedCount("")
			cr.UnplacedCount = result.UnplacedCount("")
			if len(result.Boards) > 0 {
				cr.WastePercent = 100.0 - result.TotalEfficiency()
			}
		}
		results = append(results, cr)
	}

	return results
}

// BuildDefaultScenarios generates what-if alternatives around the current
// settings: rotation toggled and a thinner blade.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Settings: base},
	}

	toggled := base
	toggled.AllowRotation = !base.AllowRotation
	name := "Rotation Disabled"
	if toggled.AllowRotation {
		name = "Rotation Enabled"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Settings: toggled})

	if base.KerfWidth > 1.0 {
		thin := base
		thin.KerfWidth = base.KerfWidth * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Kerf %.1fmm (half)", thin.KerfWidth),
			Settings: thin,
		})
	}

	return scenarios
}
