// Package scenario implements the what-if simulation stage: named
// intervention sequences applied to independent copies of the demand
// baseline, with aggregate impact accounting per scenario.
package scenario

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Nathan-Omenge/energymap-ai/internal/config"
	"github.com/Nathan-Omenge/energymap-ai/internal/geodata"
)

// ComparisonRow is one line of the scenario comparison table.
type ComparisonRow struct {
	ScenarioName string `csv:"scenario_name" json:"scenario_name"`
	Description  string `csv:"description" json:"description"`
	GeneratedAt  string `csv:"generated_at" json:"generated_at"`
	Impacts
}

// Engine simulates the configured scenarios against the demand baseline.
type Engine struct {
	cfg *config.Config
}

// New creates a scenario engine.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Run loads the demand baseline, evaluates every configured scenario on its
// own copy, writes one GeoJSON per scenario, and persists the comparison
// table. Scenarios are independent, so they are evaluated in parallel; the
// baseline itself is never mutated.
func (e *Engine) Run(ctx context.Context) ([]ComparisonRow, error) {
	log := zap.L().With(zap.String("component", "scenario"))

	baseline, err := geodata.ReadGeoJSON(e.cfg.Paths.DemandOutputGeoJSON)
	if err != nil {
		return nil, eris.Wrap(err, "scenario: load demand baseline")
	}

	defs := e.cfg.Scenarios.DefaultScenarios
	rows := make([]ComparisonRow, len(defs))
	generatedAt := time.Now().UTC().Format(time.RFC3339)

	g, ctx := errgroup.WithContext(ctx)
	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data := baseline.Copy()
			for _, iv := range def.Interventions {
				ApplyIntervention(data, iv)
			}

			rows[i] = ComparisonRow{
				ScenarioName: def.Name,
				Description:  def.Description,
				GeneratedAt:  generatedAt,
				Impacts:      CalculateImpacts(baseline, data),
			}

			outPath := filepath.Join(e.cfg.Paths.ScenarioOutputDir, Slug(def.Name)+".geojson")
			if err := geodata.WriteGeoJSON(outPath, data); err != nil {
				return eris.Wrapf(err, "scenario: write %s", def.Name)
			}

			log.Info("scenario evaluated",
				zap.String("scenario", def.Name),
				zap.Int("interventions", len(def.Interventions)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(rows) > 0 {
		if err := geodata.WriteCSV(e.cfg.Paths.ScenarioComparisonCSV, rows); err != nil {
			return nil, eris.Wrap(err, "scenario: write comparison CSV")
		}
	}

	log.Info("scenario simulation complete", zap.Int("scenarios", len(rows)))
	return rows, nil
}

// Slug converts a scenario name to its output file stem: lowercased with
// spaces replaced by underscores.
func Slug(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
