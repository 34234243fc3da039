package scenario

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/Nathan-Omenge/energymap-ai/internal/config"
	"github.com/Nathan-Omenge/energymap-ai/internal/demand"
	"github.com/Nathan-Omenge/energymap-ai/internal/geodata"
	"github.com/Nathan-Omenge/energymap-ai/internal/scoring"
)

// baselineDataset builds three clusters spanning the full priority range,
// already carrying the demand stage's fields.
func baselineDataset() *geodata.Dataset {
	rows := []map[string]any{
		{
			"cluster_id":               "c1",
			"priority_score":           80.0,
			"dist_to_power_km":         2.0,
			"recommended_solution":     "grid_extension",
			"electrification_status":   demand.StatusNone,
			"estimated_population":     4000.0,
			"baseline_demand_mwh_year": 540.0,
			"baseline_peak_demand_kw":  205.0,
		},
		{
			"cluster_id":               "c2",
			"priority_score":           50.0,
			"dist_to_power_km":         10.0,
			"recommended_solution":     "mini_grid_solar",
			"electrification_status":   demand.StatusPartial,
			"estimated_population":     2500.0,
			"baseline_demand_mwh_year": 600.0,
			"baseline_peak_demand_kw":  228.0,
		},
		{
			"cluster_id":               "c3",
			"priority_score":           20.0,
			"dist_to_power_km":         40.0,
			"recommended_solution":     "standalone_solar",
			"electrification_status":   demand.StatusElectrified,
			"estimated_population":     1000.0,
			"baseline_demand_mwh_year": 570.0,
			"baseline_peak_demand_kw":  217.0,
		},
	}

	d := &geodata.Dataset{}
	for i, p := range rows {
		d.Features = append(d.Features, &geodata.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{float64(i), float64(i)}),
			Properties: p,
		})
	}
	return d
}

func TestApplyGridExtension_TopPriority(t *testing.T) {
	d := baselineDataset()

	ApplyIntervention(d, config.Intervention{
		Type:   TypeGridExtension,
		Count:  1,
		Target: "top_priority",
	})

	// Only the highest-priority cluster is touched.
	c1 := d.Features[0]
	assert.Equal(t, demand.StatusElectrified, c1.Str("electrification_status"))
	assert.Equal(t, scoring.SolutionGridExtension, c1.Str("recommended_solution"))
	assert.InDelta(t, 540.0*1.5, c1.Float("baseline_demand_mwh_year", 0), 1e-9)
	assert.Equal(t, "grid_extension", c1.Str("scenario_tag"))

	assert.Equal(t, demand.StatusPartial, d.Features[1].Str("electrification_status"))
	assert.Equal(t, demand.StatusElectrified, d.Features[2].Str("electrification_status"))
	assert.InDelta(t, 600.0, d.Features[1].Float("baseline_demand_mwh_year", 0), 1e-9)
}

func TestApplyGridExtension_NearestGrid(t *testing.T) {
	d := baselineDataset()

	ApplyIntervention(d, config.Intervention{
		Type:   TypeGridExtension,
		Count:  2,
		Target: "nearest_grid",
	})

	// c1 (2 km) and c2 (10 km) are the nearest two.
	assert.Equal(t, "grid_extension", d.Features[0].Str("scenario_tag"))
	assert.Equal(t, "grid_extension", d.Features[1].Str("scenario_tag"))
	assert.Empty(t, d.Features[2].Str("scenario_tag"))
}

func TestApplyGridExtension_CountExceedsRows(t *testing.T) {
	d := baselineDataset()

	ApplyIntervention(d, config.Intervention{
		Type:   TypeGridExtension,
		Count:  50,
		Target: "top_priority",
	})

	for _, f := range d.Features {
		assert.Equal(t, demand.StatusElectrified, f.Str("electrification_status"))
	}
}

func TestTopIndices_TieStability(t *testing.T) {
	d := &geodata.Dataset{}
	for i := 0; i < 4; i++ {
		d.Features = append(d.Features, &geodata.Feature{
			Properties: map[string]any{"priority_score": 50.0, "row": float64(i)},
		})
	}

	// All scores equal: selection falls back to original row order.
	assert.Equal(t, []int{0, 1}, topIndices(d, 2, "priority_score", false))
	assert.Equal(t, []int{0, 1}, topIndices(d, 2, "priority_score", true))
}

func TestApplyMiniGrid_SelectsSuitableClusters(t *testing.T) {
	d := baselineDataset()

	// Suitable: c1 (status none) and c2 (mini-grid solution). c3 is neither.
	ApplyIntervention(d, config.Intervention{Type: TypeMiniGrid, Count: 2})

	assert.Equal(t, "mini_grid", d.Features[0].Str("recommended_solution"))
	assert.Equal(t, demand.StatusPartial, d.Features[0].Str("electrification_status"))
	assert.InDelta(t, 540.0*1.3, d.Features[0].Float("baseline_demand_mwh_year", 0), 1e-9)

	assert.Equal(t, "mini_grid", d.Features[1].Str("recommended_solution"))

	assert.Equal(t, "standalone_solar", d.Features[2].Str("recommended_solution"))
	assert.Empty(t, d.Features[2].Str("scenario_tag"))
}

func TestApplyMiniGrid_CountLimitsByPriority(t *testing.T) {
	d := baselineDataset()

	ApplyIntervention(d, config.Intervention{Type: TypeMiniGrid, Count: 1})

	// c1 outranks c2 on priority.
	assert.Equal(t, "mini_grid", d.Features[0].Str("recommended_solution"))
	assert.Equal(t, "mini_grid_solar", d.Features[1].Str("recommended_solution"))
}

func TestApplyPopulationGrowth(t *testing.T) {
	d := baselineDataset()

	ApplyIntervention(d, config.Intervention{Type: TypePopulation, Rate: 0.5})

	assert.InDelta(t, 6000.0, d.Features[0].Float("estimated_population", 0), 1e-9)
	assert.InDelta(t, 810.0, d.Features[0].Float("baseline_demand_mwh_year", 0), 1e-9)
	assert.InDelta(t, 307.5, d.Features[0].Float("baseline_peak_demand_kw", 0), 1e-9)
}

func TestApplyPopulationGrowth_DefaultRate(t *testing.T) {
	d := baselineDataset()

	ApplyIntervention(d, config.Intervention{Type: TypePopulation})

	assert.InDelta(t, 4400.0, d.Features[0].Float("estimated_population", 0), 1e-9)
}

func TestApplyDemandIncrease_LeavesPopulationAlone(t *testing.T) {
	d := baselineDataset()

	ApplyIntervention(d, config.Intervention{Type: TypeDemandIncrease, Rate: 0.2})

	assert.InDelta(t, 4000.0, d.Features[0].Float("estimated_population", 0), 1e-9)
	assert.InDelta(t, 648.0, d.Features[0].Float("baseline_demand_mwh_year", 0), 1e-9)
}

func TestApplySolarCapacity_SplitsEvenly(t *testing.T) {
	d := baselineDataset()

	ApplyIntervention(d, config.Intervention{Type: TypeSolarCapacity, CapacityMW: 30})

	for _, f := range d.Features {
		assert.InDelta(t, 10.0, f.Float("solar_capacity_mw", 0), 1e-9)
	}
}

func TestApplyIntervention_UnknownTypeIsNoOp(t *testing.T) {
	d := baselineDataset()
	before := d.Features[0].Float("baseline_demand_mwh_year", 0)

	ApplyIntervention(d, config.Intervention{Type: "orbital_laser"})

	assert.Equal(t, before, d.Features[0].Float("baseline_demand_mwh_year", 0))
	assert.Empty(t, d.Features[0].Str("scenario_tag"))
}

func TestInterventionsCompose(t *testing.T) {
	d := baselineDataset()

	ApplyIntervention(d, config.Intervention{Type: TypeGridExtension, Count: 1, Target: "top_priority"})
	ApplyIntervention(d, config.Intervention{Type: TypeDemandIncrease, Rate: 0.2})

	// 540 * 1.5 from the extension, then * 1.2 from the demand bump.
	assert.InDelta(t, 540.0*1.5*1.2, d.Features[0].Float("baseline_demand_mwh_year", 0), 1e-9)
}

func TestCalculateImpacts(t *testing.T) {
	baseline := baselineDataset()
	result := baseline.Copy()
	ApplyIntervention(result, config.Intervention{
		Type:   TypeGridExtension,
		Count:  1,
		Target: "top_priority",
	})

	imp := CalculateImpacts(baseline, result)

	assert.InDelta(t, 4000.0, imp.PeopleElectrified, 1e-9)
	assert.InDelta(t, 1.0, imp.SettlementsConnected, 1e-9)
	assert.InDelta(t, 540.0*0.5, imp.DemandIncreaseMWH, 1e-9)
	assert.InDelta(t, 1.0, imp.ElectrificationRate, 1e-9)
	assert.Nil(t, imp.CostUSD)
}

func TestCalculateImpacts_FlooredAtZero(t *testing.T) {
	baseline := baselineDataset()
	// Regression: mark an electrified cluster as unserved in the result.
	result := baseline.Copy()
	result.Features[2].Set("electrification_status", demand.StatusNone)

	imp := CalculateImpacts(baseline, result)

	assert.Equal(t, 0.0, imp.PeopleElectrified)
	assert.Equal(t, 0.0, imp.SettlementsConnected)
}

func TestCalculateImpacts_CostWhenPresent(t *testing.T) {
	baseline := baselineDataset()
	result := baseline.Copy()
	for _, f := range result.Features {
		f.Set("estimated_cost_usd", 1000.0)
	}

	imp := CalculateImpacts(baseline, result)

	require.NotNil(t, imp.CostUSD)
	assert.InDelta(t, 3000.0, *imp.CostUSD, 1e-9)
}

func TestCalculateImpacts_EmptyResult(t *testing.T) {
	empty := &geodata.Dataset{}
	imp := CalculateImpacts(empty, empty)
	assert.Equal(t, 0.0, imp.ElectrificationRate)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "grid_expansion_program", Slug("Grid Expansion Program"))
	assert.Equal(t, "baseline", Slug("baseline"))
}

func TestRun_WritesScenarioOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Paths: config.PathsConfig{
			DemandOutputGeoJSON:   filepath.Join(dir, "demand.geojson"),
			ScenarioOutputDir:     filepath.Join(dir, "scenarios"),
			ScenarioComparisonCSV: filepath.Join(dir, "comparison.csv"),
		},
		Scenarios: config.ScenariosConfig{
			DefaultScenarios: []config.ScenarioDefinition{
				{
					Name:        "Grid Push",
					Description: "Extend the grid to the top cluster",
					Interventions: []config.Intervention{
						{Type: TypeGridExtension, Count: 1, Target: "top_priority"},
					},
				},
				{
					Name: "Solar Rollout",
					Interventions: []config.Intervention{
						{Type: TypeSolarCapacity, CapacityMW: 30},
					},
				},
			},
		},
	}

	require.NoError(t, geodata.WriteGeoJSON(cfg.Paths.DemandOutputGeoJSON, baselineDataset()))

	rows, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Grid Push", rows[0].ScenarioName)
	assert.InDelta(t, 4000.0, rows[0].PeopleElectrified, 1e-9)
	assert.Equal(t, "Solar Rollout", rows[1].ScenarioName)
	assert.Equal(t, 0.0, rows[1].PeopleElectrified)

	assert.FileExists(t, filepath.Join(cfg.Paths.ScenarioOutputDir, "grid_push.geojson"))
	assert.FileExists(t, filepath.Join(cfg.Paths.ScenarioOutputDir, "solar_rollout.geojson"))
	assert.FileExists(t, cfg.Paths.ScenarioComparisonCSV)
}

func TestRun_DoesNotMutateBaselineFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Paths: config.PathsConfig{
			DemandOutputGeoJSON:   filepath.Join(dir, "demand.geojson"),
			ScenarioOutputDir:     filepath.Join(dir, "scenarios"),
			ScenarioComparisonCSV: filepath.Join(dir, "comparison.csv"),
		},
		Scenarios: config.ScenariosConfig{
			DefaultScenarios: []config.ScenarioDefinition{
				{
					Name: "All Grid",
					Interventions: []config.Intervention{
						{Type: TypeGridExtension, Count: 3, Target: "top_priority"},
					},
				},
			},
		},
	}

	require.NoError(t, geodata.WriteGeoJSON(cfg.Paths.DemandOutputGeoJSON, baselineDataset()))

	_, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	reread, err := geodata.ReadGeoJSON(cfg.Paths.DemandOutputGeoJSON)
	require.NoError(t, err)
	assert.Equal(t, demand.StatusNone, reread.Features[0].Str("electrification_status"))
}

func TestRun_MissingBaselineIsError(t *testing.T) {
	cfg := &config.Config{
		Paths: config.PathsConfig{
			DemandOutputGeoJSON: filepath.Join(t.TempDir(), "missing.geojson"),
		},
	}
	_, err := New(cfg).Run(context.Background())
	require.Error(t, err)
}
