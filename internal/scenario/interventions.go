package scenario

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Nathan-Omenge/energymap-ai/internal/config"
	"github.com/Nathan-Omenge/energymap-ai/internal/demand"
	"github.com/Nathan-Omenge/energymap-ai/internal/geodata"
	"github.com/Nathan-Omenge/energymap-ai/internal/scoring"
)

// Intervention type tags accepted in scenario definitions.
const (
	TypeGridExtension  = "grid_extension"
	TypeMiniGrid       = "mini_grid_deployment"
	TypePopulation     = "population_growth"
	TypeDemandIncrease = "demand_increase"
	TypeSolarCapacity  = "solar_capacity_addition"
)

// Parameter defaults applied when a scenario definition leaves them unset.
const (
	defaultGridExtensionCount = 10
	defaultMiniGridCount      = 20
	defaultPopulationRate     = 0.1
	defaultDemandRate         = 0.2
	defaultSolarCapacityMW    = 50.0
)

// ApplyIntervention mutates the dataset in place according to one
// intervention. Interventions within a scenario compose: each one operates
// on the cumulative result of those before it.
func ApplyIntervention(d *geodata.Dataset, iv config.Intervention) {
	switch iv.Type {
	case TypeGridExtension:
		applyGridExtension(d, iv)
	case TypeMiniGrid:
		applyMiniGrid(d, iv)
	case TypePopulation:
		rate := iv.Rate
		if rate == 0 {
			rate = defaultPopulationRate
		}
		for _, f := range d.Features {
			scaleField(f, "estimated_population", 1+rate)
			scaleField(f, "baseline_demand_mwh_year", 1+rate)
			scaleField(f, "baseline_peak_demand_kw", 1+rate)
			f.Set("scenario_tag", "population_growth")
		}
	case TypeDemandIncrease:
		rate := iv.Rate
		if rate == 0 {
			rate = defaultDemandRate
		}
		for _, f := range d.Features {
			scaleField(f, "baseline_demand_mwh_year", 1+rate)
			scaleField(f, "baseline_peak_demand_kw", 1+rate)
			f.Set("scenario_tag", "demand_increase")
		}
	case TypeSolarCapacity:
		capacity := iv.CapacityMW
		if capacity == 0 {
			capacity = defaultSolarCapacityMW
		}
		perCluster := capacity / float64(max(d.Len(), 1))
		for _, f := range d.Features {
			f.Set("solar_capacity_mw", f.Float("solar_capacity_mw", 0)+perCluster)
			f.Set("scenario_tag", "solar_capacity")
		}
	default:
		zap.L().Warn("scenario: unknown intervention type, skipping",
			zap.String("type", iv.Type),
		)
	}
}

func applyGridExtension(d *geodata.Dataset, iv config.Intervention) {
	count := iv.Count
	if count <= 0 {
		count = defaultGridExtensionCount
	}

	var targets []int
	switch iv.Target {
	case "top_priority":
		targets = topIndices(d, count, "priority_score", false)
	case "nearest_grid":
		targets = topIndices(d, count, "dist_to_power_km", true)
	default:
		// Unknown strategy: first N rows in current order.
		targets = headIndices(d, count)
	}

	for _, i := range targets {
		f := d.Features[i]
		f.Set("electrification_status", demand.StatusElectrified)
		f.Set("recommended_solution", scoring.SolutionGridExtension)
		scaleField(f, "baseline_demand_mwh_year", 1.5)
		f.Set("scenario_tag", "grid_extension")
	}
}

func applyMiniGrid(d *geodata.Dataset, iv config.Intervention) {
	count := iv.Count
	if count <= 0 {
		count = defaultMiniGridCount
	}

	// Suitable: clusters already recommended a mini-grid variant, or still
	// unelectrified.
	var suitable []int
	for i, f := range d.Features {
		if strings.Contains(f.Str("recommended_solution"), "mini") ||
			f.Str("electrification_status") == demand.StatusNone {
			suitable = append(suitable, i)
		}
	}

	targets := topAmong(d, suitable, count, "priority_score", false)
	for _, i := range targets {
		f := d.Features[i]
		f.Set("electrification_status", demand.StatusPartial)
		f.Set("recommended_solution", "mini_grid")
		scaleField(f, "baseline_demand_mwh_year", 1.3)
		f.Set("scenario_tag", "mini_grid")
	}
}

// topIndices returns the indices of the n features with the largest (or
// smallest) value of key. The sort is stable, so ties resolve by original
// row order and repeated runs select identically.
func topIndices(d *geodata.Dataset, n int, key string, smallest bool) []int {
	idx := make([]int, d.Len())
	for i := range idx {
		idx[i] = i
	}
	return topAmong(d, idx, n, key, smallest)
}

func topAmong(d *geodata.Dataset, candidates []int, n int, key string, smallest bool) []int {
	sorted := make([]int, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(a, b int) bool {
		va := d.Features[sorted[a]].Float(key, 0)
		vb := d.Features[sorted[b]].Float(key, 0)
		if smallest {
			return va < vb
		}
		return va > vb
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

func headIndices(d *geodata.Dataset, n int) []int {
	if n > d.Len() {
		n = d.Len()
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func scaleField(f *geodata.Feature, key string, factor float64) {
	f.Set(key, f.Float(key, 0)*factor)
}
