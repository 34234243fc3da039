package scoring

import "strings"

// Cost model coefficients, in USD. Households are assumed at 0.3 per person
// across the pipeline.
const (
	householdsPerPerson = 0.3

	gridCostPerKM        = 1000.0
	gridCostPerHousehold = 200.0

	miniGridKWPerHousehold   = 0.5
	miniGridCostPerKW        = 1500.0
	miniGridCostPerHousehold = 300.0

	standaloneCostPerHousehold = 500.0
)

// EstimatePopulation converts a normalized population indicator into an
// absolute estimate. Columns that look like percentages (max above 1) are
// brought into the 0-1 range before clipping and scaling.
func EstimatePopulation(indicator []float64, scale float64) []float64 {
	out := make([]float64, len(indicator))
	if len(indicator) == 0 {
		return out
	}

	vmax := indicator[0]
	for _, v := range indicator[1:] {
		if v > vmax {
			vmax = v
		}
	}

	for i, v := range indicator {
		if vmax > 1.0 {
			v = Clamp(v, 0.0, 100.0) / 100.0
		}
		out[i] = Clamp(v, 0.0, 1.0) * scale
	}
	return out
}

// EstimateCost prices a recommended solution for a cluster. Grid extension
// is distance-proportional, mini-grid variants are capacity-proportional,
// and everything else carries a flat per-household cost.
func EstimateCost(solution string, population, distanceKM float64) float64 {
	households := population * householdsPerPerson

	switch {
	case solution == SolutionGridExtension:
		return distanceKM*gridCostPerKM + households*gridCostPerHousehold
	case strings.HasPrefix(solution, "mini_grid"):
		capacityKW := households * miniGridKWPerHousehold
		return capacityKW*miniGridCostPerKW + households*miniGridCostPerHousehold
	default:
		return households * standaloneCostPerHousehold
	}
}
