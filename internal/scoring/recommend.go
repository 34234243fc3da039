package scoring

import "github.com/Nathan-Omenge/energymap-ai/internal/config"

// Solution type labels appended to every scored cluster.
const (
	SolutionGridExtension   = "grid_extension"
	SolutionMiniGridHybrid  = "mini_grid_hybrid"
	SolutionStandaloneSolar = "standalone_solar"
	SolutionMiniGridSolar   = "mini_grid_solar"
)

// RecommendSolution picks an electrification technology for a cluster.
// Rules are evaluated in fixed priority order and the first match wins;
// mini_grid_solar is the fallback when nothing else fits.
func RecommendSolution(rules config.RecommendationRules, distanceKM, populationIndex, economicScore float64) string {
	roadDensity := Clamp(economicScore/10.0, 0.0, 1.0)

	if distanceKM <= rules.GridExtension.MaxDistanceKM &&
		populationIndex >= rules.GridExtension.MinPopulationIndex {
		return SolutionGridExtension
	}

	if distanceKM <= rules.MiniGridHybrid.MaxDistanceKM &&
		populationIndex >= rules.MiniGridHybrid.MinPopulationIndex &&
		roadDensity >= rules.MiniGridHybrid.MinRoadDensity {
		return SolutionMiniGridHybrid
	}

	if distanceKM >= rules.StandaloneSolar.MinDistanceKM &&
		populationIndex <= rules.StandaloneSolar.MaxPopulationIndex {
		return SolutionStandaloneSolar
	}

	return SolutionMiniGridSolar
}
