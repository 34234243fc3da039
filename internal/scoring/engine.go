// Package scoring implements the priority scoring stage: five normalized
// sub-scores, a weighted composite, a category, a recommended electrification
// solution, and population and cost estimates per settlement cluster.
package scoring

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Nathan-Omenge/energymap-ai/internal/config"
	"github.com/Nathan-Omenge/energymap-ai/internal/geodata"
)

const (
	defaultIndicator    = 0.0
	defaultGridDistance = 50.0
)

// Engine recomputes cluster priority metrics and persists enriched outputs.
type Engine struct {
	cfg *config.Config
}

// New creates a scoring engine.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Run loads the scoring input, computes priority metrics for every cluster,
// and persists the enriched GeoJSON plus the summary CSV. The input dataset
// is a hard requirement; there is no upstream stage to materialize it.
func (e *Engine) Run(ctx context.Context) (*geodata.Dataset, error) {
	log := zap.L().With(zap.String("component", "scoring"))

	d, err := geodata.ReadFile(e.cfg.Paths.ScoringInput)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: load input")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.Compute(d)

	if err := geodata.WriteGeoJSON(e.cfg.Paths.ScoringOutputGeoJSON, d); err != nil {
		return nil, eris.Wrap(err, "scoring: write GeoJSON")
	}
	if err := geodata.WriteCSV(e.cfg.Paths.ScoringOutputCSV, summaryRows(d)); err != nil {
		return nil, eris.Wrap(err, "scoring: write summary CSV")
	}

	log.Info("scoring complete",
		zap.Int("clusters", d.Len()),
		zap.String("output", e.cfg.Paths.ScoringOutputGeoJSON),
	)
	return d, nil
}

// Compute appends the sub-scores, composite score, category, recommendation,
// and population and cost estimates to every record in place. Fields are
// only ever added; geometry and existing properties pass through unmodified.
func (e *Engine) Compute(d *geodata.Dataset) {
	fallback := e.cfg.Scoring.FallbackFields

	popIndex := d.ResolveColumn(fallback["population"], defaultIndicator)
	accessRaw := d.ResolveColumn(fallback["access_gap"], defaultIndicator)
	econRaw := d.ResolveColumn(fallback["economic"], defaultIndicator)
	socialRaw := d.ResolveColumn(fallback["social"], defaultIndicator)
	gridDistance := d.ResolveColumn(fallback["grid_distance"], defaultGridDistance)

	popScore := NormalizeToTen(popIndex, false)
	accessScore := NormalizeToTen(accessRaw, true)
	econScore := NormalizeToTen(econRaw, false)
	socialScore := NormalizeToTen(socialProxy(socialRaw, popIndex), false)
	gridScore := NormalizeToTen(gridDistance, true)

	w := e.cfg.Scoring.Weights
	t := e.cfg.Scoring.Thresholds
	rules := e.cfg.Scoring.RecommendationRules

	estPopulation := EstimatePopulation(popIndex, e.cfg.Scoring.PopulationScale)

	metadata := map[string]any{
		"weights":      w,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"source":       "scoring",
	}

	for i, f := range d.Features {
		composite := w.Population*popScore[i] +
			w.AccessGap*accessScore[i] +
			w.EconomicActivity*econScore[i] +
			w.SocialNeed*socialScore[i] +
			w.GridProximity*gridScore[i]

		solution := RecommendSolution(rules, gridDistance[i], popIndex[i], econScore[i])
		cost := EstimateCost(solution, estPopulation[i], gridDistance[i])

		f.Set("population_score", round2(popScore[i]))
		f.Set("access_gap_score", round2(accessScore[i]))
		f.Set("economic_score", round2(econScore[i]))
		f.Set("social_need_score", round2(socialScore[i]))
		f.Set("grid_proximity_score", round2(gridScore[i]))
		f.Set("priority_score", round2(composite))
		f.Set("priority_category", Categorize(composite, t))
		f.Set("recommended_solution", solution)
		f.Set("estimated_population", math.Round(estPopulation[i]))
		f.Set("estimated_cost_usd", round2(cost))
		f.Set("cost_per_person_usd", round2(costPerPerson(cost, estPopulation[i])))
		f.Set("scoring_metadata", metadata)
	}
}

// socialProxy substitutes a population-band proxy where the raw social-need
// indicator is absent or non-positive: exp(-|pop_index - 0.4|) peaks at the
// mid-range "underserved but viable" band.
func socialProxy(socialRaw, popIndex []float64) []float64 {
	out := make([]float64, len(socialRaw))
	for i, v := range socialRaw {
		if v > 0 {
			out[i] = v
		} else {
			out[i] = math.Exp(-math.Abs(popIndex[i] - 0.4))
		}
	}
	return out
}

// Categorize maps a composite score onto the configured priority bands.
func Categorize(score float64, t config.Thresholds) string {
	switch {
	case score >= t.HighPriority:
		return "High"
	case score >= t.MediumPriority:
		return "Medium"
	default:
		return "Low"
	}
}

// costPerPerson reports 0 for unpopulated clusters rather than dividing by zero.
func costPerPerson(cost, population float64) float64 {
	if population <= 0 {
		return 0
	}
	return cost / math.Max(population, 1)
}

// summaryRow is one line of the scoring summary table.
type summaryRow struct {
	ClusterID           string  `csv:"cluster_id"`
	PriorityScore       float64 `csv:"priority_score"`
	PriorityCategory    string  `csv:"priority_category"`
	RecommendedSolution string  `csv:"recommended_solution"`
	PopulationScore     float64 `csv:"population_score"`
	AccessGapScore      float64 `csv:"access_gap_score"`
	EconomicScore       float64 `csv:"economic_score"`
	SocialNeedScore     float64 `csv:"social_need_score"`
	GridProximityScore  float64 `csv:"grid_proximity_score"`
}

func summaryRows(d *geodata.Dataset) []summaryRow {
	rows := make([]summaryRow, 0, d.Len())
	for _, f := range d.Features {
		rows = append(rows, summaryRow{
			ClusterID:           f.PropString("cluster_id"),
			PriorityScore:       f.Float("priority_score", 0),
			PriorityCategory:    f.Str("priority_category"),
			RecommendedSolution: f.Str("recommended_solution"),
			PopulationScore:     f.Float("population_score", 0),
			AccessGapScore:      f.Float("access_gap_score", 0),
			EconomicScore:       f.Float("economic_score", 0),
			SocialNeedScore:     f.Float("social_need_score", 0),
			GridProximityScore:  f.Float("grid_proximity_score", 0),
		})
	}
	return rows
}
