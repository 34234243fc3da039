// Package demand implements the demand forecasting stage: household counts,
// baseline demand and peak load, and compounded projections to a target year.
package demand

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Nathan-Omenge/energymap-ai/internal/config"
	"github.com/Nathan-Omenge/energymap-ai/internal/geodata"
	"github.com/Nathan-Omenge/energymap-ai/internal/scoring"
)

// Electrification status labels derived from the unmet-need score.
const (
	StatusElectrified = "electrified"
	StatusPartial     = "partial"
	StatusNone        = "none"
)

const (
	hoursPerYear        = 365 * 24
	householdsPerPerson = 0.3

	// Annual kWh per household by status. Electrified households consume
	// 2000 reduced by 5 per need-score point; the other bands are flat.
	electrifiedBaseKWH   = 2000.0
	electrifiedNeedSlope = 5.0
	partialKWH           = 800.0
	unelectrifiedKWH     = 450.0

	// minLoadFactor floors the configured load factor so peak demand stays
	// finite.
	minLoadFactor = 0.01
)

// Totals aggregates baseline and projected demand across all clusters.
// Projected keys are derived from the configured target year.
type Totals map[string]any

// Engine computes baseline and future demand metrics per cluster.
type Engine struct {
	cfg *config.Config
}

// New creates a demand forecast engine.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Run consumes the scoring stage's output, derives baseline demand and the
// target-year projection, and persists the GeoJSON, summary CSV, and JSON
// aggregate. The scoring output must already exist; the orchestrator
// materializes it when missing.
func (e *Engine) Run(ctx context.Context) (*geodata.Dataset, Totals, error) {
	log := zap.L().With(zap.String("component", "demand"))

	d, err := geodata.ReadGeoJSON(e.cfg.Paths.ScoringOutputGeoJSON)
	if err != nil {
		return nil, nil, eris.Wrap(err, "demand: load scored clusters")
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	e.Baseline(d)
	e.Forecast(d)

	totals := e.totals(d)

	if err := geodata.WriteGeoJSON(e.cfg.Paths.DemandOutputGeoJSON, d); err != nil {
		return nil, nil, eris.Wrap(err, "demand: write GeoJSON")
	}
	if err := e.writeSummaryCSV(d); err != nil {
		return nil, nil, err
	}
	if err := geodata.WriteJSON(e.cfg.Paths.SummaryStatsJSON, totals); err != nil {
		return nil, nil, eris.Wrap(err, "demand: write summary JSON")
	}

	log.Info("demand forecast complete",
		zap.Int("clusters", d.Len()),
		zap.Int("target_year", e.cfg.Demand.TargetYear),
	)
	return d, totals, nil
}

// Baseline appends household demand and peak-load fields to every record.
func (e *Engine) Baseline(d *geodata.Dataset) {
	population := e.estimatePopulation(d)
	needScore := d.ResolveColumn([]string{"energy_need_score", "priority_score"}, 0)

	for i, f := range d.Features {
		status := StatusFromNeed(needScore[i])
		perHousehold := HouseholdDemand(status, needScore[i])
		households := population[i] * householdsPerPerson

		demandMWH := households * perHousehold / 1000

		f.Set("estimated_population", population[i])
		f.Set("electrification_status", status)
		f.Set("demand_per_household_kwh", perHousehold)
		f.Set("baseline_demand_mwh_year", demandMWH)
		f.Set("baseline_peak_demand_kw", e.peakKW(demandMWH))
	}
}

// Forecast appends target-year population, demand, and peak-demand fields.
// The electrification adjustment closes the gap toward the configured target
// rate uniformly across clusters.
func (e *Engine) Forecast(d *geodata.Dataset) {
	cfg := e.cfg.Demand
	years := cfg.TargetYear - cfg.BaseYear
	if years < 0 {
		years = 0
	}

	density := d.Column("building_density", 0)

	electrifiedMean := 0.0
	if d.Len() > 0 {
		for _, f := range d.Features {
			if f.Str("electrification_status") != StatusNone {
				electrifiedMean++
			}
		}
		electrifiedMean /= float64(d.Len())
	}
	adjustment := scoring.Clamp(cfg.ElectrificationTargetRate-electrifiedMean, 0.0, 1.0)

	consumptionMultiplier := math.Pow(1+cfg.ConsumptionGrowthRate, float64(years))

	popKey := fmt.Sprintf("population_%d", cfg.TargetYear)
	demandKey := fmt.Sprintf("demand_%d_mwh_year", cfg.TargetYear)
	peakKey := fmt.Sprintf("peak_demand_%d_kw", cfg.TargetYear)

	for i, f := range d.Features {
		rate := GrowthRate(cfg.PopulationGrowth, density[i])
		futurePop := f.Float("estimated_population", 0) * math.Pow(1+rate, float64(years))

		electrified := 0.0
		if f.Str("electrification_status") != StatusNone {
			electrified = 1.0
		}
		futureElectrified := scoring.Clamp(electrified+adjustment, 0.0, 1.0)

		demandMWH := futurePop * futureElectrified * cfg.BaselineConsumption * consumptionMultiplier / 1000

		f.Set(popKey, futurePop)
		f.Set(demandKey, demandMWH)
		f.Set(peakKey, e.peakKW(demandMWH))
	}
}

// estimatePopulation re-derives absolute population from whichever
// normalized indicator survived upstream, falling back to the population
// sub-score rescaled to 0-1.
func (e *Engine) estimatePopulation(d *geodata.Dataset) []float64 {
	var index []float64
	switch {
	case d.HasColumn("norm_pop"):
		index = d.Column("norm_pop", 0)
	case d.HasColumn("pop_index"):
		index = d.Column("pop_index", 0)
	default:
		index = d.Column("population_score", 0)
		for i := range index {
			index[i] /= 10
		}
	}

	out := make([]float64, len(index))
	for i, v := range index {
		out[i] = scoring.Clamp(v, 0.0, 1.0) * e.cfg.Demand.PopulationScale
	}
	return out
}

// StatusFromNeed maps an unmet-need score to an electrification status.
// High need implies the cluster is currently unserved.
func StatusFromNeed(score float64) string {
	switch {
	case score >= 60:
		return StatusNone
	case score >= 40:
		return StatusPartial
	default:
		return StatusElectrified
	}
}

// HouseholdDemand returns annual kWh per household for a status. Within the
// electrified band, higher unmet need still reduces consumption.
func HouseholdDemand(status string, needScore float64) float64 {
	switch status {
	case StatusElectrified:
		return electrifiedBaseKWH - needScore*electrifiedNeedSlope
	case StatusPartial:
		return partialKWH
	default:
		return unelectrifiedKWH
	}
}

// GrowthRate picks the annual population growth rate for a cluster from its
// density tier.
func GrowthRate(g config.GrowthConfig, density float64) float64 {
	switch {
	case density >= g.UrbanDensityThreshold:
		return g.UrbanRate
	case density >= g.PeriUrbanDensityThreshold:
		return g.PeriUrbanRate
	default:
		return g.RuralRate
	}
}

// peakKW converts annual MWh to peak kW through the configured load factor.
func (e *Engine) peakKW(demandMWH float64) float64 {
	return demandMWH * 1000 / (hoursPerYear * math.Max(e.cfg.Demand.LoadFactor, minLoadFactor))
}

func (e *Engine) totals(d *geodata.Dataset) Totals {
	year := e.cfg.Demand.TargetYear
	demandKey := fmt.Sprintf("demand_%d_mwh_year", year)
	peakKey := fmt.Sprintf("peak_demand_%d_kw", year)

	var baseDemand, basePeak, futureDemand, futurePeak float64
	for _, f := range d.Features {
		baseDemand += f.Float("baseline_demand_mwh_year", 0)
		basePeak += f.Float("baseline_peak_demand_kw", 0)
		futureDemand += f.Float(demandKey, 0)
		futurePeak += f.Float(peakKey, 0)
	}

	return Totals{
		"clusters":                 d.Len(),
		"baseline_demand_mwh_year": baseDemand,
		"baseline_peak_kw":         basePeak,
		fmt.Sprintf("demand_%d_mwh_year", year): futureDemand,
		fmt.Sprintf("peak_%d_kw", year):         futurePeak,
	}
}

// writeSummaryCSV emits the reduced per-cluster table. Projected column
// names carry the target year, so the header is assembled at runtime.
func (e *Engine) writeSummaryCSV(d *geodata.Dataset) error {
	year := e.cfg.Demand.TargetYear
	demandKey := fmt.Sprintf("demand_%d_mwh_year", year)
	peakKey := fmt.Sprintf("peak_demand_%d_kw", year)

	header := []string{
		"cluster_id",
		"priority_score",
		"priority_category",
		"recommended_solution",
		"estimated_population",
		"electrification_status",
		"baseline_demand_mwh_year",
		"baseline_peak_demand_kw",
		demandKey,
		peakKey,
	}

	rows := make([][]string, 0, d.Len())
	for _, f := range d.Features {
		rows = append(rows, []string{
			f.PropString("cluster_id"),
			formatFloat(f.Float("priority_score", 0)),
			f.Str("priority_category"),
			f.Str("recommended_solution"),
			formatFloat(f.Float("estimated_population", 0)),
			f.Str("electrification_status"),
			formatFloat(f.Float("baseline_demand_mwh_year", 0)),
			formatFloat(f.Float("baseline_peak_demand_kw", 0)),
			formatFloat(f.Float(demandKey, 0)),
			formatFloat(f.Float(peakKey, 0)),
		})
	}

	if err := geodata.WriteTable(e.cfg.Paths.DemandOutputCSV, header, rows); err != nil {
		return eris.Wrap(err, "demand: write summary CSV")
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
