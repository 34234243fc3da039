package scenario

import (
	"github.com/Nathan-Omenge/energymap-ai/internal/demand"
	"github.com/Nathan-Omenge/energymap-ai/internal/geodata"
)

// Impacts compares one scenario result against the untouched baseline.
// People and settlement deltas are floored at zero: an intervention that
// regresses electrification reports no progress, never negative progress.
type Impacts struct {
	PeopleElectrified    float64  `csv:"people_electrified" json:"people_electrified"`
	SettlementsConnected float64  `csv:"settlements_connected" json:"settlements_connected"`
	DemandIncreaseMWH    float64  `csv:"demand_increase_mwh" json:"demand_increase_mwh"`
	CostUSD              *float64 `csv:"cost_usd" json:"cost_usd"`
	ElectrificationRate  float64  `csv:"electrification_rate" json:"electrification_rate"`
}

// CalculateImpacts derives the aggregate impact metrics for a scenario.
// CostUSD is nil when the dataset carries no estimated_cost_usd field.
func CalculateImpacts(baseline, result *geodata.Dataset) Impacts {
	var baseUnservedPop, resultUnservedPop float64
	var baseUnservedCount, resultUnservedCount int
	var baseDemand, resultDemand float64
	var served int

	for _, f := range baseline.Features {
		baseDemand += f.Float("baseline_demand_mwh_year", 0)
		if f.Str("electrification_status") == demand.StatusNone {
			baseUnservedPop += f.Float("estimated_population", 0)
			baseUnservedCount++
		}
	}

	for _, f := range result.Features {
		resultDemand += f.Float("baseline_demand_mwh_year", 0)
		if f.Str("electrification_status") == demand.StatusNone {
			resultUnservedPop += f.Float("estimated_population", 0)
			resultUnservedCount++
		} else {
			served++
		}
	}

	imp := Impacts{
		PeopleElectrified:    maxFloat(baseUnservedPop-resultUnservedPop, 0),
		SettlementsConnected: maxFloat(float64(baseUnservedCount-resultUnservedCount), 0),
		DemandIncreaseMWH:    resultDemand - baseDemand,
	}

	if result.HasColumn("estimated_cost_usd") {
		total := 0.0
		for _, f := range result.Features {
			total += f.Float("estimated_cost_usd", 0)
		}
		imp.CostUSD = &total
	}

	if result.Len() > 0 {
		imp.ElectrificationRate = float64(served) / float64(result.Len())
	}

	return imp
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
