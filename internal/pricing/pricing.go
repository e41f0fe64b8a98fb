package pricing

import (
	"errors"
	"math"

	"github.com/floorquote/backend/internal/models"
)

const (
	Currency      = "ILS"
	rangeSpread   = 0.15
	maxDamageMult = 2.0
)

var ErrInvalidPrice = errors.New("recommended cost must be positive")

// BasePrices is the price per m² by floor type.
var BasePrices = map[models.FloorType]float64{
	models.FloorParquet:  150,
	models.FloorLaminate: 80,
	models.FloorTiles:    120,
	models.FloorLinoleum: 60,
	models.FloorUnknown:  100,
}

var conditionMultipliers = map[models.Condition]float64{
	models.ConditionExcellent: 1.0,
	models.ConditionGood:      1.2,
	models.ConditionFair:      1.5,
	models.ConditionPoor:      2.0,
	models.ConditionUnknown:   1.3,
}

var complexityMultipliers = map[models.Complexity]float64{
	models.ComplexityLow:    1.0,
	models.ComplexityMedium: 1.3,
	models.ComplexityHigh:   1.8,
}

var severitySurcharge = map[models.Severity]float64{
	models.SeverityMinor:    0.1,
	models.SeverityModerate: 0.2,
	models.SeveritySevere:   0.4,
}

// Calculate prices a project assessment. All multipliers compound on base price × area.
func Calculate(a models.FloorAssessment) models.CostEstimate {
	base, ok := BasePrices[a.FloorType]
	if !ok {
		base = BasePrices[models.FloorUnknown]
	}
	condMult, ok := conditionMultipliers[a.Condition]
	if !ok {
		condMult = 1.3
	}
	complexMult, ok := complexityMultipliers[a.WorkComplexity]
	if !ok {
		complexMult = 1.3
	}
	damageMult := DamageMultiplier(a.Damages)

	baseCost := base * a.AreaEstimateSqm
	total := condMult * complexMult * damageMult
	final := baseCost * total

	return models.CostEstimate{
		BasePricePerSqm:      base,
		Area:                 a.AreaEstimateSqm,
		BaseCost:             money(baseCost),
		ConditionMultiplier:  condMult,
		ComplexityMultiplier: complexMult,
		DamageMultiplier:     damageMult,
		TotalMultiplier:      math.Round(total*100) / 100,
		MinCost:              money(final * (1 - rangeSpread)),
		MaxCost:              money(final * (1 + rangeSpread)),
		RecommendedCost:      money(final),
		Currency:             Currency,
		Breakdown: models.CostBreakdown{
			BaseWork:             money(baseCost),
			ConditionAdjustment:  money(baseCost * (condMult - 1)),
			ComplexityAdjustment: money(baseCost * condMult * (complexMult - 1)),
			DamageAdjustment:     money(baseCost * condMult * complexMult * (damageMult - 1)),
		},
	}
}

// DamageMultiplier adds a surcharge per damage by severity, capped at 2.0.
// Damages with an unrecognized severity count as minor.
func DamageMultiplier(damages []models.Damage) float64 {
	m := 1.0
	for _, d := range damages {
		s, ok := severitySurcharge[d.Severity]
		if !ok {
			s = severitySurcharge[models.SeverityMinor]
		}
		m += s
	}
	// float accumulation drifts (1.0+0.1+0.2 != 1.3)
	m = math.Round(m*100) / 100
	return math.Min(m, maxDamageMult)
}

// money rounds to whole shekels.
func money(x float64) int { return int(math.Round(x)) }

// Adjust re-centres the estimate on a price chosen by the operator, keeping the same spread.
func Adjust(est models.CostEstimate, recommended int) (models.CostEstimate, error) {
	if recommended <= 0 {
		return est, ErrInvalidPrice
	}
	est.RecommendedCost = recommended
	est.MinCost = money(float64(recommended) * (1 - rangeSpread))
	est.MaxCost = money(float64(recommended) * (1 + rangeSpread))
	est.Adjusted = true
	return est, nil
}
