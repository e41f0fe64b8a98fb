package pricing

import (
	"github.com/floorquote/backend/internal/models"
)

const (
	minDays = 1
	maxDays = 14
)

var daysPer10Sqm = map[models.FloorType]float64{
	models.FloorParquet:  2,
	models.FloorLaminate: 1,
	models.FloorTiles:    3,
	models.FloorLinoleum: 1,
}

var complexityTimeMultipliers = map[models.Complexity]float64{
	models.ComplexityLow:    1.0,
	models.ComplexityMedium: 1.5,
	models.ComplexityHigh:   2.0,
}

var workDescriptions = map[models.FloorType]map[models.Complexity]string{
	models.FloorParquet: {
		models.ComplexityLow:    "Легкий ремонт паркета",
		models.ComplexityMedium: "Реставрация паркета",
		models.ComplexityHigh:   "Полная замена паркета",
	},
	models.FloorLaminate: {
		models.ComplexityLow:    "Замена отдельных планок ламината",
		models.ComplexityMedium: "Частичная замена ламината",
		models.ComplexityHigh:   "Полная замена ламината",
	},
	models.FloorTiles: {
		models.ComplexityLow:    "Замена отдельных плиток",
		models.ComplexityMedium: "Частичная замена плитки",
		models.ComplexityHigh:   "Полная замена плитки",
	},
	models.FloorLinoleum: {
		models.ComplexityLow:    "Ремонт линолеума",
		models.ComplexityMedium: "Частичная замена линолеума",
		models.ComplexityHigh:   "Полная замена линолеума",
	},
}

const genericWork = "Ремонт напольного покрытия"

// Timeline estimates working days from area, floor type and complexity, clamped to 1..14.
func Timeline(a models.FloorAssessment) models.Timeline {
	perTen, ok := daysPer10Sqm[a.FloorType]
	if !ok {
		perTen = 2
	}
	mult, ok := complexityTimeMultipliers[a.WorkComplexity]
	if !ok {
		mult = 1.5
	}

	days := a.AreaEstimateSqm / 10 * perTen * mult
	if days < minDays {
		days = minDays
	}
	if days > maxDays {
		days = maxDays
	}

	low := int(days * 0.8)
	if low < minDays {
		low = minDays
	}
	return models.Timeline{
		EstimatedDays: int(days),
		MinDays:       low,
		MaxDays:       int(days * 1.3),
		WorkType:      WorkDescription(a.FloorType, a.WorkComplexity),
	}
}

func WorkDescription(ft models.FloorType, c models.Complexity) string {
	if byComplexity, ok := workDescriptions[ft]; ok {
		if d, ok := byComplexity[c]; ok {
			return d
		}
	}
	return genericWork
}
