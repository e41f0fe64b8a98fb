package ai

import (
	"context"
	"fmt"

	"github.com/floorquote/backend/internal/models"
	"github.com/floorquote/backend/internal/utils"
)

// MockAnalyzer derives a stable assessment from the image bytes. Used for local runs without a model.
type MockAnalyzer struct{}

func (MockAnalyzer) Analyze(_ context.Context, img Image, _ string) models.FloorAssessment {
	h := utils.HashStringToUint64(string(img.Data))

	types := []models.FloorType{models.FloorParquet, models.FloorLaminate, models.FloorTiles, models.FloorLinoleum}
	conditions := []models.Condition{models.ConditionGood, models.ConditionFair, models.ConditionPoor}
	complexities := []models.Complexity{models.ComplexityLow, models.ComplexityMedium, models.ComplexityHigh}
	areas := []float64{12, 18, 25, 35}

	floorType := types[int(h%uint64(len(types)))]
	condition := conditions[int((h/7)%uint64(len(conditions)))]

	a := models.FloorAssessment{
		Success:         true,
		ImageName:       img.Name,
		FloorType:       floorType,
		Condition:       condition,
		ConditionNote:   fmt.Sprintf("mock assessment of %s", img.Name),
		Damages:         []models.Damage{},
		AreaEstimateSqm: areas[int((h/13)%uint64(len(areas)))],
		Recommendations: []string{"Шлифовка и покрытие лаком"},
		WorkComplexity:  complexities[int((h/17)%uint64(len(complexities)))],
		Urgency:         "medium",
		Duration:        "1-2",
		Confidence:      75,
	}
	if condition == models.ConditionPoor {
		a.Damages = append(a.Damages, models.Damage{Type: "царапины", Severity: models.SeverityModerate, Description: "mock damage"})
	}
	return a
}
