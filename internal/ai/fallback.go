package ai

import (
	"strings"

	"github.com/floorquote/backend/internal/models"
)

var (
	goodConditionWords = []string{"отличное", "excellent", "хорошее"}
	poorConditionWords = []string{"плохое", "poor", "ужасное"}
)

// ExtractFromText is the best-effort reading of free-form model output. It always succeeds
// and keeps the raw text for audit.
func ExtractFromText(text string) models.FloorAssessment {
	lower := strings.ToLower(text)

	a := models.FloorAssessment{
		Success:         true,
		FloorType:       matchFloorType(lower),
		Condition:       models.ConditionFair,
		Damages:         []models.Damage{},
		AreaEstimateSqm: DefaultAreaSqm,
		Recommendations: []string{},
		WorkComplexity:  models.ComplexityMedium,
		Urgency:         "medium",
		Duration:        "1-2",
		RawResponse:     text,
	}
	switch {
	case containsAny(lower, goodConditionWords):
		a.Condition = models.ConditionGood
	case containsAny(lower, poorConditionWords):
		a.Condition = models.ConditionPoor
	}
	return a
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
