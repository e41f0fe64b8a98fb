package service

import (
	"github.com/floorquote/backend/internal/ai"
	"github.com/floorquote/backend/internal/models"
)

const noImagesMessage = "No images to analyze"

// Aggregate fuses per-image assessments into one project assessment. Only successful entries
// contribute, and every rule leans towards the larger job: worst condition, largest area,
// highest complexity, all damages. Ties in the floor-type vote go to the value seen first.
func Aggregate(entries []models.FloorAssessment, excerpt string) models.FloorAssessment {
	if len(entries) == 0 {
		return models.FloorAssessment{
			Success:         false,
			Error:           noImagesMessage,
			FloorType:       models.FloorUnknown,
			Condition:       models.ConditionUnknown,
			Damages:         []models.Damage{},
			Recommendations: []string{},
			WorkComplexity:  models.ComplexityMedium,
			Context:         excerpt,
		}
	}

	var ok []models.FloorAssessment
	for _, e := range entries {
		if e.Success {
			ok = append(ok, e)
		}
	}

	out := models.FloorAssessment{
		Success:         true,
		FloorType:       modeFloorType(ok),
		Condition:       models.ConditionUnknown,
		Damages:         []models.Damage{},
		AreaEstimateSqm: ai.DefaultAreaSqm,
		Recommendations: []string{},
		WorkComplexity:  models.ComplexityMedium,
		ImagesAnalyzed:  len(entries),
		Context:         excerpt,
		Individual:      entries,
	}
	if len(ok) == 0 {
		return out
	}

	worst := ok[0]
	out.AreaEstimateSqm = ok[0].AreaEstimateSqm
	out.WorkComplexity = ok[0].WorkComplexity
	out.Urgency = ok[0].Urgency
	out.Confidence = ok[0].Confidence
	seen := map[string]bool{}

	for _, e := range ok {
		if e.Condition.Rank() < worst.Condition.Rank() {
			worst = e
		}
		if e.AreaEstimateSqm > out.AreaEstimateSqm {
			out.AreaEstimateSqm = e.AreaEstimateSqm
		}
		if e.WorkComplexity.Rank() > out.WorkComplexity.Rank() {
			out.WorkComplexity = e.WorkComplexity
		}
		if urgencyRank(e.Urgency) > urgencyRank(out.Urgency) {
			out.Urgency = e.Urgency
		}
		if e.Confidence < out.Confidence {
			out.Confidence = e.Confidence
		}
		out.Damages = append(out.Damages, e.Damages...)
		for _, r := range e.Recommendations {
			if !seen[r] {
				seen[r] = true
				out.Recommendations = append(out.Recommendations, r)
			}
		}
		if out.RoomType == "" {
			out.RoomType = e.RoomType
		}
		if out.FloorTypeHebrew == "" && e.FloorType == out.FloorType {
			out.FloorTypeHebrew = e.FloorTypeHebrew
		}
		if out.Duration == "" {
			out.Duration = e.Duration
		}
		if out.SpecialNotes == "" {
			out.SpecialNotes = e.SpecialNotes
		}
	}
	out.Condition = worst.Condition
	out.ConditionNote = worst.ConditionNote
	return out
}

func modeFloorType(entries []models.FloorAssessment) models.FloorType {
	counts := map[models.FloorType]int{}
	var order []models.FloorType
	for _, e := range entries {
		if _, ok := counts[e.FloorType]; !ok {
			order = append(order, e.FloorType)
		}
		counts[e.FloorType]++
	}
	best, bestCount := models.FloorUnknown, 0
	for _, ft := range order {
		if counts[ft] > bestCount {
			best, bestCount = ft, counts[ft]
		}
	}
	return best
}

func urgencyRank(u string) int {
	switch u {
	case "low":
		return 1
	case "medium":
		return 2
	case "high":
		return 3
	}
	return 0
}
