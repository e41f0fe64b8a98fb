package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/floorquote/backend/internal/models"
)

// DefaultAreaSqm is the area assumed when the model could not tell.
const DefaultAreaSqm = 20

type modelDamage struct {
	Type        string `json:"type" jsonschema_description:"тип повреждения"`
	Severity    string `json:"severity" jsonschema:"enum=minor,enum=moderate,enum=severe"`
	Description string `json:"description"`
}

// modelResponse is the document the model is asked to return. Numeric and duration fields
// accept either JSON numbers or strings since models are not consistent about it.
type modelResponse struct {
	FloorType       string        `json:"floor_type" jsonschema:"enum=parquet,enum=laminate,enum=tiles,enum=linoleum,enum=carpet,enum=concrete,enum=unknown"`
	FloorTypeHebrew string        `json:"floor_type_hebrew"`
	Condition       string        `json:"condition" jsonschema:"enum=excellent,enum=good,enum=fair,enum=poor,enum=unknown"`
	ConditionNote   string        `json:"condition_description"`
	Damages         []modelDamage `json:"damages"`
	AreaEstimate    looseNumber   `json:"area_estimate" jsonschema_description:"примерная площадь в кв.м"`
	RoomType        string        `json:"room_type"`
	Recommendations []string      `json:"recommendations"`
	WorkComplexity  string        `json:"work_complexity" jsonschema:"enum=low,enum=medium,enum=high"`
	Urgency         string        `json:"urgency" jsonschema:"enum=low,enum=medium,enum=high"`
	Duration        looseString   `json:"estimated_duration" jsonschema_description:"время выполнения в днях"`
	SpecialNotes    string        `json:"special_notes"`
	Confidence      looseNumber   `json:"confidence_level" jsonschema_description:"уверенность в анализе (0-100)"`
}

var firstNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = looseNumber(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if m := firstNumber.FindString(s); m != "" {
			f, _ = strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
		}
	}
	*n = looseNumber(f)
	return nil
}

type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*s = looseString(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	*s = ""
	return nil
}

// Interpret turns raw model output into an assessment. The boolean reports whether the output
// was a readable JSON document; when it is not the keyword extractor's result is returned.
func Interpret(raw string) (models.FloorAssessment, bool) {
	var resp modelResponse
	if err := decodeModelJSON(raw, &resp); err != nil {
		return ExtractFromText(raw), false
	}
	return resp.assessment(), true
}

var errNoJSONObject = errors.New("no JSON object in model output")

// decodeModelJSON accepts a bare object or one wrapped in prose or code fences.
func decodeModelJSON(raw string, v any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return errNoJSONObject
	}
	return json.Unmarshal([]byte(raw[start:end+1]), v)
}

func (r modelResponse) assessment() models.FloorAssessment {
	a := models.FloorAssessment{
		Success:         true,
		FloorType:       normalizeFloorType(r.FloorType),
		FloorTypeHebrew: strings.TrimSpace(r.FloorTypeHebrew),
		Condition:       normalizeCondition(r.Condition),
		ConditionNote:   strings.TrimSpace(r.ConditionNote),
		Damages:         []models.Damage{},
		AreaEstimateSqm: float64(r.AreaEstimate),
		RoomType:        strings.TrimSpace(r.RoomType),
		Recommendations: []string{},
		WorkComplexity:  normalizeComplexity(r.WorkComplexity),
		Urgency:         normalizeUrgency(r.Urgency),
		Duration:        strings.TrimSpace(string(r.Duration)),
		SpecialNotes:    strings.TrimSpace(r.SpecialNotes),
		Confidence:      clampConfidence(float64(r.Confidence)),
	}
	if a.AreaEstimateSqm <= 0 {
		a.AreaEstimateSqm = DefaultAreaSqm
	}
	for _, d := range r.Damages {
		a.Damages = append(a.Damages, models.Damage{
			Type:        strings.TrimSpace(d.Type),
			Severity:    normalizeSeverity(d.Severity),
			Description: strings.TrimSpace(d.Description),
		})
	}
	for _, rec := range r.Recommendations {
		if rec = strings.TrimSpace(rec); rec != "" {
			a.Recommendations = append(a.Recommendations, rec)
		}
	}
	return a
}

type floorKeywords struct {
	Type  models.FloorType
	Words []string
}

// floorTypeKeywords is checked in order; the first entry with a matching word wins.
var floorTypeKeywords = []floorKeywords{
	{models.FloorParquet, []string{"паркет", "parquet"}},
	{models.FloorLaminate, []string{"ламинат", "laminate"}},
	{models.FloorTiles, []string{"плитка", "tiles", "керамика"}},
	{models.FloorLinoleum, []string{"линолеум", "linoleum"}},
	{models.FloorCarpet, []string{"ковролин", "carpet"}},
	{models.FloorConcrete, []string{"бетон", "concrete"}},
}

func normalizeFloorType(s string) models.FloorType {
	s = strings.ToLower(strings.TrimSpace(s))
	switch models.FloorType(s) {
	case models.FloorParquet, models.FloorLaminate, models.FloorTiles, models.FloorLinoleum,
		models.FloorCarpet, models.FloorConcrete:
		return models.FloorType(s)
	case "tile":
		return models.FloorTiles
	}
	if s == "" {
		return models.FloorUnknown
	}
	return matchFloorType(s)
}

func matchFloorType(lower string) models.FloorType {
	for _, k := range floorTypeKeywords {
		for _, w := range k.Words {
			if strings.Contains(lower, w) {
				return k.Type
			}
		}
	}
	return models.FloorUnknown
}

func normalizeCondition(s string) models.Condition {
	s = strings.ToLower(strings.TrimSpace(s))
	switch models.Condition(s) {
	case models.ConditionExcellent, models.ConditionGood, models.ConditionFair, models.ConditionPoor:
		return models.Condition(s)
	}
	switch {
	case strings.Contains(s, "отличн"):
		return models.ConditionExcellent
	case strings.Contains(s, "хорош"):
		return models.ConditionGood
	case strings.Contains(s, "удовлетвор"), strings.Contains(s, "средн"):
		return models.ConditionFair
	case strings.Contains(s, "плох"), strings.Contains(s, "ужасн"):
		return models.ConditionPoor
	}
	return models.ConditionUnknown
}

func normalizeComplexity(s string) models.Complexity {
	switch c := models.Complexity(strings.ToLower(strings.TrimSpace(s))); c {
	case models.ComplexityLow, models.ComplexityHigh:
		return c
	default:
		return models.ComplexityMedium
	}
}

func normalizeUrgency(s string) string {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "low", "high":
		return s
	default:
		return "medium"
	}
}

func normalizeSeverity(s string) models.Severity {
	s = strings.ToLower(strings.TrimSpace(s))
	switch models.Severity(s) {
	case models.SeverityMinor, models.SeverityModerate, models.SeveritySevere:
		return models.Severity(s)
	}
	switch {
	case strings.Contains(s, "незначит"), strings.Contains(s, "легк"):
		return models.SeverityMinor
	case strings.Contains(s, "серьезн"), strings.Contains(s, "серьёзн"), strings.Contains(s, "сильн"):
		return models.SeveritySevere
	}
	return models.SeverityModerate
}

func clampConfidence(f float64) int {
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	}
	return int(f)
}
