package ai

import (
	"testing"

	"github.com/floorquote/backend/internal/models"
)

func TestInterpretValidJSON(t *testing.T) {
	raw := `{
		"floor_type": "laminate",
		"floor_type_hebrew": "למינציה",
		"condition": "poor",
		"condition_description": "вздутие у стыков",
		"damages": [{"type": "вздутие", "severity": "severe", "description": "вода под покрытием"}],
		"area_estimate": 18.5,
		"room_type": "kitchen",
		"recommendations": ["Заменить ламинат", " "],
		"work_complexity": "high",
		"urgency": "high",
		"estimated_duration": "3",
		"special_notes": "",
		"confidence_level": 85
	}`
	a, ok := Interpret(raw)
	if !ok {
		t.Fatalf("expected JSON path")
	}
	if !a.Success || a.FloorType != models.FloorLaminate || a.Condition != models.ConditionPoor {
		t.Fatalf("unexpected assessment: %+v", a)
	}
	if a.AreaEstimateSqm != 18.5 || a.WorkComplexity != models.ComplexityHigh || a.Confidence != 85 {
		t.Fatalf("unexpected numbers: %+v", a)
	}
	if len(a.Damages) != 1 || a.Damages[0].Severity != models.SeveritySevere {
		t.Fatalf("unexpected damages: %+v", a.Damages)
	}
	if len(a.Recommendations) != 1 {
		t.Fatalf("blank recommendations should be dropped: %v", a.Recommendations)
	}
	if a.RawResponse != "" {
		t.Fatalf("raw response is only kept for the fallback")
	}
}

func TestInterpretFillsDefaults(t *testing.T) {
	a, ok := Interpret(`{"floor_type": "Паркет"}`)
	if !ok {
		t.Fatalf("expected JSON path")
	}
	if a.FloorType != models.FloorParquet {
		t.Fatalf("floor_type=%q", a.FloorType)
	}
	if a.Condition != models.ConditionUnknown || a.WorkComplexity != models.ComplexityMedium || a.Urgency != "medium" {
		t.Fatalf("unexpected defaults: %+v", a)
	}
	if a.AreaEstimateSqm != DefaultAreaSqm {
		t.Fatalf("area=%v, want default %d", a.AreaEstimateSqm, DefaultAreaSqm)
	}
	if a.Damages == nil || a.Recommendations == nil {
		t.Fatalf("lists should be empty, not nil")
	}
}

func TestInterpretLooseTypes(t *testing.T) {
	a, ok := Interpret("```json\n{\"floor_type\":\"tiles\",\"area_estimate\":\"около 25,5 кв.м\",\"estimated_duration\":2,\"confidence_level\":\"140\"}\n```")
	if !ok {
		t.Fatalf("expected JSON path for fenced output")
	}
	if a.AreaEstimateSqm != 25.5 {
		t.Fatalf("area=%v, want 25.5", a.AreaEstimateSqm)
	}
	if a.Duration != "2" {
		t.Fatalf("duration=%q", a.Duration)
	}
	if a.Confidence != 100 {
		t.Fatalf("confidence=%d, want clamp to 100", a.Confidence)
	}
}

func TestInterpretMalformedFallsBackToKeywords(t *testing.T) {
	raw := "На фото паркет, состояние отличное, небольшие царапины."
	a, ok := Interpret(raw)
	if ok {
		t.Fatalf("expected fallback path")
	}
	if !a.Success || a.FloorType != models.FloorParquet || a.Condition != models.ConditionGood {
		t.Fatalf("unexpected fallback: %+v", a)
	}
	if a.RawResponse != raw || a.AreaEstimateSqm != DefaultAreaSqm || a.Duration != "1-2" {
		t.Fatalf("unexpected fallback defaults: %+v", a)
	}
}

func TestInterpretBrokenJSONFallsBack(t *testing.T) {
	a, ok := Interpret(`{"floor_type": "laminate", "condition": плохое}`)
	if ok {
		t.Fatalf("expected fallback path")
	}
	if a.FloorType != models.FloorLaminate || a.Condition != models.ConditionPoor {
		t.Fatalf("unexpected fallback: %+v", a)
	}
}

func TestExtractFromTextPriorityAndDefaultCondition(t *testing.T) {
	a := ExtractFromText("LAMINATE next to linoleum")
	if a.FloorType != models.FloorLaminate {
		t.Fatalf("floor_type=%q, want laminate", a.FloorType)
	}
	if a.Condition != models.ConditionFair {
		t.Fatalf("condition=%q, want fair", a.Condition)
	}
	if b := ExtractFromText(""); b.FloorType != models.FloorUnknown || !b.Success {
		t.Fatalf("unexpected empty-text result: %+v", b)
	}
}

func TestNormalizeSeverity(t *testing.T) {
	if got := normalizeSeverity("Серьезное"); got != models.SeveritySevere {
		t.Fatalf("got %q", got)
	}
	if got := normalizeSeverity("??"); got != models.SeverityModerate {
		t.Fatalf("got %q", got)
	}
}
