package report

import (
	"strings"
	"testing"
	"time"

	"github.com/floorquote/backend/internal/models"
)

func sampleData() Data {
	return Data{
		Assessment: models.FloorAssessment{
			Success:         true,
			FloorType:       models.FloorParquet,
			Condition:       models.ConditionPoor,
			AreaEstimateSqm: 25.5,
			WorkComplexity:  models.ComplexityHigh,
			ImagesAnalyzed:  3,
			Damages: []models.Damage{
				{Type: "трещина", Severity: models.SeveritySevere, Description: "трещина у окна"},
				{Type: "царапины", Severity: models.SeverityMinor, Description: "царапины"},
			},
			Recommendations: []string{"Циклевка", "Лак", "Замена планок", "Герметизация"},
			Context:         "a: 1\nb: 2\nc: 3\nd: 4\ne: 5\nf: 6",
		},
		Cost:     models.CostEstimate{BasePricePerSqm: 150, BaseCost: 3825, ConditionMultiplier: 2, ComplexityMultiplier: 1.8, DamageMultiplier: 1.5, MinCost: 17557, MaxCost: 23754, RecommendedCost: 20655},
		Timeline: models.Timeline{EstimatedDays: 10, MinDays: 8, MaxDays: 13, WorkType: "Полная замена паркета"},
		Client:   models.ClientInfo{Name: "Dana", MessageCount: 7, ProblemDescriptions: []string{"p1", "p2", "p3", "p4"}},
		Contact:  models.Contact{Name: "Иван", Phone: "+972 52-477-2115"},
		At:       time.Date(2024, 3, 12, 9, 15, 0, 0, time.UTC),
	}
}

func TestFullReport(t *testing.T) {
	out := Full(sampleData())
	for _, want := range []string{
		"📅 Дата: 12.03.2024 09:15",
		"• Имя: Dana",
		"• Телефон: Не указан",
		"• Тип покрытия: Паркет",
		"• Площадь: ~25.5 кв.м",
		"• 🔴 трещина у окна",
		"• 🟡 царапины",
		"4. Герметизация",
		"  - Сложность: x1.8",
		"**ИТОГО: 17557-23754₪**",
		"• Время: 8-13 дней",
		"• p3",
		"• f: 6",
		"ИИ-ботом Ивана",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("full report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "• p4") || strings.Contains(out, "• a: 1") {
		t.Fatalf("problems and context lines should be truncated:\n%s", out)
	}
}

func TestFullReportEmptySections(t *testing.T) {
	d := sampleData()
	d.Assessment.Damages = nil
	d.Assessment.Recommendations = nil
	d.Assessment.Context = ""
	d.Client = models.ClientInfo{}
	out := Full(d)
	for _, want := range []string{"Серьезных повреждений не обнаружено", "Дополнительный осмотр на месте", "Дополнительная информация отсутствует", "• Имя: Не указано"} {
		if !strings.Contains(out, want) {
			t.Fatalf("full report missing %q", want)
		}
	}
}

func TestClientReply(t *testing.T) {
	out := ClientReply(sampleData())
	if !strings.Contains(out, "Привет Dana!") {
		t.Fatalf("missing greeting:\n%s", out)
	}
	if !strings.Contains(out, "Обнаружены серьезные повреждения:** 1 шт.") {
		t.Fatalf("severe damages should be counted:\n%s", out)
	}
	if strings.Contains(out, "Герметизация") {
		t.Fatalf("client reply shows at most three recommendations")
	}
	if !strings.Contains(out, "20655₪") {
		t.Fatalf("missing price")
	}
}

func TestClientReplyDefaults(t *testing.T) {
	d := sampleData()
	d.Client.Name = ""
	d.Assessment.Damages = []models.Damage{{Severity: models.SeverityMinor}}
	d.Assessment.Recommendations = nil
	out := ClientReply(d)
	if !strings.Contains(out, "Привет Клиент!") || !strings.Contains(out, "Обнаружены повреждения:** 1 шт.") {
		t.Fatalf("unexpected reply:\n%s", out)
	}
	if !strings.Contains(out, "Требуется осмотр на месте") {
		t.Fatalf("missing inspection note")
	}
}

func TestQuickSummary(t *testing.T) {
	d := sampleData()
	out := QuickSummary(d.Assessment, d.Cost)
	if !strings.Contains(out, "🏠 Паркет | 📐 25.5 кв.м | ⚠️ Плохое") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "🔧 4 рекомендаций") || !strings.Contains(out, "Проанализировано: 3") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}

func TestNamesFallBack(t *testing.T) {
	if FloorTypeName("odd") != "Неопределенный тип" || ConditionName(models.ConditionUnknown) != "Требует осмотра" {
		t.Fatalf("unexpected fallback names")
	}
}
