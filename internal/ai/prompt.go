package ai

import (
	"strings"
)

const noContext = "Контекст отсутствует"

// responseTemplate documents the expected JSON document inside the prompt itself, so the
// instructions still hold for endpoints that ignore the structured output format.
const responseTemplate = `{
    "floor_type": "тип покрытия (parquet/laminate/tiles/linoleum/carpet/concrete/unknown)",
    "floor_type_hebrew": "название на иврите",
    "condition": "состояние (excellent/good/fair/poor/unknown)",
    "condition_description": "подробное описание состояния",
    "damages": [
        {
            "type": "тип повреждения",
            "severity": "серьезность (minor/moderate/severe)",
            "description": "описание повреждения"
        }
    ],
    "area_estimate": 0,
    "room_type": "тип помещения (living_room/bedroom/kitchen/bathroom/hallway/balcony)",
    "recommendations": ["рекомендация 1", "рекомендация 2"],
    "work_complexity": "сложность работ (low/medium/high)",
    "urgency": "срочность (low/medium/high)",
    "estimated_duration": "время выполнения в днях",
    "special_notes": "особые замечания",
    "confidence_level": 0
}`

// BuildPrompt renders the fixed analysis instructions with the conversation excerpt embedded.
func BuildPrompt(excerpt string) string {
	if strings.TrimSpace(excerpt) == "" {
		excerpt = noContext
	}

	var b strings.Builder
	b.WriteString("Ты эксперт по напольным покрытиям в Израиле с 15-летним опытом работы.\n\n")
	b.WriteString("КОНТЕКСТ РАЗГОВОРА С КЛИЕНТОМ:\n")
	b.WriteString(excerpt)
	b.WriteString("\n\nПроанализируй изображение пола и предоставь детальную оценку в формате JSON:\n\n")
	b.WriteString(responseTemplate)
	b.WriteString("\n\narea_estimate: примерная площадь в кв.м (число).\n")
	b.WriteString("confidence_level: уверенность в анализе (0-100).\n\n")
	b.WriteString("ВАЖНЫЕ ОСОБЕННОСТИ ИЗРАИЛЬСКОГО РЫНКА:\n")
	b.WriteString("- Учитывай климатические условия (жаркое лето, влажность)\n")
	b.WriteString("- Стандартные размеры помещений в израильских квартирах\n")
	b.WriteString("- Популярные материалы: керамическая плитка, ламинат, паркет\n")
	b.WriteString("- Типичные проблемы: трещины от жары, износ от песка\n\n")
	b.WriteString("Будь максимально точным и практичным в рекомендациях.\n")
	return b.String()
}
