// Package report renders operator and client facing texts in Telegram-flavoured Markdown.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/floorquote/backend/internal/models"
)

type Data struct {
	Assessment models.FloorAssessment
	Cost       models.CostEstimate
	Timeline   models.Timeline
	Client     models.ClientInfo
	Contact    models.Contact
	At         time.Time
}

var floorTypeNames = map[models.FloorType]string{
	models.FloorParquet:  "Паркет",
	models.FloorLaminate: "Ламинат",
	models.FloorTiles:    "Плитка",
	models.FloorLinoleum: "Линолеум",
	models.FloorCarpet:   "Ковролин",
	models.FloorConcrete: "Бетон",
}

var conditionNames = map[models.Condition]string{
	models.ConditionExcellent: "Отличное",
	models.ConditionGood:      "Хорошее",
	models.ConditionFair:      "Удовлетворительное",
	models.ConditionPoor:      "Плохое",
}

var complexityNames = map[models.Complexity]string{
	models.ComplexityLow:    "Низкая (простой ремонт)",
	models.ComplexityMedium: "Средняя (стандартные работы)",
	models.ComplexityHigh:   "Высокая (сложный ремонт)",
}

var severityMarks = map[models.Severity]string{
	models.SeverityMinor:    "🟡",
	models.SeverityModerate: "🟠",
	models.SeveritySevere:   "🔴",
}

func FloorTypeName(ft models.FloorType) string {
	if n, ok := floorTypeNames[ft]; ok {
		return n
	}
	return "Неопределенный тип"
}

func ConditionName(c models.Condition) string {
	if n, ok := conditionNames[c]; ok {
		return n
	}
	return "Требует осмотра"
}

func complexityName(c models.Complexity) string {
	if n, ok := complexityNames[c]; ok {
		return n
	}
	return "Средняя"
}

// Full is the detailed report for the operator.
func Full(d Data) string {
	a, c, tl, cl := d.Assessment, d.Cost, d.Timeline, d.Client
	var b strings.Builder

	b.WriteString("🏠 **АНАЛИЗ ЗАЯВКИ КЛИЕНТА**\n")
	fmt.Fprintf(&b, "📅 Дата: %s\n\n", d.At.Format("02.01.2006 15:04"))

	b.WriteString("👤 **ИНФОРМАЦИЯ О КЛИЕНТЕ:**\n")
	fmt.Fprintf(&b, "• Имя: %s\n", orDefault(cl.Name, "Не указано"))
	fmt.Fprintf(&b, "• Телефон: %s\n", orDefault(cl.Phone, "Не указан"))
	fmt.Fprintf(&b, "• Адрес: %s\n", orDefault(cl.Address, "Не указан"))
	if cl.Location != nil {
		fmt.Fprintf(&b, "• Расстояние: ~%s км\n", number(cl.Location.DistanceKm))
	}
	fmt.Fprintf(&b, "• Количество сообщений: %d\n\n", cl.MessageCount)

	b.WriteString("📊 **АНАЛИЗ ПОЛА:**\n")
	fmt.Fprintf(&b, "• Тип покрытия: %s\n", FloorTypeName(a.FloorType))
	fmt.Fprintf(&b, "• Состояние: %s\n", ConditionName(a.Condition))
	fmt.Fprintf(&b, "• Площадь: ~%s кв.м\n", number(a.AreaEstimateSqm))
	fmt.Fprintf(&b, "• Сложность работ: %s\n", complexityName(a.WorkComplexity))
	fmt.Fprintf(&b, "• Проанализировано изображений: %d\n\n", a.ImagesAnalyzed)

	b.WriteString("⚠️ **ПОВРЕЖДЕНИЯ:**\n")
	b.WriteString(damages(a.Damages))
	b.WriteString("\n\n🔧 **РЕКОМЕНДУЕМЫЕ РАБОТЫ:**\n")
	b.WriteString(recommendations(a.Recommendations))

	b.WriteString("\n\n💰 **СТОИМОСТЬ:**\n")
	fmt.Fprintf(&b, "• Базовая цена: %s₪/кв.м\n", number(c.BasePricePerSqm))
	fmt.Fprintf(&b, "• Базовая стоимость: %d₪\n", c.BaseCost)
	b.WriteString("• Коэффициенты:\n")
	fmt.Fprintf(&b, "  - Состояние: x%s\n", number(c.ConditionMultiplier))
	fmt.Fprintf(&b, "  - Сложность: x%s\n", number(c.ComplexityMultiplier))
	fmt.Fprintf(&b, "  - Повреждения: x%s\n", number(c.DamageMultiplier))
	fmt.Fprintf(&b, "• **ИТОГО: %d-%d₪**\n", c.MinCost, c.MaxCost)
	fmt.Fprintf(&b, "• **РЕКОМЕНДУЕМАЯ ЦЕНА: %d₪**\n", c.RecommendedCost)
	if c.Adjusted {
		b.WriteString("• _Цена скорректирована вручную_\n")
	}

	b.WriteString("\n⏱️ **СРОКИ ВЫПОЛНЕНИЯ:**\n")
	fmt.Fprintf(&b, "• Тип работ: %s\n", tl.WorkType)
	fmt.Fprintf(&b, "• Время: %d-%d дней\n", tl.MinDays, tl.MaxDays)
	fmt.Fprintf(&b, "• Рекомендуемый срок: %d дней\n\n", tl.EstimatedDays)

	b.WriteString("📝 **ДОПОЛНИТЕЛЬНАЯ ИНФОРМАЦИЯ:**\n")
	b.WriteString(additionalInfo(a, cl))

	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "🤖 *Анализ выполнен ИИ-ботом %sа*\n", d.Contact.Name)
	fmt.Fprintf(&b, "📞 *Контакт: %s*\n", d.Contact.Phone)
	return b.String()
}

// ClientReply is a ready-to-send answer for the client.
func ClientReply(d Data) string {
	a := d.Assessment
	var b strings.Builder

	fmt.Fprintf(&b, "Привет %s! 👋\n\n", orDefault(d.Client.Name, "Клиент"))
	b.WriteString("Проанализировал твои фотографии. Вот что вижу:\n\n")
	fmt.Fprintf(&b, "🏠 **Тип покрытия:** %s\n", FloorTypeName(a.FloorType))
	fmt.Fprintf(&b, "📐 **Площадь:** примерно %s кв.м\n", number(a.AreaEstimateSqm))
	fmt.Fprintf(&b, "⚠️ **Состояние:** %s\n", ConditionName(a.Condition))
	b.WriteString(clientDamages(a.Damages))
	b.WriteString("\n🔧 **Что нужно сделать:**\n")
	b.WriteString(clientRecommendations(a.Recommendations))
	fmt.Fprintf(&b, "\n\n💰 **Стоимость работ:** %d₪\n", d.Cost.RecommendedCost)
	fmt.Fprintf(&b, "⏱️ **Время выполнения:** %d дней\n\n", d.Timeline.EstimatedDays)
	b.WriteString("Когда удобно приехать для точного замера?\n\n")
	b.WriteString("С уважением,\n")
	fmt.Fprintf(&b, "%s 🔨\n", d.Contact.Name)
	fmt.Fprintf(&b, "📞 %s\n", d.Contact.Phone)
	return b.String()
}

// QuickSummary is the short card shown right after an analysis.
func QuickSummary(a models.FloorAssessment, c models.CostEstimate) string {
	var b strings.Builder
	b.WriteString("📋 **КРАТКАЯ СВОДКА**\n\n")
	fmt.Fprintf(&b, "🏠 %s | 📐 %s кв.м | ⚠️ %s\n", FloorTypeName(a.FloorType), number(a.AreaEstimateSqm), ConditionName(a.Condition))
	fmt.Fprintf(&b, "💰 %d₪ | 🔧 %d рекомендаций\n", c.RecommendedCost, len(a.Recommendations))
	fmt.Fprintf(&b, "📸 Проанализировано: %d изображений\n", a.ImagesAnalyzed)
	return b.String()
}

// Contacts is the operator's business card.
func Contacts(c models.Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📞 **КОНТАКТЫ**\n\n👤 Имя: %s\n📱 Телефон: %s\n🏠 Специализация: %s\n", c.Name, c.Phone, c.Business)
	if c.Hours != "" {
		fmt.Fprintf(&b, "\n🕒 Время работы: %s\n", c.Hours)
	}
	if c.ServiceArea != "" {
		fmt.Fprintf(&b, "📍 Обслуживаемые районы: %s\n", c.ServiceArea)
	}
	b.WriteString("\n💬 Для заказа работ звоните или пишите в WhatsApp!\n")
	return b.String()
}

func damages(list []models.Damage) string {
	if len(list) == 0 {
		return "• Серьезных повреждений не обнаружено"
	}
	lines := make([]string, 0, len(list))
	for _, d := range list {
		mark, ok := severityMarks[d.Severity]
		if !ok {
			mark = severityMarks[models.SeverityMinor]
		}
		lines = append(lines, fmt.Sprintf("• %s %s", mark, orDefault(d.Description, "Повреждение")))
	}
	return strings.Join(lines, "\n")
}

func clientDamages(list []models.Damage) string {
	if len(list) == 0 {
		return ""
	}
	severe := 0
	for _, d := range list {
		if d.Severity == models.SeveritySevere {
			severe++
		}
	}
	if severe > 0 {
		return fmt.Sprintf("\n⚠️ **Обнаружены серьезные повреждения:** %d шт.\n", severe)
	}
	return fmt.Sprintf("\n⚠️ **Обнаружены повреждения:** %d шт.\n", len(list))
}

func recommendations(list []string) string {
	if len(list) == 0 {
		return "• Дополнительный осмотр на месте"
	}
	lines := make([]string, 0, len(list))
	for i, r := range list {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, r))
	}
	return strings.Join(lines, "\n")
}

func clientRecommendations(list []string) string {
	if len(list) == 0 {
		return "Требуется осмотр на месте для точной оценки"
	}
	if len(list) > 3 {
		list = list[:3]
	}
	lines := make([]string, 0, len(list))
	for _, r := range list {
		lines = append(lines, "• "+r)
	}
	return strings.Join(lines, "\n")
}

func additionalInfo(a models.FloorAssessment, cl models.ClientInfo) string {
	var parts []string
	if len(cl.ProblemDescriptions) > 0 {
		parts = append(parts, "**Описание проблем от клиента:**")
		problems := cl.ProblemDescriptions
		if len(problems) > 3 {
			problems = problems[:3]
		}
		for _, p := range problems {
			parts = append(parts, "• "+p)
		}
	}
	if a.Context != "" {
		lines := strings.Split(a.Context, "\n")
		if len(lines) > 5 {
			lines = lines[len(lines)-5:]
		}
		parts = append(parts, "\n**Последние сообщения:**")
		for _, l := range lines {
			if l = strings.TrimSpace(l); l != "" {
				parts = append(parts, "• "+l)
			}
		}
	}
	if len(parts) == 0 {
		return "Дополнительная информация отсутствует"
	}
	return strings.Join(parts, "\n")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
