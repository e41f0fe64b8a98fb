package transcript

import (
	"regexp"
	"strings"

	"github.com/floorquote/backend/internal/models"
)

// ContextWindow is how many trailing messages are considered for the prompt excerpt.
const ContextWindow = 15

var (
	FloorKeywords   = []string{"пол", "паркет", "ламинат", "плитка", "линолеум", "покрытие"}
	AddressKeywords = []string{"адрес", "улица", "дом", "квартира"}

	phonePattern = regexp.MustCompile(`\+?[0-9\-\s()]{10,}`)
)

// ExtractClientInfo infers who the counterparty is and scans for contact details.
// The client is the non-operator sender with the most non-system messages; ties go to
// whoever spoke first.
func ExtractClientInfo(messages []models.ChatMessage, operator string) models.ClientInfo {
	info := models.ClientInfo{ProblemDescriptions: []string{}}

	counts := map[string]int{}
	var order []string
	for _, m := range messages {
		if m.IsSystem || m.Sender == operator || m.Sender == "" {
			continue
		}
		if _, seen := counts[m.Sender]; !seen {
			order = append(order, m.Sender)
		}
		counts[m.Sender]++
	}
	for _, s := range order {
		if counts[s] > info.MessageCount {
			info.Name = s
			info.MessageCount = counts[s]
		}
	}

	enrichContactDetails(&info, messages)
	return info
}

// enrichContactDetails is best effort: nothing here can fail, fields just stay empty.
// Address and phone keep the last matching message.
func enrichContactDetails(info *models.ClientInfo, messages []models.ChatMessage) {
	for _, m := range messages {
		if m.IsSystem {
			continue
		}
		lower := strings.ToLower(m.Body)
		if containsAny(lower, FloorKeywords) {
			info.ProblemDescriptions = append(info.ProblemDescriptions, m.Body)
		}
		if containsAny(lower, AddressKeywords) {
			info.Address = m.Body
		}
		if phone := findPhone(m.Body); phone != "" {
			info.Phone = phone
		}
	}
}

func findPhone(body string) string {
	for _, candidate := range phonePattern.FindAllString(body, -1) {
		candidate = strings.TrimSpace(candidate)
		if countDigits(candidate) >= 7 {
			return candidate
		}
	}
	return ""
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// BuildContext renders the recent conversation excerpt used to condition image analysis.
func BuildContext(messages []models.ChatMessage) string {
	start := len(messages) - ContextWindow
	if start < 0 {
		start = 0
	}
	var parts []string
	for _, m := range messages[start:] {
		if m.IsSystem || m.IsMedia {
			continue
		}
		parts = append(parts, m.Sender+": "+m.Body)
	}
	return strings.Join(parts, "\n")
}
