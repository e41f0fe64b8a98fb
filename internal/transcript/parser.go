// Package transcript parses chat export transcripts and derives client context from them.
package transcript

import (
	"regexp"
	"strings"

	"github.com/floorquote/backend/internal/models"
)

// Notation is one timestamp/sender/body line layout.
type Notation struct {
	Name string
	// Line must capture timestamp, sender and the first line of the body.
	Line *regexp.Regexp
	// Stamp matches a line that starts with a timestamp but has no "sender:" part (client notices).
	Stamp *regexp.Regexp
}

// Notations are tried in order; the first one with at least one match is used for the whole transcript.
var Notations = []Notation{
	{
		Name:  "bracketed-24h",
		Line:  regexp.MustCompile(`^\[(\d{2}\.\d{2}\.\d{4}, \d{2}:\d{2}:\d{2})\] ([^:]+): (.*)$`),
		Stamp: regexp.MustCompile(`^\[(\d{2}\.\d{2}\.\d{4}, \d{2}:\d{2}:\d{2})\] (.*)$`),
	},
	{
		Name:  "dash-24h",
		Line:  regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{4}, \d{2}:\d{2}) - ([^:]+): (.*)$`),
		Stamp: regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{4}, \d{2}:\d{2}) - (.*)$`),
	},
	{
		Name:  "dash-12h",
		Line:  regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}[ \x{202f}][AP]M) - ([^:]+): (.*)$`),
		Stamp: regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}[ \x{202f}][AP]M) - (.*)$`),
	},
}

// Parse returns the transcript's messages in source order. Text that matches no notation yields nil.
// Lines without a leading timestamp are folded into the previous message body.
func Parse(text string) []models.ChatMessage {
	lines := splitLines(text)
	for _, n := range Notations {
		if !anyLineMatches(n, lines) {
			continue
		}
		return parseWith(n, lines)
	}
	return nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		// Exports from some phones prefix lines with direction marks.
		lines[i] = strings.TrimLeft(l, "\u200e\u200f\ufeff")
	}
	return lines
}

func anyLineMatches(n Notation, lines []string) bool {
	for _, l := range lines {
		if n.Line.MatchString(l) {
			return true
		}
	}
	return false
}

type pending struct {
	timestamp string
	sender    string
	body      []string
	notice    bool
}

func parseWith(n Notation, lines []string) []models.ChatMessage {
	var out []models.ChatMessage
	var cur *pending

	flush := func() {
		if cur == nil {
			return
		}
		out = append(out, buildMessage(*cur))
		cur = nil
	}

	for _, l := range lines {
		if m := n.Line.FindStringSubmatch(l); m != nil {
			flush()
			cur = &pending{timestamp: m[1], sender: strings.TrimSpace(m[2]), body: []string{m[3]}}
			continue
		}
		if m := n.Stamp.FindStringSubmatch(l); m != nil {
			flush()
			cur = &pending{timestamp: m[1], body: []string{m[2]}, notice: true}
			continue
		}
		if cur != nil {
			cur.body = append(cur.body, l)
		}
	}
	flush()
	return out
}

func buildMessage(p pending) models.ChatMessage {
	body := strings.TrimSpace(strings.Join(p.body, "\n"))
	return models.ChatMessage{
		Timestamp: p.timestamp,
		Sender:    p.sender,
		Body:      body,
		IsMedia:   IsMediaPlaceholder(body),
		IsSystem:  p.notice || IsSystemNotice(body),
	}
}
