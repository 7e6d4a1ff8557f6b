package extractor

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

// noneSentinel is what the model answers when nothing actionable was found.
const noneSentinel = "NONE"

// numberedRule matches "##1. text", "##2: text", "##3 text". A bare
// marker such as "##2:" captures an empty payload.
var numberedRule = regexp.MustCompile(`^##\d+\s*(?:[.:]\s*)?(.*)$`)

// jsonObject grabs everything from the first '{' to the last '}'.
var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// ParseNumberedRules pulls rule texts out of a "##N. rule" list. Lines that
// do not follow the format are ignored, as are empty payloads and the NONE
// sentinel. An empty result is a normal outcome.
func ParseNumberedRules(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		m := numberedRule.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[1])
		if text == "" || strings.EqualFold(text, noneSentinel) {
			continue
		}
		out = append(out, text)
	}
	return out
}

// parseExpertise decodes the first JSON object found in raw. Anything that
// cannot be decoded yields an empty Expertise rather than an error.
func parseExpertise(raw string) Expertise {
	var payload struct {
		Knowledge           []string `json:"knowledge"`
		Perspectives        []string `json:"perspectives"`
		CommunicationStyles []string `json:"communicationStyles"`
	}
	if block := jsonObject.FindString(raw); block != "" {
		if err := json.Unmarshal([]byte(block), &payload); err != nil {
			payload.Knowledge, payload.Perspectives, payload.CommunicationStyles = nil, nil, nil
		}
	}
	return Expertise{
		Knowledge:           cleanItems(payload.Knowledge),
		Perspectives:        cleanItems(payload.Perspectives),
		CommunicationStyles: cleanItems(payload.CommunicationStyles),
	}
}

func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
