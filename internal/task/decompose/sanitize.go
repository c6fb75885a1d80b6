package decompose

import (
	"regexp"
	"strings"
)

var (
	// fence markers, with the language tag models put right after them
	fenceRe   = regexp.MustCompile("(?i)```(json)?")
	langTagRe = regexp.MustCompile(`(?i)^\s*json\b`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Sanitize isolates the JSON object in a raw model reply.
// It does not check that the result is well-formed JSON.
func Sanitize(raw string) string {
	s := fenceRe.ReplaceAllString(raw, "")
	s = langTagRe.ReplaceAllString(s, "")

	// Drop trailing prose after the last closing brace
	if end := strings.LastIndex(s, "}"); end != -1 {
		s = s[:end+1]
	}

	// Drop leading prose before the first opening brace
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		if start := strings.Index(s, "{"); start != -1 {
			s = s[start:]
		}
	}

	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
