package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LevenshteinDistance calculates the edit distance between two strings
// This measures how many single-character edits (insertions, deletions, or substitutions)
// are required to change one string into another
func LevenshteinDistance(s1, s2 string) int {
	s1 = normalizeString(s1)
	s2 = normalizeString(s2)

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	d := make([][]int, m+1)
	for i := range d {
		d[i] = make([]int, n+1)
	}
	for i := 0; i <= m; i++ {
		d[i][0] = i
	}
	for j := 0; j <= n; j++ {
		d[0][j] = j
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			d[i][j] = min3(
				d[i-1][j]+1,      // deletion
				d[i][j-1]+1,      // insertion
				d[i-1][j-1]+cost, // substitution
			)
		}
	}

	return d[m][n]
}

// FuzzyMatch checks if query fuzzy-matches text within a given threshold
// threshold is the maximum allowed edit distance
func FuzzyMatch(query, text string, threshold int) bool {
	query = normalizeString(query)
	text = normalizeString(text)
	if query == "" {
		return true
	}

	if strings.Contains(text, query) {
		return true
	}

	// Multi-word queries match when every word matches some word of text
	if qWords := strings.Fields(query); len(qWords) > 1 {
		for _, qw := range qWords {
			if !FuzzyMatch(qw, text, thresholdFor(qw)) {
				return false
			}
		}
		return true
	}

	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, query) {
			return true
		}
		if LevenshteinDistance(query, word) <= threshold {
			return true
		}
	}

	return false
}

// CalculateRelevanceScore scores how relevant a task is to a query
// Higher score = more relevant
// Searches title, notes and subtask texts
func CalculateRelevanceScore(query, title, notes string, subtasks []string) float64 {
	query = normalizeString(query)
	if query == "" {
		return 0
	}
	score := 0.0

	// Title carries the highest weight
	titleNorm := normalizeString(title)
	if strings.Contains(titleNorm, query) {
		score += 100.0
		if containsWord(titleNorm, query) {
			score += 50.0
		}
		if strings.HasPrefix(titleNorm, query) {
			score += 25.0
		}
	} else {
		for _, word := range strings.Fields(titleNorm) {
			dist := LevenshteinDistance(query, word)
			if dist <= 2 {
				score += 50.0 - float64(dist)*15
			}
			if strings.HasPrefix(word, query) {
				score += 40.0
			}
		}
	}

	notesNorm := normalizeString(notes)
	if strings.Contains(notesNorm, query) {
		score += 40.0
		if containsWord(notesNorm, query) {
			score += 15.0
		}
	}

	for _, st := range subtasks {
		if strings.Contains(normalizeString(st), query) {
			score += 20.0
		}
	}

	return score
}

// MatchTask checks if a task matches the query on any of its text fields
func MatchTask(query, title, notes string, subtasks []string) bool {
	threshold := thresholdFor(query)

	if FuzzyMatch(query, title, threshold) {
		return true
	}
	if FuzzyMatch(query, notes, threshold) {
		return true
	}
	for _, st := range subtasks {
		if FuzzyMatch(query, st, threshold) {
			return true
		}
	}
	return false
}

// Helper functions

// thresholdFor sets typo tolerance based on query length
func thresholdFor(query string) int {
	n := len([]rune(normalizeString(query)))
	switch {
	case n <= 3:
		return 0
	case n <= 5:
		return 1
	case n >= 8:
		return 3
	default:
		return 2
	}
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

// normalizeString lowercases, strips accents and collapses whitespace
func normalizeString(s string) string {
	s = strings.ToLower(s)
	s = removeAccents(s)
	return strings.Join(strings.Fields(s), " ")
}

// containsWord checks if text contains query as a whole word
func containsWord(text, query string) bool {
	for _, word := range strings.Fields(text) {
		if word == query {
			return true
		}
	}
	return false
}

var accentReplacer = strings.NewReplacer("đ", "d", "Đ", "D", "ø", "o", "ł", "l", "ß", "ss")

// removeAccents removes diacritical marks from a string
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return accentReplacer.Replace(out)
}
