package rag

import (
	"strings"
	"unicode"
)

// common abbreviations that end with a period but not a sentence
var abbreviations = map[string]bool{
	"mr":   true,
	"mrs":  true,
	"ms":   true,
	"dr":   true,
	"prof": true,
	"sec":  true,
	"no":   true,
	"vol":  true,
	"etc":  true,
	"e.g":  true,
	"i.e":  true,
	"u.s":  true,
	"h.r":  true,
}

// SplitSentences splits text into sentences. A sentence ends at '.',
// '!' or '?' followed by whitespace, unless the terminator belongs to
// a known abbreviation or a single-letter initial.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if r == '.' && isAbbreviation(runes[start:i]) {
			continue
		}

		s := strings.TrimSpace(string(runes[start : i+1]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// isAbbreviation reports whether the text before a period ends with a
// token that should not terminate a sentence.
func isAbbreviation(before []rune) bool {
	fields := strings.Fields(string(before))
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(fields[len(fields)-1])
	if abbreviations[last] {
		return true
	}
	// Single-letter initials, e.g. the R in "H. R. 1319".
	if len(last) == 1 && unicode.IsLetter(rune(last[0])) {
		return true
	}
	return false
}
