// Package similarity scores lexical overlap between short rule statements
// and finds existing rules that a new candidate probably duplicates.
package similarity

import (
	"strings"
	"unicode"
)

// minTokenLen is the shortest token that takes part in a comparison.
const minTokenLen = 3

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a an the and or but in on at to for of with is are be was this that it they
		do not no as by from you your i my we our when where how what which who will
		should can may must never always any all more than so if then use used using
		also just very`) {
		stopWords[w] = struct{}{}
	}
}

// IsStopWord reports whether w is excluded from comparisons.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// Tokenize lowercases text, blanks out everything that is not an ASCII word
// character or whitespace, and returns the remaining words that are long
// enough and not stop words. Duplicates are kept.
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case unicode.IsSpace(r):
			return r
		}
		return ' '
	}, strings.ToLower(text))

	var out []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) < minTokenLen || IsStopWord(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range Tokenize(text) {
		set[w] = struct{}{}
	}
	return set
}

// Jaccard returns |A∩B| / |A∪B| over the token sets of a and b.
// Two inputs without any qualifying token score 0, not 1.
func Jaccard(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
