// Package tokenize turns free-text queries into deduplicated token sets and
// optionally expands them with model-generated synonyms.
package tokenize

import (
	"regexp"
	"strings"
	"unicode"
)

// #region stopwords
// stopwords contains common English words excluded from query matching.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true,
	"were": true, "does": true, "did": true, "have": true, "has": true,
	"had": true, "been": true, "being": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "can": true,
	"shall": true, "not": true, "but": true, "then": true, "than": true,
	"with": true, "about": true, "out": true, "its": true, "this": true,
	"that": true, "what": true, "which": true, "who": true, "how": true,
	"when": true, "where": true, "why": true, "you": true, "your": true,
	"they": true, "them": true, "she": true, "her": true, "him": true,
	"his": true, "our": true, "their": true, "from": true, "into": true,
	"tell": true, "explain": true, "describe": true, "define": true,
	"give": true, "list": true, "write": true, "between": true,
}

// #endregion stopwords

// #region tokenize
// Tokenize splits text into unique lowercase alphanumeric tokens, dropping
// stopwords and tokens of length two or less.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool)
	var tokens []string
	for _, w := range words {
		if len(w) <= 2 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

// SharedTokens returns the count of tokens present in both slices.
func SharedTokens(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	count := 0
	for _, t := range b {
		if set[t] {
			count++
		}
	}
	return count
}

// ContainsAny reports whether text literally contains any of the tokens.
func ContainsAny(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// #endregion tokenize

// #region conceptual
var conceptualPattern = regexp.MustCompile(`(?i)\b(explain|how|why|concept|understand|meaning|difference|works?|derive|intuition)\b`)

// IsConceptual reports whether the query asks for explanation rather than
// recall. Conceptual queries favour transcript material during scoring.
func IsConceptual(query string) bool {
	return conceptualPattern.MatchString(query)
}

// #endregion conceptual
