package router

import (
	"encoding/json"
	"strings"

	"github.com/mwestra/examtutor/internal/retrieval"
)

// #region reasons
// Quality-gate rejection reasons. Each maps to exactly one check so the
// escalation telemetry stays unambiguous.
const (
	ReasonEmptyOutput    = "empty output"
	ReasonOutputTooShort = "output too short"
	ReasonInvalidJSON    = "output not valid json"
	ReasonLowConfidence  = "low retrieval confidence"
	ReasonGenericOutput  = "generic or refusal output"
)

// #endregion reasons

// #region generic-patterns
// genericPatterns are stock refusal/hedge phrases that mark a fast-tier
// answer as unusable.
var genericPatterns = []string{
	"as an ai",
	"as a language model",
	"i cannot",
	"i can't",
	"i'm not able to",
	"not enough information",
	"it depends",
	"i don't have access",
}

// LooksGeneric reports whether the text is dominated by stock refusal or
// hedge phrasing.
func LooksGeneric(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range genericPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// #endregion generic-patterns

// #region json-check
// ParsesAsJSON reports whether the text contains a decodable JSON object or
// array, tolerating markdown code fences around it.
func ParsesAsJSON(text string) bool {
	return ExtractJSON(text) != ""
}

// ExtractJSON returns the first JSON object or array embedded in the text,
// or empty when none decodes.
func ExtractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	start := strings.IndexAny(trimmed, "{[")
	if start < 0 {
		return ""
	}
	candidate := trimmed[start:]
	if end := lastBalanced(candidate); end > 0 {
		candidate = candidate[:end]
	}
	if json.Valid([]byte(candidate)) {
		return candidate
	}
	return ""
}

// lastBalanced finds the index one past the closing bracket matching the
// first opening one, or -1.
func lastBalanced(s string) int {
	open := s[0]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// #endregion json-check

// #region gate
// CheckQuality runs the fast-tier quality gate. Any single failed check is
// enough to escalate; the returned reason names the specific check.
func (r *Router) CheckQuality(text string, signals QualitySignals) (bool, string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false, ReasonEmptyOutput
	}

	minChars := signals.MinChars
	if minChars <= 0 {
		minChars = r.config.MinChars
	}
	if len(trimmed) < minChars {
		return false, ReasonOutputTooShort
	}

	if signals.RequiresJSON && !ParsesAsJSON(trimmed) {
		return false, ReasonInvalidJSON
	}

	// Weak grounding escalates regardless of how good the text looks:
	// correctness is favoured over cost when retrieval confidence is low.
	if signals.RetrievalConfidence == retrieval.ConfidenceLow {
		return false, ReasonLowConfidence
	}

	if LooksGeneric(trimmed) {
		return false, ReasonGenericOutput
	}

	return true, ""
}

// #endregion gate
