package tokenize

import (
	"context"
	"strings"
	"time"
)

// #region config
// ExpandConfig holds limits for best-effort query expansion.
type ExpandConfig struct {
	Timeout   time.Duration // hard cap on the model call
	MaxTokens int           // cap on the expanded token set after dedupe
	Model     string        // model name used for expansion
}

// DefaultExpandConfig returns sensible defaults for query expansion.
func DefaultExpandConfig() ExpandConfig {
	return ExpandConfig{
		Timeout:   3 * time.Second,
		MaxTokens: 28,
		Model:     "gpt-4o-mini",
	}
}

// #endregion config

// #region generator
// Generator is the minimal model surface expansion needs.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// #endregion generator

// #region expander
// Expander enriches query tokens with model-generated related keywords.
// Expansion is best-effort: any failure returns the original tokens unchanged.
type Expander struct {
	gen    Generator
	config ExpandConfig
}

// NewExpander creates an expander backed by the given generator.
func NewExpander(gen Generator, config ExpandConfig) *Expander {
	return &Expander{gen: gen, config: config}
}

// Expand asks the model for 8-14 related keywords and merges them with the
// base tokens. On timeout, parse failure, or provider error the base tokens
// are returned unchanged; expansion never fails or blocks the caller beyond
// the configured timeout.
func (e *Expander) Expand(ctx context.Context, query string, base []string, enabled bool) []string {
	if !enabled || len(base) == 0 || e.gen == nil {
		return base
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	prompt := "List 8-14 short keywords and synonyms closely related to the study query below. " +
		"Reply with a single comma-separated line, no numbering, no extra text.\n\nQuery: " + query
	raw, err := e.gen.Generate(ctx, prompt, e.config.Model)
	if err != nil {
		return base
	}

	extra := parseKeywords(raw)
	if len(extra) == 0 {
		return base
	}

	seen := make(map[string]bool, len(base))
	merged := make([]string, 0, len(base)+len(extra))
	for _, t := range base {
		seen[t] = true
		merged = append(merged, t)
	}
	for _, t := range extra {
		if seen[t] {
			continue
		}
		seen[t] = true
		merged = append(merged, t)
	}
	if len(merged) > e.config.MaxTokens {
		merged = merged[:e.config.MaxTokens]
	}
	return merged
}

// #endregion expander

// #region parse
// parseKeywords extracts clean tokens from a comma- or newline-separated
// model reply.
func parseKeywords(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	var out []string
	for _, f := range fields {
		for _, t := range Tokenize(f) {
			out = append(out, t)
		}
	}
	return out
}

// #endregion parse
