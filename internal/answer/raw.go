// Package answer coerces raw model text into typed per-task results with
// explicit field defaults, and guards free-form answers with a lexical
// grounding check. Normalizers never fail a request: malformed output
// degrades confidence instead of raising errors.
package answer

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/mwestra/examtutor/internal/router"
)

// #region raw-output
// RawOutput is the untrusted, duck-typed model reply. Every field access
// goes through a per-field check with a default; parsed JSON shape is never
// trusted wholesale.
type RawOutput map[string]interface{}

// DecodeObject extracts a JSON object from the text, repairing malformed
// JSON when possible. Returns nil when nothing decodes.
func DecodeObject(text string) RawOutput {
	candidate := router.ExtractJSON(text)
	if candidate == "" {
		candidate = strings.TrimSpace(text)
	}

	var out RawOutput
	if err := json.Unmarshal([]byte(candidate), &out); err == nil {
		return out
	}
	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return nil
	}
	return out
}

// #endregion raw-output

// #region field-access
// Str returns a string field or the default.
func (r RawOutput) Str(key, def string) string {
	if r == nil {
		return def
	}
	if v, ok := r[key].(string); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// Num returns a numeric field or the default.
func (r RawOutput) Num(key string, def float64) float64 {
	if r == nil {
		return def
	}
	if v, ok := r[key].(float64); ok {
		return v
	}
	return def
}

// List returns an array field, or nil.
func (r RawOutput) List(key string) []interface{} {
	if r == nil {
		return nil
	}
	if v, ok := r[key].([]interface{}); ok {
		return v
	}
	return nil
}

// StrList returns a string-array field, skipping non-string entries.
func (r RawOutput) StrList(key string) []string {
	var out []string
	for _, v := range r.List(key) {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// Obj returns a nested object field, or nil.
func (r RawOutput) Obj(key string) RawOutput {
	if r == nil {
		return nil
	}
	if v, ok := r[key].(map[string]interface{}); ok {
		return RawOutput(v)
	}
	return nil
}

// #endregion field-access
