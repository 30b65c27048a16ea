// Package router dispatches prompts to a fast or smart model tier, gates
// fast-tier output quality, and escalates with an explicit reason taxonomy.
package router

import (
	"github.com/mwestra/examtutor/internal/prompt"
	"github.com/mwestra/examtutor/internal/provider"
	"github.com/mwestra/examtutor/internal/retrieval"
)

// #region model-config
// ModelConfig selects the models for one call. When Custom is non-nil the
// call bypasses tiering entirely: one dispatch, no escalation, and
// CustomModel is reported verbatim.
type ModelConfig struct {
	FastModel       string
	SmartModel      string
	ComplexityScore float64 // >= threshold starts the call on the smart tier

	Custom      provider.Provider
	CustomModel string
}

// #endregion model-config

// #region quality-signals
// QualitySignals is the per-call policy input to the quality gate, derived by
// each response normalizer from the retrieval confidence bucket and the
// task's structural requirements.
type QualitySignals struct {
	RetrievalConfidence retrieval.Confidence
	MinChars            int // 0 = use config default
	RequiresJSON        bool
}

// #endregion quality-signals

// #region routing-meta
// RoutingMeta is attached to every generated result for observability.
type RoutingMeta struct {
	TaskType          prompt.TaskType
	ModelUsed         string
	FallbackTriggered bool
	FallbackReason    string
	LatencyMs         int64
}

// #endregion routing-meta

// #region config
// Config holds the routing policy knobs.
type Config struct {
	// SmartAlways lists task types that always dispatch to the smart tier.
	SmartAlways map[prompt.TaskType]bool
	// ComplexityThreshold promotes a call to the smart tier when the caller's
	// complexity score reaches it.
	ComplexityThreshold float64
	// MinChars is the default minimum output length for the quality gate.
	MinChars int
}

// DefaultConfig returns the production routing policy.
func DefaultConfig() Config {
	return Config{
		SmartAlways: map[prompt.TaskType]bool{
			prompt.TaskFullStrategy:   true,
			prompt.TaskChapterRanking: true,
			prompt.TaskReadinessScore: true,
			prompt.TaskCrashCourse:    true,
			prompt.TaskTopicRanking:   true,
			prompt.TaskAdaptivePath:   true,
		},
		ComplexityThreshold: 0.8,
		MinChars:            120,
	}
}

// #endregion config
