// Package retrieval ranks and selects a bounded, source-diverse subset of
// corpus chunks for a query using lexical token-containment scoring.
package retrieval

import (
	"github.com/mwestra/examtutor/internal/corpus"
	"github.com/mwestra/examtutor/internal/exam"
)

// #region config
// Config holds the scoring weights and limits for the retrieval pipeline.
// Injected into the engine so tests can vary thresholds without global state.
type Config struct {
	BoostPreviousPaper float64 // category boost for previous papers
	BoostQuestionBank  float64
	BoostStudyMaterial float64
	BoostOther         float64

	VideoFloor      float64 // minimum pre-multiplier score for youtube chunks
	VideoMultiplier float64 // applied to every youtube chunk
	ConceptualMult  float64 // extra multiplier on conceptual queries
	VideoOnlyMult   float64 // extra multiplier when the scope is video-only

	OverlapBoost    float64 // per distinct query token present, second pass
	CandidateWindow int     // candidate pool = CandidateWindow * effectiveMax
	DedupePrefixLen int     // normalized prefix length for candidate dedupe
	SelectPrefixLen int     // prefix length for selection-time dedupe
	DefaultMax      int     // fallback when the caller asks for <= 0 chunks

	ConfidenceHigh   float64 // aggregate score floor for high confidence
	ConfidenceMedium float64 // aggregate score floor for medium confidence
}

// DefaultConfig returns the production scoring configuration.
func DefaultConfig() Config {
	return Config{
		BoostPreviousPaper: 8,
		BoostQuestionBank:  5,
		BoostStudyMaterial: 3,
		BoostOther:         1,

		VideoFloor:      3,
		VideoMultiplier: 1.35,
		ConceptualMult:  1.3,
		VideoOnlyMult:   2.0,

		OverlapBoost:    2,
		CandidateWindow: 3,
		DedupePrefixLen: 220,
		SelectPrefixLen: 80,
		DefaultMax:      6,

		ConfidenceHigh:   25,
		ConfidenceMedium: 8,
	}
}

// #endregion config

// #region scored-chunk
// ScoredChunk is a chunk with its resolved kind and score. Ephemeral; exists
// only within one retrieval call.
type ScoredChunk struct {
	SourceID string
	Chunk    corpus.Chunk
	Kind     corpus.SourceKind
	Score    float64
}

// #endregion scored-chunk

// #region citation
// ImportanceLevel ranks a citation's weight for the student.
type ImportanceLevel string

const (
	ImportanceVery       ImportanceLevel = "very_important"
	ImportanceImportant  ImportanceLevel = "important"
	ImportanceSupporting ImportanceLevel = "supporting"
)

// Citation points at a chunk that was actually used to build the prompt.
type Citation struct {
	Category   corpus.SourceCategory
	SourceName string
	SourceYear string
	Section    string
	Importance ImportanceLevel
}

// importanceFor derives the importance level deterministically from the
// source category.
func importanceFor(cat corpus.SourceCategory) ImportanceLevel {
	switch cat {
	case corpus.CategoryPreviousPaper:
		return ImportanceVery
	case corpus.CategoryQuestionBank:
		return ImportanceImportant
	}
	return ImportanceSupporting
}

// #endregion citation

// #region confidence
// Confidence buckets the aggregate retrieval score for the router's
// quality gate.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// #endregion confidence

// #region request
// Request is one retrieval call. Tokens must be pre-tokenized (and possibly
// expanded) from the query.
type Request struct {
	Chunks    []corpus.Chunk
	Query     string
	Tokens    []string
	MaxChunks int
	// Enabled is the enabled-source scope. nil means no scope (full corpus);
	// an empty non-nil map is a deliberate hard stop.
	Enabled map[string]bool
	// Kinds maps source IDs to their stored kind; missing entries fall back
	// to name/section heuristics.
	Kinds map[string]corpus.SourceKind
	Debug bool
}

// #endregion request

// #region result
// Result is the terminal shape of a retrieval call. Zero corpus chunks, zero
// scored candidates, and an empty enabled scope all yield the same shape
// (SelectedChunks == nil) so downstream consumers have one no-material branch.
type Result struct {
	SelectedChunks   []ScoredChunk
	FormattedContext string
	Citations        []Citation
	AggregateScore   float64
	CoveragePercent  float64
	ExamLikelihood   exam.Estimate
	TopPreviousPaper *ScoredChunk
	UsedVideoContext bool
	Confidence       Confidence
	QueryTokens      []string
	DebugChunks      []ScoredChunk
	Reason           string // human-readable explanation of the outcome
}

// Empty reports whether the retrieval found no material.
func (r Result) Empty() bool {
	return len(r.SelectedChunks) == 0
}

// #endregion result
