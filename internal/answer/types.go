package answer

import (
	"github.com/mwestra/examtutor/internal/exam"
	"github.com/mwestra/examtutor/internal/retrieval"
	"github.com/mwestra/examtutor/internal/router"
)

// #region confidence
// Confidence is the three-level answer confidence tier.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// dropTier lowers confidence by one level.
func dropTier(c Confidence) Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// confidenceFrom maps the retrieval bucket onto the answer tier.
func confidenceFrom(rc retrieval.Confidence) Confidence {
	switch rc {
	case retrieval.ConfidenceHigh:
		return ConfidenceHigh
	case retrieval.ConfidenceMedium:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// #endregion confidence

// #region results
// Common carries the fields every typed result shares. NoMaterial marks the
// single typed terminal state for zero retrievable chunks; no model call is
// made in that case.
type Common struct {
	Citations      []retrieval.Citation
	ExamLikelihood exam.Estimate
	Confidence     Confidence
	UsedVideo      bool
	NoMaterial     bool
	Routing        router.RoutingMeta
}

// TopicContent is the normalized topic-overview result.
type TopicContent struct {
	Common
	Overview       string
	KeyPoints      []string
	QuestionAngles []string
	WorkedExample  string
}

// LearnItemContent is the normalized "learn this item" result.
type LearnItemContent struct {
	Common
	Explanation  string
	WhyItMatters string
	SummaryLine  string
}

// FreeformAnswer is the normalized free-form Q&A result.
type FreeformAnswer struct {
	Common
	Answer   string
	Grounded bool
}

// ExamQuestion is one generated exam-style question.
type ExamQuestion struct {
	Question string
	Answer   string
	Marks    int
}

// ExamSet is the normalized exam-mode question-set result.
type ExamSet struct {
	Common
	Questions []ExamQuestion
}

// QuizQuestion is one multiple-choice question.
type QuizQuestion struct {
	Question     string
	Options      []string
	CorrectIndex int
	Explanation  string
}

// MicroQuiz is the normalized micro-quiz result.
type MicroQuiz struct {
	Common
	Questions []QuizQuestion
}

// #endregion results
