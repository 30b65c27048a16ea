package answer

import (
	"strings"

	"github.com/mwestra/examtutor/internal/prompt"
	"github.com/mwestra/examtutor/internal/retrieval"
	"github.com/mwestra/examtutor/internal/router"
)

// #region signals
// SignalsFor derives the router's quality-gate policy for a task from the
// retrieval confidence bucket and the task's structural requirements.
func SignalsFor(task prompt.TaskType, res retrieval.Result) router.QualitySignals {
	s := router.QualitySignals{RetrievalConfidence: res.Confidence}
	switch task {
	case prompt.TaskTopicOverview, prompt.TaskLearnItem, prompt.TaskExamSet, prompt.TaskMicroQuiz:
		s.RequiresJSON = true
	}
	return s
}

// #endregion signals

// #region common
// commonFrom fills the shared result fields from retrieval and routing.
func commonFrom(res retrieval.Result, meta router.RoutingMeta) Common {
	return Common{
		Citations:      res.Citations,
		ExamLikelihood: res.ExamLikelihood,
		Confidence:     confidenceFrom(res.Confidence),
		UsedVideo:      res.UsedVideoContext,
		Routing:        meta,
	}
}

// degrade marks a result built from malformed model output: confidence drops
// to low and citations are emptied rather than failing the request.
func degrade(c *Common) {
	c.Confidence = ConfidenceLow
	c.Citations = nil
}

// #endregion common

// #region topic
// NormalizeTopic coerces raw model text into a TopicContent. A reply that is
// not the requested JSON object becomes a prose overview with degraded
// confidence.
func NormalizeTopic(text string, res retrieval.Result, meta router.RoutingMeta) TopicContent {
	out := TopicContent{Common: commonFrom(res, meta)}
	raw := DecodeObject(text)
	if raw == nil {
		out.Overview = strings.TrimSpace(text)
		degrade(&out.Common)
		return out
	}
	out.Overview = raw.Str("overview", strings.TrimSpace(text))
	out.KeyPoints = raw.StrList("keyPoints")
	out.QuestionAngles = raw.StrList("questionAngles")
	out.WorkedExample = raw.Str("workedExample", "")
	return out
}

// #endregion topic

// #region learn-item
// NormalizeLearnItem coerces raw model text into a LearnItemContent.
func NormalizeLearnItem(text string, res retrieval.Result, meta router.RoutingMeta) LearnItemContent {
	out := LearnItemContent{Common: commonFrom(res, meta)}
	raw := DecodeObject(text)
	if raw == nil {
		out.Explanation = strings.TrimSpace(text)
		degrade(&out.Common)
		return out
	}
	out.Explanation = raw.Str("explanation", strings.TrimSpace(text))
	out.WhyItMatters = raw.Str("whyItMatters", "")
	out.SummaryLine = raw.Str("summaryLine", "")
	return out
}

// #endregion learn-item

// #region freeform
// NormalizeFreeform wraps a free-form answer and runs the grounding guard
// over the topic+question tokens.
func NormalizeFreeform(text string, queryTokens []string, res retrieval.Result, meta router.RoutingMeta) FreeformAnswer {
	out := FreeformAnswer{
		Common: commonFrom(res, meta),
		Answer: strings.TrimSpace(text),
	}
	applyGroundingGuard(&out, queryTokens, res.AggregateScore)
	return out
}

// #endregion freeform

// #region exam-set
// NormalizeExamSet coerces raw model text into an ExamSet. Entries without a
// question are skipped; missing marks default to 5.
func NormalizeExamSet(text string, res retrieval.Result, meta router.RoutingMeta) ExamSet {
	out := ExamSet{Common: commonFrom(res, meta)}
	raw := DecodeObject(text)
	for _, item := range raw.List("questions") {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		q := RawOutput(obj)
		question := q.Str("question", "")
		if question == "" {
			continue
		}
		marks := int(q.Num("marks", 5))
		if marks <= 0 {
			marks = 5
		}
		out.Questions = append(out.Questions, ExamQuestion{
			Question: question,
			Answer:   q.Str("answer", ""),
			Marks:    marks,
		})
	}
	if len(out.Questions) == 0 {
		degrade(&out.Common)
	}
	return out
}

// #endregion exam-set

// #region micro-quiz
// NormalizeMicroQuiz coerces raw model text into a MicroQuiz. Questions need
// at least two options; an out-of-range correct index defaults to the first
// option.
func NormalizeMicroQuiz(text string, res retrieval.Result, meta router.RoutingMeta) MicroQuiz {
	out := MicroQuiz{Common: commonFrom(res, meta)}
	raw := DecodeObject(text)
	for _, item := range raw.List("questions") {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		q := RawOutput(obj)
		question := q.Str("question", "")
		options := q.StrList("options")
		if question == "" || len(options) < 2 {
			continue
		}
		idx := int(q.Num("correctIndex", 0))
		if idx < 0 || idx >= len(options) {
			idx = 0
		}
		out.Questions = append(out.Questions, QuizQuestion{
			Question:     question,
			Options:      options,
			CorrectIndex: idx,
			Explanation:  q.Str("explanation", ""),
		})
	}
	if len(out.Questions) == 0 {
		degrade(&out.Common)
	}
	return out
}

// #endregion micro-quiz
