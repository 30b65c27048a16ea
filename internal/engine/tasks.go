package engine

import (
	"context"

	"github.com/mwestra/examtutor/internal/answer"
	"github.com/mwestra/examtutor/internal/prompt"
	"github.com/mwestra/examtutor/internal/retrieval"
	"github.com/mwestra/examtutor/internal/router"
	"github.com/mwestra/examtutor/internal/tokenize"
)

// #region no-material
// noMaterial builds the shared terminal shape for zero retrievable chunks.
func noMaterial(res retrieval.Result) answer.Common {
	return answer.Common{
		ExamLikelihood: res.ExamLikelihood,
		Confidence:     answer.ConfidenceLow,
		NoMaterial:     true,
	}
}

// #endregion no-material

// #region topic
// TopicContent generates exam-focused study content for a topic.
func (e *Engine) TopicContent(ctx context.Context, scopeID, topic string, mc router.ModelConfig, gen prompt.GenerationContext) (answer.TopicContent, error) {
	res, err := e.retrieveFor(ctx, scopeID, topic, gen)
	if err != nil {
		return answer.TopicContent{}, err
	}
	if res.Empty() {
		return answer.TopicContent{Common: noMaterial(res)}, nil
	}
	out, meta, err := e.generate(ctx, prompt.TaskTopicOverview, topic, res, mc, gen)
	if err != nil {
		return answer.TopicContent{}, err
	}
	return answer.NormalizeTopic(out, res, meta), nil
}

// #endregion topic

// #region learn-item
// LearnItem generates a step-by-step explanation of one learning item.
func (e *Engine) LearnItem(ctx context.Context, scopeID, item string, mc router.ModelConfig, gen prompt.GenerationContext) (answer.LearnItemContent, error) {
	res, err := e.retrieveFor(ctx, scopeID, item, gen)
	if err != nil {
		return answer.LearnItemContent{}, err
	}
	if res.Empty() {
		return answer.LearnItemContent{Common: noMaterial(res)}, nil
	}
	out, meta, err := e.generate(ctx, prompt.TaskLearnItem, item, res, mc, gen)
	if err != nil {
		return answer.LearnItemContent{}, err
	}
	return answer.NormalizeLearnItem(out, res, meta), nil
}

// #endregion learn-item

// #region freeform
// Answer answers a free-form question about a topic, with the grounding
// guard applied to the result.
func (e *Engine) Answer(ctx context.Context, scopeID, topic, question string, mc router.ModelConfig, gen prompt.GenerationContext) (answer.FreeformAnswer, error) {
	query := joinQuery(topic, question)
	res, err := e.retrieveFor(ctx, scopeID, query, gen)
	if err != nil {
		return answer.FreeformAnswer{}, err
	}
	if res.Empty() {
		return answer.FreeformAnswer{Common: noMaterial(res)}, nil
	}
	out, meta, err := e.generate(ctx, prompt.TaskFreeformQA, question, res, mc, gen)
	if err != nil {
		return answer.FreeformAnswer{}, err
	}
	return answer.NormalizeFreeform(out, tokenize.Tokenize(query), res, meta), nil
}

// AnswerStream is the streaming variant of Answer. Deltas stream as the model
// emits them; the grounding guard runs on the complete text, so disclaimers
// appear only in the returned result.
func (e *Engine) AnswerStream(ctx context.Context, scopeID, topic, question string, mc router.ModelConfig, gen prompt.GenerationContext, onDelta func(string)) (answer.FreeformAnswer, error) {
	query := joinQuery(topic, question)
	res, err := e.retrieveFor(ctx, scopeID, query, gen)
	if err != nil {
		return answer.FreeformAnswer{}, err
	}
	if res.Empty() {
		return answer.FreeformAnswer{Common: noMaterial(res)}, nil
	}

	p := prompt.Assemble(prompt.Input{
		Task:       prompt.TaskFreeformQA,
		Subject:    question,
		Context:    res.FormattedContext,
		HasVideo:   res.UsedVideoContext,
		Generation: gen,
	})
	out, meta, err := e.router.DispatchStream(ctx, prompt.TaskFreeformQA, p, mc, onDelta)
	e.record(ctx, meta, res)
	if err != nil {
		return answer.FreeformAnswer{}, err
	}
	return answer.NormalizeFreeform(out, tokenize.Tokenize(query), res, meta), nil
}

// #endregion freeform

// #region quiz
// ExamSet generates an exam-mode question set for a topic.
func (e *Engine) ExamSet(ctx context.Context, scopeID, topic string, mc router.ModelConfig, gen prompt.GenerationContext) (answer.ExamSet, error) {
	res, err := e.retrieveFor(ctx, scopeID, topic, gen)
	if err != nil {
		return answer.ExamSet{}, err
	}
	if res.Empty() {
		return answer.ExamSet{Common: noMaterial(res)}, nil
	}
	out, meta, err := e.generate(ctx, prompt.TaskExamSet, topic, res, mc, gen)
	if err != nil {
		return answer.ExamSet{}, err
	}
	return answer.NormalizeExamSet(out, res, meta), nil
}

// MicroQuiz generates a three-question multiple-choice quiz for a topic.
func (e *Engine) MicroQuiz(ctx context.Context, scopeID, topic string, mc router.ModelConfig, gen prompt.GenerationContext) (answer.MicroQuiz, error) {
	res, err := e.retrieveFor(ctx, scopeID, topic, gen)
	if err != nil {
		return answer.MicroQuiz{}, err
	}
	if res.Empty() {
		return answer.MicroQuiz{Common: noMaterial(res)}, nil
	}
	out, meta, err := e.generate(ctx, prompt.TaskMicroQuiz, topic, res, mc, gen)
	if err != nil {
		return answer.MicroQuiz{}, err
	}
	return answer.NormalizeMicroQuiz(out, res, meta), nil
}

// #endregion quiz

// #region helpers
func joinQuery(topic, question string) string {
	if topic == "" {
		return question
	}
	if question == "" {
		return topic
	}
	return topic + " " + question
}

// #endregion helpers
