// Package engine wires retrieval, exam estimation, prompt assembly, routing,
// and normalization into one stateless pipeline per generation request.
// Concurrent requests share no mutable state and need no coordination.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mwestra/examtutor/internal/answer"
	"github.com/mwestra/examtutor/internal/corpus"
	"github.com/mwestra/examtutor/internal/exam"
	"github.com/mwestra/examtutor/internal/prompt"
	"github.com/mwestra/examtutor/internal/retrieval"
	"github.com/mwestra/examtutor/internal/router"
	"github.com/mwestra/examtutor/internal/telemetry"
	"github.com/mwestra/examtutor/internal/tokenize"
)

// #region engine
// Engine is the top-level generation pipeline.
type Engine struct {
	accessor  corpus.Accessor
	retriever *retrieval.Engine
	expander  *tokenize.Expander
	router    *router.Router
	recorder  *telemetry.Store // nil = no telemetry
	log       *zap.Logger
	maxChunks int
}

// Options configures optional engine collaborators.
type Options struct {
	Expander  *tokenize.Expander
	Recorder  *telemetry.Store
	Logger    *zap.Logger
	MaxChunks int
}

// New creates a fully wired engine.
func New(accessor corpus.Accessor, retriever *retrieval.Engine, rt *router.Router, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxChunks := opts.MaxChunks
	if maxChunks <= 0 {
		maxChunks = 6
	}
	return &Engine{
		accessor:  accessor,
		retriever: retriever,
		expander:  opts.Expander,
		router:    rt,
		recorder:  opts.Recorder,
		log:       logger,
		maxChunks: maxChunks,
	}
}

// #endregion engine

// #region retrieve
// retrieveFor runs tokenization, optional expansion, retrieval, exam-
// likelihood estimation, and context formatting for one request.
func (e *Engine) retrieveFor(ctx context.Context, scopeID, query string, gen prompt.GenerationContext) (retrieval.Result, error) {
	chunks, err := e.accessor.ListChunks(ctx, scopeID)
	if err != nil {
		return retrieval.Result{}, fmt.Errorf("list chunks: %w", err)
	}
	enabled, err := e.accessor.EnabledSourceIDs(ctx, scopeID)
	if err != nil {
		return retrieval.Result{}, fmt.Errorf("enabled sources: %w", err)
	}
	kinds, err := e.resolveKinds(ctx, chunks, enabled)
	if err != nil {
		return retrieval.Result{}, err
	}

	tokens := tokenize.Tokenize(query)
	if e.expander != nil {
		tokens = e.expander.Expand(ctx, query, tokens, gen.ExpandQuery)
	}

	res := e.retriever.Retrieve(retrieval.Request{
		Chunks:    chunks,
		Query:     query,
		Tokens:    tokens,
		MaxChunks: e.maxChunks,
		Enabled:   enabled,
		Kinds:     kinds,
		Debug:     gen.DebugRetrieval,
	})

	res.ExamLikelihood = exam.EstimateLikelihood(deriveSignals(res, gen))
	res.FormattedContext = prompt.FormatContext(res.SelectedChunks)
	return res, nil
}

// resolveKinds collects the stored kind of every source in play.
func (e *Engine) resolveKinds(ctx context.Context, chunks []corpus.Chunk, enabled map[string]bool) (map[string]corpus.SourceKind, error) {
	kinds := make(map[string]corpus.SourceKind)
	resolve := func(id string) error {
		if id == "" {
			return nil
		}
		if _, ok := kinds[id]; ok {
			return nil
		}
		k, err := e.accessor.KindOf(ctx, id)
		if err != nil {
			return fmt.Errorf("kind of %s: %w", id, err)
		}
		kinds[id] = k
		return nil
	}
	for _, c := range chunks {
		if err := resolve(c.SourceID); err != nil {
			return nil, err
		}
	}
	for id := range enabled {
		if err := resolve(id); err != nil {
			return nil, err
		}
	}
	return kinds, nil
}

// deriveSignals maps the retrieval selection onto the estimator's booleans.
func deriveSignals(res retrieval.Result, gen prompt.GenerationContext) exam.Signals {
	var s exam.Signals
	studyChunks := 0
	for _, sc := range res.SelectedChunks {
		switch sc.Chunk.Category {
		case corpus.CategoryPreviousPaper:
			s.InPreviousPaper = true
		case corpus.CategoryQuestionBank:
			s.InQuestionBank = true
		case corpus.CategoryStudyMaterial:
			studyChunks++
		case corpus.CategorySyllabusDerived:
			s.CoreSyllabusTopic = true
		}
	}
	s.RepeatedInStudyMaterial = studyChunks >= 2
	s.HighChapterWeightage = exam.HighWeightage(gen.ChapterWeightage)
	return s
}

// #endregion retrieve

// #region generate
// generate assembles the prompt, routes it, and records telemetry.
func (e *Engine) generate(ctx context.Context, task prompt.TaskType, subject string, res retrieval.Result, mc router.ModelConfig, gen prompt.GenerationContext) (string, router.RoutingMeta, error) {
	p := prompt.Assemble(prompt.Input{
		Task:       task,
		Subject:    subject,
		Context:    res.FormattedContext,
		HasVideo:   res.UsedVideoContext,
		Generation: gen,
	})
	out, meta, err := e.router.Dispatch(ctx, task, p, mc, answer.SignalsFor(task, res))
	e.record(ctx, meta, res)
	return out, meta, err
}

// record writes one telemetry row; failures are logged, never propagated.
func (e *Engine) record(ctx context.Context, meta router.RoutingMeta, res retrieval.Result) {
	if e.recorder == nil {
		return
	}
	err := e.recorder.Record(ctx, telemetry.Outcome{
		RequestID:  uuid.NewString(),
		Meta:       meta,
		Confidence: string(res.Confidence),
	})
	if err != nil {
		e.log.Warn("telemetry record failed", zap.Error(err))
	}
}

// #endregion generate
