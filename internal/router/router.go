package router

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mwestra/examtutor/internal/prompt"
	"github.com/mwestra/examtutor/internal/provider"
)

// #region router
// Router runs the per-call dispatch state machine:
//
//	Start -> PrimaryDispatch -> {Accept | QualityCheck ->
//	  {Accept | Escalate -> SmartDispatch -> Accept|Fail}}
//
// No state is persisted between calls.
type Router struct {
	managed provider.Provider
	config  Config
	log     *zap.Logger
}

// NewRouter creates a router over the managed provider. logger may be nil.
func NewRouter(managed provider.Provider, config Config, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{managed: managed, config: config, log: logger}
}

// #endregion router

// #region dispatch
// Dispatch routes one prompt and returns the accepted text with routing
// metadata. Latency is measured end to end, escalation round trip included.
func (r *Router) Dispatch(ctx context.Context, task prompt.TaskType, text string, mc ModelConfig, signals QualitySignals) (string, RoutingMeta, error) {
	start := time.Now()
	meta := RoutingMeta{TaskType: task}

	done := func(out string, err error) (string, RoutingMeta, error) {
		meta.LatencyMs = time.Since(start).Milliseconds()
		r.log.Info("routed",
			zap.String("task", string(task)),
			zap.String("model", meta.ModelUsed),
			zap.Bool("fallback", meta.FallbackTriggered),
			zap.String("reason", meta.FallbackReason),
			zap.Int64("latency_ms", meta.LatencyMs),
			zap.Bool("failed", err != nil))
		return out, meta, err
	}

	// Custom provider bypasses tiering: one dispatch, no escalation, the
	// declared model name reported verbatim.
	if mc.Custom != nil {
		meta.ModelUsed = mc.CustomModel
		out, err := mc.Custom.Generate(ctx, text, mc.CustomModel)
		if err != nil {
			return done("", fmt.Errorf("custom provider: %w", err))
		}
		return done(out, nil)
	}

	// Smart-first calls have no further escalation target: a provider error
	// here is terminal.
	if r.startsSmart(task, mc) {
		meta.ModelUsed = mc.SmartModel
		out, err := r.managed.Generate(ctx, text, mc.SmartModel)
		if err != nil {
			return done("", fmt.Errorf("smart tier: %w", err))
		}
		return done(out, nil)
	}

	// Fast tier first.
	meta.ModelUsed = mc.FastModel
	out, err := r.managed.Generate(ctx, text, mc.FastModel)
	if err != nil {
		// No text to quality-check; escalate immediately.
		code := provider.Classify(err)
		return done(r.escalate(ctx, text, mc, &meta, fmt.Sprintf("primary_model_error:%s", code)))
	}

	if ok, reason := r.CheckQuality(out, signals); !ok {
		return done(r.escalate(ctx, text, mc, &meta, reason))
	}
	return done(out, nil)
}

// escalate re-dispatches on the smart tier, tagging the meta with the reason.
func (r *Router) escalate(ctx context.Context, text string, mc ModelConfig, meta *RoutingMeta, reason string) (string, error) {
	meta.FallbackTriggered = true
	meta.FallbackReason = reason
	meta.ModelUsed = mc.SmartModel

	out, err := r.managed.Generate(ctx, text, mc.SmartModel)
	if err != nil {
		return "", fmt.Errorf("escalation after %q: %w", reason, err)
	}
	return out, nil
}

// startsSmart reports whether the call skips the fast tier.
func (r *Router) startsSmart(task prompt.TaskType, mc ModelConfig) bool {
	if r.config.SmartAlways[task] {
		return true
	}
	return mc.ComplexityScore >= r.config.ComplexityThreshold
}

// #endregion dispatch
