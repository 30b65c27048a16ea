package router

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mwestra/examtutor/internal/prompt"
	"github.com/mwestra/examtutor/internal/provider"
)

// #region dispatch-stream
// DispatchStream routes one prompt with delta streaming. Tiering is identical
// to Dispatch, but once a fast stream begins emitting partial text the
// quality gate cannot run (it needs the complete text), so streamed responses
// only get error-triggered escalation. That asymmetry is an intentional
// latency/quality tradeoff.
func (r *Router) DispatchStream(ctx context.Context, task prompt.TaskType, text string, mc ModelConfig, onDelta func(string)) (string, RoutingMeta, error) {
	start := time.Now()
	meta := RoutingMeta{TaskType: task}

	done := func(out string, err error) (string, RoutingMeta, error) {
		meta.LatencyMs = time.Since(start).Milliseconds()
		r.log.Info("routed stream",
			zap.String("task", string(task)),
			zap.String("model", meta.ModelUsed),
			zap.Bool("fallback", meta.FallbackTriggered),
			zap.String("reason", meta.FallbackReason),
			zap.Int64("latency_ms", meta.LatencyMs),
			zap.Bool("failed", err != nil))
		return out, meta, err
	}

	if mc.Custom != nil {
		meta.ModelUsed = mc.CustomModel
		out, err := mc.Custom.GenerateStream(ctx, text, mc.CustomModel, onDelta)
		if err != nil {
			return done("", fmt.Errorf("custom provider stream: %w", err))
		}
		return done(out, nil)
	}

	if r.startsSmart(task, mc) {
		meta.ModelUsed = mc.SmartModel
		out, err := r.managed.GenerateStream(ctx, text, mc.SmartModel, onDelta)
		if err != nil {
			return done("", fmt.Errorf("smart tier stream: %w", err))
		}
		return done(out, nil)
	}

	meta.ModelUsed = mc.FastModel
	out, err := r.managed.GenerateStream(ctx, text, mc.FastModel, onDelta)
	if err != nil {
		code := provider.Classify(err)
		meta.FallbackTriggered = true
		meta.FallbackReason = fmt.Sprintf("primary_model_error:%s", code)
		meta.ModelUsed = mc.SmartModel

		out, err = r.managed.GenerateStream(ctx, text, mc.SmartModel, onDelta)
		if err != nil {
			return done("", fmt.Errorf("stream escalation after %q: %w", meta.FallbackReason, err))
		}
		return done(out, nil)
	}
	return done(out, nil)
}

// #endregion dispatch-stream
