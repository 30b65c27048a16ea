package router

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwestra/examtutor/internal/prompt"
	"github.com/mwestra/examtutor/internal/provider"
	"github.com/mwestra/examtutor/internal/retrieval"
)

// fakeProvider returns canned output per model, or the configured error.
type fakeProvider struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeProvider) Generate(_ context.Context, _, model string) (string, error) {
	f.calls = append(f.calls, model)
	if err := f.errs[model]; err != nil {
		return "", err
	}
	return f.outputs[model], nil
}

func (f *fakeProvider) GenerateStream(ctx context.Context, text, model string, onDelta func(string)) (string, error) {
	out, err := f.Generate(ctx, text, model)
	if err != nil {
		return "", err
	}
	if onDelta != nil {
		onDelta(out)
	}
	return out, nil
}

func goodAnswer() string {
	return strings.Repeat("The water cycle moves water between ocean, air and land. ", 4)
}

func testModels() ModelConfig {
	return ModelConfig{FastModel: "fast-1", SmartModel: "smart-1"}
}

func okSignals() QualitySignals {
	return QualitySignals{RetrievalConfidence: retrieval.ConfidenceHigh}
}

func TestDispatch_FastTierAccepted(t *testing.T) {
	fake := &fakeProvider{outputs: map[string]string{"fast-1": goodAnswer()}}
	r := NewRouter(fake, DefaultConfig(), nil)

	out, meta, err := r.Dispatch(context.Background(), prompt.TaskFreeformQA, "p", testModels(), okSignals())
	require.NoError(t, err)
	assert.Equal(t, goodAnswer(), out)
	assert.Equal(t, "fast-1", meta.ModelUsed)
	assert.False(t, meta.FallbackTriggered)
	assert.Empty(t, meta.FallbackReason)
	assert.Equal(t, []string{"fast-1"}, fake.calls)
}

func TestDispatch_ShortOutputEscalates(t *testing.T) {
	fake := &fakeProvider{outputs: map[string]string{
		"fast-1":  "too short",
		"smart-1": goodAnswer(),
	}}
	r := NewRouter(fake, DefaultConfig(), nil)

	out, meta, err := r.Dispatch(context.Background(), prompt.TaskFreeformQA, "p", testModels(), okSignals())
	require.NoError(t, err)
	assert.Equal(t, goodAnswer(), out)
	assert.Equal(t, "smart-1", meta.ModelUsed)
	assert.True(t, meta.FallbackTriggered)
	assert.Equal(t, ReasonOutputTooShort, meta.FallbackReason)
	assert.Equal(t, []string{"fast-1", "smart-1"}, fake.calls)
}

func TestDispatch_FastErrorEscalatesWithCode(t *testing.T) {
	fake := &fakeProvider{
		outputs: map[string]string{"smart-1": goodAnswer()},
		errs:    map[string]error{"fast-1": provider.NewError(provider.CodeRequestFailed, "upstream 503")},
	}
	r := NewRouter(fake, DefaultConfig(), nil)

	out, meta, err := r.Dispatch(context.Background(), prompt.TaskFreeformQA, "p", testModels(), okSignals())
	require.NoError(t, err)
	assert.Equal(t, goodAnswer(), out)
	assert.True(t, meta.FallbackTriggered)
	assert.Equal(t, "primary_model_error:request_failed", meta.FallbackReason)
}

func TestDispatch_BothTiersFail(t *testing.T) {
	fake := &fakeProvider{errs: map[string]error{
		"fast-1":  provider.NewError(provider.CodeRequestFailed, "down"),
		"smart-1": provider.NewError(provider.CodeRequestFailed, "also down"),
	}}
	r := NewRouter(fake, DefaultConfig(), nil)

	_, meta, err := r.Dispatch(context.Background(), prompt.TaskFreeformQA, "p", testModels(), okSignals())
	require.Error(t, err)
	assert.True(t, meta.FallbackTriggered)
	assert.Equal(t, provider.CodeRequestFailed, provider.Classify(err))
}

func TestDispatch_SmartAlwaysSkipsFastTier(t *testing.T) {
	fake := &fakeProvider{outputs: map[string]string{"smart-1": goodAnswer()}}
	r := NewRouter(fake, DefaultConfig(), nil)

	_, meta, err := r.Dispatch(context.Background(), prompt.TaskFullStrategy, "p", testModels(), okSignals())
	require.NoError(t, err)
	assert.Equal(t, "smart-1", meta.ModelUsed)
	assert.False(t, meta.FallbackTriggered)
	assert.Equal(t, []string{"smart-1"}, fake.calls)
}

func TestDispatch_ComplexityPromotesToSmart(t *testing.T) {
	fake := &fakeProvider{outputs: map[string]string{"smart-1": goodAnswer()}}
	r := NewRouter(fake, DefaultConfig(), nil)

	mc := testModels()
	mc.ComplexityScore = 0.9
	_, meta, err := r.Dispatch(context.Background(), prompt.TaskFreeformQA, "p", mc, okSignals())
	require.NoError(t, err)
	assert.Equal(t, "smart-1", meta.ModelUsed)
	assert.Equal(t, []string{"smart-1"}, fake.calls)
}

func TestDispatch_CustomBypassNeverFallsBack(t *testing.T) {
	custom := &fakeProvider{outputs: map[string]string{"my-llama": "ok"}}
	managed := &fakeProvider{}
	r := NewRouter(managed, DefaultConfig(), nil)

	mc := testModels()
	mc.Custom = custom
	mc.CustomModel = "my-llama"

	// Output is far below MinChars; the bypass still accepts it.
	out, meta, err := r.Dispatch(context.Background(), prompt.TaskFreeformQA, "p", mc, okSignals())
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "my-llama", meta.ModelUsed)
	assert.False(t, meta.FallbackTriggered)
	assert.Empty(t, managed.calls)
}

func TestDispatch_CustomErrorIsTerminal(t *testing.T) {
	custom := &fakeProvider{errs: map[string]error{"my-llama": provider.NewError(provider.CodeRequestFailed, "refused")}}
	managed := &fakeProvider{outputs: map[string]string{"fast-1": goodAnswer(), "smart-1": goodAnswer()}}
	r := NewRouter(managed, DefaultConfig(), nil)

	mc := testModels()
	mc.Custom = custom
	mc.CustomModel = "my-llama"

	_, meta, err := r.Dispatch(context.Background(), prompt.TaskFreeformQA, "p", mc, okSignals())
	require.Error(t, err)
	assert.Equal(t, "my-llama", meta.ModelUsed)
	assert.False(t, meta.FallbackTriggered)
	assert.Empty(t, managed.calls)
}

func TestCheckQuality(t *testing.T) {
	r := NewRouter(nil, DefaultConfig(), nil)
	tests := []struct {
		name    string
		text    string
		signals QualitySignals
		ok      bool
		reason  string
	}{
		{"empty", "   ", okSignals(), false, ReasonEmptyOutput},
		{"too-short", "brief", okSignals(), false, ReasonOutputTooShort},
		{"custom-min-chars", "brief but fine here", QualitySignals{RetrievalConfidence: retrieval.ConfidenceHigh, MinChars: 10}, true, ""},
		{"invalid-json", goodAnswer(), QualitySignals{RetrievalConfidence: retrieval.ConfidenceHigh, RequiresJSON: true}, false, ReasonInvalidJSON},
		{"fenced-json-ok", "```json\n{\"overview\": \"" + goodAnswer() + "\"}\n```", QualitySignals{RetrievalConfidence: retrieval.ConfidenceHigh, RequiresJSON: true}, true, ""},
		{"low-confidence", goodAnswer(), QualitySignals{RetrievalConfidence: retrieval.ConfidenceLow}, false, ReasonLowConfidence},
		{"generic-refusal", "As an AI, I cannot answer that question for you. I don't have access to the specific study materials you are referring to, so any answer would be a guess on my part.", okSignals(), false, ReasonGenericOutput},
		{"good", goodAnswer(), okSignals(), true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := r.CheckQuality(tt.text, tt.signals)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare-object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose-wrapped", `Here you go: {"a": 1} hope that helps`, `{"a": 1}`},
		{"array", `[1, 2, 3]`, `[1, 2, 3]`},
		{"nested-braces-in-string", `{"a": "}{"}`, `{"a": "}{"}`},
		{"no-json", "plain prose only", ""},
		{"truncated", `{"a": 1`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestDispatchStream_ErrorOnlyEscalation(t *testing.T) {
	fake := &fakeProvider{
		outputs: map[string]string{"smart-1": goodAnswer()},
		errs:    map[string]error{"fast-1": provider.NewError(provider.CodeEmptyResponse, "no text")},
	}
	r := NewRouter(fake, DefaultConfig(), nil)

	var streamed strings.Builder
	out, meta, err := r.DispatchStream(context.Background(), prompt.TaskFreeformQA, "p", testModels(), func(d string) {
		streamed.WriteString(d)
	})
	require.NoError(t, err)
	assert.Equal(t, goodAnswer(), out)
	assert.Equal(t, goodAnswer(), streamed.String())
	assert.True(t, meta.FallbackTriggered)
	assert.Equal(t, "primary_model_error:empty_response", meta.FallbackReason)
}

func TestDispatchStream_ShortOutputNotEscalated(t *testing.T) {
	// The quality gate needs complete text; streamed responses only
	// escalate on provider errors.
	fake := &fakeProvider{outputs: map[string]string{"fast-1": "short"}}
	r := NewRouter(fake, DefaultConfig(), nil)

	out, meta, err := r.DispatchStream(context.Background(), prompt.TaskFreeformQA, "p", testModels(), nil)
	require.NoError(t, err)
	assert.Equal(t, "short", out)
	assert.Equal(t, "fast-1", meta.ModelUsed)
	assert.False(t, meta.FallbackTriggered)
}
