package telemetry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwestra/examtutor/internal/prompt"
	"github.com/mwestra/examtutor/internal/router"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "telemetry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Record(ctx, Outcome{
		RequestID: "req-1",
		Meta: router.RoutingMeta{
			TaskType:  prompt.TaskFreeformQA,
			ModelUsed: "fast-1",
			LatencyMs: 840,
		},
		Confidence: "high",
	}))
	require.NoError(t, store.Record(ctx, Outcome{
		RequestID: "req-2",
		Meta: router.RoutingMeta{
			TaskType:          prompt.TaskFreeformQA,
			ModelUsed:         "smart-1",
			FallbackTriggered: true,
			FallbackReason:    "output too short",
			LatencyMs:         2100,
		},
		Confidence: "medium",
	}))

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first.
	assert.Equal(t, "req-2", recent[0].RequestID)
	assert.True(t, recent[0].Meta.FallbackTriggered)
	assert.Equal(t, "output too short", recent[0].Meta.FallbackReason)
	assert.Equal(t, int64(2100), recent[0].Meta.LatencyMs)
	assert.Equal(t, "medium", recent[0].Confidence)
	assert.False(t, recent[0].CreatedAt.IsZero())

	assert.Equal(t, "req-1", recent[1].RequestID)
	assert.False(t, recent[1].Meta.FallbackTriggered)
	assert.Empty(t, recent[1].Meta.FallbackReason)
	assert.Equal(t, prompt.TaskFreeformQA, recent[1].Meta.TaskType)
}

func TestRecent_Limit(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, Outcome{
			RequestID: "req",
			Meta:      router.RoutingMeta{TaskType: prompt.TaskMicroQuiz, ModelUsed: "fast-1"},
		}))
	}
	recent, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestFallbackRate(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	record := func(task prompt.TaskType, fellBack bool) {
		require.NoError(t, store.Record(ctx, Outcome{
			RequestID: "req",
			Meta:      router.RoutingMeta{TaskType: task, ModelUsed: "m", FallbackTriggered: fellBack},
		}))
	}
	record(prompt.TaskFreeformQA, false)
	record(prompt.TaskFreeformQA, true)
	record(prompt.TaskFreeformQA, true)
	record(prompt.TaskExamSet, false)

	rates, err := store.FallbackRate(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, rates[string(prompt.TaskFreeformQA)], 0.0001)
	assert.InDelta(t, 0.0, rates[string(prompt.TaskExamSet)], 0.0001)
}
