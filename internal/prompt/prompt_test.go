package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwestra/examtutor/internal/corpus"
	"github.com/mwestra/examtutor/internal/retrieval"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"control-chars-removed",
			"The mitochondria is the\x00 powerhouse of the cell entity",
			"The mitochondria is the  powerhouse of the cell entity",
		},
		{
			"boilerplate-lines-stripped",
			"Page 4 of 12\nThe nitrogen cycle moves nitrogen through ecosystems.\n42",
			"The nitrogen cycle moves nitrogen through ecosystems.",
		},
		{
			"short-lines-dropped",
			"ok\nThe calvin cycle fixes carbon dioxide into sugars.",
			"The calvin cycle fixes carbon dioxide into sugars.",
		},
		{
			"duplicate-lines-deduped",
			"Osmosis is the movement of water molecules.\nOsmosis is the movement of water molecules.",
			"Osmosis is the movement of water molecules.",
		},
		{
			"char-repeats-collapsed",
			"Heading----------- about the krebs cycle and its products",
			"Heading- about the krebs cycle and its products",
		},
		{
			"word-repeats-collapsed",
			"the the the the krebs cycle produces ATP in cellular respiration",
			"the krebs cycle produces ATP in cellular respiration",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestFormatContext_ProvenanceLabels(t *testing.T) {
	selected := []retrieval.ScoredChunk{
		{
			Kind: corpus.KindYouTube,
			Chunk: corpus.Chunk{
				Text:       "In this lecture we derive the quadratic formula step by step.",
				SourceName: "algebra lecture",
				Section:    "part 2",
			},
		},
		{
			Kind: corpus.KindPDF,
			Chunk: corpus.Chunk{
				Text:       "The quadratic formula solves ax^2+bx+c=0 for arbitrary coefficients.",
				SourceName: "algebra.pdf",
				SourceYear: "2023",
			},
		},
		{
			Kind: corpus.KindURL,
			Chunk: corpus.Chunk{
				Text:       "A discriminant below zero means the roots are complex numbers.",
				SourceName: "https://mathsite.example",
			},
		},
	}

	got := FormatContext(selected)
	assert.Contains(t, got, "[VIDEO SOURCE 1: algebra lecture — part 2]")
	assert.Contains(t, got, "[DOCUMENT SOURCE 2: algebra.pdf (2023)]")
	assert.Contains(t, got, "[WEBSITE SOURCE 3: https://mathsite.example]")
	assert.Contains(t, got, "derive the quadratic formula")
}

func TestFormatContext_ShortChunkSurvivesCleaning(t *testing.T) {
	selected := []retrieval.ScoredChunk{
		{Kind: corpus.KindText, Chunk: corpus.Chunk{Text: "F = ma", SourceName: "formulas"}},
	}
	got := FormatContext(selected)
	assert.Contains(t, got, "F = ma")
}

func TestFormatContext_Empty(t *testing.T) {
	assert.Equal(t, "", FormatContext(nil))
}

func TestAssemble(t *testing.T) {
	in := Input{
		Task:    TaskFreeformQA,
		Subject: "why does ice float",
		Context: "[TEXT SOURCE 1: notes]\nIce is less dense than liquid water.",
		Generation: GenerationContext{
			CurrentChapter:    "States of Matter",
			ExamTimeRemaining: "3 days",
		},
	}

	got := Assemble(in)
	assert.Contains(t, got, "why does ice float")
	assert.Contains(t, got, "Never invent facts outside it")
	assert.Contains(t, got, "Current chapter: States of Matter")
	assert.Contains(t, got, "Time until exam: 3 days")
	assert.Contains(t, got, "Ice is less dense")
	assert.NotContains(t, got, "VIDEO SOURCE material")
}

func TestAssemble_VideoRule(t *testing.T) {
	got := Assemble(Input{
		Task:     TaskTopicOverview,
		Subject:  "recursion",
		Context:  "[VIDEO SOURCE 1: lecture]\nRecursion explained.",
		HasVideo: true,
	})
	assert.Contains(t, got, "VIDEO SOURCE material")
	assert.Contains(t, got, `"from the video"`)
}

func TestAssemble_NoContext(t *testing.T) {
	got := Assemble(Input{Task: TaskMicroQuiz, Subject: "entropy"})
	assert.Contains(t, got, "(no study material matched)")
}

func TestAssemble_TaskInstructionsDiffer(t *testing.T) {
	tasks := []TaskType{TaskTopicOverview, TaskLearnItem, TaskFreeformQA, TaskExamSet, TaskMicroQuiz}
	seen := map[string]bool{}
	for _, task := range tasks {
		p := Assemble(Input{Task: task, Subject: "photosynthesis"})
		require.False(t, seen[p], "instruction block for %s must be distinct", task)
		seen[p] = true
	}
	// JSON-shaped tasks name their shape.
	assert.True(t, strings.Contains(Assemble(Input{Task: TaskMicroQuiz, Subject: "x"}), "correctIndex"))
	assert.True(t, strings.Contains(Assemble(Input{Task: TaskExamSet, Subject: "x"}), "marks"))
}
