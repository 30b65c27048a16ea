package retrieval

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwestra/examtutor/internal/corpus"
	"github.com/mwestra/examtutor/internal/tokenize"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), nil)
}

func chunk(id, name string, cat corpus.SourceCategory, text string) corpus.Chunk {
	return corpus.Chunk{
		Text:       text,
		Category:   cat,
		SourceName: name,
		SourceID:   id,
	}
}

func TestRetrieve_EmptyEnabledScopeIsHardStop(t *testing.T) {
	chunks := []corpus.Chunk{
		chunk("s1", "bio.pdf", corpus.CategoryStudyMaterial, "photosynthesis converts light energy"),
		chunk("s2", "paper-2022.pdf", corpus.CategoryPreviousPaper, "photosynthesis questions appeared"),
	}

	res := newTestEngine().Retrieve(Request{
		Chunks:  chunks,
		Query:   "photosynthesis",
		Tokens:  tokenize.Tokenize("photosynthesis"),
		Enabled: map[string]bool{}, // deliberately disabled everything
	})

	assert.True(t, res.Empty())
	assert.Equal(t, ConfidenceLow, res.Confidence)
	assert.Zero(t, res.AggregateScore)
	assert.Empty(t, res.Citations)
}

func TestRetrieve_EmptyTerminalShapeIsUniform(t *testing.T) {
	e := newTestEngine()
	tokens := tokenize.Tokenize("photosynthesis")

	noCorpus := e.Retrieve(Request{Query: "photosynthesis", Tokens: tokens})
	noMatch := e.Retrieve(Request{
		Chunks: []corpus.Chunk{chunk("s1", "notes.txt", corpus.CategoryStudyMaterial, "unrelated trigonometry content")},
		Query:  "photosynthesis", Tokens: tokens,
	})
	emptyScope := e.Retrieve(Request{
		Chunks:  []corpus.Chunk{chunk("s1", "notes.txt", corpus.CategoryStudyMaterial, "photosynthesis")},
		Query:   "photosynthesis", Tokens: tokens,
		Enabled: map[string]bool{},
	})

	for _, res := range []Result{noCorpus, noMatch, emptyScope} {
		assert.True(t, res.Empty())
		assert.Nil(t, res.SelectedChunks)
		assert.Equal(t, ConfidenceLow, res.Confidence)
	}
}

func TestRetrieve_PreviousPaperScenario(t *testing.T) {
	chunks := []corpus.Chunk{
		chunk("pp", "paper-2021.pdf", corpus.CategoryPreviousPaper, "photosynthesis was asked for 10 marks"),
		chunk("sm", "notes.txt", corpus.CategoryStudyMaterial, "unrelated content about mitosis"),
	}

	res := newTestEngine().Retrieve(Request{
		Chunks:    chunks,
		Query:     "photosynthesis process",
		Tokens:    tokenize.Tokenize("photosynthesis process"),
		MaxChunks: 2,
	})

	require.False(t, res.Empty())
	found := false
	for _, sc := range res.SelectedChunks {
		if sc.SourceID == "pp" {
			found = true
		}
	}
	assert.True(t, found, "previous-paper chunk must be selected")
	assert.False(t, res.UsedVideoContext)
	require.NotNil(t, res.TopPreviousPaper)
	assert.Equal(t, "pp", res.TopPreviousPaper.SourceID)
}

func TestRetrieve_CategoryBoostOrdering(t *testing.T) {
	// Same text, different categories: previous paper outranks question bank
	// outranks study material.
	chunks := []corpus.Chunk{
		chunk("a", "notes.txt", corpus.CategoryStudyMaterial, "osmosis moves water across membranes"),
		chunk("b", "bank.pdf", corpus.CategoryQuestionBank, "osmosis moves water across a membrane barrier"),
		chunk("c", "paper-2020.pdf", corpus.CategoryPreviousPaper, "osmosis moves water across cell walls"),
	}

	res := newTestEngine().Retrieve(Request{
		Chunks:    chunks,
		Query:     "osmosis water",
		Tokens:    tokenize.Tokenize("osmosis water"),
		MaxChunks: 3,
	})

	require.Len(t, res.SelectedChunks, 3)
	assert.Equal(t, "c", res.SelectedChunks[0].SourceID)
	assert.Equal(t, "b", res.SelectedChunks[1].SourceID)
	assert.Equal(t, "a", res.SelectedChunks[2].SourceID)
}

func TestRetrieve_AggregateMonotonicInTokenMatches(t *testing.T) {
	e := newTestEngine()
	base := "The cell membrane regulates transport."
	richer := "The cell membrane regulates transport by osmosis and diffusion."
	tokens := tokenize.Tokenize("membrane osmosis diffusion")

	one := e.Retrieve(Request{
		Chunks: []corpus.Chunk{chunk("x", "notes.txt", corpus.CategoryStudyMaterial, base)},
		Query:  "membrane osmosis diffusion", Tokens: tokens, MaxChunks: 1,
	})
	three := e.Retrieve(Request{
		Chunks: []corpus.Chunk{chunk("x", "notes.txt", corpus.CategoryStudyMaterial, richer)},
		Query:  "membrane osmosis diffusion", Tokens: tokens, MaxChunks: 1,
	})

	assert.Greater(t, three.AggregateScore, one.AggregateScore)
}

func TestRetrieve_CoverageGuarantee(t *testing.T) {
	// Source s2 has only a weak match but is enabled, so it must appear.
	chunks := []corpus.Chunk{
		chunk("s1", "paper.pdf", corpus.CategoryPreviousPaper, "enzyme kinetics enzyme activation enzyme inhibition"),
		chunk("s1", "paper.pdf", corpus.CategoryPreviousPaper, "enzyme catalysis rates and enzyme substrates"),
		chunk("s2", "weak-notes.txt", corpus.CategoryStudyMaterial, "a passing mention of enzyme"),
	}
	enabled := map[string]bool{"s1": true, "s2": true}

	res := newTestEngine().Retrieve(Request{
		Chunks:    chunks,
		Query:     "enzyme kinetics",
		Tokens:    tokenize.Tokenize("enzyme kinetics"),
		MaxChunks: 2,
		Enabled:   enabled,
	})

	represented := map[string]bool{}
	for _, sc := range res.SelectedChunks {
		represented[sc.SourceID] = true
	}
	for id := range enabled {
		assert.True(t, represented[id], "enabled source %s must be represented", id)
	}
	assert.Equal(t, 100.0, res.CoveragePercent)
}

func TestRetrieve_CoverageReachesBelowCandidateWindow(t *testing.T) {
	// A dominant source fills the candidate window completely; the weak
	// enabled source's best chunk ranks below it but must still be injected.
	var chunks []corpus.Chunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, chunk("strong", "strong.pdf", corpus.CategoryStudyMaterial,
			fmt.Sprintf("enzyme kinetics rate laws variant %d", i)))
	}
	chunks = append(chunks, chunk("weak", "weak-notes.txt", corpus.CategoryStudyMaterial,
		"a passing mention of enzyme only"))
	enabled := map[string]bool{"strong": true, "weak": true}

	res := newTestEngine().Retrieve(Request{
		Chunks:    chunks,
		Query:     "enzyme kinetics",
		Tokens:    tokenize.Tokenize("enzyme kinetics"),
		MaxChunks: 2,
		Enabled:   enabled,
	})

	var weakChunk *ScoredChunk
	for i := range res.SelectedChunks {
		if res.SelectedChunks[i].SourceID == "weak" {
			weakChunk = &res.SelectedChunks[i]
		}
	}
	require.NotNil(t, weakChunk, "enabled source weak must be represented")
	assert.Equal(t, 100.0, res.CoveragePercent)

	// Injected score carries the overlap boost: 1 match + 3 boost + 2 overlap.
	assert.InDelta(t, 6.0, weakChunk.Score, 0.001)
}

func TestRetrieve_VideoOnlyScopeMultiplierStack(t *testing.T) {
	chunks := []corpus.Chunk{
		chunk("yt-1", "lecture (youtube)", corpus.CategoryStudyMaterial, "recursion explained with call stacks"),
		chunk("doc", "algo.pdf", corpus.CategoryPreviousPaper, "recursion recursion recursion exam question"),
	}
	kinds := map[string]corpus.SourceKind{
		"yt-1": corpus.KindYouTube,
		"doc":  corpus.KindPDF,
	}

	res := newTestEngine().Retrieve(Request{
		Chunks:    chunks,
		Query:     "explain recursion",
		Tokens:    tokenize.Tokenize("explain recursion"),
		MaxChunks: 2,
		Enabled:   map[string]bool{"yt-1": true}, // video-only scope
		Kinds:     kinds,
	})

	require.Len(t, res.SelectedChunks, 1)
	sel := res.SelectedChunks[0]
	assert.Equal(t, "yt-1", sel.SourceID, "non-enabled source must be excluded entirely")
	assert.True(t, res.UsedVideoContext)

	// Full stack: (1 match + 3 boost) floored at >=3, x1.35 video,
	// x1.3 conceptual, x2.0 video-only, +2 overlap.
	want := (1+3.0)*1.35*1.3*2.0 + 2
	assert.InDelta(t, want, sel.Score, 0.001)
}

func TestRetrieve_VideoOnlyScopeFromNameHeuristics(t *testing.T) {
	// No stored kinds at all: the source is recognized as video purely from
	// its name, and the video-only multiplier must still apply.
	chunks := []corpus.Chunk{
		chunk("yt", "physics lecture youtube", corpus.CategoryStudyMaterial, "recursion with call stacks"),
	}

	res := newTestEngine().Retrieve(Request{
		Chunks:    chunks,
		Query:     "recursion",
		Tokens:    tokenize.Tokenize("recursion"),
		MaxChunks: 2,
		Enabled:   map[string]bool{"yt": true},
	})

	require.Len(t, res.SelectedChunks, 1)
	assert.True(t, res.UsedVideoContext)

	// (1 match + 3 boost) x1.35 video x2.0 video-only, +2 overlap; the query
	// is not conceptual so that multiplier stays out.
	want := (1+3.0)*1.35*2.0 + 2
	assert.InDelta(t, want, res.SelectedChunks[0].Score, 0.001)
}

func TestRetrieve_DedupeByTextPrefix(t *testing.T) {
	text := strings.Repeat("photosynthesis light reactions in the chloroplast thylakoid membranes. ", 5)
	chunks := []corpus.Chunk{
		chunk("s1", "a.pdf", corpus.CategoryStudyMaterial, text),
		chunk("s2", "b.pdf", corpus.CategoryStudyMaterial, text), // identical prefix
	}

	res := newTestEngine().Retrieve(Request{
		Chunks:    chunks,
		Query:     "photosynthesis",
		Tokens:    tokenize.Tokenize("photosynthesis"),
		MaxChunks: 4,
	})

	assert.Len(t, res.SelectedChunks, 1)
}

func TestRetrieve_DiversitySeedsVideoAndDocument(t *testing.T) {
	chunks := []corpus.Chunk{
		chunk("txt", "plain.txt", corpus.CategoryQuestionBank, "gravity gravity gravity gravity newton gravity laws of gravity explained"),
		chunk("vid", "physics (youtube)", corpus.CategoryStudyMaterial, "gravity basics"),
		chunk("doc", "physics.pdf", corpus.CategoryStudyMaterial, "gravity and newton"),
	}
	kinds := map[string]corpus.SourceKind{
		"txt": corpus.KindText,
		"vid": corpus.KindYouTube,
		"doc": corpus.KindPDF,
	}

	res := newTestEngine().Retrieve(Request{
		Chunks:    chunks,
		Query:     "gravity newton",
		Tokens:    tokenize.Tokenize("gravity newton"),
		MaxChunks: 2,
		Kinds:     kinds,
	})

	got := map[string]bool{}
	for _, sc := range res.SelectedChunks {
		got[sc.SourceID] = true
	}
	assert.True(t, got["vid"], "top video chunk must be seeded")
	assert.True(t, got["doc"], "top document chunk must be seeded")
}

func TestRetrieve_EffectiveMaxGrowsWithEnabledSources(t *testing.T) {
	var chunks []corpus.Chunk
	enabled := map[string]bool{}
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("s%d", i)
		enabled[id] = true
		chunks = append(chunks, chunk(id, id+".txt", corpus.CategoryStudyMaterial,
			fmt.Sprintf("mitochondria energy notes variant %d", i)))
	}

	res := newTestEngine().Retrieve(Request{
		Chunks:    chunks,
		Query:     "mitochondria energy",
		Tokens:    tokenize.Tokenize("mitochondria energy"),
		MaxChunks: 2, // below the enabled-source count
		Enabled:   enabled,
	})

	assert.Len(t, res.SelectedChunks, 5, "every enabled source competes past the nominal budget")
}

func TestRetrieve_CitationsTraceToSelectedChunks(t *testing.T) {
	chunks := []corpus.Chunk{
		{Text: "krebs cycle detail", Category: corpus.CategoryPreviousPaper, SourceName: "paper.pdf", SourceYear: "2021", Section: "q3", SourceID: "pp"},
		{Text: "unrelated", Category: corpus.CategoryStudyMaterial, SourceName: "notes.txt", SourceID: "sm"},
	}

	res := newTestEngine().Retrieve(Request{
		Chunks:    chunks,
		Query:     "krebs cycle",
		Tokens:    tokenize.Tokenize("krebs cycle"),
		MaxChunks: 2,
	})

	require.NotEmpty(t, res.Citations)
	selected := map[string]bool{}
	for _, sc := range res.SelectedChunks {
		selected[sc.Chunk.SourceName] = true
	}
	for _, c := range res.Citations {
		assert.True(t, selected[c.SourceName], "citation %q must trace to a selected chunk", c.SourceName)
	}
	assert.Equal(t, ImportanceVery, res.Citations[0].Importance)
}

func TestConfidenceBuckets(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		name      string
		aggregate float64
		selected  int
		want      Confidence
	}{
		{"none-selected", 100, 0, ConfidenceLow},
		{"high", 30, 3, ConfidenceHigh},
		{"medium", 10, 2, ConfidenceMedium},
		{"low", 3, 1, ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.confidenceFor(tt.aggregate, tt.selected))
		})
	}
}
