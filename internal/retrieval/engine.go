package retrieval

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mwestra/examtutor/internal/corpus"
	"github.com/mwestra/examtutor/internal/tokenize"
)

// #region engine
// Engine runs the diversity-constrained lexical retrieval pipeline.
type Engine struct {
	config Config
	log    *zap.Logger
}

// NewEngine creates an engine with the given config. logger may be nil.
func NewEngine(config Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{config: config, log: logger}
}

// #endregion engine

// #region retrieve
// Retrieve runs the full pipeline:
//  1. Empty enabled scope is a deliberate hard stop, not a soft filter.
//  2. Filter corpus to enabled sources when a scope is given.
//  3. Score by token containment plus category/kind weighting.
//  4. Keep score > 0, sort, window to CandidateWindow x effectiveMax.
//  5. Dedupe by normalized text prefix.
//  6. Overlap re-boost and re-sort.
//  7. Diversity selection seeded by top video and top document chunks.
//  8. Coverage injection for unrepresented enabled sources.
//  9. Aggregate scoring and citation assembly.
func (e *Engine) Retrieve(req Request) Result {
	result := Result{QueryTokens: req.Tokens}

	// Step 1: the user intentionally disabled every source.
	if req.Enabled != nil && len(req.Enabled) == 0 {
		result.Confidence = ConfidenceLow
		result.Reason = "scope: all sources disabled"
		return result
	}

	// Step 2: scope filter.
	pool := req.Chunks
	if req.Enabled != nil {
		pool = make([]corpus.Chunk, 0, len(req.Chunks))
		for _, c := range req.Chunks {
			if req.Enabled[c.SourceID] {
				pool = append(pool, c)
			}
		}
	}
	if len(pool) == 0 {
		result.Confidence = ConfidenceLow
		result.Reason = "no chunks in scope"
		return result
	}

	effectiveMax := req.MaxChunks
	if effectiveMax <= 0 {
		effectiveMax = e.config.DefaultMax
	}
	// Every toggled-on source gets a chance to compete past the nominal budget.
	if len(req.Enabled) > effectiveMax {
		effectiveMax = len(req.Enabled)
	}

	// Step 3: score.
	conceptual := tokenize.IsConceptual(req.Query)
	videoOnly := e.videoOnlyScope(req, pool)
	scored := e.scorePool(pool, req, conceptual, videoOnly)
	if len(scored) == 0 {
		result.Confidence = ConfidenceLow
		result.Reason = "no chunks matched the query"
		return result
	}

	// Step 4: sort and window. The full scored list survives the window so
	// coverage injection can reach sources ranked below it.
	sortByScore(scored)
	full := scored
	window := e.config.CandidateWindow * effectiveMax
	if len(scored) > window {
		scored = scored[:window]
	}

	// Step 5: prefix dedupe.
	candidates := dedupeByPrefix(scored, e.config.DedupePrefixLen)

	// Step 6: overlap re-boost.
	for i := range candidates {
		distinct := distinctTokensIn(candidates[i].Chunk.Text, req.Tokens)
		candidates[i].Score += e.config.OverlapBoost * float64(distinct)
	}
	sortByScore(candidates)

	if req.Debug {
		result.DebugChunks = append([]ScoredChunk(nil), candidates...)
	}

	// Step 7: diversity selection.
	selected := e.selectDiverse(candidates, effectiveMax)

	// Step 8: coverage guarantee. Applied after diversity selection so
	// explicit user intent outranks pure relevance ranking.
	selected = e.injectCoverage(selected, full, req.Enabled, req.Tokens)
	sortByScore(selected)

	// Step 9: aggregates.
	result.SelectedChunks = selected
	for i := range selected {
		result.AggregateScore += selected[i].Score
		if selected[i].Kind == corpus.KindYouTube {
			result.UsedVideoContext = true
		}
		if selected[i].Chunk.Category == corpus.CategoryPreviousPaper {
			if result.TopPreviousPaper == nil || selected[i].Score > result.TopPreviousPaper.Score {
				top := selected[i]
				result.TopPreviousPaper = &top
			}
		}
	}
	result.Citations = buildCitations(selected)
	result.CoveragePercent = coveragePercent(selected, pool, req.Enabled)
	result.Confidence = e.confidenceFor(result.AggregateScore, len(selected))
	result.Reason = fmt.Sprintf("selected %d of %d candidates (aggregate=%.2f)",
		len(selected), len(candidates), result.AggregateScore)

	e.log.Debug("retrieval complete",
		zap.Int("selected", len(selected)),
		zap.Float64("aggregate", result.AggregateScore),
		zap.Bool("video_context", result.UsedVideoContext),
		zap.String("confidence", string(result.Confidence)))

	return result
}

// #endregion retrieve

// #region scoring
// scorePool scores every chunk in the pool. Base score is the count of query
// tokens literally contained in the text plus a category priority boost;
// youtube chunks get the floor/multiplier stack on top.
func (e *Engine) scorePool(pool []corpus.Chunk, req Request, conceptual, videoOnly bool) []ScoredChunk {
	scored := make([]ScoredChunk, 0, len(pool))
	for _, c := range pool {
		kind := e.kindOf(req, c)
		matches := distinctTokensIn(c.Text, req.Tokens)

		score := float64(matches)
		if matches > 0 {
			score += e.categoryBoost(c.Category)
		}

		if kind == corpus.KindYouTube {
			if score < e.config.VideoFloor {
				score = e.config.VideoFloor
			}
			score *= e.config.VideoMultiplier
			if conceptual {
				score *= e.config.ConceptualMult
			}
			if videoOnly {
				score *= e.config.VideoOnlyMult
			}
		}

		if score <= 0 {
			continue
		}
		scored = append(scored, ScoredChunk{
			SourceID: c.SourceID,
			Chunk:    c,
			Kind:     kind,
			Score:    score,
		})
	}
	return scored
}

// categoryBoost returns the fixed source-category priority boost.
func (e *Engine) categoryBoost(cat corpus.SourceCategory) float64 {
	switch cat {
	case corpus.CategoryPreviousPaper:
		return e.config.BoostPreviousPaper
	case corpus.CategoryQuestionBank:
		return e.config.BoostQuestionBank
	case corpus.CategoryStudyMaterial:
		return e.config.BoostStudyMaterial
	}
	return e.config.BoostOther
}

// kindOf resolves a chunk's kind from the request map, falling back to
// name/section heuristics.
func (e *Engine) kindOf(req Request, c corpus.Chunk) corpus.SourceKind {
	if k, ok := req.Kinds[c.SourceID]; ok && k != "" && k != corpus.KindUnknown {
		return k
	}
	return corpus.InferKind(corpus.KindUnknown, c.SourceName, c.Section)
}

// videoOnlyScope reports whether the enabled scope consists exclusively of
// video sources. Kinds resolve through the same map-then-heuristics path as
// per-chunk scoring, using the scoped pool for name/section fallback.
func (e *Engine) videoOnlyScope(req Request, pool []corpus.Chunk) bool {
	if len(req.Enabled) == 0 {
		return false
	}
	kinds := make(map[string]corpus.SourceKind, len(req.Enabled))
	for _, c := range pool {
		if _, ok := kinds[c.SourceID]; ok {
			continue
		}
		kinds[c.SourceID] = e.kindOf(req, c)
	}
	for id := range req.Enabled {
		k, ok := kinds[id]
		if !ok {
			// Chunkless sources fall back to the stored kind alone.
			k = req.Kinds[id]
		}
		if k != corpus.KindYouTube {
			return false
		}
	}
	return true
}

// distinctTokensIn counts query tokens literally present in the text, each
// counted at most once.
func distinctTokensIn(text string, tokens []string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			count++
		}
	}
	return count
}

// #endregion scoring

// #region dedupe
// dedupeByPrefix drops chunks whose normalized text prefix was already seen.
func dedupeByPrefix(scored []ScoredChunk, prefixLen int) []ScoredChunk {
	seen := make(map[string]bool, len(scored))
	out := make([]ScoredChunk, 0, len(scored))
	for _, sc := range scored {
		key := normalizedPrefix(sc.Chunk.Text, prefixLen)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sc)
	}
	return out
}

// normalizedPrefix lowercases, collapses whitespace, and truncates.
func normalizedPrefix(text string, n int) string {
	norm := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if len(norm) > n {
		norm = norm[:n]
	}
	return norm
}

// #endregion dedupe

// #region diversity
// selectDiverse seeds the selection with the top video chunk and the top
// document-type chunk (or top non-video as a fallback), then fills remaining
// slots from the sorted candidate list.
func (e *Engine) selectDiverse(candidates []ScoredChunk, max int) []ScoredChunk {
	var selected []ScoredChunk
	taken := make(map[string]bool)

	key := func(sc ScoredChunk) string {
		return sc.SourceID + "|" + sc.Chunk.Section + "|" + normalizedPrefix(sc.Chunk.Text, e.config.SelectPrefixLen)
	}
	take := func(sc ScoredChunk) {
		k := key(sc)
		if taken[k] {
			return
		}
		taken[k] = true
		selected = append(selected, sc)
	}

	// Seed: best video chunk.
	for _, sc := range candidates {
		if sc.Kind == corpus.KindYouTube {
			take(sc)
			break
		}
	}
	// Seed: best document chunk, else best non-video chunk.
	seeded := false
	for _, sc := range candidates {
		if sc.Kind.IsDocument() {
			take(sc)
			seeded = true
			break
		}
	}
	if !seeded {
		for _, sc := range candidates {
			if sc.Kind != corpus.KindYouTube {
				take(sc)
				break
			}
		}
	}

	// Fill remaining slots in score order.
	for _, sc := range candidates {
		if len(selected) >= max {
			break
		}
		take(sc)
	}
	if len(selected) > max {
		selected = selected[:max]
	}
	return selected
}

// injectCoverage adds the single best-scoring chunk of every enabled source
// not yet represented in the selection, even when weak. scored is the full
// pre-window candidate list; injected chunks get the overlap boost so the
// final re-sort compares like with like.
func (e *Engine) injectCoverage(selected, scored []ScoredChunk, enabled map[string]bool, tokens []string) []ScoredChunk {
	if len(enabled) == 0 {
		return selected
	}
	represented := make(map[string]bool, len(selected))
	for _, sc := range selected {
		represented[sc.SourceID] = true
	}
	for id := range enabled {
		if represented[id] {
			continue
		}
		var best *ScoredChunk
		for i := range scored {
			if scored[i].SourceID != id {
				continue
			}
			if best == nil || scored[i].Score > best.Score {
				best = &scored[i]
			}
		}
		if best != nil {
			sc := *best
			sc.Score += e.config.OverlapBoost * float64(distinctTokensIn(sc.Chunk.Text, tokens))
			selected = append(selected, sc)
		}
	}
	return selected
}

// #endregion diversity

// #region aggregates
// buildCitations emits one citation per distinct provenance among the
// selected chunks. Every citation traces to a chunk that was actually used.
func buildCitations(selected []ScoredChunk) []Citation {
	seen := make(map[string]bool, len(selected))
	var citations []Citation
	for _, sc := range selected {
		c := Citation{
			Category:   sc.Chunk.Category,
			SourceName: sc.Chunk.SourceName,
			SourceYear: sc.Chunk.SourceYear,
			Section:    sc.Chunk.Section,
			Importance: importanceFor(sc.Chunk.Category),
		}
		k := string(c.Category) + "|" + c.SourceName + "|" + c.SourceYear + "|" + c.Section
		if seen[k] {
			continue
		}
		seen[k] = true
		citations = append(citations, c)
	}
	return citations
}

// coveragePercent reports the share of in-scope sources represented in the
// selection.
func coveragePercent(selected []ScoredChunk, pool []corpus.Chunk, enabled map[string]bool) float64 {
	inScope := make(map[string]bool)
	if enabled != nil {
		for id := range enabled {
			inScope[id] = true
		}
	} else {
		for _, c := range pool {
			if c.SourceID != "" {
				inScope[c.SourceID] = true
			}
		}
	}
	if len(inScope) == 0 {
		return 0
	}
	represented := make(map[string]bool)
	for _, sc := range selected {
		if inScope[sc.SourceID] {
			represented[sc.SourceID] = true
		}
	}
	return 100 * float64(len(represented)) / float64(len(inScope))
}

// confidenceFor buckets the aggregate score.
func (e *Engine) confidenceFor(aggregate float64, selected int) Confidence {
	switch {
	case selected == 0:
		return ConfidenceLow
	case aggregate >= e.config.ConfidenceHigh:
		return ConfidenceHigh
	case aggregate >= e.config.ConfidenceMedium:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// #endregion aggregates

// #region sort
// sortByScore sorts descending by score, stable on input order for ties.
func sortByScore(chunks []ScoredChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
}

// #endregion sort
