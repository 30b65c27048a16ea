package prompt

import (
	"fmt"
	"strings"

	"github.com/mwestra/examtutor/internal/corpus"
	"github.com/mwestra/examtutor/internal/retrieval"
)

// #region provenance-label
// provenanceLabel maps a source kind to the explicit label the instruction
// blocks reference.
func provenanceLabel(kind corpus.SourceKind) string {
	switch kind {
	case corpus.KindYouTube:
		return "VIDEO SOURCE"
	case corpus.KindURL:
		return "WEBSITE SOURCE"
	case corpus.KindPDF, corpus.KindDOCX, corpus.KindPPT:
		return "DOCUMENT SOURCE"
	}
	return "TEXT SOURCE"
}

// #endregion provenance-label

// #region format-context
// FormatContext renders selected chunks into the grounded context block, one
// provenance-labelled entry per chunk.
func FormatContext(selected []retrieval.ScoredChunk) string {
	if len(selected) == 0 {
		return ""
	}
	var b strings.Builder
	for i, sc := range selected {
		title := sc.Chunk.SourceName
		if sc.Chunk.Section != "" {
			title += " — " + sc.Chunk.Section
		}
		if sc.Chunk.SourceYear != "" {
			title += " (" + sc.Chunk.SourceYear + ")"
		}
		body := CleanText(sc.Chunk.Text)
		if body == "" {
			// Single short lines survive cleaning as-is.
			body = strings.TrimSpace(sc.Chunk.Text)
		}
		fmt.Fprintf(&b, "[%s %d: %s]\n%s\n\n", provenanceLabel(sc.Kind), i+1, title, body)
	}
	return strings.TrimRight(b.String(), "\n")
}

// #endregion format-context
