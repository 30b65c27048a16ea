package corpus

import "strings"

// #region kind-inference
// InferKind resolves a chunk's source kind. A stored kind from the source map
// wins; otherwise filename/section heuristics decide.
func InferKind(stored SourceKind, sourceName, section string) SourceKind {
	if stored != "" && stored != KindUnknown {
		return stored
	}
	return kindFromName(sourceName, section)
}

// kindFromName guesses the kind from the source name and section text.
func kindFromName(sourceName, section string) SourceKind {
	lower := strings.ToLower(sourceName)
	switch {
	case strings.Contains(lower, "youtube") || strings.Contains(lower, "youtu.be"):
		return KindYouTube
	case strings.HasSuffix(lower, ".pdf"):
		return KindPDF
	case strings.HasSuffix(lower, ".docx") || strings.HasSuffix(lower, ".doc"):
		return KindDOCX
	case strings.HasSuffix(lower, ".pptx") || strings.HasSuffix(lower, ".ppt"):
		return KindPPT
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return KindURL
	}
	sec := strings.ToLower(section)
	if strings.Contains(sec, "transcript") || strings.Contains(sec, "video") {
		return KindYouTube
	}
	if sourceName == "" {
		return KindUnknown
	}
	return KindText
}

// #endregion kind-inference
