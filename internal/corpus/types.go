package corpus

// #region source-category
// SourceCategory classifies where ingested material came from.
type SourceCategory string

const (
	CategoryPreviousPaper   SourceCategory = "previous_paper"
	CategoryQuestionBank    SourceCategory = "question_bank"
	CategoryStudyMaterial   SourceCategory = "study_material"
	CategorySyllabusDerived SourceCategory = "syllabus_derived"
)

// #endregion source-category

// #region source-kind
// SourceKind is the inferred document/media type of a chunk's origin.
// It is never stored on the Chunk itself; it is resolved per retrieval.
type SourceKind string

const (
	KindPDF     SourceKind = "pdf"
	KindDOCX    SourceKind = "docx"
	KindPPT     SourceKind = "ppt"
	KindURL     SourceKind = "url"
	KindYouTube SourceKind = "youtube"
	KindText    SourceKind = "text"
	KindUnknown SourceKind = "unknown"
)

// IsDocument reports whether the kind is a document-type source.
func (k SourceKind) IsDocument() bool {
	switch k {
	case KindPDF, KindDOCX, KindPPT, KindURL:
		return true
	}
	return false
}

// #endregion source-kind

// #region chunk
// Chunk is an immutable unit of pre-segmented source text.
// Produced once by ingestion, never mutated afterwards.
type Chunk struct {
	Text       string
	Category   SourceCategory
	SourceName string
	SourceYear string // empty when unknown
	Section    string
	SourceID   string // stable source identifier, empty when unknown
}

// #endregion chunk

// #region source
// Source describes one ingested material source and its toggle state.
type Source struct {
	ID      string
	Name    string
	Kind    SourceKind
	Enabled bool
}

// #endregion source
