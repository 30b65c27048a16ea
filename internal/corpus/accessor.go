package corpus

import "context"

// #region accessor
// Accessor supplies the retrieval engine with chunks and source state.
// Implementations must return a consistent view for a single retrieval call.
type Accessor interface {
	// ListChunks returns every chunk in the given corpus scope.
	ListChunks(ctx context.Context, scopeID string) ([]Chunk, error)

	// EnabledSourceIDs returns the IDs of sources the user has toggled on.
	// A nil map means "no scope configured" (use everything); an empty,
	// non-nil map means the user disabled every source.
	EnabledSourceIDs(ctx context.Context, scopeID string) (map[string]bool, error)

	// KindOf resolves the source kind for a stable source ID.
	// Returns KindUnknown for IDs it has never seen.
	KindOf(ctx context.Context, sourceID string) (SourceKind, error)
}

// #endregion accessor

// #region memory-accessor
// MemoryAccessor is an in-memory Accessor for tests and small corpora.
type MemoryAccessor struct {
	Chunks  []Chunk
	Sources map[string]Source // keyed by source ID
	Scoped  bool              // when true, EnabledSourceIDs returns the enabled set (possibly empty)
}

// NewMemoryAccessor builds an accessor over the given chunks and sources.
func NewMemoryAccessor(chunks []Chunk, sources []Source) *MemoryAccessor {
	m := &MemoryAccessor{
		Chunks:  chunks,
		Sources: make(map[string]Source, len(sources)),
		Scoped:  len(sources) > 0,
	}
	for _, s := range sources {
		m.Sources[s.ID] = s
	}
	return m
}

// ListChunks returns the full chunk set; scopeID is ignored in memory.
func (m *MemoryAccessor) ListChunks(ctx context.Context, scopeID string) ([]Chunk, error) {
	return m.Chunks, nil
}

// EnabledSourceIDs returns the enabled source set, or nil when unscoped.
func (m *MemoryAccessor) EnabledSourceIDs(ctx context.Context, scopeID string) (map[string]bool, error) {
	if !m.Scoped {
		return nil, nil
	}
	enabled := make(map[string]bool)
	for id, s := range m.Sources {
		if s.Enabled {
			enabled[id] = true
		}
	}
	return enabled, nil
}

// KindOf resolves a source kind from the registered sources.
func (m *MemoryAccessor) KindOf(ctx context.Context, sourceID string) (SourceKind, error) {
	if s, ok := m.Sources[sourceID]; ok {
		return s.Kind, nil
	}
	return KindUnknown, nil
}

// #endregion memory-accessor
