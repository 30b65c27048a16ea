package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sources (
	source_id   TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	kind        TEXT NOT NULL DEFAULT 'unknown',
	enabled     INTEGER NOT NULL DEFAULT 1,
	scope_id    TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id   TEXT NOT NULL,
	scope_id    TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	source_name TEXT NOT NULL,
	source_year TEXT,
	section     TEXT,
	text        TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (source_id) REFERENCES sources(source_id)
);

CREATE INDEX IF NOT EXISTS idx_chunks_scope ON chunks(scope_id);
CREATE INDEX IF NOT EXISTS idx_sources_scope ON sources(scope_id);
`

// #endregion schema

// #region store-struct
// Store is a SQLite-backed corpus accessor.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens the corpus database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open corpus db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate corpus: %w", err)
	}
	return &Store{db: db}, nil
}

// Close shuts down the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for collaborators sharing the same file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region ingest
// AddSource registers a source and returns its ID (generated when empty).
func (s *Store) AddSource(ctx context.Context, scopeID string, src Source) (string, error) {
	if src.ID == "" {
		src.ID = uuid.NewString()
	}
	if src.Kind == "" {
		src.Kind = KindUnknown
	}
	enabled := 0
	if src.Enabled {
		enabled = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sources (source_id, name, kind, enabled, scope_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		src.ID, src.Name, string(src.Kind), enabled, scopeID,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert source: %w", err)
	}
	return src.ID, nil
}

// AddChunks inserts a batch of chunks in one transaction.
func (s *Store) AddChunks(ctx context.Context, scopeID string, chunks []Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (source_id, scope_id, category, source_name, source_year, section, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx,
			c.SourceID, scopeID, string(c.Category), c.SourceName,
			nullIfEmpty(c.SourceYear), nullIfEmpty(c.Section), c.Text, now,
		); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	return tx.Commit()
}

// SetEnabled toggles a source on or off.
func (s *Store) SetEnabled(ctx context.Context, sourceID string, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	res, err := s.db.ExecContext(ctx, `UPDATE sources SET enabled = ? WHERE source_id = ?`, v, sourceID)
	if err != nil {
		return fmt.Errorf("set enabled: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set enabled: unknown source %s", sourceID)
	}
	return nil
}

// #endregion ingest

// #region accessor-impl
// ListChunks returns every chunk in the scope.
func (s *Store) ListChunks(ctx context.Context, scopeID string) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, category, source_name, COALESCE(source_year, ''), COALESCE(section, ''), text
		 FROM chunks WHERE scope_id = ? ORDER BY id`, scopeID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var cat string
		if err := rows.Scan(&c.SourceID, &cat, &c.SourceName, &c.SourceYear, &c.Section, &c.Text); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		c.Category = SourceCategory(cat)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// EnabledSourceIDs returns the enabled source IDs for the scope.
// Returns nil (no scope) when the scope has no registered sources at all.
func (s *Store) EnabledSourceIDs(ctx context.Context, scopeID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, enabled FROM sources WHERE scope_id = ?`, scopeID)
	if err != nil {
		return nil, fmt.Errorf("enabled sources: %w", err)
	}
	defer rows.Close()

	any := false
	enabled := make(map[string]bool)
	for rows.Next() {
		var id string
		var on int
		if err := rows.Scan(&id, &on); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		any = true
		if on == 1 {
			enabled[id] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !any {
		return nil, nil
	}
	return enabled, nil
}

// KindOf resolves the stored kind for a source ID.
func (s *Store) KindOf(ctx context.Context, sourceID string) (SourceKind, error) {
	var kind string
	err := s.db.QueryRowContext(ctx,
		`SELECT kind FROM sources WHERE source_id = ?`, sourceID).Scan(&kind)
	if err == sql.ErrNoRows {
		return KindUnknown, nil
	}
	if err != nil {
		return KindUnknown, fmt.Errorf("kind of %s: %w", sourceID, err)
	}
	return SourceKind(kind), nil
}

// ListSources returns every source in the scope.
func (s *Store) ListSources(ctx context.Context, scopeID string) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, name, kind, enabled FROM sources WHERE scope_id = ? ORDER BY created_at`, scopeID)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		var kind string
		var on int
		if err := rows.Scan(&src.ID, &src.Name, &kind, &on); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		src.Kind = SourceKind(kind)
		src.Enabled = on == 1
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// CountByCategory returns chunk counts grouped by source category.
func (s *Store) CountByCategory(ctx context.Context, scopeID string) (map[SourceCategory]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM chunks WHERE scope_id = ? GROUP BY category`, scopeID)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[SourceCategory]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[SourceCategory(cat)] = n
	}
	return counts, rows.Err()
}

// #endregion accessor-impl

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
