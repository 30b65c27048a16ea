package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwestra/examtutor/internal/corpus"
)

// #region main
func main() {
	dbPath := flag.String("db", envOr("EXAMTUTOR_DB", "examtutor.db"), "corpus database path")
	scope := flag.String("scope", envOr("EXAMTUTOR_SCOPE", "default"), "corpus scope")
	name := flag.String("name", "", "source name (defaults to file name)")
	category := flag.String("category", string(corpus.CategoryStudyMaterial),
		"source category: previous_paper | question_bank | study_material | syllabus_derived")
	kind := flag.String("kind", "", "source kind override: pdf | docx | ppt | url | youtube | text")
	year := flag.String("year", "", "source year")
	section := flag.String("section", "", "section label for all chunks")
	chunkSize := flag.Int("chunk-size", 1200, "target chunk size in characters")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ingest [flags] <text-file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}

	sourceName := *name
	if sourceName == "" {
		sourceName = filepath.Base(path)
	}
	sourceKind := corpus.SourceKind(*kind)
	if *kind == "" {
		sourceKind = corpus.InferKind(corpus.KindUnknown, sourceName, *section)
	}

	store, err := corpus.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("open corpus store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	sourceID, err := store.AddSource(ctx, *scope, corpus.Source{
		Name:    sourceName,
		Kind:    sourceKind,
		Enabled: true,
	})
	if err != nil {
		log.Fatalf("add source: %v", err)
	}

	var chunks []corpus.Chunk
	for _, text := range splitChunks(string(data), *chunkSize) {
		chunks = append(chunks, corpus.Chunk{
			Text:       text,
			Category:   corpus.SourceCategory(*category),
			SourceName: sourceName,
			SourceYear: *year,
			Section:    *section,
			SourceID:   sourceID,
		})
	}
	if len(chunks) == 0 {
		log.Fatalf("no chunks produced from %s", path)
	}
	if err := store.AddChunks(ctx, *scope, chunks); err != nil {
		log.Fatalf("add chunks: %v", err)
	}

	fmt.Printf("ingested %s: source=%s kind=%s chunks=%d\n", path, sourceID, sourceKind, len(chunks))
}

// #endregion main

// #region split
// splitChunks packs paragraphs into chunks of roughly the target size,
// never splitting inside a paragraph.
func splitChunks(text string, target int) []string {
	paragraphs := strings.Split(text, "\n\n")
	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(p) > target {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// #endregion split

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
