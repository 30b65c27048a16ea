package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mwestra/examtutor/internal/corpus"
	"github.com/mwestra/examtutor/internal/telemetry"
)

// #region main
func main() {
	dbPath := flag.String("db", "", "path to examtutor.db")
	scope := flag.String("scope", "default", "corpus scope")
	last := flag.Int("last", 20, "show N most recent routing outcomes")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/examtutor.db [--scope id] [--last N] [--json]")
		os.Exit(2)
	}

	store, err := corpus.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	recorder, err := telemetry.NewStore(store.DB())
	if err != nil {
		fmt.Fprintf(os.Stderr, "open telemetry: %v\n", err)
		os.Exit(1)
	}

	if err := run(store, recorder, *scope, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region report
type report struct {
	Sources      []corpus.Source               `json:"sources"`
	ChunkCounts  map[corpus.SourceCategory]int `json:"chunk_counts"`
	Outcomes     []outcomeRow                  `json:"recent_outcomes"`
	FallbackRate map[string]float64            `json:"fallback_rate"`
}

type outcomeRow struct {
	Task      string `json:"task"`
	Model     string `json:"model"`
	Fallback  bool   `json:"fallback"`
	Reason    string `json:"reason,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
	CreatedAt string `json:"created_at"`
}

func run(store *corpus.Store, recorder *telemetry.Store, scope string, last int, jsonOut bool) error {
	ctx := context.Background()

	sources, err := store.ListSources(ctx, scope)
	if err != nil {
		return err
	}
	counts, err := store.CountByCategory(ctx, scope)
	if err != nil {
		return err
	}
	recent, err := recorder.Recent(ctx, last)
	if err != nil {
		return err
	}
	rates, err := recorder.FallbackRate(ctx)
	if err != nil {
		return err
	}

	rep := report{
		Sources:      sources,
		ChunkCounts:  counts,
		FallbackRate: rates,
	}
	for _, o := range recent {
		rep.Outcomes = append(rep.Outcomes, outcomeRow{
			Task:      string(o.Meta.TaskType),
			Model:     o.Meta.ModelUsed,
			Fallback:  o.Meta.FallbackTriggered,
			Reason:    o.Meta.FallbackReason,
			LatencyMs: o.Meta.LatencyMs,
			CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Printf("Sources (%d):\n", len(rep.Sources))
	for _, s := range rep.Sources {
		state := "off"
		if s.Enabled {
			state = "on"
		}
		fmt.Printf("  %-36s %-24s %-8s %s\n", s.ID, s.Name, s.Kind, state)
	}

	fmt.Println("Chunks by category:")
	for cat, n := range rep.ChunkCounts {
		fmt.Printf("  %-20s %d\n", cat, n)
	}

	fmt.Printf("Recent routing outcomes (%d):\n", len(rep.Outcomes))
	for _, o := range rep.Outcomes {
		mark := " "
		if o.Fallback {
			mark = "!"
		}
		fmt.Printf("  %s %-16s %-14s %5dms  %s\n", mark, o.Task, o.Model, o.LatencyMs, o.Reason)
	}

	if len(rep.FallbackRate) > 0 {
		fmt.Println("Fallback rate by task:")
		for task, rate := range rep.FallbackRate {
			fmt.Printf("  %-16s %.0f%%\n", task, rate*100)
		}
	}
	return nil
}

// #endregion report
