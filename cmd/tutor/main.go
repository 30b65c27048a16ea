package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mwestra/examtutor/internal/config"
	"github.com/mwestra/examtutor/internal/corpus"
	"github.com/mwestra/examtutor/internal/engine"
	"github.com/mwestra/examtutor/internal/prompt"
	"github.com/mwestra/examtutor/internal/provider"
	"github.com/mwestra/examtutor/internal/retrieval"
	"github.com/mwestra/examtutor/internal/router"
	"github.com/mwestra/examtutor/internal/telemetry"
	"github.com/mwestra/examtutor/internal/tokenize"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	store, err := corpus.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("open corpus store: %v", err)
	}
	defer store.Close()

	recorder, err := telemetry.NewStore(store.DB())
	if err != nil {
		log.Fatalf("open telemetry: %v", err)
	}

	mc, managed, err := buildModels(cfg)
	if err != nil {
		log.Fatalf("provider: %v", err)
	}

	rt := router.NewRouter(managed, router.DefaultConfig(), logger)
	var expander *tokenize.Expander
	if managed != nil {
		expander = tokenize.NewExpander(managed, tokenize.DefaultExpandConfig())
	}

	eng := engine.New(store, retrieval.NewEngine(retrieval.DefaultConfig(), logger), rt, engine.Options{
		Expander: expander,
		Recorder: recorder,
		Logger:   logger,
	})

	fmt.Println("Exam tutor ready.")
	fmt.Printf("  DB: %s | Scope: %s | Fast: %s | Smart: %s\n",
		cfg.DBPath, cfg.ScopeID, cfg.FastModel, cfg.SmartModel)
	fmt.Println("Ask a question (or 'quit' to exit):")

	gen := prompt.GenerationContext{ExpandQuery: cfg.ExpandQuery, DebugRetrieval: cfg.Debug}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "quit" || question == "exit" {
			break
		}

		ctx := context.Background()
		fa, err := eng.AnswerStream(ctx, cfg.ScopeID, "", question, mc, gen, func(delta string) {
			fmt.Print(delta)
		})
		fmt.Println()
		if err != nil {
			log.Printf("answer error: %v", err)
			continue
		}
		if fa.NoMaterial {
			fmt.Println("(no study material matched — upload or enable sources first)")
			continue
		}

		for _, c := range fa.Citations {
			year := ""
			if c.SourceYear != "" {
				year = " (" + c.SourceYear + ")"
			}
			fmt.Printf("  [%s] %s%s — %s\n", c.Importance, c.SourceName, year, c.Category)
		}
		fmt.Printf("[model=%s fallback=%v confidence=%s exam=%s/%d latency=%dms]\n",
			fa.Routing.ModelUsed, fa.Routing.FallbackTriggered, fa.Confidence,
			fa.ExamLikelihood.Label, fa.ExamLikelihood.Score, fa.Routing.LatencyMs)
	}
}

// #endregion main

// #region models
// buildModels wires the provider stack from config. A custom endpoint
// bypasses tiering; otherwise the managed provider serves both tiers.
func buildModels(cfg config.Config) (router.ModelConfig, provider.Provider, error) {
	mc := router.ModelConfig{
		FastModel:  cfg.FastModel,
		SmartModel: cfg.SmartModel,
	}
	if cfg.CustomEndpoint != "" {
		mc.Custom = provider.NewCustomProvider(cfg.CustomEndpoint)
		mc.CustomModel = cfg.CustomModel
		return mc, nil, nil
	}
	managed, err := provider.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return mc, nil, err
	}
	return mc, managed, nil
}

// #endregion models
