package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"ads-insights-go/internal/config"
	"ads-insights-go/internal/llm"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/pipeline"
	"ads-insights-go/internal/report"
)

func main() {
	_ = godotenv.Load() // loads .env

	if len(os.Args) < 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "Usage: analyst '<your_query>'")
		fmt.Fprintln(os.Stderr, "Example: analyst 'Analyze ROAS drop in last 7 days'")
		os.Exit(1)
	}
	query := os.Args[1]

	runID := logger.NewRunID()
	log := logger.New().WithRun(runID, query)
	log.WithField("service", "ads-insights-go").Info("starting analysis run")

	cfgPath := envOr("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.WithField("config_path", cfgPath).WithField("error", err.Error()).Fatal("failed to load config")
	}
	if v := os.Getenv("DATASET_PATH"); v != "" {
		cfg.Paths.Data = v
	}

	var client llm.Client
	if os.Getenv("USE_MOCK_LLM") == "true" {
		log.Info("mock LLM mode ON")
		client = llm.NewDemoMock()
	} else {
		client, err = llm.GatewayFromEnv(cfg.LLM.Model, cfg.LLM.Temperature)
		if err != nil {
			log.WithField("error", err.Error()).Fatal("llm gateway not configured")
		}
	}

	start := time.Now()
	runner := pipeline.NewRunner(cfg, client)
	state, runErr := runner.Run(context.Background(), query)
	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("pipeline finished")

	// Persist whatever the run produced, even on a partial failure, so the
	// run log always exists.
	if state != nil {
		if err := report.Save(state, cfg, runID); err != nil {
			log.WithField("error", err.Error()).Error("failed to save outputs")
		}
	}
	if runErr != nil {
		log.WithField("error", runErr.Error()).Fatal("analysis run failed")
	}

	log.WithField("validated_insights", len(state.ValidatedInsights)).
		WithField("creative_sets", len(state.CreativeRecommendations)).
		Info("analysis complete")
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
