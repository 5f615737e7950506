package agents

import (
	"context"
	"fmt"

	"ads-insights-go/internal/llm"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/types"
)

const insightPromptFile = "insight_prompt.md"

// Insight turns the data summary into falsifiable hypotheses. An empty
// hypothesis list is a valid outcome on a no-signal summary; a payload that
// does not decode is not.
type Insight struct {
	Client    llm.Client
	PromptDir string
}

func (a *Insight) Hypotheses(ctx context.Context, query, dataSummary string) ([]types.Hypothesis, error) {
	log := logger.New().WithField("component", "agents.insight")

	prompt, err := loadPrompt(a.PromptDir, insightPromptFile, map[string]string{
		"query":        query,
		"data_summary": dataSummary,
	})
	if err != nil {
		return nil, err
	}

	resp, err := llm.Generate[types.HypothesisList](ctx, a.Client, prompt)
	if err != nil {
		return nil, fmt.Errorf("insight generation: %w", err)
	}
	log.WithField("hypotheses", len(resp.Hypotheses)).Info("hypotheses generated")
	return resp.Hypotheses, nil
}
