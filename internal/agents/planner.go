package agents

import (
	"context"
	"fmt"

	"ads-insights-go/internal/llm"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/types"
)

const plannerPromptFile = "planner_prompt.md"

// Planner asks the model for the ordered diagnosis steps.
type Planner struct {
	Client    llm.Client
	PromptDir string
}

func (p *Planner) Plan(ctx context.Context, query string) (types.Plan, error) {
	log := logger.New().WithField("component", "agents.planner")

	prompt, err := loadPrompt(p.PromptDir, plannerPromptFile, map[string]string{
		"query": query,
	})
	if err != nil {
		return types.Plan{}, err
	}

	plan, err := llm.Generate[types.Plan](ctx, p.Client, prompt)
	if err != nil {
		return types.Plan{}, fmt.Errorf("planner: %w", err)
	}
	if len(plan.Steps) == 0 {
		return types.Plan{}, fmt.Errorf("planner: response contained no steps")
	}
	log.WithField("steps", len(plan.Steps)).Info("plan generated")
	return plan, nil
}
