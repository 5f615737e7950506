package pipeline

import (
	"context"
	"fmt"

	"ads-insights-go/internal/agents"
	"ads-insights-go/internal/config"
	"ads-insights-go/internal/dataset"
	"ads-insights-go/internal/evaluator"
	"ads-insights-go/internal/kpi"
	"ads-insights-go/internal/llm"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/types"
)

// State is the single shared object threaded through the stages. Exactly
// one stage owns it at a time; stages run sequentially and mutate only
// their own fields.
type State struct {
	UserQuery               string                   `json:"user_query"`
	Plan                    []string                 `json:"plan"`
	FullData                []types.AdRecord         `json:"-"`
	DataSummary             string                   `json:"data_summary"`
	Hypotheses              []types.Hypothesis       `json:"hypotheses"`
	ValidatedInsights       []types.ValidatedInsight `json:"validated_insights"`
	EvaluationLog           []types.ValidatedInsight `json:"evaluation_log"`
	LowCTRCampaigns         []string                 `json:"low_ctr_campaigns"`
	CreativeRecommendations []types.CreativeSet      `json:"creative_recommendations"`
	Log                     []string                 `json:"log"`
}

func (s *State) logf(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}

// Runner executes the fixed stage order:
// plan -> load -> summarize -> insights -> evaluate -> (creatives | finish).
// The branch after evaluation is the only conditional edge.
type Runner struct {
	Config   config.Config
	Client   llm.Client
	planner  *agents.Planner
	insight  *agents.Insight
	creative *agents.Creative
	eval     *evaluator.Evaluator
}

func NewRunner(cfg config.Config, client llm.Client) *Runner {
	return &Runner{
		Config:   cfg,
		Client:   client,
		planner:  &agents.Planner{Client: client, PromptDir: cfg.Paths.Prompts},
		insight:  &agents.Insight{Client: client, PromptDir: cfg.Paths.Prompts},
		creative: &agents.Creative{Client: client, PromptDir: cfg.Paths.Prompts},
		eval: evaluator.New(evaluator.Config{
			MinConfidence:          cfg.Analysis.MinConfidenceThreshold,
			MinCampaignSpend:       cfg.Analysis.MinCampaignSpend,
			MinAudienceImpressions: cfg.Analysis.MinAudienceImpressions,
			CampaignROASDropPct:    cfg.Analysis.CampaignROASDropPct,
			AudienceCTRDropPct:     cfg.Analysis.AudienceCTRDropPct,
		}),
	}
}

// Run executes the pipeline for one query. Stage errors are fatal and abort
// the run; a no-signal outcome (empty hypotheses or no validated insights)
// is not an error.
func (r *Runner) Run(ctx context.Context, query string) (*State, error) {
	log := logger.New().WithField("component", "pipeline")
	st := &State{UserQuery: query}

	type stage struct {
		name string
		fn   func(context.Context, *State) error
	}
	stages := []stage{
		{"planner", r.planStage},
		{"load_data", r.loadStage},
		{"summarize_data", r.summarizeStage},
		{"generate_insights", r.insightStage},
		{"evaluate_insights", r.evaluateStage},
	}
	for _, s := range stages {
		log.WithField("stage", s.name).Info("executing stage")
		if err := s.fn(ctx, st); err != nil {
			st.logf("Stage %s failed: %v", s.name, err)
			return st, fmt.Errorf("stage %s: %w", s.name, err)
		}
	}

	// Decision node: creatives only make sense with validated insights.
	if len(st.ValidatedInsights) == 0 {
		log.Info("no validated insights, finishing run")
		st.logf("Decision: No validated insights. Finishing run.")
		return st, nil
	}
	st.logf("Decision: Validated insights found. Proceeding to creative generation.")
	log.WithField("stage", "generate_creatives").Info("executing stage")
	if err := r.creativeStage(ctx, st); err != nil {
		st.logf("Stage generate_creatives failed: %v", err)
		return st, fmt.Errorf("stage generate_creatives: %w", err)
	}
	return st, nil
}

func (r *Runner) planStage(ctx context.Context, st *State) error {
	st.logf("Planner: Generating plan.")
	plan, err := r.planner.Plan(ctx, st.UserQuery)
	if err != nil {
		return err
	}
	st.Plan = plan.Steps
	return nil
}

func (r *Runner) loadStage(_ context.Context, st *State) error {
	st.logf("Data Agent: Loading data.")
	records, err := dataset.Load(r.Config.Paths.Data)
	if err != nil {
		return err
	}
	st.FullData = records
	st.logf("Data Agent: Loaded %d rows.", len(records))
	return nil
}

func (r *Runner) summarizeStage(_ context.Context, st *State) error {
	st.logf("Data Agent: Summarizing data for insights.")
	summary, lowCTR := dataset.Summarize(st.UserQuery, st.FullData, r.thresholds())
	st.DataSummary = summary
	st.LowCTRCampaigns = lowCTR
	return nil
}

func (r *Runner) insightStage(ctx context.Context, st *State) error {
	st.logf("Insight Agent: Generating hypotheses.")
	hyps, err := r.insight.Hypotheses(ctx, st.UserQuery, st.DataSummary)
	if err != nil {
		return err
	}
	st.Hypotheses = hyps
	return nil
}

func (r *Runner) evaluateStage(_ context.Context, st *State) error {
	st.logf("Evaluator Agent: Validating hypotheses.")
	validated, allVerdicts := r.eval.Evaluate(st.FullData, st.Hypotheses)
	st.ValidatedInsights = validated
	st.EvaluationLog = allVerdicts
	st.logf("Evaluator Agent: Validated %d of %d hypotheses.", len(validated), len(st.Hypotheses))
	return nil
}

func (r *Runner) creativeStage(ctx context.Context, st *State) error {
	st.logf("Creative Agent: Generating recommendations.")
	recs, err := r.creative.Recommend(ctx, st.ValidatedInsights, st.LowCTRCampaigns, st.FullData)
	if err != nil {
		return err
	}
	st.CreativeRecommendations = recs
	return nil
}

func (r *Runner) thresholds() kpi.Thresholds {
	return kpi.Thresholds{
		DeclinerTopN:           r.Config.Analysis.DeclinerTopN,
		CreativeGenTopN:        r.Config.Analysis.CreativeGenTopN,
		MinCampaignSpend:       r.Config.Analysis.MinCampaignSpend,
		MinAudienceImpressions: r.Config.Analysis.MinAudienceImpressions,
	}
}
