package agents

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ads-insights-go/internal/types"
)

type fakeClient struct {
	response   string
	lastPrompt string
}

func (c *fakeClient) Complete(_ context.Context, prompt string) (string, error) {
	c.lastPrompt = prompt
	return c.response, nil
}

func promptDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		plannerPromptFile:  "Plan for: {query}",
		insightPromptFile:  "Query: {query}\nSummary:\n{data_summary}",
		creativePromptFile: "Insights: {insights}\nCampaigns: {campaign_list}\nExisting:\n{existing_creatives}",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestPlannerSubstitutesQuery(t *testing.T) {
	c := &fakeClient{response: `{"steps": ["load data", "compare periods"]}`}
	p := &Planner{Client: c, PromptDir: promptDir(t)}

	plan, err := p.Plan(context.Background(), "why did ROAS drop?")
	require.NoError(t, err)
	assert.Equal(t, []string{"load data", "compare periods"}, plan.Steps)
	assert.Equal(t, "Plan for: why did ROAS drop?", c.lastPrompt)
}

func TestPlannerRejectsEmptySteps(t *testing.T) {
	c := &fakeClient{response: `{"steps": []}`}
	p := &Planner{Client: c, PromptDir: promptDir(t)}
	_, err := p.Plan(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no steps")
}

func TestPlannerMissingPromptFileIsFatal(t *testing.T) {
	p := &Planner{Client: &fakeClient{response: `{"steps": ["x"]}`}, PromptDir: t.TempDir()}
	_, err := p.Plan(context.Background(), "q")
	assert.Error(t, err)
}

func TestInsightDecodesHypotheses(t *testing.T) {
	c := &fakeClient{response: "```json\n" + `{"hypotheses": [
		{"hypothesis": "Campaign_A roas fell", "confidence": 0.6,
		 "data_needed_for_validation": "roas trend"}]}` + "\n```"}
	a := &Insight{Client: c, PromptDir: promptDir(t)}

	hyps, err := a.Hypotheses(context.Background(), "q", "the summary text")
	require.NoError(t, err)
	require.Len(t, hyps, 1)
	assert.Equal(t, "Campaign_A roas fell", hyps[0].Hypothesis)
	assert.Contains(t, c.lastPrompt, "the summary text")
}

func TestInsightEmptyListIsValid(t *testing.T) {
	c := &fakeClient{response: `{"hypotheses": []}`}
	a := &Insight{Client: c, PromptDir: promptDir(t)}
	hyps, err := a.Hypotheses(context.Background(), "q", "Error: No data loaded.")
	require.NoError(t, err)
	assert.Empty(t, hyps)
}

func TestInsightMalformedResponseIsFatal(t *testing.T) {
	c := &fakeClient{response: "the campaigns are probably tired"}
	a := &Insight{Client: c, PromptDir: promptDir(t)}
	_, err := a.Hypotheses(context.Background(), "q", "summary")
	assert.Error(t, err)
}

func TestCreativeSkipsWithoutLowCTRCampaigns(t *testing.T) {
	c := &fakeClient{response: `{"recommendations": []}`}
	a := &Creative{Client: c, PromptDir: promptDir(t)}
	recs, err := a.Recommend(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, recs)
	assert.Empty(t, c.lastPrompt)
}

func TestCreativeIncludesExistingCreatives(t *testing.T) {
	c := &fakeClient{response: `{"recommendations": [
		{"campaign_name": "Campaign_A",
		 "new_headlines": ["H1"], "new_messages": ["M1"], "new_ctas": ["C1"]}]}`}
	a := &Creative{Client: c, PromptDir: promptDir(t)}

	records := []types.AdRecord{
		{Date: time.Now(), CampaignName: "Campaign_A", CreativeMessage: "Old msg", CTR: 0.01},
		{Date: time.Now(), CampaignName: "Campaign_A", CreativeMessage: "Old msg", CTR: 0.01}, // duplicate collapses
		{Date: time.Now(), CampaignName: "Campaign_B", CreativeMessage: "Other", CTR: 0.05},
	}
	recs, err := a.Recommend(context.Background(), []types.ValidatedInsight{
		{Hypothesis: "h", Confidence: 0.9, Evidence: "CONFIRMED"},
	}, []string{"Campaign_A"}, records)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Campaign_A", recs[0].CampaignName)

	assert.Contains(t, c.lastPrompt, `Campaign_A | "Old msg" | ctr=0.0100`)
	assert.NotContains(t, c.lastPrompt, "Campaign_B")
	assert.Equal(t, 1, strings.Count(c.lastPrompt, "Old msg"))
}
