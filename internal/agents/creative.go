package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"ads-insights-go/internal/llm"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/types"
)

const creativePromptFile = "creative_prompt.md"

// Creative generates replacement headlines, messages and CTAs for the
// low-CTR campaigns, grounded in the validated insights and the campaigns'
// existing creative text.
type Creative struct {
	Client    llm.Client
	PromptDir string
}

func (a *Creative) Recommend(ctx context.Context, insights []types.ValidatedInsight, lowCTRCampaigns []string, records []types.AdRecord) ([]types.CreativeSet, error) {
	log := logger.New().WithField("component", "agents.creative")

	if len(lowCTRCampaigns) == 0 {
		log.Info("no low-CTR campaigns identified, skipping creative generation")
		return nil, nil
	}

	insightsJSON, _ := json.MarshalIndent(insights, "", "  ")
	prompt, err := loadPrompt(a.PromptDir, creativePromptFile, map[string]string{
		"insights":           string(insightsJSON),
		"campaign_list":      strings.Join(lowCTRCampaigns, ", "),
		"existing_creatives": existingCreatives(records, lowCTRCampaigns),
	})
	if err != nil {
		return nil, err
	}

	resp, err := llm.Generate[types.CreativeList](ctx, a.Client, prompt)
	if err != nil {
		return nil, fmt.Errorf("creative generation: %w", err)
	}
	log.WithField("creative_sets", len(resp.Recommendations)).Info("creative recommendations generated")
	return resp.Recommendations, nil
}

// existingCreatives lists each targeted campaign's distinct creative
// messages with their CTR, as context for the rewrite.
func existingCreatives(records []types.AdRecord, campaigns []string) string {
	targeted := map[string]bool{}
	for _, c := range campaigns {
		targeted[c] = true
	}

	seen := map[string]bool{}
	var lines []string
	for _, r := range records {
		if !targeted[r.CampaignName] || r.CreativeMessage == "" {
			continue
		}
		key := r.CampaignName + "|" + r.CreativeMessage
		if seen[key] {
			continue
		}
		seen[key] = true
		lines = append(lines, fmt.Sprintf("%s | %q | ctr=%.4f", r.CampaignName, r.CreativeMessage, r.CTR))
	}
	sort.Strings(lines)
	if len(lines) == 0 {
		return "(no existing creative text available)"
	}
	return strings.Join(lines, "\n")
}
