package llm

import (
	"context"
	"strings"
)

// Mock is the deterministic offline client, enabled with USE_MOCK_LLM=true.
// Responses are keyed by a marker substring expected in the prompt; the
// first matching rule wins.
type Mock struct {
	Responses map[string]string
	Fallback  string
}

func (m *Mock) Complete(_ context.Context, prompt string) (string, error) {
	for marker, resp := range m.Responses {
		if strings.Contains(prompt, marker) {
			return resp, nil
		}
	}
	return m.Fallback, nil
}

// NewDemoMock covers all three collaborators with plausible canned output,
// enough to run the full pipeline against a real dataset offline.
func NewDemoMock() *Mock {
	return &Mock{
		Responses: map[string]string{
			"performance analyst planning": `{"steps": [
				"Load and normalize the ads dataset",
				"Compare trailing 7 days against the preceding 7 days",
				"Generate hypotheses for the worst decliners",
				"Validate each hypothesis against the aggregated KPIs",
				"Recommend creative refreshes for low-CTR campaigns"
			]}`,
			"generate hypotheses": `{"hypotheses": [
				{"hypothesis": "Campaign 'Campaign_A' ROAS dropped due to rising CPC.",
				 "confidence": 0.5,
				 "data_needed_for_validation": "ROAS trend for Campaign_A across both periods"},
				{"hypothesis": "Audience 'Audience_X' CTR decline suggests creative fatigue.",
				 "confidence": 0.5,
				 "data_needed_for_validation": "CTR trend for Audience_X across both periods"}
			]}`,
			"creative strategist": `{"recommendations": [
				{"campaign_name": "Campaign_A",
				 "new_headlines": ["Fresh angle, same offer", "Last chance this season"],
				 "new_messages": ["Lead with the discount, not the brand."],
				 "new_ctas": ["Shop Now"]}
			]}`,
		},
		Fallback: `{}`,
	}
}
