package types

import "time"

// AdRecord is one normalized row of daily ad performance data.
// ROAS and CTR are recomputed at load time; values supplied by the
// source file are never trusted.
type AdRecord struct {
	Date            time.Time `json:"date"`
	CampaignName    string    `json:"campaign_name"`
	AudienceType    string    `json:"audience_type"`
	Spend           float64   `json:"spend"`
	Impressions     float64   `json:"impressions"`
	Clicks          float64   `json:"clicks"`
	Purchases       float64   `json:"purchases"`
	Revenue         float64   `json:"revenue"`
	CreativeMessage string    `json:"creative_message,omitempty"`
	ROAS            float64   `json:"roas"`
	CTR             float64   `json:"ctr"`
}

// Plan is the step list produced by the planner collaborator.
type Plan struct {
	Steps []string `json:"steps"`
}

// Hypothesis is a candidate explanation for a performance change,
// produced by the insight collaborator. Confidence is the generator's
// initial estimate.
type Hypothesis struct {
	Hypothesis              string  `json:"hypothesis"`
	Confidence              float64 `json:"confidence"`
	DataNeededForValidation string  `json:"data_needed_for_validation"`
}

type HypothesisList struct {
	Hypotheses []Hypothesis `json:"hypotheses"`
}

// ValidatedInsight is the evaluator's verdict on one hypothesis. It is a
// new value; the input Hypothesis is never mutated.
type ValidatedInsight struct {
	Hypothesis string  `json:"hypothesis"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

// CreativeSet holds new creative recommendations for a single campaign.
type CreativeSet struct {
	CampaignName string   `json:"campaign_name"`
	NewHeadlines []string `json:"new_headlines"`
	NewMessages  []string `json:"new_messages"`
	NewCTAs      []string `json:"new_ctas"`
}

type CreativeList struct {
	Recommendations []CreativeSet `json:"recommendations"`
}
