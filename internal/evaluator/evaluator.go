package evaluator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"ads-insights-go/internal/kpi"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/types"
)

// defaultConfidence is assigned to every hypothesis before routing; only a
// confirmed rule raises it.
const (
	defaultConfidence   = 0.1
	confirmedConfidence = 0.9
)

// Config carries the evaluator thresholds, all sourced from configuration.
type Config struct {
	MinConfidence          float64
	MinCampaignSpend       float64
	MinAudienceImpressions float64
	CampaignROASDropPct    float64
	AudienceCTRDropPct     float64
}

// Evaluator re-validates free-text hypotheses against the same two
// comparison windows the summary was built from. Each hypothesis is routed
// to at most one rule by keyword match, the rule recomputes the segment
// KPIs, and a uniform confidence gate decides admission.
type Evaluator struct {
	cfg   Config
	rules []rule
}

// rule pairs a keyword predicate with a validation function. The rules are
// tried in order; the first match wins, so new rules are additive.
type rule struct {
	name     string
	match    func(lowerText string) bool
	entities func(d *windowed) []string
	validate func(e *Evaluator, entity string, d *windowed) (confidence float64, evidence string)
}

// windowed is the record split the rules evaluate against.
type windowed struct {
	current       []types.AdRecord
	previous      []types.AdRecord
	campaignNames []string
	audienceNames []string
}

func New(cfg Config) *Evaluator {
	e := &Evaluator{cfg: cfg}
	e.rules = []rule{
		{
			name: "campaign_roas_drop",
			match: func(t string) bool {
				return strings.Contains(t, "campaign") && strings.Contains(t, "roas")
			},
			entities: func(d *windowed) []string { return d.campaignNames },
			validate: (*Evaluator).validateCampaignROASDrop,
		},
		{
			name: "audience_ctr_fatigue",
			match: func(t string) bool {
				return (strings.Contains(t, "audience") && strings.Contains(t, "ctr")) ||
					strings.Contains(t, "fatigue")
			},
			entities: func(d *windowed) []string { return d.audienceNames },
			validate: (*Evaluator).validateAudienceCTRDrop,
		},
	}
	return e
}

// Evaluate produces a verdict for every hypothesis and returns the admitted
// subset plus the full verdict list for the run log. Input hypotheses are
// never mutated; a failure inside one rule evaluation never aborts the batch.
func (e *Evaluator) Evaluate(records []types.AdRecord, hypotheses []types.Hypothesis) (validated, all []types.ValidatedInsight) {
	log := logger.New().WithField("component", "evaluator")

	if len(records) == 0 {
		log.Warn("no data loaded, skipping evaluation")
		return nil, nil
	}

	current, previous, _, _, err := kpi.SplitWindows(records)
	if err != nil && !errors.Is(err, kpi.ErrNoCurrentData) && !errors.Is(err, kpi.ErrNoPreviousData) {
		log.WithError(err).Warn("could not derive comparison windows, skipping evaluation")
		return nil, nil
	}
	d := &windowed{
		current:       current,
		previous:      previous,
		campaignNames: uniqueNames(records, func(r types.AdRecord) string { return r.CampaignName }),
		audienceNames: uniqueNames(records, func(r types.AdRecord) string { return r.AudienceType }),
	}

	for _, h := range hypotheses {
		verdict := e.evaluateOne(h, d)
		all = append(all, verdict)
		if verdict.Confidence >= e.cfg.MinConfidence {
			validated = append(validated, verdict)
			log.WithField("hypothesis", h.Hypothesis).Info("hypothesis validated")
		} else {
			log.WithField("hypothesis", h.Hypothesis).WithField("evidence", verdict.Evidence).Info("hypothesis rejected")
		}
	}
	log.WithField("validated", len(validated)).WithField("total", len(hypotheses)).Info("evaluation complete")
	return validated, all
}

// evaluateOne routes a single hypothesis and applies its rule. Any panic
// during rule evaluation is captured as an error verdict for this
// hypothesis only.
func (e *Evaluator) evaluateOne(h types.Hypothesis, d *windowed) (verdict types.ValidatedInsight) {
	verdict = types.ValidatedInsight{
		Hypothesis: h.Hypothesis,
		Confidence: defaultConfidence,
		Evidence:   "NOT VALIDATED",
	}
	defer func() {
		if r := recover(); r != nil {
			verdict.Confidence = defaultConfidence
			verdict.Evidence = fmt.Sprintf("Error during validation: %v", r)
		}
	}()

	lower := strings.ToLower(h.Hypothesis)
	for _, rl := range e.rules {
		if !rl.match(lower) {
			continue
		}
		entity := firstEntity(h.Hypothesis, rl.entities(d))
		if entity == "" {
			verdict.Evidence = "REJECTED: could not identify a known entity in the hypothesis."
			return verdict
		}
		verdict.Confidence, verdict.Evidence = rl.validate(e, entity, d)
		return verdict
	}

	verdict.Evidence = "REJECTED: no validation rule matches this hypothesis type."
	return verdict
}

func (e *Evaluator) validateCampaignROASDrop(campaign string, d *windowed) (float64, string) {
	cur := kpi.Aggregate(filterBy(d.current, func(r types.AdRecord) bool { return r.CampaignName == campaign }))
	prev := kpi.Aggregate(filterBy(d.previous, func(r types.AdRecord) bool { return r.CampaignName == campaign }))

	if cur.Spend < e.cfg.MinCampaignSpend {
		return defaultConfidence, fmt.Sprintf(
			"REJECTED: Campaign '%s' has insufficient spend ($%.0f) in the current period.", campaign, cur.Spend)
	}
	if prev.ROAS == 0 {
		return defaultConfidence, fmt.Sprintf(
			"REJECTED: Campaign '%s' had 0 ROAS in the previous period.", campaign)
	}

	changePct := (cur.ROAS - prev.ROAS) / prev.ROAS
	if changePct < e.cfg.CampaignROASDropPct {
		return confirmedConfidence, fmt.Sprintf(
			"CONFIRMED: '%s' ROAS dropped by **%.1f%%** (from %.2f to %.2f).",
			campaign, changePct*100, prev.ROAS, cur.ROAS)
	}
	return defaultConfidence, fmt.Sprintf(
		"REJECTED: '%s' ROAS change (%.1f%%) was not a significant drop. (from %.2f to %.2f).",
		campaign, changePct*100, prev.ROAS, cur.ROAS)
}

func (e *Evaluator) validateAudienceCTRDrop(audience string, d *windowed) (float64, string) {
	cur := kpi.Aggregate(filterBy(d.current, func(r types.AdRecord) bool { return r.AudienceType == audience }))
	prev := kpi.Aggregate(filterBy(d.previous, func(r types.AdRecord) bool { return r.AudienceType == audience }))

	if cur.Impressions < e.cfg.MinAudienceImpressions {
		return defaultConfidence, fmt.Sprintf(
			"REJECTED: Audience '%s' has insufficient impressions (%.0f) in the current period.", audience, cur.Impressions)
	}
	if prev.CTR == 0 {
		return defaultConfidence, fmt.Sprintf(
			"REJECTED: Audience '%s' had 0 CTR in the previous period.", audience)
	}

	changePct := (cur.CTR - prev.CTR) / prev.CTR
	if changePct < e.cfg.AudienceCTRDropPct {
		return confirmedConfidence, fmt.Sprintf(
			"CONFIRMED: Audience '%s' CTR dropped by **%.1f%%** (from %.4f to %.4f), indicating fatigue.",
			audience, changePct*100, prev.CTR, cur.CTR)
	}
	return defaultConfidence, fmt.Sprintf(
		"REJECTED: Audience '%s' CTR change (%.1f%%) was not a significant drop. (from %.4f to %.4f).",
		audience, changePct*100, prev.CTR, cur.CTR)
}

// firstEntity returns the first known name that appears in the hypothesis
// text, case-insensitively. Names are scanned in sorted order so the match
// is deterministic.
func firstEntity(text string, names []string) string {
	lower := strings.ToLower(text)
	for _, n := range names {
		if n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return n
		}
	}
	return ""
}

func uniqueNames(records []types.AdRecord, key func(types.AdRecord) string) []string {
	set := map[string]struct{}{}
	for _, r := range records {
		set[key(r)] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func filterBy(records []types.AdRecord, keep func(types.AdRecord) bool) []types.AdRecord {
	var out []types.AdRecord
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
