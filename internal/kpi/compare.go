package kpi

import (
	"sort"

	"ads-insights-go/internal/types"
)

// Thresholds carries the ranking and minimum-volume knobs. All of them come
// from configuration; see config.Analysis.
type Thresholds struct {
	DeclinerTopN           int
	CreativeGenTopN        int
	MinCampaignSpend       float64
	MinAudienceImpressions float64
}

// SegmentComparison holds the two window aggregates for one segment value
// plus the relative change on the segment's primary metric (ROAS for
// campaigns, CTR for audiences). HasBaseline is false when the previous
// period's primary metric is zero, in which case ChangePct is meaningless
// and the segment is excluded from delta ranking.
type SegmentComparison struct {
	Name        string  `json:"name"`
	Current     Vector  `json:"current"`
	Previous    Vector  `json:"previous"`
	ChangePct   float64 `json:"change_pct"`
	HasBaseline bool    `json:"has_baseline"`
}

// Comparison is the full period-over-period result consumed by the summary
// formatter and the report layer.
type Comparison struct {
	CurrentWindow     Window              `json:"-"`
	PreviousWindow    Window              `json:"-"`
	Current           Vector              `json:"current"`
	Previous          Vector              `json:"previous"`
	CampaignDecliners []SegmentComparison `json:"campaign_decliners"`
	AudienceDecliners []SegmentComparison `json:"audience_decliners"`
	LowCTRCampaigns   []string            `json:"low_ctr_campaigns"`
}

// Compare derives the two windows, aggregates overall and per-segment KPIs,
// ranks decliners, and picks the low-CTR campaigns for creative review.
// Empty-window conditions surface as the SplitWindows sentinel errors.
func Compare(records []types.AdRecord, t Thresholds) (Comparison, error) {
	current, previous, curWin, prevWin, err := SplitWindows(records)
	if err != nil {
		return Comparison{CurrentWindow: curWin, PreviousWindow: prevWin}, err
	}

	cmp := Comparison{
		CurrentWindow:  curWin,
		PreviousWindow: prevWin,
		Current:        Aggregate(current),
		Previous:       Aggregate(previous),
	}

	campaigns := compareSegments(current, previous,
		func(r types.AdRecord) string { return r.CampaignName },
		func(v Vector) float64 { return v.ROAS })
	audiences := compareSegments(current, previous,
		func(r types.AdRecord) string { return r.AudienceType },
		func(v Vector) float64 { return v.CTR })

	cmp.CampaignDecliners = rankDecliners(campaigns, t.DeclinerTopN,
		func(s SegmentComparison) bool { return s.Current.Spend > t.MinCampaignSpend })
	cmp.AudienceDecliners = rankDecliners(audiences, t.DeclinerTopN,
		func(s SegmentComparison) bool { return s.Current.Impressions > t.MinAudienceImpressions })
	cmp.LowCTRCampaigns = lowCTRCampaigns(current, t)

	return cmp, nil
}

// compareSegments partitions both windows by key, aggregates each partition,
// and outer-joins by segment name. A segment seen in only one window gets a
// zero Vector for the missing side.
func compareSegments(current, previous []types.AdRecord, key func(types.AdRecord) string, metric func(Vector) float64) []SegmentComparison {
	curAgg := aggregateBy(current, key)
	prevAgg := aggregateBy(previous, key)

	names := map[string]struct{}{}
	for n := range curAgg {
		names[n] = struct{}{}
	}
	for n := range prevAgg {
		names[n] = struct{}{}
	}

	out := make([]SegmentComparison, 0, len(names))
	for n := range names {
		s := SegmentComparison{Name: n, Current: curAgg[n], Previous: prevAgg[n]}
		if prev := metric(s.Previous); prev != 0 {
			s.HasBaseline = true
			s.ChangePct = (metric(s.Current) - prev) / prev
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func aggregateBy(records []types.AdRecord, key func(types.AdRecord) string) map[string]Vector {
	groups := map[string][]types.AdRecord{}
	for _, r := range records {
		k := key(r)
		groups[k] = append(groups[k], r)
	}
	out := make(map[string]Vector, len(groups))
	for k, g := range groups {
		out[k] = Aggregate(g)
	}
	return out
}

// rankDecliners applies the volume gate, drops segments without a valid
// baseline, and returns the topN worst segments ascending by ChangePct.
func rankDecliners(segments []SegmentComparison, topN int, volumeOK func(SegmentComparison) bool) []SegmentComparison {
	ranked := make([]SegmentComparison, 0, len(segments))
	for _, s := range segments {
		if !s.HasBaseline || !volumeOK(s) {
			continue
		}
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ChangePct != ranked[j].ChangePct {
			return ranked[i].ChangePct < ranked[j].ChangePct
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// lowCTRCampaigns ranks current-period campaigns by raw CTR ascending,
// keeping only those with enough impressions to be significant. This feeds
// creative regeneration and is independent of the decline ranking.
func lowCTRCampaigns(current []types.AdRecord, t Thresholds) []string {
	byCampaign := aggregateBy(current, func(r types.AdRecord) string { return r.CampaignName })

	type entry struct {
		name string
		v    Vector
	}
	var significant []entry
	for n, v := range byCampaign {
		if v.Impressions > t.MinAudienceImpressions {
			significant = append(significant, entry{n, v})
		}
	}
	sort.Slice(significant, func(i, j int) bool {
		if significant[i].v.CTR != significant[j].v.CTR {
			return significant[i].v.CTR < significant[j].v.CTR
		}
		return significant[i].name < significant[j].name
	})

	out := []string{}
	for i := 0; i < len(significant) && i < t.CreativeGenTopN; i++ {
		out = append(out, significant[i].name)
	}
	return out
}
