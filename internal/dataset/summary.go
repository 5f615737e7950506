package dataset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ads-insights-go/internal/kpi"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/types"
)

// Summarize compares the trailing 7 days against the preceding 7 days and
// renders the findings as the fixed-section text consumed by the insight
// collaborator. Empty-window conditions are rendered as explicit summary
// text, not returned as errors, so the pipeline still completes on a
// no-signal run. The second return value is the low-CTR campaign list that
// feeds creative regeneration.
func Summarize(query string, records []types.AdRecord, t kpi.Thresholds) (string, []string) {
	log := logger.New().WithField("component", "dataset.summary")

	cmp, err := kpi.Compare(records, t)
	switch {
	case errors.Is(err, kpi.ErrNoData):
		return "Error: No data loaded.", nil
	case errors.Is(err, kpi.ErrNoCurrentData):
		return fmt.Sprintf("Error: No data found for the current period (%s to %s).",
			day(cmp.CurrentWindow.Start), day(cmp.CurrentWindow.End)), nil
	case errors.Is(err, kpi.ErrNoPreviousData):
		return fmt.Sprintf("Error: No data found for the previous period (%s to %s) to compare against.",
			day(cmp.PreviousWindow.Start), day(cmp.PreviousWindow.End)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analysis for query: '%s'\n", query)
	fmt.Fprintf(&b, "Period Analyzed: %s to %s (vs. %s to %s)\n\n",
		day(cmp.CurrentWindow.Start), day(cmp.CurrentWindow.End),
		day(cmp.PreviousWindow.Start), day(cmp.PreviousWindow.End))

	b.WriteString("--- Overall Performance ---\n")
	b.WriteString(formatOverall(cmp.Current, cmp.Previous))

	b.WriteString("\n\n--- Top Campaign ROAS Decliners ---\n")
	if len(cmp.CampaignDecliners) == 0 {
		b.WriteString("No significant campaign ROAS declines found.")
	} else {
		for i, s := range cmp.CampaignDecliners {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- **%s**: ROAS dropped by **%.1f%%** (from %.2f to %.2f). Spend: $%.0f. CTR: %.4f.",
				s.Name, s.ChangePct*100, s.Previous.ROAS, s.Current.ROAS, s.Current.Spend, s.Current.CTR)
		}
	}

	b.WriteString("\n\n--- Top Audience CTR Decliners (Potential Fatigue) ---\n")
	if len(cmp.AudienceDecliners) == 0 {
		b.WriteString("No significant audience CTR declines found.")
	} else {
		for i, s := range cmp.AudienceDecliners {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- **%s**: CTR dropped by **%.1f%%** (from %.4f to %.4f). Spend: $%.0f. ROAS: %.2f.",
				s.Name, s.ChangePct*100, s.Previous.CTR, s.Current.CTR, s.Current.Spend, s.Current.ROAS)
		}
	}

	b.WriteString("\n\n--- Low-CTR Campaigns Identified for Creative Review ---\n")
	b.WriteString(strings.Join(cmp.LowCTRCampaigns, ", "))

	log.WithField("low_ctr_campaigns", len(cmp.LowCTRCampaigns)).Info("summary generated")
	return b.String(), cmp.LowCTRCampaigns
}

func formatOverall(current, previous kpi.Vector) string {
	lines := []string{
		fmt.Sprintf("- **ROAS**:    %.2f (vs %.2f)%s", current.ROAS, previous.ROAS, pctChange(current.ROAS, previous.ROAS)),
		fmt.Sprintf("- **Revenue**: $%.0f (vs $%.0f)%s", current.Revenue, previous.Revenue, pctChange(current.Revenue, previous.Revenue)),
		fmt.Sprintf("- **Spend**:   $%.0f (vs $%.0f)%s", current.Spend, previous.Spend, pctChange(current.Spend, previous.Spend)),
		fmt.Sprintf("- **CTR**:     %.4f (vs %.4f)%s", current.CTR, previous.CTR, pctChange(current.CTR, previous.CTR)),
		fmt.Sprintf("- **CR (Conv. Rate)**: %.4f (vs %.4f)%s", current.CR, previous.CR, pctChange(current.CR, previous.CR)),
	}
	return strings.Join(lines, "\n")
}

func pctChange(current, previous float64) string {
	if previous == 0 {
		return " (N/A)"
	}
	return fmt.Sprintf(" (%+.1f%%)", (current-previous)/previous*100)
}

func day(t time.Time) string {
	return t.Format(dateLayout)
}
