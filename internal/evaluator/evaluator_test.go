package evaluator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ads-insights-go/internal/types"
)

func testConfig() Config {
	return Config{
		MinConfidence:          0.7,
		MinCampaignSpend:       50,
		MinAudienceImpressions: 1000,
		CampaignROASDropPct:    -0.20,
		AudienceCTRDropPct:     -0.15,
	}
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func rec(t *testing.T, date, campaign, audience string, spend, impressions, clicks, purchases, revenue float64) types.AdRecord {
	t.Helper()
	return types.AdRecord{
		Date:         day(t, date),
		CampaignName: campaign,
		AudienceType: audience,
		Spend:        spend,
		Impressions:  impressions,
		Clicks:       clicks,
		Purchases:    purchases,
		Revenue:      revenue,
	}
}

func hypo(text string) types.Hypothesis {
	return types.Hypothesis{
		Hypothesis:              text,
		Confidence:              0.5,
		DataNeededForValidation: "period-over-period KPI comparison",
	}
}

// Campaign_A: previous ROAS 4.0, current ROAS 3.0 with $200 current spend.
func roasDropFixture(t *testing.T) []types.AdRecord {
	t.Helper()
	return []types.AdRecord{
		rec(t, "2025-01-02", "Campaign_A", "Audience_X", 100, 2000, 100, 10, 400),
		rec(t, "2025-01-10", "Campaign_A", "Audience_X", 200, 2000, 90, 9, 600),
	}
}

func TestConfirmsCampaignROASDrop(t *testing.T) {
	e := New(testConfig())
	validated, all := e.Evaluate(roasDropFixture(t),
		[]types.Hypothesis{hypo("ROAS for campaign Campaign_A decreased due to rising costs.")})

	require.Len(t, all, 1)
	require.Len(t, validated, 1)
	assert.InDelta(t, 0.9, validated[0].Confidence, 1e-9)
	assert.Contains(t, validated[0].Evidence, "CONFIRMED")
	assert.Contains(t, validated[0].Evidence, "-25.0%")
	assert.Contains(t, validated[0].Evidence, "from 4.00 to 3.00")
}

func TestRejectsInsufficientSpend(t *testing.T) {
	records := []types.AdRecord{
		rec(t, "2025-01-02", "Campaign_A", "Audience_X", 100, 2000, 100, 10, 400),
		// same ROAS collapse, but only $10 of current spend
		rec(t, "2025-01-10", "Campaign_A", "Audience_X", 10, 2000, 90, 9, 30),
	}
	e := New(testConfig())
	validated, all := e.Evaluate(records,
		[]types.Hypothesis{hypo("ROAS for campaign Campaign_A dropped sharply.")})

	assert.Empty(t, validated)
	require.Len(t, all, 1)
	assert.InDelta(t, 0.1, all[0].Confidence, 1e-9)
	assert.Contains(t, all[0].Evidence, "insufficient spend")
	assert.Contains(t, all[0].Evidence, "$10")
}

func TestRejectsAudienceCTRDropUnderThreshold(t *testing.T) {
	// Audience_X: previous CTR 0.05, current CTR 0.045 (a 10% drop) with
	// 2000 current impressions. Under the 15% threshold: rejected.
	records := []types.AdRecord{
		rec(t, "2025-01-02", "Campaign_A", "Audience_X", 100, 2000, 100, 10, 400),
		rec(t, "2025-01-10", "Campaign_A", "Audience_X", 100, 2000, 90, 9, 400),
	}
	e := New(testConfig())
	validated, all := e.Evaluate(records,
		[]types.Hypothesis{hypo("Audience Audience_X CTR is declining, likely fatigue.")})

	assert.Empty(t, validated)
	require.Len(t, all, 1)
	assert.Contains(t, all[0].Evidence, "REJECTED")
	assert.Contains(t, all[0].Evidence, "-10.0%")
}

func TestConfirmsAudienceFatigue(t *testing.T) {
	// previous CTR 0.05, current CTR 0.03: a 40% drop
	records := []types.AdRecord{
		rec(t, "2025-01-02", "Campaign_A", "Audience_X", 100, 2000, 100, 10, 400),
		rec(t, "2025-01-10", "Campaign_A", "Audience_X", 100, 2000, 60, 6, 400),
	}
	e := New(testConfig())
	validated, _ := e.Evaluate(records,
		[]types.Hypothesis{hypo("Audience_X is showing creative fatigue.")})

	require.Len(t, validated, 1)
	assert.Contains(t, validated[0].Evidence, "indicating fatigue")
	assert.Contains(t, validated[0].Evidence, "-40.0%")
}

func TestRejectsWhenNoRuleMatches(t *testing.T) {
	e := New(testConfig())
	validated, all := e.Evaluate(roasDropFixture(t),
		[]types.Hypothesis{hypo("Overall spend increased across the account.")})

	assert.Empty(t, validated)
	require.Len(t, all, 1)
	assert.InDelta(t, 0.1, all[0].Confidence, 1e-9)
	assert.Contains(t, all[0].Evidence, "no validation rule")
}

func TestRejectsUnknownEntity(t *testing.T) {
	e := New(testConfig())
	validated, all := e.Evaluate(roasDropFixture(t),
		[]types.Hypothesis{hypo("ROAS for campaign Campaign_Nonexistent collapsed.")})

	assert.Empty(t, validated)
	require.Len(t, all, 1)
	assert.Contains(t, all[0].Evidence, "could not identify a known entity")
}

func TestRejectsZeroBaselineROAS(t *testing.T) {
	records := []types.AdRecord{
		// previous period: spend but zero revenue, so ROAS baseline is 0
		rec(t, "2025-01-02", "Campaign_A", "Audience_X", 100, 2000, 100, 0, 0),
		rec(t, "2025-01-10", "Campaign_A", "Audience_X", 200, 2000, 90, 9, 600),
	}
	e := New(testConfig())
	validated, all := e.Evaluate(records,
		[]types.Hypothesis{hypo("Campaign_A campaign ROAS fell off a cliff.")})

	assert.Empty(t, validated)
	require.Len(t, all, 1)
	assert.Contains(t, all[0].Evidence, "had 0 ROAS in the previous period")
}

func TestConfidenceGateIsUniform(t *testing.T) {
	cfg := testConfig()
	cfg.MinConfidence = 0.95 // above the confirmed confidence
	e := New(cfg)
	validated, all := e.Evaluate(roasDropFixture(t),
		[]types.Hypothesis{hypo("ROAS for campaign Campaign_A decreased.")})

	// confirmed with 0.9, but the gate still excludes it
	require.Len(t, all, 1)
	assert.Contains(t, all[0].Evidence, "CONFIRMED")
	assert.Empty(t, validated)
}

func TestInputHypothesesNotMutated(t *testing.T) {
	hyps := []types.Hypothesis{hypo("ROAS for campaign Campaign_A decreased.")}
	e := New(testConfig())
	_, _ = e.Evaluate(roasDropFixture(t), hyps)

	assert.InDelta(t, 0.5, hyps[0].Confidence, 1e-9)
	assert.Equal(t, "period-over-period KPI comparison", hyps[0].DataNeededForValidation)
}

func TestBatchSurvivesSingleFailure(t *testing.T) {
	e := New(testConfig())
	// One unroutable hypothesis in the middle must not affect the others.
	validated, all := e.Evaluate(roasDropFixture(t), []types.Hypothesis{
		hypo("ROAS for campaign Campaign_A decreased."),
		hypo(""),
		hypo("Audience_X fatigue is hurting engagement."),
	})

	assert.Len(t, all, 3)
	require.NotEmpty(t, validated)
	assert.Equal(t, "ROAS for campaign Campaign_A decreased.", validated[0].Hypothesis)
}

func TestNoDataSkipsEvaluation(t *testing.T) {
	e := New(testConfig())
	validated, all := e.Evaluate(nil, []types.Hypothesis{hypo("Campaign_A roas campaign drop")})
	assert.Empty(t, validated)
	assert.Empty(t, all)
}
