package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ads-insights-go/internal/config"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/pipeline"
)

// Save writes the run outputs: insights.json, creatives.json, report.md in
// the reports directory and run_log.json (full state minus the record
// collection) in the logs directory.
func Save(st *pipeline.State, cfg config.Config, runID string) error {
	log := logger.New().WithField("component", "report").WithField("run_id", runID)

	if err := os.MkdirAll(cfg.Paths.Reports, 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Paths.Logs, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}

	if err := writeJSON(filepath.Join(cfg.Paths.Reports, "insights.json"), emptyAsList(st.ValidatedInsights)); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(cfg.Paths.Reports, "creatives.json"), emptyAsList(st.CreativeRecommendations)); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(cfg.Paths.Reports, "report.md"), []byte(Render(st)), 0o644); err != nil {
		return fmt.Errorf("write report.md: %w", err)
	}

	runLog := struct {
		RunID      string          `json:"run_id"`
		FinishedAt time.Time       `json:"finished_at"`
		State      *pipeline.State `json:"state"`
	}{RunID: runID, FinishedAt: time.Now().UTC(), State: st}
	if err := writeJSON(filepath.Join(cfg.Paths.Logs, "run_log.json"), runLog); err != nil {
		return err
	}

	log.WithField("reports_dir", cfg.Paths.Reports).Info("outputs saved")
	return nil
}

// Render produces the human-readable Markdown report. The absence of
// validated insights is a valid terminal state, rendered as such.
func Render(st *pipeline.State) string {
	var b strings.Builder
	b.WriteString("# Ads Performance Analysis Report\n\n")
	fmt.Fprintf(&b, "**Query:** %s\n\n", st.UserQuery)

	b.WriteString("## 1. Validated Insights\n\n")
	if len(st.ValidatedInsights) == 0 {
		b.WriteString("No significant insights were quantitatively validated.\n\n")
	} else {
		for _, ins := range st.ValidatedInsights {
			fmt.Fprintf(&b, "-   **Hypothesis:** %s\n", ins.Hypothesis)
			fmt.Fprintf(&b, "    -   **Confidence:** %.0f%%\n", ins.Confidence*100)
			fmt.Fprintf(&b, "    -   **Evidence:** %s\n\n", ins.Evidence)
		}
	}

	b.WriteString("## 2. Creative Recommendations\n\n")
	if len(st.CreativeRecommendations) == 0 {
		b.WriteString("No creative recommendations were generated.\n\n")
	} else {
		for _, rec := range st.CreativeRecommendations {
			fmt.Fprintf(&b, "### For Campaign: %s\n\n", rec.CampaignName)
			b.WriteString("**New Headlines:**\n")
			for _, h := range rec.NewHeadlines {
				fmt.Fprintf(&b, "-   %s\n", h)
			}
			b.WriteString("\n**New Messages:**\n")
			for _, m := range rec.NewMessages {
				fmt.Fprintf(&b, "-   %s\n", m)
			}
			if len(rec.NewCTAs) > 0 {
				b.WriteString("\n**New CTAs:**\n")
				for _, c := range rec.NewCTAs {
					fmt.Fprintf(&b, "-   %s\n", c)
				}
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// emptyAsList keeps the persisted arrays as [] instead of null.
func emptyAsList[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
