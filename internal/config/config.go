package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Paths struct {
	Data    string `yaml:"data"`
	Prompts string `yaml:"prompts"`
	Reports string `yaml:"reports"`
	Logs    string `yaml:"logs"`
}

// Analysis holds every threshold the pipeline applies. The decline and
// volume gates used to live as literals inside the validation rules; they
// are all configuration now.
type Analysis struct {
	MinConfidenceThreshold float64 `yaml:"min_confidence_threshold"`
	DeclinerTopN           int     `yaml:"decliner_top_n"`
	CreativeGenTopN        int     `yaml:"creative_gen_top_n"`
	MinCampaignSpend       float64 `yaml:"min_campaign_spend"`
	MinAudienceImpressions float64 `yaml:"min_audience_impressions"`
	CampaignROASDropPct    float64 `yaml:"campaign_roas_drop_pct"`
	AudienceCTRDropPct     float64 `yaml:"audience_ctr_drop_pct"`
}

type LLM struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

type Config struct {
	Paths    Paths    `yaml:"paths"`
	Analysis Analysis `yaml:"analysis"`
	LLM      LLM      `yaml:"llm"`
}

// Load reads the YAML config file. A missing file is a fatal startup error
// for the caller; zero-value fields fall back to defaults.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the built-in configuration, used by tests and by callers
// that only need the analysis thresholds.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Paths.Data == "" {
		c.Paths.Data = "data/ads_data.csv"
	}
	if c.Paths.Prompts == "" {
		c.Paths.Prompts = "prompts/"
	}
	if c.Paths.Reports == "" {
		c.Paths.Reports = "reports/"
	}
	if c.Paths.Logs == "" {
		c.Paths.Logs = "logs/"
	}
	a := &c.Analysis
	if a.MinConfidenceThreshold == 0 {
		a.MinConfidenceThreshold = 0.7
	}
	if a.DeclinerTopN == 0 {
		a.DeclinerTopN = 3
	}
	if a.CreativeGenTopN == 0 {
		a.CreativeGenTopN = 3
	}
	if a.MinCampaignSpend == 0 {
		a.MinCampaignSpend = 50
	}
	if a.MinAudienceImpressions == 0 {
		a.MinAudienceImpressions = 1000
	}
	if a.CampaignROASDropPct == 0 {
		a.CampaignROASDropPct = -0.20
	}
	if a.AudienceCTRDropPct == 0 {
		a.AudienceCTRDropPct = -0.15
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.0-flash"
	}
}
