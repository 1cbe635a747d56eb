// Package config loads the YAML configuration file: server and
// database settings, the simulated project/device fleet, analysis
// constants and the optional alert webhook.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Project struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Region string `yaml:"region"`
}

type Device struct {
	ID        string `yaml:"id"`
	ProjectID string `yaml:"project_id"`
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	Location  string `yaml:"location"`
	// Pattern selects the simulated trend shape: "stable", "rising" or
	// "inflection". Defaults to "stable".
	Pattern string `yaml:"pattern"`
}

type Analysis struct {
	WindowSize      int     `yaml:"window_size"`
	StabilityBand   float64 `yaml:"stability_band"`
	JumpThreshold   float64 `yaml:"jump_threshold"`
	BaselineDecay   float64 `yaml:"baseline_decay"`
	ForecastHorizon int     `yaml:"forecast_horizon"`
	DampingFloor    float64 `yaml:"damping_floor"`
	DampingStep     float64 `yaml:"damping_step"`
}

type Simulator struct {
	// Seed makes the generated fleet reproducible across restarts.
	Seed int64 `yaml:"seed"`
	// RefreshMinutes is how often device histories are regenerated and
	// re-analyzed.
	RefreshMinutes int `yaml:"refresh_minutes"`
}

// RefreshInterval returns the simulator refresh period.
func (s Simulator) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshMinutes) * time.Minute
}

type Alerting struct {
	// WebhookURL receives a JSON POST per detected inflection. Empty
	// disables webhook delivery; alerts are still stored.
	WebhookURL string `yaml:"webhook_url"`
}

type Config struct {
	Port      string    `yaml:"port"`
	DBPath    string    `yaml:"db_path"`
	Projects  []Project `yaml:"projects"`
	Devices   []Device  `yaml:"devices"`
	Analysis  Analysis  `yaml:"analysis"`
	Simulator Simulator `yaml:"simulator"`
	Alerting  Alerting  `yaml:"alerting"`
}

func Default() *Config {
	return &Config{
		Port:   "8080",
		DBPath: "data/pdwatch.db",
		Analysis: Analysis{
			WindowSize:      5,
			StabilityBand:   2.0,
			JumpThreshold:   6.0,
			BaselineDecay:   0.8,
			ForecastHorizon: 6,
			DampingFloor:    0.5,
			DampingStep:     0.1,
		},
		Simulator: Simulator{
			Seed:           1,
			RefreshMinutes: 10,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error: the defaults apply and the fleet stays empty until
// seeded elsewhere.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Analysis.WindowSize < 1 {
		return fmt.Errorf("analysis.window_size must be >= 1, got %d", c.Analysis.WindowSize)
	}
	if c.Analysis.ForecastHorizon < 1 {
		return fmt.Errorf("analysis.forecast_horizon must be >= 1, got %d", c.Analysis.ForecastHorizon)
	}
	if c.Analysis.BaselineDecay < 0 || c.Analysis.BaselineDecay > 1 {
		return fmt.Errorf("analysis.baseline_decay must be in [0, 1], got %v", c.Analysis.BaselineDecay)
	}
	if c.Simulator.RefreshMinutes < 1 {
		return fmt.Errorf("simulator.refresh_minutes must be >= 1, got %d", c.Simulator.RefreshMinutes)
	}

	projects := make(map[string]bool, len(c.Projects))
	for _, p := range c.Projects {
		if p.ID == "" {
			return fmt.Errorf("project with empty id")
		}
		projects[p.ID] = true
	}
	for i := range c.Devices {
		d := &c.Devices[i]
		if d.ID == "" {
			return fmt.Errorf("device with empty id")
		}
		if !projects[d.ProjectID] {
			return fmt.Errorf("device %s references unknown project %q", d.ID, d.ProjectID)
		}
		switch d.Pattern {
		case "":
			d.Pattern = "stable"
		case "stable", "rising", "inflection":
		default:
			return fmt.Errorf("device %s: unknown pattern %q", d.ID, d.Pattern)
		}
	}
	return nil
}
