// Package gameconfig loads the room rules and background-loop settings from a
// YAML file, falling back to the built-in defaults for anything left unset.
package gameconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Rules bound the settings a host may choose when creating a room.
type Rules struct {
	TurnDurationMinSec int `yaml:"turn_duration_min_sec"`
	TurnDurationMaxSec int `yaml:"turn_duration_max_sec"`
	ParticipantsMin    int `yaml:"participants_min"`
	ParticipantsMax    int `yaml:"participants_max"`
	PickQuotaDefault   int `yaml:"pick_quota_default"`
	PickQuotaMax       int `yaml:"pick_quota_max"`
	AiringWindowSec    int `yaml:"airing_window_sec"`
}

// AiringWindow is the length of each item's rating window.
func (r Rules) AiringWindow() time.Duration {
	return time.Duration(r.AiringWindowSec) * time.Second
}

type Orchestrator struct {
	PollIntervalMs int `yaml:"poll_interval_ms"`
	Workers        int `yaml:"workers"`
}

func (o Orchestrator) PollInterval() time.Duration {
	return time.Duration(o.PollIntervalMs) * time.Millisecond
}

type Config struct {
	Rules        Rules        `yaml:"rules"`
	Orchestrator Orchestrator `yaml:"orchestrator"`
}

// Default returns the rules used when no config file is present.
func Default() Config {
	return Config{
		Rules: Rules{
			TurnDurationMinSec: 15,
			TurnDurationMaxSec: 120,
			ParticipantsMin:    2,
			ParticipantsMax:    12,
			PickQuotaDefault:   5,
			PickQuotaMax:       10,
			AiringWindowSec:    120,
		},
		Orchestrator: Orchestrator{
			PollIntervalMs: 1000,
			Workers:        4,
		},
	}
}

// Load reads path on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	r := c.Rules
	if r.TurnDurationMinSec <= 0 || r.TurnDurationMinSec > r.TurnDurationMaxSec {
		return fmt.Errorf("invalid turn duration bounds %d..%d", r.TurnDurationMinSec, r.TurnDurationMaxSec)
	}
	if r.ParticipantsMin < 2 || r.ParticipantsMin > r.ParticipantsMax {
		return fmt.Errorf("invalid participant bounds %d..%d", r.ParticipantsMin, r.ParticipantsMax)
	}
	if r.PickQuotaDefault < 1 || r.PickQuotaDefault > r.PickQuotaMax {
		return fmt.Errorf("invalid pick quota default %d (max %d)", r.PickQuotaDefault, r.PickQuotaMax)
	}
	if r.AiringWindowSec <= 0 {
		return fmt.Errorf("airing window must be positive, got %d", r.AiringWindowSec)
	}
	if c.Orchestrator.PollIntervalMs <= 0 || c.Orchestrator.Workers <= 0 {
		return errors.New("orchestrator poll interval and workers must be positive")
	}
	return nil
}
