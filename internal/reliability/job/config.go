package job

import (
	"time"

	"github.com/smallbiznis/voltway/internal/config"
)

// Config controls the reliability batch loop.
type Config struct {
	Enabled     bool
	Interval    time.Duration
	Concurrency int
	RunTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		Interval:    24 * time.Hour,
		Concurrency: 4,
		RunTimeout:  30 * time.Minute,
	}
}

// ConfigFrom maps process configuration onto the job.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		Enabled:     cfg.ReliabilityJob.Enabled,
		Interval:    cfg.ReliabilityJob.Interval,
		Concurrency: cfg.ReliabilityJob.Concurrency,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = defaults.Interval
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaults.Concurrency
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaults.RunTimeout
	}
	return c
}
