package scheduler

import (
	"time"

	"github.com/smallbiznis/meritscore/internal/config"
)

// Config controls scheduler intervals and batch sizes.
type Config struct {
	RunInterval time.Duration
	// PerformanceYear pins the year to recompute. Zero follows the program timeline.
	PerformanceYear int
	BatchSize       int
	JobTimeout      time.Duration
	// LockWait bounds how long a replica waits for another replica's run of the same job.
	LockWait    time.Duration
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Hour,
		BatchSize:   200,
		JobTimeout:  30 * time.Minute,
		LockWait:    2 * time.Second,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval:     cfg.Scheduler.RunInterval,
		PerformanceYear: cfg.Scheduler.PerformanceYear,
		BatchSize:       cfg.Scheduler.BatchSize,
		JobTimeout:      cfg.Scheduler.JobTimeout,
		EnabledJobs:     cfg.Scheduler.EnabledJobs,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockWait <= 0 {
		c.LockWait = defaults.LockWait
	}
	return c
}
