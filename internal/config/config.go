// Package config is the run's ambient configuration surface, grounded
// on giantswarm-muster's internal/testing.TestConfiguration (same field
// set: scenario path, parallelism, fail-fast, retry/debug knobs) adapted
// to this module's router/loader inputs rather than muster's MCP
// instance-manager inputs.
package config

import (
	"fmt"
	"time"

	"agentictest/pkg/logging"
)

// Config is the fully-resolved set of options a run needs.
type Config struct {
	ScenarioPath string        `yaml:"scenario_path"`
	MaxParallel  int           `yaml:"max_parallel"`
	FailFast     bool          `yaml:"fail_fast"`
	RetryCount   int           `yaml:"retry_count"`
	BaseDir      string        `yaml:"base_dir"`
	ReportPath   string        `yaml:"report_path,omitempty"`
	LogLevel     string        `yaml:"log_level"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Default returns the documented defaults: one worker, no retries, no
// fail-fast, info-level logging, a 5 minute overall timeout.
func Default() Config {
	return Config{
		MaxParallel: 1,
		RetryCount:  0,
		LogLevel:    "info",
		Timeout:     5 * time.Minute,
	}
}

// Validate rejects configurations the router or loader could not act on.
func (c Config) Validate() error {
	if c.ScenarioPath == "" {
		return fmt.Errorf("scenario_path must be set")
	}
	if c.MaxParallel < 1 {
		return fmt.Errorf("max_parallel must be at least 1")
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("retry_count cannot be negative")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
