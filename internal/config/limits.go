package config

import "fmt"

// CoreLimits enforces process-wide resource ceilings independent of any
// single mission's own executor config.
type CoreLimits struct {
	MaxConcurrentMissions int `yaml:"max_concurrent_missions" json:"max_concurrent_missions"`
	MaxConcurrentAgents   int `yaml:"max_concurrent_agents" json:"max_concurrent_agents"`
	MaxQueueDepth         int `yaml:"max_queue_depth" json:"max_queue_depth"`
	MaxSnapshotsRetained  int `yaml:"max_snapshots_retained" json:"max_snapshots_retained"`
}

// ValidateCoreLimits checks that core limits are within acceptable ranges.
func (c *Config) ValidateCoreLimits() error {
	if c.Limits.MaxConcurrentMissions < 1 {
		return fmt.Errorf("max_concurrent_missions must be >= 1")
	}
	if c.Limits.MaxConcurrentAgents < 1 {
		return fmt.Errorf("max_concurrent_agents must be >= 1")
	}
	if c.Limits.MaxQueueDepth < 1 {
		return fmt.Errorf("max_queue_depth must be >= 1")
	}
	return nil
}
