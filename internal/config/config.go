// Package config loads and validates missionforge's process-level configuration:
// LLM invocation defaults, executor concurrency, queue scheduling knobs, analytics
// pricing, embedding provider selection, and logging. Mirrors the layered
// YAML-with-env-override pattern used across the rest of the stack.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/atlasforge/missionforge/internal/logging"
)

// Config holds all missionforge configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	LLM       LLMConfig       `yaml:"llm"`
	Executor  ExecutorConfig  `yaml:"executor"`
	Queue     QueueConfig     `yaml:"queue"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Logging   LoggingConfig   `yaml:"logging"`
	Limits    CoreLimits      `yaml:"core_limits"`

	// Root directory under which all mission workspaces, queue state,
	// checkpoints, snapshots, and databases live.
	DataRoot string `yaml:"data_root"`

	// DashboardPort is informational only: the dashboard HTTP/WebSocket
	// surface itself is out of scope here.
	DashboardPort string `yaml:"dashboard_port"`
}

// ExecutorConfig governs the hierarchical executor.
type ExecutorConfig struct {
	MaxAgents            int     `yaml:"max_agents"`
	MaxSubagentsPerAgent int     `yaml:"max_subagents_per_agent"`
	WorkerModel          string  `yaml:"worker_model"`
	SubagentModel        string  `yaml:"subagent_model"`
	ReserveRatio         float64 `yaml:"reserve_ratio"`
	PollInterval         string  `yaml:"poll_interval"`
	MinChildTimeout      string  `yaml:"min_child_timeout"`
	TotalTimeout         string  `yaml:"total_timeout"`
}

// QueueConfig governs scheduler and processing-lock behavior.
type QueueConfig struct {
	AutoEstimateTime    bool   `yaml:"auto_estimate_time"`
	DefaultPriority     string `yaml:"default_priority"`
	IdlePollInterval    string `yaml:"idle_poll_interval"`
	LockLeaseDuration   string `yaml:"lock_lease_duration"`
	HistoryWindow       int    `yaml:"history_window"`
	MinEstimateMinutes  int    `yaml:"min_estimate_minutes"`
	MaxEstimateMinutes  int    `yaml:"max_estimate_minutes"`
}

// AnalyticsConfig governs the token-event store and cost pipeline.
type AnalyticsConfig struct {
	DatabasePath    string             `yaml:"database_path"`
	FallbackPricing map[string]float64 `yaml:"fallback_pricing"`
	ModelPricing    map[string]Pricing `yaml:"model_pricing"`
	WatchPollPeriod string             `yaml:"watch_poll_period"`
}

// Pricing is USD per 1M tokens, by token class.
type Pricing struct {
	Input       float64 `yaml:"input"`
	Output      float64 `yaml:"output"`
	CacheRead   float64 `yaml:"cache_read"`
	CacheWrite  float64 `yaml:"cache_write"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "missionforge",
		Version: "0.1.0",

		DataRoot: "data",

		LLM: LLMConfig{
			Provider: "anthropic",
			Model:    "claude-sonnet",
			Timeout:  "120s",
		},

		Executor: ExecutorConfig{
			MaxAgents:            5,
			MaxSubagentsPerAgent: 10,
			WorkerModel:          "claude-sonnet",
			SubagentModel:        "claude-haiku",
			ReserveRatio:         0.10,
			PollInterval:         "2s",
			MinChildTimeout:      "60s",
			TotalTimeout:         "60m",
		},

		Queue: QueueConfig{
			AutoEstimateTime:   true,
			DefaultPriority:    "NORMAL",
			IdlePollInterval:   "10s",
			LockLeaseDuration:  "60s",
			HistoryWindow:      30,
			MinEstimateMinutes: 15,
			MaxEstimateMinutes: 300,
		},

		Analytics: AnalyticsConfig{
			DatabasePath: "data/analytics.db",
			FallbackPricing: map[string]float64{
				"input": 3.0, "output": 15.0, "cache_read": 0.30, "cache_write": 3.75,
			},
			WatchPollPeriod: "2s",
		},

		Embedding: EmbeddingConfig{
			Provider:       "ollama",
			OllamaEndpoint: "http://localhost:11434",
			OllamaModel:    "embeddinggemma",
			GenAIModel:     "gemini-embedding-001",
			TaskType:       "SEMANTIC_SIMILARITY",
		},

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			DebugMode: false,
		},

		Limits: CoreLimits{
			MaxConcurrentMissions: 1,
			MaxConcurrentAgents:   5,
			MaxQueueDepth:         500,
			MaxSnapshotsRetained:  24,
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file is absent.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("loading config from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		logging.BootError("failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("config loaded: provider=%s model=%s", cfg.LLM.Provider, cfg.LLM.Model)
	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies MISSIONFORGE_-prefixed (and common provider key)
// environment variable overrides on top of file/defaults.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "anthropic"
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if root := os.Getenv("MISSIONFORGE_DATA_ROOT"); root != "" {
		c.DataRoot = root
	}
	if port := os.Getenv("MISSIONFORGE_DASHBOARD_PORT"); port != "" {
		c.DashboardPort = port
	}
	if os.Getenv("MISSIONFORGE_DEBUG") == "1" {
		c.Logging.DebugMode = true
	}
	if os.Getenv("MISSIONFORGE_DISABLE_TOKEN_WATCHER") == "1" {
		c.Analytics.WatchPollPeriod = ""
	}
	if key := os.Getenv("GENAI_API_KEY"); key != "" {
		c.Embedding.GenAIAPIKey = key
		if c.Embedding.Provider == "" || c.Embedding.Provider == "ollama" {
			c.Embedding.Provider = "genai"
		}
	}
	if endpoint := os.Getenv("OLLAMA_ENDPOINT"); endpoint != "" {
		c.Embedding.OllamaEndpoint = endpoint
	}
	if path := os.Getenv("MISSIONFORGE_ANALYTICS_DB"); path != "" {
		c.Analytics.DatabasePath = path
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDurationOr(c.LLM.Timeout, 120*time.Second)
}

// GetExecutorPollInterval returns the executor's checkpoint poll interval.
func (c *Config) GetExecutorPollInterval() time.Duration {
	return parseDurationOr(c.Executor.PollInterval, 2*time.Second)
}

// GetExecutorMinChildTimeout returns the floor on any child allocation.
func (c *Config) GetExecutorMinChildTimeout() time.Duration {
	return parseDurationOr(c.Executor.MinChildTimeout, 60*time.Second)
}

// GetExecutorTotalTimeout returns the default mission-level executor budget.
func (c *Config) GetExecutorTotalTimeout() time.Duration {
	return parseDurationOr(c.Executor.TotalTimeout, 60*time.Minute)
}

// GetQueueIdlePollInterval returns the queue auto-start watcher's poll interval.
func (c *Config) GetQueueIdlePollInterval() time.Duration {
	return parseDurationOr(c.Queue.IdlePollInterval, 10*time.Second)
}

// GetQueueLockLease returns the processing lock's lease duration.
func (c *Config) GetQueueLockLease() time.Duration {
	return parseDurationOr(c.Queue.LockLeaseDuration, 60*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Executor.MaxAgents < 1 {
		return fmt.Errorf("executor.max_agents must be >= 1")
	}
	if c.Executor.MaxSubagentsPerAgent < 0 {
		return fmt.Errorf("executor.max_subagents_per_agent must be >= 0")
	}
	if c.Executor.ReserveRatio < 0 || c.Executor.ReserveRatio >= 1 {
		return fmt.Errorf("executor.reserve_ratio must be in [0, 1)")
	}
	return nil
}
