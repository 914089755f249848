package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if err := cfg.ValidateCoreLimits(); err != nil {
		t.Fatalf("default core limits should validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if cfg.Executor.MaxAgents != DefaultConfig().Executor.MaxAgents {
		t.Error("expected default executor settings")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Executor.MaxAgents = 9
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Executor.MaxAgents != 9 {
		t.Errorf("expected max_agents=9, got %d", loaded.Executor.MaxAgents)
	}
}

func TestEnvOverrideAPIKey(t *testing.T) {
	os.Setenv("ANTHROPIC_API_KEY", "test-key")
	defer os.Unsetenv("ANTHROPIC_API_KEY")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Error("expected env override to set API key")
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Error("expected provider to switch to anthropic")
	}
}

func TestValidateRejectsBadExecutorConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Executor.MaxAgents = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for max_agents=0")
	}
}
