package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CADENCE_DEV_MODE", "true")
	t.Setenv("CADENCE_CONFIG_PATH", "does/not/exist.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Validation.MinQuality != 70 {
		t.Errorf("expected default min quality 70, got %d", cfg.Validation.MinQuality)
	}
	if cfg.Validation.SimilarityThreshold != 0.8 {
		t.Errorf("expected default similarity threshold 0.8, got %v", cfg.Validation.SimilarityThreshold)
	}
	if time.Duration(cfg.Validation.CooldownWindow) != 14*24*time.Hour {
		t.Errorf("expected default cooldown window 14d, got %v", time.Duration(cfg.Validation.CooldownWindow))
	}
	if cfg.Validation.ExhaustedPolicy != "accept-best" {
		t.Errorf("expected default exhausted policy accept-best, got %q", cfg.Validation.ExhaustedPolicy)
	}
	if len(cfg.Content.Topics) == 0 {
		t.Error("expected default topic list")
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("CADENCE_DEV_MODE", "true")

	path := filepath.Join(t.TempDir(), "cadence.yaml")
	yaml := `
server:
  port: 9090
validation:
  min_quality: 80
  max_attempts: 5
  cooldown_window: 168h
  exhausted_policy: fail
content:
  topics:
    - Robotics
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090 from file, got %d", cfg.Server.Port)
	}
	if cfg.Validation.MaxAttempts != 5 {
		t.Errorf("expected max attempts 5, got %d", cfg.Validation.MaxAttempts)
	}
	if time.Duration(cfg.Validation.CooldownWindow) != 168*time.Hour {
		t.Errorf("expected cooldown window 168h, got %v", time.Duration(cfg.Validation.CooldownWindow))
	}
	if cfg.Validation.ExhaustedPolicy != "fail" {
		t.Errorf("expected exhausted policy fail, got %q", cfg.Validation.ExhaustedPolicy)
	}
	if len(cfg.Content.Topics) != 1 || cfg.Content.Topics[0] != "Robotics" {
		t.Errorf("expected topics from file, got %v", cfg.Content.Topics)
	}
	// Unset sections keep their defaults
	if cfg.Database.Path != "data/cadence.db" {
		t.Errorf("expected default database path, got %q", cfg.Database.Path)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CADENCE_DEV_MODE", "true")
	t.Setenv("CADENCE_CONFIG_PATH", "does/not/exist.yaml")
	t.Setenv("CADENCE_PORT", "7070")
	t.Setenv("CADENCE_SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("CADENCE_TOPICS", "MLOps, Platform Engineering ,")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Validation.SimilarityThreshold != 0.9 {
		t.Errorf("expected env similarity 0.9, got %v", cfg.Validation.SimilarityThreshold)
	}
	if len(cfg.Content.Topics) != 2 || cfg.Content.Topics[1] != "Platform Engineering" {
		t.Errorf("expected trimmed env topics, got %v", cfg.Content.Topics)
	}
	if cfg.Generation.APIKey != "sk-test" {
		t.Error("expected API key from env")
	}
}

func TestValidate_RequiresAPIKeyOutsideDevMode(t *testing.T) {
	t.Setenv("CADENCE_DEV_MODE", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CADENCE_CONFIG_PATH", "does/not/exist.yaml")

	if _, err := Load(); err == nil {
		t.Error("expected error when OPENAI_API_KEY is missing")
	}
}

func TestValidate_RejectsBadPolicy(t *testing.T) {
	t.Setenv("CADENCE_DEV_MODE", "true")
	t.Setenv("CADENCE_CONFIG_PATH", "does/not/exist.yaml")
	t.Setenv("CADENCE_EXHAUSTED_POLICY", "shrug")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown exhausted policy")
	}
}
