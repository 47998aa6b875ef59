package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Generation GenerationConfig `yaml:"generation"`
	Validation ValidationConfig `yaml:"validation"`
	Content    ContentConfig    `yaml:"content"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	GitHub     GitHubConfig     `yaml:"github"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig contains status API server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// GenerationConfig contains draft generation settings.
type GenerationConfig struct {
	APIKey  string   `yaml:"-"` // env-only, never in YAML
	BaseURL string   `yaml:"base_url"`
	Model   string   `yaml:"model"`
	Timeout Duration `yaml:"timeout"`
}

// ValidationConfig contains the accept/regenerate loop settings.
type ValidationConfig struct {
	MinQuality          int      `yaml:"min_quality"`
	SimilarityThreshold float64  `yaml:"similarity_threshold"`
	MaxAttempts         int      `yaml:"max_attempts"`
	HistoryWindow       int      `yaml:"history_window"`
	CooldownWindow      Duration `yaml:"cooldown_window"`
	CooldownMaxTopics   int      `yaml:"cooldown_max_topics"`
	ExhaustedPolicy     string   `yaml:"exhausted_policy"`
}

// ContentConfig contains topic source settings.
type ContentConfig struct {
	Topics        []string `yaml:"topics"`
	FallbackTopic string   `yaml:"fallback_topic"`
	CalendarPath  string   `yaml:"calendar_path"`
	TrendingFeed  string   `yaml:"trending_feed"`
	Hashtags      string   `yaml:"hashtags"`
}

// ScheduleConfig contains posting schedule settings.
type ScheduleConfig struct {
	Interval      Duration `yaml:"interval"`
	Jitter        Duration `yaml:"jitter"`
	CheckInterval Duration `yaml:"check_interval"`
}

// GitHubConfig contains repository context settings.
type GitHubConfig struct {
	Token   string   `yaml:"-"` // env-only, never in YAML
	Timeout Duration `yaml:"timeout"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("CADENCE_CONFIG_PATH", "config/cadence.yaml")

	// Missing file is not an error; defaults apply
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/cadence.db",
		},
		Generation: GenerationConfig{
			Model:   "gpt-4o-mini",
			Timeout: Duration(60 * time.Second),
		},
		Validation: ValidationConfig{
			MinQuality:          70,
			SimilarityThreshold: 0.8,
			MaxAttempts:         3,
			HistoryWindow:       30,
			CooldownWindow:      Duration(14 * 24 * time.Hour),
			CooldownMaxTopics:   100,
			ExhaustedPolicy:     "accept-best",
		},
		Content: ContentConfig{
			Topics: []string{
				"Artificial Intelligence",
				"Machine Learning",
				"Software Engineering",
				"Data Engineering",
				"Cloud Computing",
			},
			FallbackTopic: "Artificial Intelligence and Machine Learning",
			CalendarPath:  "config/calendar.yaml",
		},
		Schedule: ScheduleConfig{
			Interval:      Duration(24 * time.Hour),
			Jitter:        Duration(2 * time.Hour),
			CheckInterval: Duration(5 * time.Minute),
		},
		GitHub: GitHubConfig{
			Timeout: Duration(10 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("CADENCE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CADENCE_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = Duration(d)
		}
	}

	// Database
	if v := os.Getenv("CADENCE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Generation (OPENAI_API_KEY is industry convention)
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Generation.APIKey = v
	}
	if v := os.Getenv("CADENCE_GENERATION_BASE_URL"); v != "" {
		cfg.Generation.BaseURL = v
	}
	if v := os.Getenv("CADENCE_GENERATION_MODEL"); v != "" {
		cfg.Generation.Model = v
	}

	// Validation
	if v := os.Getenv("CADENCE_MIN_QUALITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Validation.MinQuality = n
		}
	}
	if v := os.Getenv("CADENCE_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Validation.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("CADENCE_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Validation.MaxAttempts = n
		}
	}
	if v := os.Getenv("CADENCE_COOLDOWN_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Validation.CooldownWindow = Duration(d)
		}
	}
	if v := os.Getenv("CADENCE_EXHAUSTED_POLICY"); v != "" {
		cfg.Validation.ExhaustedPolicy = v
	}

	// Content
	if v := os.Getenv("CADENCE_TOPICS"); v != "" {
		var topics []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
		cfg.Content.Topics = topics
	}
	if v := os.Getenv("CADENCE_FALLBACK_TOPIC"); v != "" {
		cfg.Content.FallbackTopic = v
	}
	if v := os.Getenv("CADENCE_CALENDAR_PATH"); v != "" {
		cfg.Content.CalendarPath = v
	}
	if v := os.Getenv("CADENCE_TRENDING_FEED"); v != "" {
		cfg.Content.TrendingFeed = v
	}
	if v := os.Getenv("CADENCE_HASHTAGS"); v != "" {
		cfg.Content.Hashtags = v
	}

	// Schedule
	if v := os.Getenv("CADENCE_POST_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Schedule.Interval = Duration(d)
		}
	}
	if v := os.Getenv("CADENCE_POST_JITTER"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Schedule.Jitter = Duration(d)
		}
	}

	// GitHub
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}

	// Log
	if v := os.Getenv("CADENCE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CADENCE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// validate checks that required configuration values are set.
// In dev mode (CADENCE_DEV_MODE=true), API key validation is skipped and
// the template generator carries runs on its own.
func (c *Config) validate() error {
	switch c.Validation.ExhaustedPolicy {
	case "accept-best", "fail":
	default:
		return fmt.Errorf("invalid exhausted_policy %q (want accept-best or fail)", c.Validation.ExhaustedPolicy)
	}

	if c.Validation.SimilarityThreshold <= 0 || c.Validation.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold %v out of range (0, 1]", c.Validation.SimilarityThreshold)
	}

	if os.Getenv("CADENCE_DEV_MODE") == "true" {
		return nil
	}

	if c.Generation.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
