package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port     string
	LogLevel string

	GeminiAPIKey  string
	GCPProjectID  string
	GCPLocation   string
	PrimaryModel  string
	FallbackModel string

	StorageBackend string // "memory" o "firestore"
	UseMockLLM     bool   // true = use mock even on GCP

	// Empty means every origin is allowed.
	AllowedOrigins []string

	Generation GenerationConfig
	Retry      RetryConfig
	Session    SessionConfig
}

// GenerationConfig holds the sampling parameters sent with every AI request.
type GenerationConfig struct {
	Temperature     float32 `yaml:"temperature"`
	TopP            float32 `yaml:"top_p"`
	TopK            float32 `yaml:"top_k"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// RetryConfig feeds generation.Policy.
type RetryConfig struct {
	MaxRetries      int           `yaml:"max_retries"`
	PrimaryAttempts int           `yaml:"primary_attempts"`
	AttemptTimeout  time.Duration `yaml:"attempt_timeout"`
	BackoffBase     time.Duration `yaml:"backoff_base"`
}

// SessionConfig holds presentation parameters of practice sessions.
type SessionConfig struct {
	AdvanceDelay time.Duration `yaml:"advance_delay"`
	AutoRead     bool          `yaml:"auto_read"`
	VoiceLang    string        `yaml:"voice_lang"`
	VoiceRegion  string        `yaml:"voice_region"`
	Rate         float64       `yaml:"rate"`
	Pitch        float64       `yaml:"pitch"`
	Volume       float64       `yaml:"volume"`
}

// fileConfig is the subset of settings that can come from IB_CONFIG_FILE.
type fileConfig struct {
	PrimaryModel  string            `yaml:"primary_model"`
	FallbackModel string            `yaml:"fallback_model"`
	Generation    *GenerationConfig `yaml:"generation"`
	Retry         *RetryConfig      `yaml:"retry"`
	Session       *SessionConfig    `yaml:"session"`
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Mode:           ModeLocal,
		Port:           "8080",
		LogLevel:       "info",
		GCPLocation:    "us-central1",
		PrimaryModel:   "gemini-2.0-flash-exp",
		FallbackModel:  "gemini-1.5-flash",
		StorageBackend: "memory",
		UseMockLLM:     true,
		Generation: GenerationConfig{
			Temperature:     1,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 8192,
		},
		Retry: RetryConfig{
			MaxRetries:      3,
			PrimaryAttempts: 2,
			AttemptTimeout:  60 * time.Second,
			BackoffBase:     2 * time.Second,
		},
		Session: SessionConfig{
			AdvanceDelay: 500 * time.Millisecond,
			AutoRead:     true,
			VoiceLang:    "en",
			VoiceRegion:  "en-IN",
			Rate:         0.7,
			Pitch:        2.0,
			Volume:       1.0,
		},
	}
}

// Load reads .env (optional), environment variables and the optional
// YAML file named by IB_CONFIG_FILE, then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := Default()

	modeStr := getEnv("IB_MODE", "local")
	switch modeStr {
	case "gcp":
		cfg.Mode = ModeGCP
	default:
		cfg.Mode = ModeLocal
	}

	cfg.Port = getEnv("IB_PORT", getEnv("PORT", cfg.Port))
	cfg.LogLevel = getEnv("IB_LOG_LEVEL", cfg.LogLevel)

	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", "")
	cfg.GCPProjectID = getEnv("IB_GCP_PROJECT", "")
	cfg.GCPLocation = getEnv("IB_GCP_LOCATION", cfg.GCPLocation)
	cfg.PrimaryModel = getEnv("IB_PRIMARY_MODEL", cfg.PrimaryModel)
	cfg.FallbackModel = getEnv("IB_FALLBACK_MODEL", cfg.FallbackModel)

	cfg.StorageBackend = getEnv("IB_STORAGE_BACKEND", cfg.StorageBackend)
	cfg.UseMockLLM = getBoolEnv("IB_USE_MOCK_LLM", cfg.Mode == ModeLocal && cfg.GeminiAPIKey == "")
	cfg.AllowedOrigins = parseOrigins(getEnv("IB_ALLOWED_ORIGINS", ""))

	cfg.Retry.MaxRetries = getIntEnv("IB_MAX_RETRIES", cfg.Retry.MaxRetries)
	cfg.Retry.AttemptTimeout = getDurationEnv("IB_ATTEMPT_TIMEOUT", cfg.Retry.AttemptTimeout)
	cfg.Session.AdvanceDelay = getDurationEnv("IB_ADVANCE_DELAY", cfg.Session.AdvanceDelay)

	if path := getEnv("IB_CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return c.applyYAML(data)
}

func (c *Config) applyYAML(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config YAML: %w", err)
	}

	if fc.PrimaryModel != "" {
		c.PrimaryModel = fc.PrimaryModel
	}
	if fc.FallbackModel != "" {
		c.FallbackModel = fc.FallbackModel
	}
	// Sections replace the defaults wholesale so a file can zero a value.
	if fc.Generation != nil {
		c.Generation = *fc.Generation
	}
	if fc.Retry != nil {
		c.Retry = *fc.Retry
	}
	if fc.Session != nil {
		c.Session = *fc.Session
	}
	return nil
}

// Validate checks ranges that would make the services misbehave.
func (c *Config) Validate() error {
	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		return fmt.Errorf("IB_GCP_PROJECT must be set in gcp mode")
	}
	if c.StorageBackend == "firestore" && c.GCPProjectID == "" {
		return fmt.Errorf("IB_GCP_PROJECT is required for Firestore storage backend")
	}
	if c.PrimaryModel == "" || c.FallbackModel == "" {
		return fmt.Errorf("primary and fallback models must be set")
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be between 0 and 2")
	}
	if c.Generation.TopP < 0 || c.Generation.TopP > 1 {
		return fmt.Errorf("generation.top_p must be between 0 and 1")
	}
	if c.Generation.MaxOutputTokens <= 0 {
		return fmt.Errorf("generation.max_output_tokens must be positive")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries cannot be negative")
	}
	if c.Retry.PrimaryAttempts < 0 {
		return fmt.Errorf("retry.primary_attempts cannot be negative")
	}
	if c.Retry.AttemptTimeout <= 0 {
		return fmt.Errorf("retry.attempt_timeout must be positive")
	}
	if c.Session.AdvanceDelay < 0 {
		return fmt.Errorf("session.advance_delay cannot be negative")
	}
	return nil
}

func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
