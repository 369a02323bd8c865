// Package config loads widget server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/athompson0066/Roofing-Estimator/pkg/agent"
)

// Config holds everything cmd/widgetd needs to run.
type Config struct {
	Addr string

	GeminiAPIKey string

	// Model used for scan and estimate agent calls.
	Model string

	// LiveModel and LiveVoice configure the duplex voice session.
	LiveModel string
	LiveVoice string

	// ScanCooldown is the pause between the investigator call and the
	// planner calls.
	ScanCooldown time.Duration

	// Quota retry policy for agent calls.
	RetryMaxRetries        int
	RetryInitialDelay      time.Duration
	RetryBackoffMultiplier int

	MaxBodyBytes int64

	CORSAllowedOrigins []string

	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	ShutdownGracePeriod time.Duration
}

// LoadEnvFile merges a dotenv-style file into the process environment.
// Missing files are not an error; existing variables win.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// LoadFromEnv reads and validates configuration.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                   envOr("WIDGET_ADDR", ":8080"),
		GeminiAPIKey:           envOr("GEMINI_API_KEY", envOr("GOOGLE_API_KEY", "")),
		Model:                  envOr("WIDGET_MODEL", "gemini-2.5-flash"),
		LiveModel:              envOr("WIDGET_LIVE_MODEL", "gemini-2.5-flash-native-audio-preview-09-2025"),
		LiveVoice:              envOr("WIDGET_LIVE_VOICE", "Puck"),
		ScanCooldown:           envDurationOr("WIDGET_SCAN_COOLDOWN", 4*time.Second),
		RetryMaxRetries:        envIntOr("WIDGET_RETRY_MAX", 3),
		RetryInitialDelay:      envDurationOr("WIDGET_RETRY_INITIAL_DELAY", 5*time.Second),
		RetryBackoffMultiplier: envIntOr("WIDGET_RETRY_MULTIPLIER", 2),
		MaxBodyBytes:           envInt64Or("WIDGET_MAX_BODY_BYTES", 8<<20), // 8 MiB
		CORSAllowedOrigins:     splitCSV(os.Getenv("WIDGET_CORS_ORIGINS")),
		ReadHeaderTimeout:      envDurationOr("WIDGET_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:            envDurationOr("WIDGET_READ_TIMEOUT", 30*time.Second),
		ShutdownGracePeriod:    envDurationOr("WIDGET_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
	}

	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("GEMINI_API_KEY must be set")
	}
	if cfg.ScanCooldown < 0 {
		return Config{}, fmt.Errorf("WIDGET_SCAN_COOLDOWN must be >= 0")
	}
	if cfg.RetryMaxRetries < 0 {
		return Config{}, fmt.Errorf("WIDGET_RETRY_MAX must be >= 0")
	}
	if cfg.RetryInitialDelay <= 0 {
		return Config{}, fmt.Errorf("WIDGET_RETRY_INITIAL_DELAY must be > 0")
	}
	if cfg.RetryBackoffMultiplier < 1 {
		return Config{}, fmt.Errorf("WIDGET_RETRY_MULTIPLIER must be >= 1")
	}
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("WIDGET_MAX_BODY_BYTES must be > 0")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("WIDGET_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("WIDGET_READ_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("WIDGET_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	return cfg, nil
}

// RetryPolicy maps the retry settings onto the agent executor's policy.
func (c Config) RetryPolicy() agent.RetryPolicy {
	return agent.RetryPolicy{
		MaxRetries:        c.RetryMaxRetries,
		InitialDelay:      c.RetryInitialDelay,
		BackoffMultiplier: c.RetryBackoffMultiplier,
	}
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envInt64Or(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
