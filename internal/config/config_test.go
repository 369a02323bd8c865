package config

import (
	"testing"
	"time"

	"github.com/athompson0066/Roofing-Estimator/pkg/agent"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.ScanCooldown != 4*time.Second {
		t.Errorf("ScanCooldown = %v", cfg.ScanCooldown)
	}
	if cfg.RetryMaxRetries != 3 || cfg.RetryInitialDelay != 5*time.Second || cfg.RetryBackoffMultiplier != 2 {
		t.Errorf("retry policy = %d/%v/%d", cfg.RetryMaxRetries, cfg.RetryInitialDelay, cfg.RetryBackoffMultiplier)
	}
}

func TestRetryPolicy_MatchesExecutorDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	got := cfg.RetryPolicy()
	want := agent.DefaultRetryPolicy()
	if got != want {
		t.Errorf("RetryPolicy() = %+v, want %+v", got, want)
	}
}

func TestRetryPolicy_CarriesOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("WIDGET_RETRY_MAX", "5")
	t.Setenv("WIDGET_RETRY_INITIAL_DELAY", "2s")
	t.Setenv("WIDGET_RETRY_MULTIPLIER", "3")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	got := cfg.RetryPolicy()
	want := agent.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, BackoffMultiplier: 3}
	if got != want {
		t.Errorf("RetryPolicy() = %+v, want %+v", got, want)
	}
}

func TestLoadFromEnv_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected error without GEMINI_API_KEY")
	}
}

func TestLoadFromEnv_GoogleKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "fallback-key")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.GeminiAPIKey != "fallback-key" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("WIDGET_ADDR", ":9090")
	t.Setenv("WIDGET_SCAN_COOLDOWN", "1500ms")
	t.Setenv("WIDGET_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.ScanCooldown != 1500*time.Millisecond {
		t.Errorf("ScanCooldown = %v", cfg.ScanCooldown)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative cooldown", "WIDGET_SCAN_COOLDOWN", "-1s"},
		{"multiplier below one", "WIDGET_RETRY_MULTIPLIER", "0"},
		{"negative retries", "WIDGET_RETRY_MAX", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "test-key")
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("LoadFromEnv accepted %s=%s", tt.key, tt.value)
			}
		})
	}
}
