package config

import (
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads; getEnv treats "" as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "LLM_PROVIDER", "GEMINI_API_KEY", "API_KEY", "GEMINI_MODEL",
		"CLAUDE_API_KEY", "CLAUDE_BASE_URL", "CLAUDE_MODEL", "OUTPUT_LANGUAGE",
		"MAX_COMPANIES", "RATE_LIMIT_RPS", "SESSION_TTL", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Errorf("server defaults: port=%s env=%s", cfg.Port, cfg.Env)
	}
	if cfg.LLMProvider != ProviderGemini || cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("llm defaults: provider=%s model=%s", cfg.LLMProvider, cfg.GeminiModel)
	}
	if cfg.OutputLanguage != "ja" || cfg.MaxCompanies != 10 {
		t.Errorf("output defaults: lang=%s max=%d", cfg.OutputLanguage, cfg.MaxCompanies)
	}
	if cfg.SessionTTL != 2*time.Hour || cfg.RateLimitRPS != 10 {
		t.Errorf("ttl=%s rps=%d", cfg.SessionTTL, cfg.RateLimitRPS)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.APIKey() != "" {
		t.Errorf("APIKey = %q, want empty", cfg.APIKey())
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "Claude")
	t.Setenv("CLAUDE_API_KEY", "sk-test")
	t.Setenv("API_KEY", "gemini-legacy")
	t.Setenv("OUTPUT_LANGUAGE", "EN")
	t.Setenv("MAX_COMPANIES", "4")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LLMProvider != ProviderClaude || cfg.APIKey() != "sk-test" {
		t.Errorf("provider=%s key=%s", cfg.LLMProvider, cfg.APIKey())
	}
	if cfg.GeminiAPIKey != "gemini-legacy" {
		t.Errorf("API_KEY alias not honored: %q", cfg.GeminiAPIKey)
	}
	if cfg.OutputLanguage != "en" || cfg.MaxCompanies != 4 || cfg.SessionTTL != 30*time.Minute {
		t.Errorf("lang=%s max=%d ttl=%s", cfg.OutputLanguage, cfg.MaxCompanies, cfg.SessionTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown provider", "LLM_PROVIDER", "openai"},
		{"zero companies", "MAX_COMPANIES", "0"},
		{"negative rps", "RATE_LIMIT_RPS", "-1"},
		{"negative ttl", "SESSION_TTL", "-5m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
