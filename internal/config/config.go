package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LLM providers
const (
	ProviderGemini    = "gemini"
	ProviderClaude    = "claude"
	ProviderLangChain = "langchain"
)

type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// LLM
	LLMProvider    string
	GeminiAPIKey   string
	GeminiModel    string
	ClaudeAPIKey   string
	ClaudeBaseURL  string
	ClaudeModel    string
	OutputLanguage string // ja, en
	MaxCompanies   int

	// Sessions
	SessionTTL time.Duration

	// Rate Limiting
	RateLimitRPS int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// .env is optional; real env vars take precedence over it
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ClaudeAPIKey:   getEnv("CLAUDE_API_KEY", ""),
		ClaudeBaseURL:  getEnv("CLAUDE_BASE_URL", "https://api.anthropic.com"),
		ClaudeModel:    getEnv("CLAUDE_MODEL", "claude-sonnet-4-5-20250929"),
		OutputLanguage: strings.ToLower(getEnv("OUTPUT_LANGUAGE", "ja")),
		MaxCompanies:   getEnvInt("MAX_COMPANIES", 10),
		SessionTTL:     getEnvDuration("SESSION_TTL", 2*time.Hour),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 10),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
		}),
	}

	switch cfg.LLMProvider {
	case ProviderGemini, ProviderClaude, ProviderLangChain:
	default:
		return nil, fmt.Errorf("LLM_PROVIDER must be one of gemini, claude, langchain (got %q)", cfg.LLMProvider)
	}

	if cfg.MaxCompanies < 1 {
		return nil, fmt.Errorf("MAX_COMPANIES must be positive")
	}
	if cfg.RateLimitRPS < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	return cfg, nil
}

// APIKey returns the credential the selected provider uses
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderClaude {
		return c.ClaudeAPIKey
	}
	return c.GeminiAPIKey
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blanks
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
