package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/yourusername/jobscout-api/internal/config"
)

var (
	// ErrMissingAPIKey is returned before any network call when no
	// credential is configured for the selected provider.
	ErrMissingAPIKey = errors.New("LLM API key not configured")

	// ErrEmptyCriteria is returned when the search criteria text is blank
	ErrEmptyCriteria = errors.New("search criteria is required")
)

// Generator sends one prompt to a hosted model and returns its text reply.
// Implementations enable web search where the provider supports it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewGenerator builds the generator for cfg.LLMProvider.
// A missing credential yields a nil Generator and ErrMissingAPIKey.
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	var (
		gen Generator
		err error
	)

	switch cfg.LLMProvider {
	case config.ProviderGemini:
		var c *GeminiClient
		if c, err = NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err == nil {
			gen = c
		}
	case config.ProviderClaude:
		var c *ClaudeClient
		if c, err = NewClaudeClient(cfg.ClaudeAPIKey, cfg.ClaudeBaseURL, cfg.ClaudeModel); err == nil {
			gen = c
		}
	case config.ProviderLangChain:
		log.Warn().
			Str("provider", cfg.LLMProvider).
			Msg("LLM provider has no web search tool; answers come from model knowledge only")
		var c *LangChainClient
		if c, err = NewLangChainClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err == nil {
			gen = c
		}
	default:
		err = fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}

	if err != nil {
		return nil, err
	}
	return gen, nil
}
