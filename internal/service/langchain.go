package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// LangChainClient generates through langchaingo's Google AI backend.
// It has no search tool, so answers come from model knowledge only;
// useful for iterating on prompts without paying for grounding.
type LangChainClient struct {
	llm   llms.Model
	model string
}

func NewLangChainClient(ctx context.Context, apiKey, model string) (*LangChainClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating langchain Google AI client: %w", err)
	}

	return &LangChainClient{llm: llm, model: model}, nil
}

func (c *LangChainClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	text, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("calling langchain model: %w", err)
	}

	log.Debug().
		Str("provider", "langchain").
		Str("model", c.model).
		Int("replyLength", len(text)).
		Dur("latency", time.Since(start)).
		Msg("Generation complete")

	return text, nil
}
