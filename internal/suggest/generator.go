package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/ForDaCulture/document-processing-system/internal/llm"
)

// LLMGenerator produces corrections through the LLM gateway.
type LLMGenerator struct {
	gateway  llm.Gateway
	provider string
	model    string
}

func NewLLMGenerator(gw llm.Gateway, provider, model string) *LLMGenerator {
	return &LLMGenerator{gateway: gw, provider: provider, model: model}
}

func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("empty prompt")
	}

	resp, err := g.gateway.Chat(ctx, llm.ChatRequest{
		Provider: g.provider,
		Model:    g.model,
		Messages: []llm.Message{
			{
				Role:    "system",
				Content: "You correct extraction mistakes on scanned invoice fields. Reply with the corrected field value only, no explanation.",
			},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 256,
	})
	if err != nil {
		return "", fmt.Errorf("generate suggestion: %w", err)
	}

	return strings.TrimSpace(resp.Content), nil
}
