package flashcardgen

import (
	"context"
	"fmt"

	"study-deck/internal/config"
	"study-deck/internal/domain"
)

// New builds the generator for llmCfg.Provider. The returned close func releases
// provider clients and is always non-nil.
func New(ctx context.Context, llmCfg config.LLMConfig) (domain.FlashcardGenerator, func() error, error) {
	noop := func() error { return nil }

	switch llmCfg.Provider {
	case "gemini":
		g, err := NewGeminiGenerator(ctx, llmCfg)
		if err != nil {
			return nil, noop, err
		}
		return g, g.Close, nil
	case "ollama":
		model, err := NewOllamaModel(llmCfg)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return NewLangchainGenerator(model, llmCfg), noop, nil
	case "openai":
		model, err := NewOpenAIModel(llmCfg)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return NewLangchainGenerator(model, llmCfg), noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported llm provider: %s", llmCfg.Provider)
	}
}
