package flashcardgen

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"study-deck/internal/config"
	"study-deck/internal/domain"
	"study-deck/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// LangchainGenerator generates flashcards through any langchaingo chat model.
// It is used for the ollama and openai providers.
type LangchainGenerator struct {
	model       llms.Model
	temperature float64
	timeout     time.Duration
	backoff     time.Duration
}

func NewLangchainGenerator(model llms.Model, llmCfg config.LLMConfig) *LangchainGenerator {
	return &LangchainGenerator{
		model:       model,
		temperature: llmCfg.Temperature,
		timeout:     llmCfg.Timeout,
		backoff:     time.Second,
	}
}

func NewOllamaModel(llmCfg config.LLMConfig) (llms.Model, error) {
	httpClient := &http.Client{Timeout: llmCfg.Timeout}
	return ollama.New(
		ollama.WithServerURL(llmCfg.Ollama.ServerURL),
		ollama.WithModel(llmCfg.Ollama.Model),
		ollama.WithHTTPClient(httpClient),
	)
}

func NewOpenAIModel(llmCfg config.LLMConfig) (llms.Model, error) {
	if llmCfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key cannot be empty")
	}
	return openai.New(
		openai.WithToken(llmCfg.OpenAI.APIKey),
		openai.WithModel(llmCfg.OpenAI.Model),
	)
}

func (g *LangchainGenerator) GenerateFromText(ctx context.Context, text string, count int) ([]domain.CardDraft, error) {
	prompt := buildTextPrompt(text, count)
	logger.Get().Debug("Generating flashcards from text", zap.Int("text_runes", len([]rune(text))), zap.Int("count", count))

	msgs := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}
	return generateWithRetry(ctx, g.backoff, func(ctx context.Context) (string, error) {
		return g.call(ctx, msgs)
	})
}

func (g *LangchainGenerator) GenerateFromImage(ctx context.Context, mimeType string, data []byte, count int) ([]domain.CardDraft, error) {
	logger.Get().Debug("Generating flashcards from image", zap.String("mime", mimeType), zap.Int("bytes", len(data)))

	msgs := []llms.MessageContent{{
		Role: llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{
			llms.TextContent{Text: buildImagePrompt(count)},
			llms.BinaryPart(mimeType, data),
		},
	}}
	return generateWithRetry(ctx, g.backoff, func(ctx context.Context) (string, error) {
		return g.call(ctx, msgs)
	})
}

func (g *LangchainGenerator) call(ctx context.Context, msgs []llms.MessageContent) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.model.GenerateContent(ctx, msgs,
		llms.WithTemperature(g.temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}
	return resp.Choices[0].Content, nil
}
