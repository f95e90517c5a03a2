package flashcardgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"study-deck/internal/config"
	"study-deck/internal/domain"
	"study-deck/internal/logger"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// contentGenerator is the part of *genai.GenerativeModel the generator uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator generates flashcards with the Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	model   contentGenerator
	timeout time.Duration
	backoff time.Duration
}

func NewGeminiGenerator(ctx context.Context, llmCfg config.LLMConfig) (*GeminiGenerator, error) {
	if llmCfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key cannot be empty")
	}
	if llmCfg.Gemini.Model == "" {
		return nil, fmt.Errorf("Gemini model name cannot be empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(llmCfg.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(llmCfg.Gemini.Model)
	model.SetTemperature(float32(llmCfg.Temperature))
	model.ResponseMIMEType = "application/json"

	logger.Get().Info("Initialized Gemini flashcard generator", zap.String("model", llmCfg.Gemini.Model))
	return &GeminiGenerator{
		client:  client,
		model:   model,
		timeout: llmCfg.Timeout,
		backoff: time.Second,
	}, nil
}

func (g *GeminiGenerator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GeminiGenerator) GenerateFromText(ctx context.Context, text string, count int) ([]domain.CardDraft, error) {
	prompt := buildTextPrompt(text, count)
	return generateWithRetry(ctx, g.backoff, func(ctx context.Context) (string, error) {
		return g.call(ctx, genai.Text(prompt))
	})
}

func (g *GeminiGenerator) GenerateFromImage(ctx context.Context, mimeType string, data []byte, count int) ([]domain.CardDraft, error) {
	// genai.ImageData wants the subtype ("png", "jpeg", "webp").
	format := strings.TrimPrefix(mimeType, "image/")
	prompt := buildImagePrompt(count)
	return generateWithRetry(ctx, g.backoff, func(ctx context.Context) (string, error) {
		return g.call(ctx, genai.Text(prompt), genai.ImageData(format, data))
	})
}

func (g *GeminiGenerator) call(ctx context.Context, parts ...genai.Part) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("Gemini call failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("Gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("Gemini returned no text")
	}
	return sb.String(), nil
}
