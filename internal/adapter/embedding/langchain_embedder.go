package embedding

import (
	"context"
	"fmt"
	"net/http"

	"study-deck/internal/config"
	"study-deck/internal/domain"

	"github.com/tmc/langchaingo/embeddings"
	ollamaLLM "github.com/tmc/langchaingo/llms/ollama"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultOllamaModel = "nomic-embed-text"
	defaultOpenAIModel = "text-embedding-3-small"
	batchSize          = 64
)

// LangchainEmbedder implements domain.EmbeddingService over a langchaingo embedder.
type LangchainEmbedder struct {
	embedder embeddings.Embedder
	provider string
}

var _ domain.EmbeddingService = (*LangchainEmbedder)(nil)

// New builds the embedder selected by llmCfg.Embedding. It returns a nil
// interface when embeddings are disabled.
func New(llmCfg config.LLMConfig) (domain.EmbeddingService, error) {
	switch llmCfg.Embedding.Provider {
	case "":
		return nil, nil
	case "ollama":
		return NewOllamaEmbedder(llmCfg)
	case "openai":
		return NewOpenAIEmbedder(llmCfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", llmCfg.Embedding.Provider)
	}
}

func NewOllamaEmbedder(llmCfg config.LLMConfig) (*LangchainEmbedder, error) {
	if llmCfg.Ollama.ServerURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	model := llmCfg.Embedding.Model
	if model == "" {
		model = defaultOllamaModel
	}

	llm, err := ollamaLLM.New(
		ollamaLLM.WithModel(model),
		ollamaLLM.WithServerURL(llmCfg.Ollama.ServerURL),
		ollamaLLM.WithHTTPClient(&http.Client{Timeout: llmCfg.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client for embedder: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithBatchSize(batchSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder from Ollama client: %w", err)
	}
	return &LangchainEmbedder{embedder: embedder, provider: "ollama"}, nil
}

func NewOpenAIEmbedder(llmCfg config.LLMConfig) (*LangchainEmbedder, error) {
	if llmCfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	model := llmCfg.Embedding.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	llm, err := openaiLLM.New(
		openaiLLM.WithToken(llmCfg.OpenAI.APIKey),
		openaiLLM.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client for embedder: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithBatchSize(batchSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder from OpenAI client: %w", err)
	}
	return &LangchainEmbedder{embedder: embedder, provider: "openai"}, nil
}

// Embed returns one vector per text, in input order.
func (e *LangchainEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, t := range texts {
		if t == "" {
			return nil, fmt.Errorf("input text %d cannot be empty for embedding", i)
		}
	}

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings using %s: %w", e.provider, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%s returned %d embeddings for %d texts", e.provider, len(vectors), len(texts))
	}
	return vectors, nil
}
