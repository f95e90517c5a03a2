package flashcardgen

import (
	"context"
	"errors"
	"testing"

	"study-deck/internal/config"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGemini struct {
	resp  *genai.GenerateContentResponse
	err   error
	parts [][]genai.Part
}

func (f *fakeGemini) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = append(f.parts, parts)
	return f.resp, f.err
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]genai.Part, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, genai.Text(t))
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestNewGeminiGenerator_Validation(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), config.LLMConfig{Gemini: config.GeminiConfig{Model: "gemini-2.0-flash"}})
	assert.Error(t, err)

	_, err = NewGeminiGenerator(context.Background(), config.LLMConfig{Gemini: config.GeminiConfig{APIKey: "k"}})
	assert.Error(t, err)
}

func TestGeminiGenerator_GenerateFromText(t *testing.T) {
	fake := &fakeGemini{resp: textResponse(`{"flashcards":[{"question":"Q`, `","answer":"A"}]}`)}
	g := &GeminiGenerator{model: fake}

	drafts, err := g.GenerateFromText(context.Background(), "material", 4)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)

	require.Len(t, fake.parts, 1)
	prompt, ok := fake.parts[0][0].(genai.Text)
	require.True(t, ok)
	assert.Contains(t, string(prompt), "material")
}

func TestGeminiGenerator_GenerateFromImage(t *testing.T) {
	fake := &fakeGemini{resp: textResponse(`{"flashcards":[{"question":"Q","answer":"A"}]}`)}
	g := &GeminiGenerator{model: fake}

	_, err := g.GenerateFromImage(context.Background(), "image/jpeg", []byte{1, 2, 3}, 4)
	require.NoError(t, err)

	require.Len(t, fake.parts[0], 2)
	blob, ok := fake.parts[0][1].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", blob.MIMEType)
}

func TestGeminiGenerator_EmptyCandidates(t *testing.T) {
	fake := &fakeGemini{resp: &genai.GenerateContentResponse{}}
	g := &GeminiGenerator{model: fake}

	_, err := g.GenerateFromText(context.Background(), "material", 4)
	assert.Error(t, err)
	assert.Len(t, fake.parts, maxAttempts)
}

func TestGeminiGenerator_APIError(t *testing.T) {
	fake := &fakeGemini{err: errors.New("429 resource exhausted")}
	g := &GeminiGenerator{model: fake}

	_, err := g.GenerateFromText(context.Background(), "material", 4)
	assert.ErrorContains(t, err, "resource exhausted")
}

func TestGeminiGenerator_CloseWithoutClient(t *testing.T) {
	assert.NoError(t, (&GeminiGenerator{}).Close())
}
