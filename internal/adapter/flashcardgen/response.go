package flashcardgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"study-deck/internal/domain"
	"study-deck/internal/logger"

	"go.uber.org/zap"
)

const maxAttempts = 3

const textPromptTemplate = `You are a study assistant that writes flashcards.
From the study material below, write up to %d flashcards that test the most important facts and concepts.

Rules:
1. Each flashcard has a "question" and a short "answer" (a word, a name, a number or one short sentence).
2. Answers must be self-contained and must not repeat the question.
3. Different flashcards should have different answers.
4. Write the flashcards in the same language as the material.
5. Respond with ONLY a JSON object of the form:
{"flashcards": [{"question": "What is the capital of France?", "answer": "Paris"}]}

Study material:
%s`

const imagePromptTemplate = `You are a study assistant that writes flashcards.
Read the attached image (notes, a slide, a textbook page or a diagram) and write up to %d flashcards
that test the most important facts and concepts in it.

Rules:
1. Each flashcard has a "question" and a short "answer" (a word, a name, a number or one short sentence).
2. Different flashcards should have different answers.
3. Write the flashcards in the same language as the image text.
4. Respond with ONLY a JSON object of the form:
{"flashcards": [{"question": "What is the capital of France?", "answer": "Paris"}]}`

func buildTextPrompt(text string, count int) string {
	return fmt.Sprintf(textPromptTemplate, count, strings.TrimSpace(text))
}

func buildImagePrompt(count int) string {
	return fmt.Sprintf(imagePromptTemplate, count)
}

// rawCard accepts both question/answer and front/back keys.
type rawCard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Front    string `json:"front"`
	Back     string `json:"back"`
}

func (r rawCard) draft() domain.CardDraft {
	d := domain.CardDraft{Question: r.Question, Answer: r.Answer}
	if d.Question == "" {
		d.Question = r.Front
	}
	if d.Answer == "" {
		d.Answer = r.Back
	}
	return d
}

// cleanResponse removes <think> blocks and markdown code fences models like to add.
func cleanResponse(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		start := strings.Index(s, "<think>")
		if start == -1 {
			break
		}
		end := strings.Index(s, "</think>")
		if end == -1 || end < start {
			s = s[:start]
			break
		}
		s = s[:start] + s[end+len("</think>"):]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseDrafts decodes a model response into drafts. Both a bare array and an
// object with a "flashcards" (or "cards") array are accepted.
func parseDrafts(raw string) ([]domain.CardDraft, error) {
	s := cleanResponse(raw)

	objStart, objEnd := strings.Index(s, "{"), strings.LastIndex(s, "}")
	arrStart, arrEnd := strings.Index(s, "["), strings.LastIndex(s, "]")

	var cards []rawCard
	switch {
	case arrStart != -1 && arrEnd > arrStart && (objStart == -1 || arrStart < objStart):
		if err := json.Unmarshal([]byte(s[arrStart:arrEnd+1]), &cards); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flashcard array: %w", err)
		}
	case objStart != -1 && objEnd > objStart:
		var wrapper struct {
			Flashcards []rawCard `json:"flashcards"`
			Cards      []rawCard `json:"cards"`
		}
		if err := json.Unmarshal([]byte(s[objStart:objEnd+1]), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flashcard object: %w", err)
		}
		cards = wrapper.Flashcards
		if len(cards) == 0 {
			cards = wrapper.Cards
		}
	default:
		return nil, fmt.Errorf("no JSON found in LLM response")
	}

	drafts := make([]domain.CardDraft, 0, len(cards))
	for _, c := range cards {
		drafts = append(drafts, c.draft())
	}
	return domain.NormalizeDrafts(drafts), nil
}

// generateWithRetry calls fn up to maxAttempts times, parsing each response.
// A response that does not parse counts as a failed attempt.
func generateWithRetry(ctx context.Context, backoff time.Duration, fn func(ctx context.Context) (string, error)) ([]domain.CardDraft, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := fn(ctx)
		if err == nil {
			drafts, parseErr := parseDrafts(raw)
			if parseErr == nil {
				return drafts, nil
			}
			logger.Get().Warn("Unparseable flashcard response from LLM",
				zap.Int("attempt", attempt),
				zap.Error(parseErr),
				zap.String("response_head", head(raw, 200)))
			err = parseErr
		} else {
			logger.Get().Warn("LLM call failed", zap.Int("attempt", attempt), zap.Error(err))
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff * time.Duration(attempt)):
		}
	}
	return nil, lastErr
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
