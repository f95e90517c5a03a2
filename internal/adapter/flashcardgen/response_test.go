package flashcardgen

import (
	"context"
	"errors"
	"testing"

	"study-deck/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDrafts(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []domain.CardDraft
		wantErr bool
	}{
		{
			name: "wrapped object",
			raw:  `{"flashcards": [{"question": "Capital of France?", "answer": "Paris"}]}`,
			want: []domain.CardDraft{{Question: "Capital of France?", Answer: "Paris"}},
		},
		{
			name: "bare array with front/back",
			raw:  `[{"front": "H2O is?", "back": "Water"}, {"front": "NaCl is?", "back": "Salt"}]`,
			want: []domain.CardDraft{{Question: "H2O is?", Answer: "Water"}, {Question: "NaCl is?", Answer: "Salt"}},
		},
		{
			name: "markdown fence",
			raw:  "```json\n{\"flashcards\": [{\"question\": \"2+2?\", \"answer\": \"4\"}]}\n```",
			want: []domain.CardDraft{{Question: "2+2?", Answer: "4"}},
		},
		{
			name: "think block and prose",
			raw:  "<think>the user wants cards</think>Here you go: {\"cards\": [{\"question\": \"Largest planet?\", \"answer\": \"Jupiter\"}]}",
			want: []domain.CardDraft{{Question: "Largest planet?", Answer: "Jupiter"}},
		},
		{
			name: "drops empty and duplicate cards",
			raw:  `{"flashcards": [{"question": "A?", "answer": "1"}, {"question": "a?", "answer": "2"}, {"question": "B?", "answer": ""}]}`,
			want: []domain.CardDraft{{Question: "A?", Answer: "1"}},
		},
		{name: "no json", raw: "I cannot help with that.", wantErr: true},
		{name: "broken json", raw: `{"flashcards": [{"question": "A?"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDrafts(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanResponse_UnclosedThink(t *testing.T) {
	assert.Equal(t, "", cleanResponse("<think>never finished"))
}

func TestGenerateWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries until a parseable response", func(t *testing.T) {
		calls := 0
		drafts, err := generateWithRetry(ctx, 0, func(ctx context.Context) (string, error) {
			calls++
			switch calls {
			case 1:
				return "", errors.New("503")
			case 2:
				return "not json", nil
			default:
				return `{"flashcards":[{"question":"Q","answer":"A"}]}`, nil
			}
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Len(t, drafts, 1)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		_, err := generateWithRetry(ctx, 0, func(ctx context.Context) (string, error) {
			calls++
			return "", errors.New("quota exceeded")
		})
		assert.EqualError(t, err, "quota exceeded")
		assert.Equal(t, maxAttempts, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := generateWithRetry(cctx, 1000000000, func(ctx context.Context) (string, error) {
			return "", errors.New("fail")
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
