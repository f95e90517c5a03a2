package domain

import (
	"context"
	"strings"
	"time"
)

// Flashcard is a single question/answer pair. Cards are immutable once generated.
type Flashcard struct {
	ID        string
	SetID     string
	Question  string
	Answer    string
	Position  int
	CreatedAt time.Time
}

// FlashcardSet groups the cards generated from one uploaded document.
type FlashcardSet struct {
	ID               string
	OwnerID          string
	Title            string
	SourceDocumentID string
	CardCount        int
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Cards            []*Flashcard
}

// CardDraft is a flashcard as returned by a generator, before it is stored.
type CardDraft struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NormalizeDrafts trims drafts, drops empty ones and drops repeated questions.
// Question comparison is case-insensitive; the first occurrence wins.
func NormalizeDrafts(drafts []CardDraft) []CardDraft {
	seen := make(map[string]struct{}, len(drafts))
	out := make([]CardDraft, 0, len(drafts))
	for _, d := range drafts {
		q := strings.TrimSpace(d.Question)
		a := strings.TrimSpace(d.Answer)
		if q == "" || a == "" {
			continue
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, CardDraft{Question: q, Answer: a})
	}
	return out
}

// FlashcardSetRepository persists sets and their cards.
type FlashcardSetRepository interface {
	CreateSet(ctx context.Context, set *FlashcardSet) error
	InsertFlashcards(ctx context.Context, cards []*Flashcard) error
	GetSetByID(ctx context.Context, setID string) (*FlashcardSet, error)
	ListSetsByOwner(ctx context.Context, ownerID string) ([]*FlashcardSet, error)
	GetFlashcardsBySetID(ctx context.Context, setID string) ([]*Flashcard, error)
	UpdateSetTitle(ctx context.Context, setID, title string) error
	DeleteSet(ctx context.Context, setID string) error
}
