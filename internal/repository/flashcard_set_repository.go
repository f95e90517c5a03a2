package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"study-deck/internal/domain"
	"study-deck/internal/repository/models"
	"study-deck/internal/util"

	"github.com/jmoiron/sqlx"
)

const setColumns = `id, owner_id, title, source_document_id, card_count, created_at, updated_at`

type sqlxFlashcardSetRepository struct {
	db *sqlx.DB
}

func NewSQLXFlashcardSetRepository(db *sqlx.DB) domain.FlashcardSetRepository {
	return &sqlxFlashcardSetRepository{db: db}
}

func toDomainFlashcardSet(m *models.FlashcardSet) *domain.FlashcardSet {
	if m == nil {
		return nil
	}
	return &domain.FlashcardSet{
		ID:               m.ID,
		OwnerID:          m.OwnerID,
		Title:            m.Title,
		SourceDocumentID: m.SourceDocumentID.String,
		CardCount:        m.CardCount,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toDomainFlashcard(m *models.Flashcard) *domain.Flashcard {
	return &domain.Flashcard{
		ID:        m.ID,
		SetID:     m.SetID,
		Question:  m.Question,
		Answer:    m.Answer,
		Position:  m.Position,
		CreatedAt: m.CreatedAt,
	}
}

func (r *sqlxFlashcardSetRepository) CreateSet(ctx context.Context, set *domain.FlashcardSet) error {
	now := time.Now()
	if set.CreatedAt.IsZero() {
		set.CreatedAt = now
	}
	set.UpdatedAt = set.CreatedAt

	m := &models.FlashcardSet{
		ID:               set.ID,
		OwnerID:          set.OwnerID,
		Title:            set.Title,
		SourceDocumentID: util.StringToNullString(set.SourceDocumentID),
		CardCount:        set.CardCount,
		CreatedAt:        set.CreatedAt,
		UpdatedAt:        set.UpdatedAt,
	}
	query := `INSERT INTO flashcard_sets (` + setColumns + `)
	          VALUES (:id, :owner_id, :title, :source_document_id, :card_count, :created_at, :updated_at)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to create flashcard set: %w", err)
	}
	return nil
}

// InsertFlashcards writes all cards with a single multi-row insert.
func (r *sqlxFlashcardSetRepository) InsertFlashcards(ctx context.Context, cards []*domain.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		rows = append(rows, models.Flashcard{
			ID:        c.ID,
			SetID:     c.SetID,
			Question:  c.Question,
			Answer:    c.Answer,
			Position:  c.Position,
			CreatedAt: c.CreatedAt,
		})
	}
	query := `INSERT INTO flashcards (id, set_id, question, answer, position, created_at)
	          VALUES (:id, :set_id, :question, :answer, :position, :created_at)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, rows); err != nil {
		return fmt.Errorf("failed to insert flashcards: %w", err)
	}
	return nil
}

func (r *sqlxFlashcardSetRepository) GetSetByID(ctx context.Context, setID string) (*domain.FlashcardSet, error) {
	var m models.FlashcardSet
	query := `SELECT ` + setColumns + ` FROM flashcard_sets WHERE id = $1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, setID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get flashcard set by id: %w", err)
	}
	return toDomainFlashcardSet(&m), nil
}

func (r *sqlxFlashcardSetRepository) ListSetsByOwner(ctx context.Context, ownerID string) ([]*domain.FlashcardSet, error) {
	var rows []models.FlashcardSet
	query := `SELECT ` + setColumns + ` FROM flashcard_sets WHERE owner_id = $1 ORDER BY created_at DESC`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list flashcard sets: %w", err)
	}
	sets := make([]*domain.FlashcardSet, 0, len(rows))
	for i := range rows {
		sets = append(sets, toDomainFlashcardSet(&rows[i]))
	}
	return sets, nil
}

func (r *sqlxFlashcardSetRepository) GetFlashcardsBySetID(ctx context.Context, setID string) ([]*domain.Flashcard, error) {
	var rows []models.Flashcard
	query := `SELECT id, set_id, question, answer, position, created_at FROM flashcards WHERE set_id = $1 ORDER BY position`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, setID); err != nil {
		return nil, fmt.Errorf("failed to get flashcards: %w", err)
	}
	cards := make([]*domain.Flashcard, 0, len(rows))
	for i := range rows {
		cards = append(cards, toDomainFlashcard(&rows[i]))
	}
	return cards, nil
}

func (r *sqlxFlashcardSetRepository) UpdateSetTitle(ctx context.Context, setID, title string) error {
	query := `UPDATE flashcard_sets SET title = $2, updated_at = $3 WHERE id = $1`
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, setID, title, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update flashcard set title: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NewSetNotFoundError(setID)
	}
	return nil
}

// DeleteSet removes the set; cards and attempts go with it through ON DELETE CASCADE.
func (r *sqlxFlashcardSetRepository) DeleteSet(ctx context.Context, setID string) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM flashcard_sets WHERE id = $1`, setID)
	if err != nil {
		return fmt.Errorf("failed to delete flashcard set: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NewSetNotFoundError(setID)
	}
	return nil
}
