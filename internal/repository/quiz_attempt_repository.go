package repository

import (
	"context"
	"fmt"
	"time"

	"study-deck/internal/domain"
	"study-deck/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

type sqlxQuizAttemptRepository struct {
	db *sqlx.DB
}

func NewSQLXQuizAttemptRepository(db *sqlx.DB) domain.QuizAttemptRepository {
	return &sqlxQuizAttemptRepository{db: db}
}

func toDomainQuizAttempt(m *models.QuizAttempt) *domain.QuizAttempt {
	return &domain.QuizAttempt{
		ID:             m.ID,
		UserID:         m.UserID,
		SetID:          m.SetID,
		TotalQuestions: m.TotalQuestions,
		CorrectAnswers: m.CorrectAnswers,
		Percentage:     m.Percentage,
		CompletedAt:    m.CompletedAt,
	}
}

func (r *sqlxQuizAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) error {
	if attempt.CompletedAt.IsZero() {
		attempt.CompletedAt = time.Now()
	}
	m := &models.QuizAttempt{
		ID:             attempt.ID,
		UserID:         attempt.UserID,
		SetID:          attempt.SetID,
		TotalQuestions: attempt.TotalQuestions,
		CorrectAnswers: attempt.CorrectAnswers,
		Percentage:     attempt.Percentage,
		CompletedAt:    attempt.CompletedAt,
	}
	query := `INSERT INTO quiz_attempts (id, user_id, set_id, total_questions, correct_answers, percentage, completed_at)
	          VALUES (:id, :user_id, :set_id, :total_questions, :correct_answers, :percentage, :completed_at)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}
	return nil
}

// ListAttempts returns a user's attempts on one set, newest first, with the total count.
func (r *sqlxQuizAttemptRepository) ListAttempts(ctx context.Context, userID, setID string, limit, offset int) ([]*domain.QuizAttempt, int, error) {
	exec := GetExecutor(ctx, r.db)

	var total int
	countQuery := `SELECT COUNT(*) FROM quiz_attempts WHERE user_id = $1 AND set_id = $2`
	if err := exec.GetContext(ctx, &total, countQuery, userID, setID); err != nil {
		return nil, 0, fmt.Errorf("failed to count quiz attempts: %w", err)
	}
	if total == 0 {
		return []*domain.QuizAttempt{}, 0, nil
	}

	var rows []models.QuizAttempt
	query := `SELECT id, user_id, set_id, total_questions, correct_answers, percentage, completed_at
	          FROM quiz_attempts WHERE user_id = $1 AND set_id = $2
	          ORDER BY completed_at DESC LIMIT $3 OFFSET $4`
	if err := exec.SelectContext(ctx, &rows, query, userID, setID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list quiz attempts: %w", err)
	}
	attempts := make([]*domain.QuizAttempt, 0, len(rows))
	for i := range rows {
		attempts = append(attempts, toDomainQuizAttempt(&rows[i]))
	}
	return attempts, total, nil
}
