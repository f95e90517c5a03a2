package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"study-deck/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizAttemptRepository_CreateAttempt(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXQuizAttemptRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO quiz_attempts`)).
		WithArgs("a1", "u1", "s1", 10, 7, 70, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	attempt := &domain.QuizAttempt{ID: "a1", UserID: "u1", SetID: "s1", TotalQuestions: 10, CorrectAnswers: 7, Percentage: 70}
	require.NoError(t, repo.CreateAttempt(context.Background(), attempt))
	assert.False(t, attempt.CompletedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizAttemptRepository_ListAttempts(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXQuizAttemptRepository(db)
	now := time.Now()

	t.Run("page", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM quiz_attempts`)).WithArgs("u1", "s1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		cols := []string{"id", "user_id", "set_id", "total_questions", "correct_answers", "percentage", "completed_at"}
		mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY completed_at DESC LIMIT $3 OFFSET $4`)).WithArgs("u1", "s1", 2, 0).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("a3", "u1", "s1", 4, 4, 100, now).
				AddRow("a2", "u1", "s1", 4, 3, 75, now.Add(-time.Minute)))

		attempts, total, err := repo.ListAttempts(context.Background(), "u1", "s1", 2, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, attempts, 2)
		assert.Equal(t, 100, attempts[0].Percentage)
	})

	t.Run("empty skips select", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM quiz_attempts`)).WithArgs("u1", "s2").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		attempts, total, err := repo.ListAttempts(context.Background(), "u1", "s2", 20, 0)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.NotNil(t, attempts)
		assert.Empty(t, attempts)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
