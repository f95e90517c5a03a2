package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"study-deck/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileRowColumns = []string{"id", "email", "role", "is_premium", "upload_count", "premium_since", "created_at", "updated_at"}

func TestProfileRepository_GetProfileByID(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXProfileRepository(db)
	now := time.Now().Truncate(time.Second)
	id := "7b3c1f0e-6a1d-4c1b-9f61-3f0a3c7d2e11"

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(profileRowColumns).
			AddRow(id, "ana@example.com", "admin", true, 5, now, now, now)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM profiles WHERE id = $1`)).WithArgs(id).WillReturnRows(rows)

		p, err := repo.GetProfileByID(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, domain.RoleAdmin, p.Role)
		assert.True(t, p.IsAdmin())
		assert.True(t, p.IsPremium)
		assert.Equal(t, 5, p.UploadCount)
		require.NotNil(t, p.PremiumSince)
		assert.True(t, now.Equal(*p.PremiumSince))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM profiles WHERE id = $1`)).WithArgs(id).WillReturnError(sql.ErrNoRows)

		p, err := repo.GetProfileByID(context.Background(), id)
		assert.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM profiles WHERE id = $1`)).WithArgs(id).WillReturnError(sql.ErrConnDone)

		p, err := repo.GetProfileByID(context.Background(), id)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Nil(t, p)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_GetProfileByEmailLowercases(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXProfileRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(profileRowColumns).AddRow("u1", "Ana@Example.com", "user", false, 0, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE lower(email) = $1`)).WithArgs("ana@example.com").WillReturnRows(rows)

	p, err := repo.GetProfileByEmail(context.Background(), "  Ana@Example.COM ")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.PremiumSince)
	assert.False(t, p.IsAdmin())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_UpsertProfile(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO profiles`)+`.*`+regexp.QuoteMeta(`ON CONFLICT (id) DO UPDATE`)).
		WithArgs("u1", "ana@example.com", "user", false, 0, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertProfile(context.Background(), &domain.Profile{ID: "u1", Email: "ana@example.com"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Updates(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXProfileRepository(db)
	ctx := context.Background()
	since := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`SET upload_count = upload_count + 1`)).
		WithArgs("u1", 3, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND (is_premium OR upload_count < $2)`)).
		WithArgs("u1", 3, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`SET is_premium = TRUE`)).
		WithArgs("u1", since).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SET role = $2`)).
		WithArgs("u1", "admin", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SET role = $2`)).
		WithArgs("ghost", "admin", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.ConsumeUpload(ctx, "u1", 3)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ConsumeUpload(ctx, "u1", 3)
	require.NoError(t, err)
	assert.False(t, ok, "quota exhausted")
	require.NoError(t, repo.SetPremium(ctx, "u1", since))
	require.NoError(t, repo.SetRole(ctx, "u1", domain.RoleAdmin))

	err = repo.SetRole(ctx, "ghost", domain.RoleAdmin)
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
