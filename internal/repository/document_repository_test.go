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

func TestDocumentRepository(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXDocumentRepository(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents`)).
		WithArgs("doc1", "u1", "notes.pdf", "application/pdf", "pdf", "u1/doc1-notes.pdf", int64(2048), "uploaded", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cols := []string{"id", "owner_id", "file_name", "content_type", "kind", "storage_path", "size_bytes", "status", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM documents WHERE id = $1`)).WithArgs("doc1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("doc1", "u1", "notes.pdf", "application/pdf", "pdf", "u1/doc1-notes.pdf", 2048, "processed", now))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM documents WHERE id = $1`)).WithArgs("gone").WillReturnError(sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET status = $2 WHERE id = $1`)).
		WithArgs("doc1", "failed").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE id = $1`)).
		WithArgs("doc1").WillReturnResult(sqlmock.NewResult(0, 1))

	doc := &domain.Document{
		ID: "doc1", OwnerID: "u1", FileName: "notes.pdf", ContentType: "application/pdf",
		Kind: domain.DocumentKindPDF, StoragePath: "u1/doc1-notes.pdf", SizeBytes: 2048,
	}
	require.NoError(t, repo.CreateDocument(ctx, doc))
	assert.Equal(t, domain.DocumentUploaded, doc.Status)

	got, err := repo.GetDocumentByID(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentProcessed, got.Status)
	assert.Equal(t, domain.DocumentKindPDF, got.Kind)

	got, err = repo.GetDocumentByID(ctx, "gone")
	assert.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.UpdateDocumentStatus(ctx, "doc1", domain.DocumentFailed))
	require.NoError(t, repo.DeleteDocument(ctx, "doc1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
