package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"study-deck/internal/domain"
	"study-deck/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

type sqlxDocumentRepository struct {
	db *sqlx.DB
}

func NewSQLXDocumentRepository(db *sqlx.DB) domain.DocumentRepository {
	return &sqlxDocumentRepository{db: db}
}

func toDomainDocument(m *models.Document) *domain.Document {
	if m == nil {
		return nil
	}
	return &domain.Document{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		Kind:        domain.DocumentKind(m.Kind),
		StoragePath: m.StoragePath,
		SizeBytes:   m.SizeBytes,
		Status:      domain.DocumentStatus(m.Status),
		CreatedAt:   m.CreatedAt,
	}
}

func (r *sqlxDocumentRepository) CreateDocument(ctx context.Context, doc *domain.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	if doc.Status == "" {
		doc.Status = domain.DocumentUploaded
	}
	m := &models.Document{
		ID:          doc.ID,
		OwnerID:     doc.OwnerID,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		Kind:        string(doc.Kind),
		StoragePath: doc.StoragePath,
		SizeBytes:   doc.SizeBytes,
		Status:      string(doc.Status),
		CreatedAt:   doc.CreatedAt,
	}
	query := `INSERT INTO documents (id, owner_id, file_name, content_type, kind, storage_path, size_bytes, status, created_at)
	          VALUES (:id, :owner_id, :file_name, :content_type, :kind, :storage_path, :size_bytes, :status, :created_at)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *sqlxDocumentRepository) GetDocumentByID(ctx context.Context, id string) (*domain.Document, error) {
	var m models.Document
	query := `SELECT id, owner_id, file_name, content_type, kind, storage_path, size_bytes, status, created_at
	          FROM documents WHERE id = $1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document by id: %w", err)
	}
	return toDomainDocument(&m), nil
}

func (r *sqlxDocumentRepository) UpdateDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	query := `UPDATE documents SET status = $2 WHERE id = $1`
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id, string(status)); err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	return nil
}

func (r *sqlxDocumentRepository) DeleteDocument(ctx context.Context, id string) error {
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
