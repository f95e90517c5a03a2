package domain

import (
	"context"
	"time"
)

type DocumentKind string

const (
	DocumentKindPDF   DocumentKind = "pdf"
	DocumentKindImage DocumentKind = "image"
	DocumentKindText  DocumentKind = "text"
)

type DocumentStatus string

const (
	DocumentUploaded  DocumentStatus = "uploaded"
	DocumentProcessed DocumentStatus = "processed"
	DocumentFailed    DocumentStatus = "failed"
)

// Document is an uploaded source file kept in object storage.
type Document struct {
	ID          string
	OwnerID     string
	FileName    string
	ContentType string
	Kind        DocumentKind
	StoragePath string
	SizeBytes   int64
	Status      DocumentStatus
	CreatedAt   time.Time
}

// Upload is a file received from a client.
type Upload struct {
	FileName string
	Title    string
	Data     []byte
}

type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocumentByID(ctx context.Context, id string) (*Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status DocumentStatus) error
	DeleteDocument(ctx context.Context, id string) error
}

// FileStore is object storage organised in buckets.
type FileStore interface {
	Upload(ctx context.Context, bucket, path, contentType string, data []byte) error
	SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
	Remove(ctx context.Context, bucket string, paths ...string) error
}

// TextExtractor pulls plain text out of a document body.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// FlashcardGenerator turns study material into flashcard drafts using an LLM.
type FlashcardGenerator interface {
	GenerateFromText(ctx context.Context, text string, count int) ([]CardDraft, error)
	GenerateFromImage(ctx context.Context, mimeType string, data []byte, count int) ([]CardDraft, error)
}

type QuizAttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *QuizAttempt) error
	ListAttempts(ctx context.Context, userID, setID string, limit, offset int) ([]*QuizAttempt, int, error)
}

// TransactionManager runs fn inside a database transaction carried by ctx.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
