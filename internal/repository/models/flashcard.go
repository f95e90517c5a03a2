package models

import (
	"database/sql"
	"time"
)

type Document struct {
	ID          string    `db:"id"`
	OwnerID     string    `db:"owner_id"`
	FileName    string    `db:"file_name"`
	ContentType string    `db:"content_type"`
	Kind        string    `db:"kind"`
	StoragePath string    `db:"storage_path"`
	SizeBytes   int64     `db:"size_bytes"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

type FlashcardSet struct {
	ID               string         `db:"id"`
	OwnerID          string         `db:"owner_id"`
	Title            string         `db:"title"`
	SourceDocumentID sql.NullString `db:"source_document_id"`
	CardCount        int            `db:"card_count"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type Flashcard struct {
	ID        string    `db:"id"`
	SetID     string    `db:"set_id"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

type QuizAttempt struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	SetID          string    `db:"set_id"`
	TotalQuestions int       `db:"total_questions"`
	CorrectAnswers int       `db:"correct_answers"`
	Percentage     int       `db:"percentage"`
	CompletedAt    time.Time `db:"completed_at"`
}
