package dto

import "time"

type FlashcardResponse struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Position int    `json:"position"`
}

// FlashcardSetResponse is a set summary; Flashcards is filled only for single-set reads.
type FlashcardSetResponse struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	CardCount        int                 `json:"card_count"`
	SourceDocumentID string              `json:"source_document_id,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Flashcards       []FlashcardResponse `json:"flashcards,omitempty"`
}

type FlashcardSetListResponse struct {
	Sets []FlashcardSetResponse `json:"sets"`
}

// RenameSetRequest is the body of PATCH /sets/:setID.
type RenameSetRequest struct {
	Title string `json:"title"`
}
