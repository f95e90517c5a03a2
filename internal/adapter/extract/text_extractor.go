package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"study-deck/internal/domain"
)

// PlainTextExtractor returns UTF-8 text uploads as they are.
type PlainTextExtractor struct{}

func (PlainTextExtractor) ExtractText(_ context.Context, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("text file is not valid UTF-8")
	}
	return strings.TrimSpace(string(data)), nil
}

// Registry picks the extractor for a document kind.
type Registry struct {
	extractors map[domain.DocumentKind]domain.TextExtractor
}

func NewRegistry() *Registry {
	return &Registry{extractors: map[domain.DocumentKind]domain.TextExtractor{
		domain.DocumentKindPDF:  NewPDFExtractor(),
		domain.DocumentKindText: PlainTextExtractor{},
	}}
}

// For returns the extractor for kind, or nil for kinds that are not text based.
func (r *Registry) For(kind domain.DocumentKind) domain.TextExtractor {
	return r.extractors[kind]
}
