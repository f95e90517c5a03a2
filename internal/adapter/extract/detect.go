package extract

import (
	"study-deck/internal/domain"

	"github.com/gabriel-vasile/mimetype"
)

// DetectedFile is the sniffed type of an upload.
type DetectedFile struct {
	ContentType string
	Kind        domain.DocumentKind
	Extension   string
}

var documentTypes = []struct {
	mime string
	kind domain.DocumentKind
}{
	{"application/pdf", domain.DocumentKindPDF},
	{"image/png", domain.DocumentKindImage},
	{"image/jpeg", domain.DocumentKindImage},
	{"image/webp", domain.DocumentKindImage},
	{"text/plain", domain.DocumentKindText},
}

// Detect sniffs data and accepts PDFs, PNG/JPEG/WebP images and plain text.
// The client-supplied file name and content type are never trusted.
func Detect(data []byte) (DetectedFile, error) {
	mt := mimetype.Detect(data)
	for _, t := range documentTypes {
		if mt.Is(t.mime) {
			return DetectedFile{ContentType: t.mime, Kind: t.kind, Extension: mt.Extension()}, nil
		}
	}
	return DetectedFile{}, domain.NewUnsupportedFileError(mt.String())
}

// DetectImage is Detect restricted to images, for payment screenshots.
func DetectImage(data []byte) (DetectedFile, error) {
	f, err := Detect(data)
	if err != nil {
		return f, err
	}
	if f.Kind != domain.DocumentKindImage {
		return DetectedFile{}, domain.NewUnsupportedFileError(f.ContentType)
	}
	return f, nil
}
