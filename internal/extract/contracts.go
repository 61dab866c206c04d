package extract

import (
	"context"
	"mime"
	"path/filepath"

	"github.com/mrossi/gestionale/internal/draft"
)

// SourceFile is one uploaded document handed to the extraction model.
type SourceFile struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Extractor produces a draft batch from source documents. The core
// never calls the model directly; it depends on this interface, which
// enables mocking in tests and swapping the model provider.
type Extractor interface {
	ExtractDrafts(ctx context.Context, files []SourceFile) (draft.Batch, error)
}

// MIMETypeForFile guesses the MIME type from the file extension,
// defaulting to PDF, the dominant format for fatture.
func MIMETypeForFile(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/pdf"
}
