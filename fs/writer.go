package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/sdsget"
)

// Ensure Writer implements sdsget.DocumentWriter at compile time.
var _ sdsget.DocumentWriter = (*Writer)(nil)

// Writer writes validated documents into a base directory, created on
// demand.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteDocument writes the document bytes and returns the final path.
// Disposition-derived filenames come from the vendor, so any path
// components are stripped before joining.
func (w *Writer) WriteDocument(ctx context.Context, doc *sdsget.Document) (string, error) {
	if doc.Filename == "" {
		return "", sdsget.Errorf(sdsget.EINVALID, "document filename required")
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return "", err
	}

	fullPath := filepath.Join(w.baseDir, filepath.Base(doc.Filename))
	if err := os.WriteFile(fullPath, doc.Body, 0644); err != nil {
		return "", err
	}
	return fullPath, nil
}
