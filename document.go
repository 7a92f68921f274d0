package sdsget

import "context"

// DocumentRequest describes one document fetch against a vendor endpoint.
// It is immutable once constructed: produced by a provider adapter,
// consumed by the transport call and the validator.
type DocumentRequest struct {
	Product  *ProductReference
	Language string
	URL      string
	Method   string
	Form     map[string]string
	Headers  map[string]string
}

// Response is the transport-level result of a document fetch, before
// validation.
type Response struct {
	StatusCode  int
	ContentType string
	Disposition string
	Body        []byte
	URL         string
}

// Document is a fetched response that passed validation.
type Document struct {
	// Filename derived from the disposition header, or the deterministic
	// fallback pattern when the vendor omits disposition metadata.
	Filename string

	// Body holds the document bytes.
	Body []byte

	// SourceURL is the URL the document was fetched from.
	SourceURL string

	// ContentType as declared by the vendor.
	ContentType string
}

// DownloadRecord records one successfully validated and persisted document
// fetch. Records are append-only and never mutated after creation.
type DownloadRecord struct {
	FilePath  string            `json:"path"`
	Languages []string          `json:"languages"`
	SourceURL string            `json:"sourceUrl"`
	Metadata  map[string]string `json:"metadata"`
}

// RunSummary aggregates the outcomes of one acquisition run. It is built
// once at the end of a run and is the sole machine-readable output besides
// the files on disk.
type RunSummary struct {
	Provider   string            `json:"provider"`
	Product    string            `json:"product"`
	ProductURL string            `json:"productUrl,omitempty"`
	Downloads  []DownloadRecord  `json:"downloads"`
	Notes      map[string]string `json:"notes,omitempty"`
}

// DocumentWriter persists validated documents.
type DocumentWriter interface {
	// WriteDocument writes the document bytes and returns the final
	// file path.
	WriteDocument(ctx context.Context, doc *Document) (string, error)
}
