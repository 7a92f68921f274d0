package sdsget

import (
	"context"
	"time"
)

// LedgerEntry is one row of the download ledger: the durable record of a
// validated, persisted document fetch.
type LedgerEntry struct {
	ID          int       `json:"id"`
	Provider    string    `json:"provider"`
	ProductCode string    `json:"productCode"`
	CountryCode string    `json:"countryCode"`
	Language    string    `json:"language"`
	FilePath    string    `json:"filePath"`
	SourceURL   string    `json:"sourceUrl"`
	ContentHash string    `json:"contentHash"`
	Size        int       `json:"size"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the entry is missing required fields.
func (e *LedgerEntry) Validate() error {
	if e.Provider == "" {
		return Errorf(EINVALID, "ledger entry provider required")
	}
	if e.ProductCode == "" {
		return Errorf(EINVALID, "ledger entry product code required")
	}
	if e.FilePath == "" {
		return Errorf(EINVALID, "ledger entry file path required")
	}
	return nil
}

// LedgerFilter selects ledger entries for listing.
type LedgerFilter struct {
	Provider *string
	Limit    int
}

// DownloadLedger records download outcomes across runs. The ledger is
// advisory history only; it never gates a fetch.
type DownloadLedger interface {
	// RecordDownload appends an entry to the ledger.
	RecordDownload(ctx context.Context, entry *LedgerEntry) error

	// ListDownloads returns entries matching the filter, newest first.
	ListDownloads(ctx context.Context, filter LedgerFilter) ([]*LedgerEntry, error)
}
