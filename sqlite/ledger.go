package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/sdsget"
)

// Compile-time interface verification.
var _ sdsget.DownloadLedger = (*LedgerService)(nil)

// LedgerService implements sdsget.DownloadLedger using SQLite.
type LedgerService struct {
	db *DB
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(db *DB) *LedgerService {
	return &LedgerService{db: db}
}

// RecordDownload appends an entry to the ledger.
func (s *LedgerService) RecordDownload(ctx context.Context, entry *sdsget.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO downloads (provider, product_code, country_code, language, file_path, source_url, content_hash, size, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.Provider, entry.ProductCode, entry.CountryCode, entry.Language, entry.FilePath,
		entry.SourceURL, entry.ContentHash, entry.Size, entry.FetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = int(id)
	}
	return nil
}

// ListDownloads returns entries matching the filter, newest first.
func (s *LedgerService) ListDownloads(ctx context.Context, filter sdsget.LedgerFilter) ([]*sdsget.LedgerEntry, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, provider, product_code, country_code, language, file_path, source_url, content_hash, size, fetched_at FROM downloads WHERE 1=1")

	if filter.Provider != nil {
		query.WriteString(" AND provider = ?")
		args = append(args, *filter.Provider)
	}

	query.WriteString(" ORDER BY fetched_at DESC, id DESC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*sdsget.LedgerEntry
	for rows.Next() {
		var entry sdsget.LedgerEntry
		var fetchedAt string
		if err := rows.Scan(&entry.ID, &entry.Provider, &entry.ProductCode, &entry.CountryCode,
			&entry.Language, &entry.FilePath, &entry.SourceURL, &entry.ContentHash,
			&entry.Size, &fetchedAt); err != nil {
			return nil, err
		}
		entry.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fetched_at: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
