package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/sdsget"
	"github.com/fwojciec/sdsget/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func testEntry(product, language string, fetchedAt time.Time) *sdsget.LedgerEntry {
	return &sdsget.LedgerEntry{
		Provider:    "tci",
		ProductCode: product,
		CountryCode: "KR",
		Language:    language,
		FilePath:    "data/sds_tci/" + product + "_KR_" + language + ".pdf",
		SourceURL:   "https://www.tcichemicals.com/documentSearch/productSDSSearchDoc",
		ContentHash: "deadbeefdeadbeef",
		Size:        1024,
		FetchedAt:   fetchedAt,
	}
}

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		var count int
		err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM downloads").Scan(&count)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		require.Error(t, db.Open())
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(t.TempDir() + "/ledger.db")
		require.NoError(t, db.Open())
		defer db.Close()

		var journalMode string
		err := db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})
}

func TestLedgerService_RecordDownload(t *testing.T) {
	t.Parallel()

	t.Run("records entry and assigns an ID", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewLedgerService(setupTestDB(t))
		entry := testEntry("T0830", "ko", time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
		require.NoError(t, svc.RecordDownload(context.Background(), entry))
		assert.NotZero(t, entry.ID)
	})

	t.Run("defaults the timestamp when unset", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewLedgerService(setupTestDB(t))
		entry := testEntry("T0830", "ko", time.Time{})
		require.NoError(t, svc.RecordDownload(context.Background(), entry))
		assert.False(t, entry.FetchedAt.IsZero())
	})

	t.Run("rejects entries missing required fields", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewLedgerService(setupTestDB(t))
		err := svc.RecordDownload(context.Background(), &sdsget.LedgerEntry{})
		require.Error(t, err)
		assert.Equal(t, sdsget.EINVALID, sdsget.ErrorCode(err))
	})
}

func TestLedgerService_ListDownloads(t *testing.T) {
	t.Parallel()

	t.Run("returns entries newest first", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewLedgerService(setupTestDB(t))
		ctx := context.Background()
		base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		require.NoError(t, svc.RecordDownload(ctx, testEntry("T0830", "ko", base)))
		require.NoError(t, svc.RecordDownload(ctx, testEntry("A0001", "en", base.Add(time.Hour))))

		entries, err := svc.ListDownloads(ctx, sdsget.LedgerFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "A0001", entries[0].ProductCode)
		assert.Equal(t, "T0830", entries[1].ProductCode)
	})

	t.Run("filters by provider", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewLedgerService(setupTestDB(t))
		ctx := context.Background()
		now := time.Now().UTC()
		require.NoError(t, svc.RecordDownload(ctx, testEntry("T0830", "ko", now)))

		other := testEntry("34873", "ko", now)
		other.Provider = "aldrich"
		require.NoError(t, svc.RecordDownload(ctx, other))

		provider := "aldrich"
		entries, err := svc.ListDownloads(ctx, sdsget.LedgerFilter{Provider: &provider})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "34873", entries[0].ProductCode)
	})

	t.Run("applies the limit", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewLedgerService(setupTestDB(t))
		ctx := context.Background()
		now := time.Now().UTC()
		for _, code := range []string{"A", "B", "C"} {
			require.NoError(t, svc.RecordDownload(ctx, testEntry(code, "ko", now)))
		}

		entries, err := svc.ListDownloads(ctx, sdsget.LedgerFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}
