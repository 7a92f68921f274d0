// Package fetch drives an acquisition run: it resolves the product set,
// expands it by requested languages, invokes the provider per
// (product, language) pair, persists validated documents and builds the
// run summary.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sdsget"
)

// Request describes one acquisition run. Exactly one of ProductURLs,
// SearchTerm or Catalog selects the product set.
type Request struct {
	// ProductURLs are product page URLs, resolved individually.
	ProductURLs []string

	// SearchTerm is a free-text product query, resolved to the first
	// matching product.
	SearchTerm string

	// Catalog enumerates a vendor category for bulk retrieval.
	Catalog sdsget.CatalogPager

	// Languages are the requested document languages. Empty means the
	// provider's declared list, falling back to the product locale.
	Languages []string

	// PageSize and MaxProducts bound catalog enumeration.
	PageSize    int
	MaxProducts int
}

// Runner orchestrates a run over one provider. Execution is strictly
// sequential: one (product, language) pair in flight at a time.
type Runner struct {
	Provider sdsget.Provider
	Writer   sdsget.DocumentWriter

	// Limiter paces document fetches. Optional.
	Limiter sdsget.VendorLimiter

	// Ledger records download history. Optional and advisory: a ledger
	// failure never fails the run.
	Ledger sdsget.DownloadLedger

	Logger *slog.Logger

	// Now is the clock used for ledger timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Run executes the acquisition. The summary covers all completed work
// even when an error is returned: a session failure aborts the remainder
// of the run, while per-(product, language) failures are recorded as
// notes and skipped.
func (r *Runner) Run(ctx context.Context, req *Request) (*sdsget.RunSummary, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	summary := &sdsget.RunSummary{
		Provider: r.Provider.Name(),
		Notes:    make(map[string]string),
	}

	refs, err := r.resolveProducts(ctx, req, summary)
	if err != nil {
		return summary, err
	}
	if len(refs) == 0 {
		return summary, sdsget.Errorf(sdsget.ENOTFOUND, "no products to fetch")
	}
	summary.Product = refs[0].ProductCode
	summary.ProductURL = refs[0].CatalogURL

	for _, ref := range refs {
		if err := r.Provider.PrimeSession(ctx, ref); err != nil {
			if sdsget.ErrorCode(err) == sdsget.ESESSION {
				return summary, err
			}
			logger.Warn("skipping product: session priming failed",
				"product", ref.ProductCode, "error", err)
			summary.Notes[ref.ProductCode] = sdsget.ErrorMessage(err)
			continue
		}

		for _, language := range r.languagesFor(req, ref) {
			if abort, err := r.fetchOne(ctx, ref, language, summary, logger); abort {
				return summary, err
			}
		}
	}

	return summary, nil
}

// fetchOne fetches, validates and persists one (product, language) pair.
// The returned bool requests a run abort; all other failures are
// recorded and skipped.
func (r *Runner) fetchOne(ctx context.Context, ref *sdsget.ProductReference, language string, summary *sdsget.RunSummary, logger *slog.Logger) (bool, error) {
	noteKey := fmt.Sprintf("%s/%s", ref.ProductCode, language)

	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx, ref.Vendor); err != nil {
			return true, sdsget.Errorf(sdsget.EINTERNAL, "rate limiter interrupted: %v", err)
		}
	}

	doc, err := r.Provider.FetchDocument(ctx, ref, language)
	if err != nil {
		if sdsget.ErrorCode(err) == sdsget.ESESSION {
			return true, err
		}
		logger.Warn("skipping language",
			"product", ref.ProductCode, "language", language,
			"code", sdsget.ErrorCode(err), "error", sdsget.ErrorMessage(err))
		summary.Notes[noteKey] = sdsget.ErrorMessage(err)
		return false, nil
	}

	path, err := r.Writer.WriteDocument(ctx, doc)
	if err != nil {
		logger.Warn("failed to persist document",
			"product", ref.ProductCode, "language", language, "error", err)
		summary.Notes[noteKey] = sdsget.ErrorMessage(err)
		return false, nil
	}

	hash := fmt.Sprintf("%016x", xxhash.Sum64(doc.Body))
	summary.Downloads = append(summary.Downloads, sdsget.DownloadRecord{
		FilePath:  path,
		Languages: []string{language},
		SourceURL: doc.SourceURL,
		Metadata: map[string]string{
			"contentHash": hash,
			"contentType": doc.ContentType,
		},
	})
	logger.Info("downloaded document",
		"product", ref.ProductCode, "language", language, "path", path)

	r.recordDownload(ctx, ref, language, path, doc, hash, logger)
	return false, nil
}

// recordDownload appends to the advisory ledger; failures are logged and
// otherwise ignored.
func (r *Runner) recordDownload(ctx context.Context, ref *sdsget.ProductReference, language, path string, doc *sdsget.Document, hash string, logger *slog.Logger) {
	if r.Ledger == nil {
		return
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	entry := &sdsget.LedgerEntry{
		Provider:    r.Provider.Name(),
		ProductCode: ref.ProductCode,
		CountryCode: ref.CountryCode,
		Language:    language,
		FilePath:    path,
		SourceURL:   doc.SourceURL,
		ContentHash: hash,
		Size:        len(doc.Body),
		FetchedAt:   now(),
	}
	if err := r.Ledger.RecordDownload(ctx, entry); err != nil {
		logger.Warn("failed to record download in ledger", "error", err)
	}
}

// resolveProducts materializes the product set for the run. Catalog
// enumeration resolves lazily but the run itself walks products in
// order, so the full set is collected up front.
func (r *Runner) resolveProducts(ctx context.Context, req *Request, summary *sdsget.RunSummary) ([]*sdsget.ProductReference, error) {
	switch {
	case req.Catalog != nil:
		return r.enumerate(ctx, req, summary)

	case len(req.ProductURLs) > 0:
		refs := make([]*sdsget.ProductReference, 0, len(req.ProductURLs))
		for _, rawURL := range req.ProductURLs {
			ref, err := r.Provider.ResolveProduct(ctx, rawURL)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		return refs, nil

	case req.SearchTerm != "":
		ref, err := r.Provider.ResolveProduct(ctx, req.SearchTerm)
		if err != nil {
			return nil, err
		}
		return []*sdsget.ProductReference{ref}, nil

	default:
		return nil, sdsget.Errorf(sdsget.EINVALID, "a product URL, search term or category is required")
	}
}

func (r *Runner) enumerate(ctx context.Context, req *Request, summary *sdsget.RunSummary) ([]*sdsget.ProductReference, error) {
	enum := NewEnumerator(req.Catalog, req.PageSize, req.MaxProducts)
	var refs []*sdsget.ProductReference
	for {
		ref, ok, err := enum.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		refs = append(refs, ref)
	}
	summary.Notes["categoryTotal"] = fmt.Sprintf("%d", enum.Total())
	return refs, nil
}

// languagesFor decides the language set for one product: the normalized
// requested list, else the provider's declared list in page order, else
// the product locale.
func (r *Runner) languagesFor(req *Request, ref *sdsget.ProductReference) []string {
	if languages := sdsget.NormalizeLanguages(req.Languages); len(languages) > 0 {
		return languages
	}
	if lister, ok := r.Provider.(sdsget.LanguageLister); ok {
		if declared := lister.AvailableLanguages(ref); len(declared) > 0 {
			return declared
		}
	}
	if ref.LocaleCode != "" {
		return []string{ref.LocaleCode}
	}
	return nil
}
