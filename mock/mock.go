// Package mock provides mock implementations of the sdsget interfaces
// for use in tests.
package mock

import (
	"context"

	"github.com/fwojciec/sdsget"
)

// Compile-time interface verification.
var (
	_ sdsget.Provider              = (*Provider)(nil)
	_ sdsget.LanguageLister        = (*LanguageListingProvider)(nil)
	_ sdsget.SessionStore          = (*SessionStore)(nil)
	_ sdsget.SessionRefresher      = (*SessionRefresher)(nil)
	_ sdsget.MetadataExtractor     = (*MetadataExtractor)(nil)
	_ sdsget.SearchResultExtractor = (*SearchResultExtractor)(nil)
	_ sdsget.DocumentWriter        = (*DocumentWriter)(nil)
	_ sdsget.DownloadLedger        = (*DownloadLedger)(nil)
	_ sdsget.VendorLimiter         = (*VendorLimiter)(nil)
	_ sdsget.CatalogPager          = (*CatalogPager)(nil)
)

type Provider struct {
	NameFn           func() string
	ResolveProductFn func(ctx context.Context, identifier string) (*sdsget.ProductReference, error)
	PrimeSessionFn   func(ctx context.Context, ref *sdsget.ProductReference) error
	FetchDocumentFn  func(ctx context.Context, ref *sdsget.ProductReference, language string) (*sdsget.Document, error)
}

func (m *Provider) Name() string {
	if m.NameFn == nil {
		return "mock"
	}
	return m.NameFn()
}

func (m *Provider) ResolveProduct(ctx context.Context, identifier string) (*sdsget.ProductReference, error) {
	return m.ResolveProductFn(ctx, identifier)
}

func (m *Provider) PrimeSession(ctx context.Context, ref *sdsget.ProductReference) error {
	if m.PrimeSessionFn == nil {
		return nil
	}
	return m.PrimeSessionFn(ctx, ref)
}

func (m *Provider) FetchDocument(ctx context.Context, ref *sdsget.ProductReference, language string) (*sdsget.Document, error) {
	return m.FetchDocumentFn(ctx, ref, language)
}

// LanguageListingProvider is a Provider that also lists the languages a
// product page declares.
type LanguageListingProvider struct {
	Provider
	AvailableLanguagesFn func(ref *sdsget.ProductReference) []string
}

func (m *LanguageListingProvider) AvailableLanguages(ref *sdsget.ProductReference) []string {
	return m.AvailableLanguagesFn(ref)
}

type SessionStore struct {
	LoadFn func(ctx context.Context) (*sdsget.ProviderSession, error)
	SaveFn func(ctx context.Context, session *sdsget.ProviderSession) error
}

func (m *SessionStore) Load(ctx context.Context) (*sdsget.ProviderSession, error) {
	return m.LoadFn(ctx)
}

func (m *SessionStore) Save(ctx context.Context, session *sdsget.ProviderSession) error {
	if m.SaveFn == nil {
		return nil
	}
	return m.SaveFn(ctx, session)
}

type SessionRefresher struct {
	RefreshFn func(ctx context.Context, seedURL string) (*sdsget.ProviderSession, error)
	CloseFn   func() error
}

func (m *SessionRefresher) Refresh(ctx context.Context, seedURL string) (*sdsget.ProviderSession, error) {
	return m.RefreshFn(ctx, seedURL)
}

func (m *SessionRefresher) Close() error {
	if m.CloseFn == nil {
		return nil
	}
	return m.CloseFn()
}

type MetadataExtractor struct {
	ExtractFn func(html string) (*sdsget.Metadata, error)
}

func (m *MetadataExtractor) Extract(html string) (*sdsget.Metadata, error) {
	return m.ExtractFn(html)
}

type SearchResultExtractor struct {
	FirstResultFn func(html, baseURL string) (string, error)
}

func (m *SearchResultExtractor) FirstResult(html, baseURL string) (string, error) {
	return m.FirstResultFn(html, baseURL)
}

type DocumentWriter struct {
	WriteDocumentFn func(ctx context.Context, doc *sdsget.Document) (string, error)
}

func (m *DocumentWriter) WriteDocument(ctx context.Context, doc *sdsget.Document) (string, error) {
	return m.WriteDocumentFn(ctx, doc)
}

type DownloadLedger struct {
	RecordDownloadFn func(ctx context.Context, entry *sdsget.LedgerEntry) error
	ListDownloadsFn  func(ctx context.Context, filter sdsget.LedgerFilter) ([]*sdsget.LedgerEntry, error)
}

func (m *DownloadLedger) RecordDownload(ctx context.Context, entry *sdsget.LedgerEntry) error {
	if m.RecordDownloadFn == nil {
		return nil
	}
	return m.RecordDownloadFn(ctx, entry)
}

func (m *DownloadLedger) ListDownloads(ctx context.Context, filter sdsget.LedgerFilter) ([]*sdsget.LedgerEntry, error) {
	return m.ListDownloadsFn(ctx, filter)
}

type VendorLimiter struct {
	WaitFn func(ctx context.Context, vendor string) error
}

func (m *VendorLimiter) Wait(ctx context.Context, vendor string) error {
	if m.WaitFn == nil {
		return nil
	}
	return m.WaitFn(ctx, vendor)
}

type CatalogPager struct {
	FetchPageFn func(ctx context.Context, page, pageSize int) (*sdsget.CatalogPage, error)
}

func (m *CatalogPager) FetchPage(ctx context.Context, page, pageSize int) (*sdsget.CatalogPage, error) {
	return m.FetchPageFn(ctx, page, pageSize)
}
