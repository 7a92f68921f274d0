package resty

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/sdsget"
	"github.com/go-resty/resty/v2"
)

// DefaultTCITimeout bounds one TCI request.
const DefaultTCITimeout = 60 * time.Second

const (
	tciName = "tci"

	// tciSDSEndpointPath is the discovery endpoint, relative to the
	// page-declared context path.
	tciSDSEndpointPath = "/documentSearch/productSDSSearchDoc"
)

// tciProductURLRE is the vendor's product URL grammar:
// /{COUNTRY}/{lang}/p/{productCode}.
var tciProductURLRE = regexp.MustCompile(`^https://www\.tcichemicals\.com/([A-Z]{2})/([a-z]{2})/p/([^/?#]+)`)

// Compile-time interface verification.
var (
	_ sdsget.Provider       = (*TCIProvider)(nil)
	_ sdsget.LanguageLister = (*TCIProvider)(nil)
)

// TCIProvider is the form-submission provider variant. The vendor is
// cookie-gated: requests carry a session bundle minted by the external
// session-refresh collaborator (or reused from the on-disk cache), and
// the document is obtained by POSTing the page-declared product facts to
// a discovery endpoint. The POST response body is the document payload.
type TCIProvider struct {
	client    *resty.Client
	store     sdsget.SessionStore
	refresher sdsget.SessionRefresher
	extractor sdsget.MetadataExtractor
	logger    *slog.Logger

	// ReuseSession loads the cached session bundle instead of invoking
	// the refresh collaborator. No freshness check is applied; a stale
	// bundle surfaces downstream as an HTTP or validation failure.
	ReuseSession bool

	session *sdsget.ProviderSession
	meta    *sdsget.Metadata
}

// NewTCIProvider creates a provider with its session and metadata
// collaborators.
func NewTCIProvider(store sdsget.SessionStore, refresher sdsget.SessionRefresher, extractor sdsget.MetadataExtractor, opts ...Option) *TCIProvider {
	client, o := newClient(DefaultTCITimeout, false, opts)
	return &TCIProvider{
		client:    client,
		store:     store,
		refresher: refresher,
		extractor: extractor,
		logger:    o.logger,
	}
}

// Name returns the provider identifier.
func (p *TCIProvider) Name() string { return tciName }

// ResolveProduct parses a product page URL. The product code recovered
// from the URL is provisional; metadata extraction replaces it with the
// page-declared canonical code during PrimeSession.
func (p *TCIProvider) ResolveProduct(ctx context.Context, identifier string) (*sdsget.ProductReference, error) {
	m := tciProductURLRE.FindStringSubmatch(identifier)
	if m == nil {
		return nil, sdsget.Errorf(sdsget.EINVALID, "not a recognized product URL: %s", identifier)
	}
	return &sdsget.ProductReference{
		Vendor:      tciName,
		CountryCode: m[1],
		LocaleCode:  m[2],
		ProductCode: m[3],
		CatalogURL:  identifier,
	}, nil
}

// PrimeSession establishes the session bundle, fetches the product page
// with it, and extracts the document metadata. A successful extraction
// refreshes the session's anti-forgery token.
func (p *TCIProvider) PrimeSession(ctx context.Context, ref *sdsget.ProductReference) error {
	session, err := p.establishSession(ctx, ref.CatalogURL)
	if err != nil {
		return err
	}
	p.session = session
	p.applySession(session)

	res, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", htmlAccept).
		Get(ref.CatalogURL)
	if err != nil {
		return transportError(err)
	}
	if res.StatusCode() != http.StatusOK {
		return sdsget.Errorf(sdsget.ESTATUS, "product page returned HTTP %d", res.StatusCode())
	}

	meta, err := p.extractor.Extract(string(res.Body()))
	if err != nil {
		return err
	}
	p.meta = meta

	if meta.CSRFToken == "" {
		p.logger.Warn("anti-forgery token not found in product page; document requests may be rejected",
			"product", ref.ProductCode)
	} else {
		session.CSRFToken = meta.CSRFToken
	}

	// Page-declared facts are canonical.
	ref.ProductCode = meta.ProductCode
	ref.CountryCode = meta.CountryCode
	return nil
}

// AvailableLanguages returns the page-declared language codes in page
// order. Empty until PrimeSession has extracted metadata.
func (p *TCIProvider) AvailableLanguages(ref *sdsget.ProductReference) []string {
	if p.meta == nil {
		return nil
	}
	return p.meta.LanguageCodes()
}

// FetchDocument submits the discovery form for one language. A language
// the page does not declare is rejected with ELANGUAGE before any request
// is issued.
func (p *TCIProvider) FetchDocument(ctx context.Context, ref *sdsget.ProductReference, language string) (*sdsget.Document, error) {
	if p.meta == nil {
		return nil, sdsget.Errorf(sdsget.EINTERNAL, "product metadata not loaded; prime the session first")
	}
	if len(p.meta.Languages) > 0 && !p.meta.HasLanguage(language) {
		return nil, sdsget.Errorf(sdsget.ELANGUAGE, "language %q not offered by the product page", language)
	}

	origin, err := baseURL(ref.CatalogURL)
	if err != nil {
		return nil, err
	}

	form := map[string]string{
		"productCode":     strings.ToUpper(p.meta.ProductCode),
		"langSelector":    language,
		"selectedCountry": p.meta.CountryCode,
	}
	if p.session != nil && p.session.CSRFToken != "" {
		form["CSRFToken"] = p.session.CSRFToken
	}

	req := &sdsget.DocumentRequest{
		Product:  ref,
		Language: language,
		URL:      origin + strings.TrimSuffix(p.meta.ContextPath, "/") + tciSDSEndpointPath,
		Method:   http.MethodPost,
		Form:     form,
		Headers: map[string]string{
			"Accept":           "*/*",
			"Origin":           origin,
			"Referer":          ref.CatalogURL,
			"X-Requested-With": "XMLHttpRequest",
			"Content-Type":     "application/x-www-form-urlencoded; charset=UTF-8",
		},
	}

	resp, err := do(ctx, p.client, req)
	if err != nil {
		return nil, err
	}
	return sdsget.ValidateResponse(resp, ref, language)
}

// establishSession loads the cached bundle when reuse is requested,
// otherwise invokes the refresh collaborator and persists the result.
func (p *TCIProvider) establishSession(ctx context.Context, seedURL string) (*sdsget.ProviderSession, error) {
	if p.ReuseSession {
		session, err := p.store.Load(ctx)
		if err == nil {
			return session, nil
		}
		p.logger.Warn("cached session unavailable, refreshing",
			"reason", sdsget.ErrorMessage(err))
	}

	session, err := p.refresher.Refresh(ctx, seedURL)
	if err != nil {
		if sdsget.ErrorCode(err) == sdsget.ESESSION {
			return nil, err
		}
		return nil, sdsget.Errorf(sdsget.ESESSION, "session refresh failed: %v", err)
	}

	if err := p.store.Save(ctx, session); err != nil {
		p.logger.Warn("failed to cache session bundle", "error", err)
	}
	return session, nil
}

// applySession installs the bundle's cookies and headers on the client.
func (p *TCIProvider) applySession(session *sdsget.ProviderSession) {
	cookies := make([]*http.Cookie, 0, len(session.Cookies))
	for name, value := range session.Cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	p.client.SetCookies(cookies)
	p.client.SetHeaders(session.Headers)
}

// TCIProductURL serializes a reference back into its canonical product
// page URL.
func TCIProductURL(ref *sdsget.ProductReference) string {
	return fmt.Sprintf("https://www.tcichemicals.com/%s/%s/p/%s",
		ref.CountryCode, ref.LocaleCode, ref.ProductCode)
}
