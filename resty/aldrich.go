package resty

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/fwojciec/sdsget"
	"github.com/go-resty/resty/v2"
)

// DefaultAldrichTimeout bounds one Sigma-Aldrich request. Document fetches
// are the slowest observed operation.
const DefaultAldrichTimeout = 90 * time.Second

const (
	aldrichName    = "aldrich"
	aldrichBaseURL = "https://www.sigmaaldrich.com"

	// AldrichResultLinkID is the anchor id prefix that marks product
	// links in search result pages.
	AldrichResultLinkID = "NAME-pdp-link-"
)

// aldrichProductURLRE is the vendor's product URL grammar:
// /{COUNTRY}/{lang}/product/{brand}/{productCode}.
var aldrichProductURLRE = regexp.MustCompile(`^https://www\.sigmaaldrich\.com/([A-Z]{2})/([a-z]{2})/product/([^/]+)/([^/?#]+)`)

// Ensure AldrichProvider implements sdsget.Provider at compile time.
var _ sdsget.Provider = (*AldrichProvider)(nil)

// AldrichProvider is the direct-URL provider variant: the document URL is
// constructed deterministically from the product reference, with no server
// round trip for discovery. Language availability cannot be verified
// before the fetch; an unsupported language surfaces as a content-type
// validation failure.
type AldrichProvider struct {
	client  *resty.Client
	results sdsget.SearchResultExtractor
	logger  *slog.Logger

	// Country and Language define the site locale used for free-text
	// search resolution. Set before use to override the defaults.
	Country  string
	Language string
}

// NewAldrichProvider creates a provider that resolves search results with
// the given extractor. The client impersonates a browser; the vendor sits
// behind bot protection.
func NewAldrichProvider(results sdsget.SearchResultExtractor, opts ...Option) *AldrichProvider {
	client, o := newClient(DefaultAldrichTimeout, true, opts)
	return &AldrichProvider{
		client:   client,
		results:  results,
		logger:   o.logger,
		Country:  "KR",
		Language: "ko",
	}
}

// Name returns the provider identifier.
func (p *AldrichProvider) Name() string { return aldrichName }

// ParseAldrichProductURL parses a product page URL against the vendor's
// path grammar, recovering (country, language, brand, productCode).
func ParseAldrichProductURL(rawURL string) (*sdsget.ProductReference, error) {
	m := aldrichProductURLRE.FindStringSubmatch(rawURL)
	if m == nil {
		return nil, sdsget.Errorf(sdsget.EINVALID, "not a recognized product URL: %s", rawURL)
	}
	ref := &sdsget.ProductReference{
		Vendor:      aldrichName,
		CountryCode: m[1],
		LocaleCode:  m[2],
		Brand:       m[3],
		ProductCode: m[4],
	}
	ref.CatalogURL = AldrichProductURL(ref)
	return ref, nil
}

// AldrichProductURL serializes a reference back into its canonical product
// page URL.
func AldrichProductURL(ref *sdsget.ProductReference) string {
	return fmt.Sprintf("%s/%s/%s/product/%s/%s",
		aldrichBaseURL, ref.CountryCode, ref.LocaleCode, ref.Brand, ref.ProductCode)
}

// AldrichSDSURL constructs the deterministic document URL for a language.
func AldrichSDSURL(ref *sdsget.ProductReference, language string) string {
	return fmt.Sprintf("%s/%s/%s/sds/%s/%s",
		aldrichBaseURL, ref.CountryCode, language, ref.Brand, ref.ProductCode)
}

// ResolveProduct accepts either a product page URL or a free-text search
// term (product name or CAS number). Search issues one request against the
// site's search page and takes the first qualifying result link.
func (p *AldrichProvider) ResolveProduct(ctx context.Context, identifier string) (*sdsget.ProductReference, error) {
	if ref, err := ParseAldrichProductURL(identifier); err == nil {
		return ref, nil
	}

	searchURL := fmt.Sprintf("%s/%s/%s/search/%s",
		aldrichBaseURL, p.Country, p.Language, url.PathEscape(identifier))
	res, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", htmlAccept).
		SetQueryParams(map[string]string{
			"focus":   "products",
			"page":    "1",
			"perpage": "30",
			"sort":    "relevance",
			"term":    identifier,
			"type":    "product",
		}).
		Get(searchURL)
	if err != nil {
		return nil, transportError(err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, sdsget.Errorf(sdsget.ESTATUS, "search returned HTTP %d", res.StatusCode())
	}

	link, err := p.results.FirstResult(string(res.Body()), finalURL(res, searchURL))
	if err != nil {
		if sdsget.ErrorCode(err) == sdsget.ENOTFOUND {
			return nil, sdsget.Errorf(sdsget.ENOTFOUND, "no product found for %q", identifier)
		}
		return nil, err
	}

	ref, err := ParseAldrichProductURL(link)
	if err != nil {
		return nil, sdsget.Errorf(sdsget.ENOTFOUND, "search result %q does not match the product URL grammar", link)
	}
	return ref, nil
}

// PrimeSession fetches the product page once to obtain cookies and verify
// access. The client is stateless otherwise; no external session
// collaborator is involved.
func (p *AldrichProvider) PrimeSession(ctx context.Context, ref *sdsget.ProductReference) error {
	res, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", htmlAccept).
		SetHeader("Accept-Language", acceptLanguage(ref.LocaleCode, ref.CountryCode)).
		Get(ref.CatalogURL)
	if err != nil {
		return transportError(err)
	}
	if res.StatusCode() != http.StatusOK {
		return sdsget.Errorf(sdsget.ESTATUS, "product page returned HTTP %d", res.StatusCode())
	}
	return nil
}

// FetchDocument fetches the SDS for one language from the constructed
// document URL and validates the response.
func (p *AldrichProvider) FetchDocument(ctx context.Context, ref *sdsget.ProductReference, language string) (*sdsget.Document, error) {
	req := &sdsget.DocumentRequest{
		Product:  ref,
		Language: language,
		URL:      AldrichSDSURL(ref, language),
		Method:   http.MethodGet,
		Headers: map[string]string{
			"Accept":          pdfAccept,
			"Accept-Language": acceptLanguage(language, ref.CountryCode),
			"Referer":         ref.CatalogURL,
		},
	}

	resp, err := do(ctx, p.client, req)
	if err != nil {
		return nil, err
	}
	return sdsget.ValidateResponse(resp, ref, language)
}
