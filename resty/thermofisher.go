package resty

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/sdsget"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// DefaultThermoFisherTimeout bounds one Thermo Fisher request. Document
// fetches routinely take over a minute on the APAC origin.
const DefaultThermoFisherTimeout = 120 * time.Second

const (
	thermoName    = "thermofisher"
	thermoBaseURL = "https://chemicals.thermofisher.kr/apac"

	thermoCategoryEndpoint = thermoBaseURL + "/api/search/category"
	thermoKeywordEndpoint  = thermoBaseURL + "/api/search/catalog/keyword"
	thermoChildEndpoint    = thermoBaseURL + "/api/search/catalog/child"
	thermoSDSEndpoint      = thermoBaseURL + "/api/document/search/sds"

	thermoCountry = "KR"
)

// Compile-time interface verification.
var (
	_ sdsget.Provider     = (*ThermoFisherProvider)(nil)
	_ sdsget.CatalogPager = (*ThermoFisherCatalog)(nil)
)

// thermoEnvelope is the uniform API response wrapper. The payload shape
// varies per endpoint; data stays raw until the caller decodes it.
type thermoEnvelope struct {
	Code string          `json:"code"`
	Data json.RawMessage `json:"data"`
}

type thermoCatalogData struct {
	Count   int                  `json:"count"`
	Results []thermoCatalogEntry `json:"catalogResultDTOs"`
}

type thermoCatalogEntry struct {
	RootCatalogNumber  string `json:"rootCatalogNumber"`
	ChildCatalogNumber string `json:"childCatalogNumber"`
}

type thermoChild struct {
	ChildCatalogNumber string `json:"childCatalogNumber"`
	SkuStatus          string `json:"skuStatus"`
}

// ThermoFisherProvider is the JSON API provider variant. Product facts
// come from the vendor's search API rather than page markup: a root SKU
// expands into released child SKUs, and the SDS endpoint maps the child
// set plus a language to a document URL.
type ThermoFisherProvider struct {
	client *resty.Client
	logger *slog.Logger

	// Language is the site language used for search API payloads.
	// Set before use to override the default.
	Language string

	// seedSKUs maps a root catalog number to the child SKU its search
	// result advertised. Populated by ResolveProduct and by the catalog
	// pager; used to skip the keyword search during child expansion.
	seedSKUs map[string]string

	// childSKUs caches the expanded child set per root catalog number.
	childSKUs map[string][]string

	// primed tracks URLs already prefetched for cookies.
	primed map[string]bool
}

// NewThermoFisherProvider creates the provider.
func NewThermoFisherProvider(opts ...Option) *ThermoFisherProvider {
	client, o := newClient(DefaultThermoFisherTimeout, false, opts)
	return &ThermoFisherProvider{
		client:    client,
		logger:    o.logger,
		Language:  "ko",
		seedSKUs:  make(map[string]string),
		childSKUs: make(map[string][]string),
		primed:    make(map[string]bool),
	}
}

// Name returns the provider identifier.
func (p *ThermoFisherProvider) Name() string { return thermoName }

// SeedChildSKU records the child SKU a catalog listing advertised for a
// root catalog number, letting child expansion skip the keyword search.
func (p *ThermoFisherProvider) SeedChildSKU(rootSKU, childSKU string) {
	if childSKU != "" {
		p.seedSKUs[rootSKU] = childSKU
	}
}

// ResolveProduct accepts a product page URL or a free-text search term.
// A URL yields its trailing path segment as the root catalog number; a
// term goes through the keyword search API and takes the first result.
func (p *ThermoFisherProvider) ResolveProduct(ctx context.Context, identifier string) (*sdsget.ProductReference, error) {
	if strings.HasPrefix(identifier, "http://") || strings.HasPrefix(identifier, "https://") {
		sku := lastPathSegment(identifier)
		if sku == "" {
			return nil, sdsget.Errorf(sdsget.EINVALID, "no catalog number in product URL %q", identifier)
		}
		return &sdsget.ProductReference{
			Vendor:      thermoName,
			CountryCode: thermoCountry,
			ProductCode: sku,
			CatalogURL:  identifier,
		}, nil
	}

	entry, err := p.keywordSearch(ctx, identifier)
	if err != nil {
		return nil, err
	}
	// The first result's child SKU becomes the working catalog number,
	// keyed by its own product page.
	child := entry.ChildCatalogNumber
	if child == "" {
		return nil, sdsget.Errorf(sdsget.ENOTFOUND, "no product found for %q", identifier)
	}
	p.SeedChildSKU(child, child)

	return &sdsget.ProductReference{
		Vendor:      thermoName,
		CountryCode: thermoCountry,
		ProductCode: child,
		CatalogURL:  thermoBaseURL + "/product/" + child,
	}, nil
}

// PrimeSession prefetches the product page once per distinct URL so the
// API calls that follow carry the origin's cookies.
func (p *ThermoFisherProvider) PrimeSession(ctx context.Context, ref *sdsget.ProductReference) error {
	return p.ensurePageLoaded(ctx, ref.CatalogURL)
}

// FetchDocument resolves the document URL for one language through the
// SDS lookup endpoint and fetches the payload.
func (p *ThermoFisherProvider) FetchDocument(ctx context.Context, ref *sdsget.ProductReference, language string) (*sdsget.Document, error) {
	children, err := p.collectChildSKUs(ctx, ref)
	if err != nil {
		return nil, err
	}

	docURL, err := p.lookupSDSURL(ctx, ref, children, language)
	if err != nil {
		return nil, err
	}

	req := &sdsget.DocumentRequest{
		Product:  ref,
		Language: language,
		URL:      docURL,
		Method:   http.MethodGet,
		Headers:  p.apiHeaders(ref.CatalogURL),
	}
	req.Headers["Accept"] = pdfAccept

	resp, err := do(ctx, p.client, req)
	if err != nil {
		return nil, err
	}
	return sdsget.ValidateResponse(resp, ref, language)
}

// collectChildSKUs expands a root catalog number into its released child
// SKUs, sorted and deduplicated. The seed child is the fallback when the
// child endpoint returns nothing usable.
func (p *ThermoFisherProvider) collectChildSKUs(ctx context.Context, ref *sdsget.ProductReference) ([]string, error) {
	if cached, ok := p.childSKUs[ref.ProductCode]; ok {
		return cached, nil
	}

	seed, ok := p.seedSKUs[ref.ProductCode]
	if !ok {
		entry, err := p.keywordSearch(ctx, ref.ProductCode)
		if err != nil {
			return nil, err
		}
		seed = entry.ChildCatalogNumber
		if seed == "" {
			seed = ref.ProductCode
		}
		p.SeedChildSKU(ref.ProductCode, seed)
	}
	if seed == "" {
		return nil, sdsget.Errorf(sdsget.ENOTFOUND, "no child catalog number for %s", ref.ProductCode)
	}

	var children []thermoChild
	if err := p.api(ctx, thermoChildEndpoint, ref.CatalogURL, map[string]any{
		"catalogNumber": seed,
	}, &children); err != nil {
		if sdsget.ErrorCode(err) == sdsget.ENOTFOUND {
			p.childSKUs[ref.ProductCode] = []string{seed}
			return p.childSKUs[ref.ProductCode], nil
		}
		return nil, err
	}

	seen := make(map[string]bool)
	var skus []string
	for _, c := range children {
		if !strings.EqualFold(c.SkuStatus, "RELEASED") || c.ChildCatalogNumber == "" || seen[c.ChildCatalogNumber] {
			continue
		}
		seen[c.ChildCatalogNumber] = true
		skus = append(skus, c.ChildCatalogNumber)
	}
	if len(skus) == 0 {
		skus = []string{seed}
	}
	sort.Strings(skus)

	p.childSKUs[ref.ProductCode] = skus
	return skus, nil
}

// lookupSDSURL asks the SDS endpoint for the document URL covering the
// child SKU set in one language.
func (p *ThermoFisherProvider) lookupSDSURL(ctx context.Context, ref *sdsget.ProductReference, children []string, language string) (string, error) {
	endpoint := thermoSDSEndpoint + "?" + url.Values{
		"childSkus": {strings.Join(children, ",")},
		"language":  {language},
	}.Encode()

	// The payload is either a bare URL string or a {"data": url} object.
	var raw json.RawMessage
	if err := p.apiGet(ctx, endpoint, ref.CatalogURL, &raw); err != nil {
		return "", err
	}
	var docURL string
	if err := json.Unmarshal(raw, &docURL); err != nil {
		var nested struct {
			Data string `json:"data"`
		}
		if err := json.Unmarshal(raw, &nested); err != nil {
			return "", sdsget.Errorf(sdsget.ECONTENT, "malformed document lookup response: %v", err)
		}
		docURL = nested.Data
	}
	if !strings.HasPrefix(docURL, "http") {
		return "", sdsget.Errorf(sdsget.ENOTFOUND, "no document available for %s in %q", ref.ProductCode, language)
	}
	return docURL, nil
}

// keywordSearch returns the first catalog entry matching a query.
func (p *ThermoFisherProvider) keywordSearch(ctx context.Context, query string) (*thermoCatalogEntry, error) {
	var data thermoCatalogData
	if err := p.api(ctx, thermoKeywordEndpoint, thermoBaseURL, map[string]any{
		"countryCode": strings.ToLower(thermoCountry),
		"language":    p.Language,
		"filter":      "",
		"pageNo":      1,
		"pageSize":    10,
		"persona":     "",
		"query":       query,
	}, &data); err != nil {
		return nil, err
	}
	if len(data.Results) == 0 {
		return nil, sdsget.Errorf(sdsget.ENOTFOUND, "no product found for %q", query)
	}
	return &data.Results[0], nil
}

// ensurePageLoaded fetches a page once to prime origin cookies. Repeat
// calls for the same URL are no-ops.
func (p *ThermoFisherProvider) ensurePageLoaded(ctx context.Context, pageURL string) error {
	if pageURL == "" || p.primed[pageURL] {
		return nil
	}
	res, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", htmlAccept).
		Get(pageURL)
	if err != nil {
		return transportError(err)
	}
	if res.StatusCode() != http.StatusOK {
		return sdsget.Errorf(sdsget.ESTATUS, "page prefetch returned HTTP %d", res.StatusCode())
	}
	p.primed[pageURL] = true
	return nil
}

// api POSTs a JSON payload to an API endpoint and decodes the envelope's
// data field into out.
func (p *ThermoFisherProvider) api(ctx context.Context, endpoint, referer string, payload any, out any) error {
	res, err := p.client.R().
		SetContext(ctx).
		SetHeaders(p.apiHeaders(referer)).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(endpoint)
	if err != nil {
		return transportError(err)
	}
	return decodeEnvelope(res, out)
}

// apiGet issues a GET against an API endpoint and decodes the envelope.
func (p *ThermoFisherProvider) apiGet(ctx context.Context, endpoint, referer string, out any) error {
	res, err := p.client.R().
		SetContext(ctx).
		SetHeaders(p.apiHeaders(referer)).
		Get(endpoint)
	if err != nil {
		return transportError(err)
	}
	return decodeEnvelope(res, out)
}

// apiHeaders builds the per-request API headers. The dye header carries
// a fresh UUID on every request, matching the site's front end.
func (p *ThermoFisherProvider) apiHeaders(referer string) map[string]string {
	if referer == "" {
		referer = thermoBaseURL
	}
	return map[string]string{
		"Accept":     "application/json, text/plain, */*",
		"Origin":     "https://chemicals.thermofisher.kr",
		"Referer":    referer,
		"country":    strings.ToLower(thermoCountry),
		"com-tf-dye": uuid.NewString(),
	}
}

// decodeEnvelope validates the uniform API wrapper and decodes its data.
func decodeEnvelope(res *resty.Response, out any) error {
	if res.StatusCode() != http.StatusOK {
		return sdsget.Errorf(sdsget.ESTATUS, "API returned HTTP %d", res.StatusCode())
	}
	var env thermoEnvelope
	if err := json.Unmarshal(res.Body(), &env); err != nil {
		return sdsget.Errorf(sdsget.ECONTENT, "malformed API response: %v", err)
	}
	if env.Code != "200" {
		return sdsget.Errorf(sdsget.ESTATUS, "API returned code %q", env.Code)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return sdsget.Errorf(sdsget.ENOTFOUND, "API returned no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return sdsget.Errorf(sdsget.ECONTENT, "malformed API data: %v", err)
	}
	return nil
}

// lastPathSegment returns the final non-empty path segment of a URL.
func lastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

// ThermoFisherCatalog pages through a site category, producing product
// references for bulk retrieval.
type ThermoFisherCatalog struct {
	provider   *ThermoFisherProvider
	categoryID string
	language   string
}

// NewThermoFisherCatalog creates a pager over one category. The category
// id is the trailing segment of a category page URL.
func NewThermoFisherCatalog(provider *ThermoFisherProvider, categoryURL, language string) (*ThermoFisherCatalog, error) {
	id := lastPathSegment(categoryURL)
	if id == "" {
		return nil, sdsget.Errorf(sdsget.EINVALID, "no category id in URL %q", categoryURL)
	}
	return &ThermoFisherCatalog{
		provider:   provider,
		categoryID: id,
		language:   language,
	}, nil
}

// FetchPage fetches one page of the category listing. A page past the end
// of the category comes back empty rather than failing.
func (c *ThermoFisherCatalog) FetchPage(ctx context.Context, page, pageSize int) (*sdsget.CatalogPage, error) {
	var data thermoCatalogData
	err := c.provider.api(ctx, thermoCategoryEndpoint, thermoBaseURL, map[string]any{
		"categoryId":  c.categoryID,
		"pageNo":      page,
		"pageSize":    pageSize,
		"filter":      "",
		"countryCode": strings.ToLower(thermoCountry),
		"language":    c.language,
	}, &data)
	if err != nil {
		if sdsget.ErrorCode(err) == sdsget.ENOTFOUND {
			return &sdsget.CatalogPage{PageNumber: page}, nil
		}
		return nil, err
	}

	items := make([]sdsget.ProductReference, 0, len(data.Results))
	for _, entry := range data.Results {
		if entry.RootCatalogNumber == "" || entry.ChildCatalogNumber == "" {
			continue
		}
		c.provider.SeedChildSKU(entry.RootCatalogNumber, entry.ChildCatalogNumber)
		items = append(items, sdsget.ProductReference{
			Vendor:      thermoName,
			CountryCode: thermoCountry,
			ProductCode: entry.RootCatalogNumber,
			CatalogURL:  thermoBaseURL + "/product/" + entry.RootCatalogNumber,
		})
	}

	return &sdsget.CatalogPage{
		Items:      items,
		PageNumber: page,
		TotalCount: data.Count,
	}, nil
}
