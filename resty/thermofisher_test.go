package resty_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/fwojciec/sdsget"
	"github.com/fwojciec/sdsget/resty"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func thermoEnvelopeResponder(t *testing.T, data any) httpmock.Responder {
	t.Helper()
	body, err := json.Marshal(map[string]any{"code": "200", "data": data})
	require.NoError(t, err)
	return func(req *http.Request) (*http.Response, error) {
		resp := httpmock.NewBytesResponse(200, body)
		resp.Header.Set("Content-Type", "application/json")
		return resp, nil
	}
}

func TestThermoFisherProvider_ResolveProduct(t *testing.T) {
	t.Parallel()

	t.Run("product URL yields the trailing segment", func(t *testing.T) {
		t.Parallel()

		p := resty.NewThermoFisherProvider(resty.WithTransport(httpmock.NewMockTransport()))
		ref, err := p.ResolveProduct(context.Background(),
			"https://chemicals.thermofisher.kr/apac/product/A10456")
		require.NoError(t, err)
		assert.Equal(t, "A10456", ref.ProductCode)
		assert.Equal(t, "KR", ref.CountryCode)
	})

	t.Run("search query resolves through the first result's child SKU", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		var gotPayload map[string]any
		transport.RegisterResponder(http.MethodPost,
			"https://chemicals.thermofisher.kr/apac/api/search/catalog/keyword",
			func(req *http.Request) (*http.Response, error) {
				require.NoError(t, json.NewDecoder(req.Body).Decode(&gotPayload))
				body, _ := json.Marshal(map[string]any{
					"code": "200",
					"data": map[string]any{
						"count": 1,
						"catalogResultDTOs": []map[string]any{{
							"rootCatalogNumber":  "A10456",
							"childCatalogNumber": "A10456.36",
						}},
					},
				})
				return httpmock.NewBytesResponse(200, body), nil
			})

		p := resty.NewThermoFisherProvider(resty.WithTransport(transport))
		ref, err := p.ResolveProduct(context.Background(), "acetone")
		require.NoError(t, err)
		assert.Equal(t, "A10456.36", ref.ProductCode)
		assert.Equal(t, "https://chemicals.thermofisher.kr/apac/product/A10456.36", ref.CatalogURL)

		assert.Equal(t, "acetone", gotPayload["query"])
		assert.Equal(t, "ko", gotPayload["language"])
		assert.Equal(t, "kr", gotPayload["countryCode"])
		assert.Equal(t, float64(10), gotPayload["pageSize"])
		assert.Contains(t, gotPayload, "persona")
		assert.Contains(t, gotPayload, "filter")
	})

	t.Run("empty search results map to ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		transport.RegisterResponder(http.MethodPost,
			"https://chemicals.thermofisher.kr/apac/api/search/catalog/keyword",
			thermoEnvelopeResponder(t, map[string]any{"count": 0, "catalogResultDTOs": []any{}}))

		p := resty.NewThermoFisherProvider(resty.WithTransport(transport))
		_, err := p.ResolveProduct(context.Background(), "unobtainium")
		require.Error(t, err)
		assert.Equal(t, sdsget.ENOTFOUND, sdsget.ErrorCode(err))
	})

	t.Run("non-200 envelope code maps to ESTATUS", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		transport.RegisterResponder(http.MethodPost,
			"https://chemicals.thermofisher.kr/apac/api/search/catalog/keyword",
			httpmock.NewStringResponder(200, `{"code":"500","data":null}`))

		p := resty.NewThermoFisherProvider(resty.WithTransport(transport))
		_, err := p.ResolveProduct(context.Background(), "acetone")
		require.Error(t, err)
		assert.Equal(t, sdsget.ESTATUS, sdsget.ErrorCode(err))
	})
}

func TestThermoFisherProvider_FetchDocument(t *testing.T) {
	t.Parallel()

	ref := &sdsget.ProductReference{
		Vendor:      "thermofisher",
		CountryCode: "KR",
		ProductCode: "A10456",
		CatalogURL:  "https://chemicals.thermofisher.kr/apac/product/A10456",
	}

	t.Run("expands child SKUs and fetches the resolved document URL", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		var gotChildPayload map[string]any
		transport.RegisterResponder(http.MethodPost,
			"https://chemicals.thermofisher.kr/apac/api/search/catalog/child",
			func(req *http.Request) (*http.Response, error) {
				require.NoError(t, json.NewDecoder(req.Body).Decode(&gotChildPayload))
				body, _ := json.Marshal(map[string]any{
					"code": "200",
					"data": []map[string]any{
						{"childCatalogNumber": "A10456.36", "skuStatus": "RELEASED"},
						{"childCatalogNumber": "A10456.22", "skuStatus": "RELEASED"},
						{"childCatalogNumber": "A10456.99", "skuStatus": "DISCONTINUED"},
						{"childCatalogNumber": "A10456.36", "skuStatus": "RELEASED"},
					},
				})
				return httpmock.NewBytesResponse(200, body), nil
			})

		var gotChildSkus string
		transport.RegisterResponder(http.MethodGet,
			"https://chemicals.thermofisher.kr/apac/api/document/search/sds",
			func(req *http.Request) (*http.Response, error) {
				gotChildSkus = req.URL.Query().Get("childSkus")
				body, _ := json.Marshal(map[string]any{
					"code": "200",
					"data": "https://assets.thermofisher.kr/sds/A10456_KO.pdf",
				})
				return httpmock.NewBytesResponse(200, body), nil
			})

		pdf := httpmock.NewBytesResponse(200, []byte("%PDF-1.4 thermo"))
		pdf.Header.Set("Content-Type", "application/pdf")
		transport.RegisterResponder(http.MethodGet,
			"https://assets.thermofisher.kr/sds/A10456_KO.pdf",
			httpmock.ResponderFromResponse(pdf))

		p := resty.NewThermoFisherProvider(resty.WithTransport(transport))
		p.SeedChildSKU("A10456", "A10456.36")

		doc, err := p.FetchDocument(context.Background(), ref, "ko")
		require.NoError(t, err)
		assert.Equal(t, "A10456_KR_KO.pdf", doc.Filename)
		// Released children only, sorted, deduplicated.
		assert.Equal(t, "A10456.22,A10456.36", gotChildSkus)
		// Expansion is keyed by the seed child catalog number.
		assert.Equal(t, map[string]any{"catalogNumber": "A10456.36"}, gotChildPayload)
	})

	t.Run("accepts the nested document URL shape", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		transport.RegisterResponder(http.MethodPost,
			"https://chemicals.thermofisher.kr/apac/api/search/catalog/child",
			thermoEnvelopeResponder(t, []map[string]any{
				{"childCatalogNumber": "A10456.36", "skuStatus": "RELEASED"},
			}))
		transport.RegisterResponder(http.MethodGet,
			"https://chemicals.thermofisher.kr/apac/api/document/search/sds",
			thermoEnvelopeResponder(t, map[string]any{
				"data": "https://assets.thermofisher.kr/sds/A10456_EN.pdf",
			}))

		pdf := httpmock.NewBytesResponse(200, []byte("%PDF-1.4"))
		pdf.Header.Set("Content-Type", "application/pdf")
		transport.RegisterResponder(http.MethodGet,
			"https://assets.thermofisher.kr/sds/A10456_EN.pdf",
			httpmock.ResponderFromResponse(pdf))

		p := resty.NewThermoFisherProvider(resty.WithTransport(transport))
		p.SeedChildSKU("A10456", "A10456.36")

		_, err := p.FetchDocument(context.Background(), ref, "en")
		require.NoError(t, err)
	})

	t.Run("non-URL document lookup maps to ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		transport.RegisterResponder(http.MethodPost,
			"https://chemicals.thermofisher.kr/apac/api/search/catalog/child",
			thermoEnvelopeResponder(t, []map[string]any{
				{"childCatalogNumber": "A10456.36", "skuStatus": "RELEASED"},
			}))
		transport.RegisterResponder(http.MethodGet,
			"https://chemicals.thermofisher.kr/apac/api/document/search/sds",
			thermoEnvelopeResponder(t, "N/A"))

		p := resty.NewThermoFisherProvider(resty.WithTransport(transport))
		p.SeedChildSKU("A10456", "A10456.36")

		_, err := p.FetchDocument(context.Background(), ref, "fr")
		require.Error(t, err)
		assert.Equal(t, sdsget.ENOTFOUND, sdsget.ErrorCode(err))
	})

	t.Run("falls back to the seed child when expansion yields nothing", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		transport.RegisterResponder(http.MethodPost,
			"https://chemicals.thermofisher.kr/apac/api/search/catalog/child",
			thermoEnvelopeResponder(t, []map[string]any{
				{"childCatalogNumber": "A10456.36", "skuStatus": "DISCONTINUED"},
			}))

		var gotChildSkus string
		transport.RegisterResponder(http.MethodGet,
			"https://chemicals.thermofisher.kr/apac/api/document/search/sds",
			func(req *http.Request) (*http.Response, error) {
				gotChildSkus = req.URL.Query().Get("childSkus")
				body, _ := json.Marshal(map[string]any{
					"code": "200",
					"data": "https://assets.thermofisher.kr/sds/A10456_EN.pdf",
				})
				return httpmock.NewBytesResponse(200, body), nil
			})

		pdf := httpmock.NewBytesResponse(200, []byte("%PDF-1.4"))
		pdf.Header.Set("Content-Type", "application/pdf")
		transport.RegisterResponder(http.MethodGet,
			"https://assets.thermofisher.kr/sds/A10456_EN.pdf",
			httpmock.ResponderFromResponse(pdf))

		p := resty.NewThermoFisherProvider(resty.WithTransport(transport))
		p.SeedChildSKU("A10456", "A10456.36")

		_, err := p.FetchDocument(context.Background(), ref, "en")
		require.NoError(t, err)
		assert.Equal(t, "A10456.36", gotChildSkus)
	})
}

func TestThermoFisherCatalog_FetchPage(t *testing.T) {
	t.Parallel()

	t.Run("maps listing entries to product references", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		var gotPayload map[string]any
		transport.RegisterResponder(http.MethodPost,
			"https://chemicals.thermofisher.kr/apac/api/search/category",
			func(req *http.Request) (*http.Response, error) {
				require.NoError(t, json.NewDecoder(req.Body).Decode(&gotPayload))
				body, _ := json.Marshal(map[string]any{
					"code": "200",
					"data": map[string]any{
						"count": 42,
						"catalogResultDTOs": []map[string]any{
							{"rootCatalogNumber": "A10456", "childCatalogNumber": "A10456.36"},
							{"rootCatalogNumber": "L13255", "childCatalogNumber": "L13255.0F"},
						},
					},
				})
				return httpmock.NewBytesResponse(200, body), nil
			})

		p := resty.NewThermoFisherProvider(resty.WithTransport(transport))
		catalog, err := resty.NewThermoFisherCatalog(p,
			"https://chemicals.thermofisher.kr/apac/search/category/solvents-123", "ko")
		require.NoError(t, err)

		page, err := catalog.FetchPage(context.Background(), 1, 30)
		require.NoError(t, err)
		assert.Equal(t, 42, page.TotalCount)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "A10456", page.Items[0].ProductCode)
		assert.Equal(t, "solvents-123", gotPayload["categoryId"])
		assert.Equal(t, float64(30), gotPayload["pageSize"])
	})

	t.Run("page past the end comes back empty", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		transport.RegisterResponder(http.MethodPost,
			"https://chemicals.thermofisher.kr/apac/api/search/category",
			httpmock.NewStringResponder(200, `{"code":"200","data":null}`))

		p := resty.NewThermoFisherProvider(resty.WithTransport(transport))
		catalog, err := resty.NewThermoFisherCatalog(p,
			"https://chemicals.thermofisher.kr/apac/search/category/solvents-123", "ko")
		require.NoError(t, err)

		page, err := catalog.FetchPage(context.Background(), 99, 30)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("rejects a category URL without an id", func(t *testing.T) {
		t.Parallel()

		p := resty.NewThermoFisherProvider(resty.WithTransport(httpmock.NewMockTransport()))
		_, err := resty.NewThermoFisherCatalog(p, "https://chemicals.thermofisher.kr", "ko")
		require.Error(t, err)
		assert.Equal(t, sdsget.EINVALID, sdsget.ErrorCode(err))
	})
}
