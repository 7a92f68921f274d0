package resty_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/fwojciec/sdsget"
	"github.com/fwojciec/sdsget/mock"
	"github.com/fwojciec/sdsget/resty"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAldrichProductURL(t *testing.T) {
	t.Parallel()

	t.Run("parses the product URL grammar", func(t *testing.T) {
		t.Parallel()

		ref, err := resty.ParseAldrichProductURL("https://www.sigmaaldrich.com/KR/ko/product/aldrich/34873")
		require.NoError(t, err)
		assert.Equal(t, "KR", ref.CountryCode)
		assert.Equal(t, "ko", ref.LocaleCode)
		assert.Equal(t, "aldrich", ref.Brand)
		assert.Equal(t, "34873", ref.ProductCode)
	})

	t.Run("round trips through serialization", func(t *testing.T) {
		t.Parallel()

		rawURL := "https://www.sigmaaldrich.com/US/en/product/sigald/s7653"
		ref, err := resty.ParseAldrichProductURL(rawURL)
		require.NoError(t, err)
		assert.Equal(t, rawURL, resty.AldrichProductURL(ref))
	})

	t.Run("ignores query and fragment", func(t *testing.T) {
		t.Parallel()

		ref, err := resty.ParseAldrichProductURL("https://www.sigmaaldrich.com/KR/ko/product/aldrich/34873?context=product#top")
		require.NoError(t, err)
		assert.Equal(t, "34873", ref.ProductCode)
	})

	t.Run("rejects other URLs", func(t *testing.T) {
		t.Parallel()

		_, err := resty.ParseAldrichProductURL("https://www.sigmaaldrich.com/KR/ko/search/acetone")
		require.Error(t, err)
		assert.Equal(t, sdsget.EINVALID, sdsget.ErrorCode(err))
	})
}

func TestAldrichProvider_ResolveProduct(t *testing.T) {
	t.Parallel()

	t.Run("product URL bypasses search", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		p := resty.NewAldrichProvider(nil, resty.WithTransport(transport))

		ref, err := p.ResolveProduct(context.Background(), "https://www.sigmaaldrich.com/KR/ko/product/aldrich/34873")
		require.NoError(t, err)
		assert.Equal(t, "34873", ref.ProductCode)
		assert.Zero(t, transport.GetTotalCallCount())
	})

	t.Run("search term resolves through the first result link", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		transport.RegisterResponder(http.MethodGet,
			"https://www.sigmaaldrich.com/KR/ko/search/acetone",
			httpmock.NewStringResponder(200, "<html>results</html>"))

		results := &mock.SearchResultExtractor{
			FirstResultFn: func(html, baseURL string) (string, error) {
				return "https://www.sigmaaldrich.com/KR/ko/product/sigald/179124", nil
			},
		}
		p := resty.NewAldrichProvider(results, resty.WithTransport(transport))

		ref, err := p.ResolveProduct(context.Background(), "acetone")
		require.NoError(t, err)
		assert.Equal(t, "179124", ref.ProductCode)
		assert.Equal(t, "sigald", ref.Brand)
	})

	t.Run("no search result maps to ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		transport.RegisterResponder(http.MethodGet,
			"https://www.sigmaaldrich.com/KR/ko/search/unobtainium",
			httpmock.NewStringResponder(200, "<html>empty</html>"))

		results := &mock.SearchResultExtractor{
			FirstResultFn: func(html, baseURL string) (string, error) {
				return "", sdsget.Errorf(sdsget.ENOTFOUND, "no result links")
			},
		}
		p := resty.NewAldrichProvider(results, resty.WithTransport(transport))

		_, err := p.ResolveProduct(context.Background(), "unobtainium")
		require.Error(t, err)
		assert.Equal(t, sdsget.ENOTFOUND, sdsget.ErrorCode(err))
	})
}

func TestAldrichProvider_FetchDocument(t *testing.T) {
	t.Parallel()

	ref := &sdsget.ProductReference{
		Vendor:      "aldrich",
		CountryCode: "KR",
		LocaleCode:  "ko",
		Brand:       "aldrich",
		ProductCode: "34873",
		CatalogURL:  "https://www.sigmaaldrich.com/KR/ko/product/aldrich/34873",
	}

	t.Run("valid PDF response yields a document with a fallback filename", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		resp := httpmock.NewBytesResponse(200, []byte("%PDF-1.4 body"))
		resp.Header.Set("Content-Type", "application/pdf")
		transport.RegisterResponder(http.MethodGet,
			"https://www.sigmaaldrich.com/KR/ko/sds/aldrich/34873",
			httpmock.ResponderFromResponse(resp))

		p := resty.NewAldrichProvider(nil, resty.WithTransport(transport))
		doc, err := p.FetchDocument(context.Background(), ref, "ko")
		require.NoError(t, err)
		assert.Equal(t, "34873_KR_KO.pdf", doc.Filename)
		assert.Equal(t, []byte("%PDF-1.4 body"), doc.Body)
	})

	t.Run("non-200 status maps to ESTATUS", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		transport.RegisterResponder(http.MethodGet,
			"https://www.sigmaaldrich.com/KR/de/sds/aldrich/34873",
			httpmock.NewStringResponder(404, "not found"))

		p := resty.NewAldrichProvider(nil, resty.WithTransport(transport))
		_, err := p.FetchDocument(context.Background(), ref, "de")
		require.Error(t, err)
		assert.Equal(t, sdsget.ESTATUS, sdsget.ErrorCode(err))
	})

	t.Run("HTML body maps to ECONTENT", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		resp := httpmock.NewStringResponse(200, "<html>no SDS in this language</html>")
		resp.Header.Set("Content-Type", "text/html; charset=utf-8")
		transport.RegisterResponder(http.MethodGet,
			"https://www.sigmaaldrich.com/KR/xx/sds/aldrich/34873",
			httpmock.ResponderFromResponse(resp))

		p := resty.NewAldrichProvider(nil, resty.WithTransport(transport))
		_, err := p.FetchDocument(context.Background(), ref, "xx")
		require.Error(t, err)
		assert.Equal(t, sdsget.ECONTENT, sdsget.ErrorCode(err))
		assert.Contains(t, sdsget.ErrorMessage(err), "no SDS in this language")
	})
}
