package goquery_test

import (
	"testing"

	"github.com/fwojciec/sdsget"
	sdsgoquery "github.com/fwojciec/sdsget/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPageHTML = `<!DOCTYPE html>
<html>
<head>
<script>
	var ACC = ACC || {};
	ACC.config.encodedContextPath = '\/KR\/ko';
	ACC.config.CSRFToken = 'f3a1c9d2-7b54-4a0e-9a21-d8c6b7e51f44';
</script>
</head>
<body>
<div class="sds-download">
	<input type="hidden" id="sdsProductCode" value="L0483"/>
	<input type="hidden" id="selectedCountry" value="KR"/>
	<input type="hidden" id="sdsFilePath" value="/documents/sds"/>
	<select id="langSelector">
		<option value="ko">한국어</option>
		<option value="en">English</option>
		<option value="">선택</option>
	</select>
</div>
</body>
</html>`

func TestMetadataExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts all markers from product page", func(t *testing.T) {
		t.Parallel()

		e := sdsgoquery.NewMetadataExtractor()
		meta, err := e.Extract(productPageHTML)
		require.NoError(t, err)

		assert.Equal(t, "L0483", meta.ProductCode)
		assert.Equal(t, "KR", meta.CountryCode)
		assert.Equal(t, "/documents/sds", meta.FilePath)
		assert.Equal(t, "/KR/ko", meta.ContextPath)
		assert.Equal(t, "f3a1c9d2-7b54-4a0e-9a21-d8c6b7e51f44", meta.CSRFToken)

		// Declared page order; valueless options are skipped.
		require.Len(t, meta.Languages, 2)
		assert.Equal(t, sdsget.LanguageOption{Code: "ko", Label: "한국어"}, meta.Languages[0])
		assert.Equal(t, sdsget.LanguageOption{Code: "en", Label: "English"}, meta.Languages[1])
	})

	t.Run("returns ENOTFOUND when product code marker is absent", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><input id="selectedCountry" value="KR"/></body></html>`
		e := sdsgoquery.NewMetadataExtractor()
		_, err := e.Extract(html)
		require.Error(t, err)
		assert.Equal(t, sdsget.ENOTFOUND, sdsget.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND when country code marker is absent", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><input id="sdsProductCode" value="L0483"/></body></html>`
		e := sdsgoquery.NewMetadataExtractor()
		_, err := e.Extract(html)
		require.Error(t, err)
		assert.Equal(t, sdsget.ENOTFOUND, sdsget.ErrorCode(err))
	})

	t.Run("token and context path are optional", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<input id="sdsProductCode" value="L0483"/>
			<input id="selectedCountry" value="KR"/>
		</body></html>`
		e := sdsgoquery.NewMetadataExtractor()
		meta, err := e.Extract(html)
		require.NoError(t, err)
		assert.Empty(t, meta.CSRFToken)
		assert.Equal(t, "/", meta.ContextPath)
		assert.Empty(t, meta.Languages)
	})

	t.Run("empty encoded context path falls back to root", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><script>ACC.config.encodedContextPath = '';</script></head><body>
			<input id="sdsProductCode" value="L0483"/>
			<input id="selectedCountry" value="KR"/>
		</body></html>`
		e := sdsgoquery.NewMetadataExtractor()
		meta, err := e.Extract(html)
		require.NoError(t, err)
		assert.Equal(t, "/", meta.ContextPath)
	})

	t.Run("tolerates surrounding markup", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div><section><form>
			<input id="sdsProductCode" value=" T0260 "/>
			<input id="selectedCountry" value="JP"/>
		</form></section></div></body></html>`
		e := sdsgoquery.NewMetadataExtractor()
		meta, err := e.Extract(html)
		require.NoError(t, err)
		assert.Equal(t, "T0260", meta.ProductCode)
		assert.Equal(t, "JP", meta.CountryCode)
	})
}
