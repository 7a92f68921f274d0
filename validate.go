package sdsget

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// bodyPreviewLimit bounds the response excerpt included in content-type
// validation errors.
const bodyPreviewLimit = 200

// dispositionRE matches a filename parameter in a Content-Disposition
// header, quoted or unquoted. Deliberately permissive: vendors emit a
// variety of near-spec forms.
var dispositionRE = regexp.MustCompile(`filename[^;=\n]*=((?:["']).*?(?:["'])|[^;\n]*)`)

// ValidateResponse confirms a fetched response is an acceptable document
// and derives the output filename. Checks in order: the status code must
// equal 200, and the declared content type must contain "pdf" or
// "octet-stream" (case-insensitive). The filename is parsed out of the
// disposition header when present, falling back to the deterministic
// {productCode}_{countryCode}_{LANGUAGE}.pdf pattern.
func ValidateResponse(resp *Response, ref *ProductReference, language string) (*Document, error) {
	if resp.StatusCode != 200 {
		return nil, Errorf(ESTATUS, "HTTP %d", resp.StatusCode)
	}

	ct := strings.ToLower(resp.ContentType)
	if !strings.Contains(ct, "pdf") && !strings.Contains(ct, "octet-stream") {
		return nil, Errorf(ECONTENT, "unexpected content type %q: %s", resp.ContentType, bodyPreview(resp.Body))
	}

	filename := FilenameFromDisposition(resp.Disposition)
	if filename == "" {
		filename = FallbackFilename(ref, language)
	}

	return &Document{
		Filename:    filename,
		Body:        resp.Body,
		SourceURL:   resp.URL,
		ContentType: resp.ContentType,
	}, nil
}

// FilenameFromDisposition extracts a filename from a Content-Disposition
// header value. Returns "" when the header is absent or unparsable.
func FilenameFromDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}
	m := dispositionRE.FindStringSubmatch(disposition)
	if m == nil {
		return ""
	}
	return strings.Trim(strings.TrimSpace(m[1]), `"'`)
}

// FallbackFilename returns the deterministic filename used when the vendor
// omits disposition metadata. Stable and collision-resistant per
// (product, country, language).
func FallbackFilename(ref *ProductReference, language string) string {
	return ref.ProductCode + "_" + ref.CountryCode + "_" + strings.ToUpper(language) + ".pdf"
}

// bodyPreview returns the leading characters of a response body for
// error messages, truncated to bodyPreviewLimit runes.
func bodyPreview(body []byte) string {
	s := strings.TrimSpace(string(body))
	if utf8.RuneCountInString(s) <= bodyPreviewLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:bodyPreviewLimit])
}
