package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sdsget"
)

// Ensure SearchResultExtractor implements sdsget.SearchResultExtractor at compile time.
var _ sdsget.SearchResultExtractor = (*SearchResultExtractor)(nil)

// SearchResultExtractor finds the first qualifying product link in a
// search results page by anchor id prefix.
type SearchResultExtractor struct {
	idPrefix string
}

// NewSearchResultExtractor creates an extractor matching anchors whose id
// starts with idPrefix (e.g. "NAME-pdp-link-").
func NewSearchResultExtractor(idPrefix string) *SearchResultExtractor {
	return &SearchResultExtractor{idPrefix: idPrefix}
}

// FirstResult returns the first matching product link, resolved against
// baseURL. Returns ENOTFOUND when no anchor matches.
func (e *SearchResultExtractor) FirstResult(html, baseURL string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", sdsget.Errorf(sdsget.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", sdsget.Errorf(sdsget.EINVALID, "failed to parse HTML: %v", err)
	}

	sel := doc.Find(`a[id^='` + e.idPrefix + `']`).First()
	href, exists := sel.Attr("href")
	if !exists || href == "" {
		return "", sdsget.Errorf(sdsget.ENOTFOUND, "no product result link in search page")
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", sdsget.Errorf(sdsget.EINVALID, "invalid result link %q: %v", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}
