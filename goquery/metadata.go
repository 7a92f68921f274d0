// Package goquery provides structural-marker extraction from vendor page
// markup: product metadata from product pages and result links from search
// pages.
package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sdsget"
)

// Page-configuration markers embedded in script text. Matched
// independently: the absence of one does not affect the other.
var (
	csrfTokenRE   = regexp.MustCompile(`ACC\.config\.CSRFToken\s*=\s*'([^']+)'`)
	contextPathRE = regexp.MustCompile(`ACC\.config\.encodedContextPath\s*=\s*'([^']+)'`)
)

// Ensure MetadataExtractor implements sdsget.MetadataExtractor at compile time.
var _ sdsget.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor recovers document metadata from a product page using
// structural markers (element identifiers), tolerant of surrounding markup.
type MetadataExtractor struct{}

// NewMetadataExtractor creates a new MetadataExtractor.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{}
}

// Extract parses the product page HTML. Returns ENOTFOUND when the
// required markers (product code, country code) are absent. The
// anti-forgery token and context path are optional; their absence degrades
// later requests rather than aborting extraction.
func (e *MetadataExtractor) Extract(html string) (*sdsget.Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sdsget.Errorf(sdsget.EINVALID, "failed to parse HTML: %v", err)
	}

	meta := &sdsget.Metadata{
		ProductCode: inputValue(doc, "#sdsProductCode"),
		CountryCode: inputValue(doc, "#selectedCountry"),
		FilePath:    inputValue(doc, "#sdsFilePath"),
		ContextPath: "/",
	}

	if meta.ProductCode == "" || meta.CountryCode == "" {
		return nil, sdsget.Errorf(sdsget.ENOTFOUND, "product metadata markers not found in page")
	}

	// Language selector options in the page's declared order.
	doc.Find("select#langSelector option").Each(func(_ int, sel *goquery.Selection) {
		value := strings.TrimSpace(sel.AttrOr("value", ""))
		if value == "" {
			return
		}
		meta.Languages = append(meta.Languages, sdsget.LanguageOption{
			Code:  value,
			Label: strings.TrimSpace(sel.Text()),
		})
	})

	if m := csrfTokenRE.FindStringSubmatch(html); m != nil {
		meta.CSRFToken = m[1]
	}
	if m := contextPathRE.FindStringSubmatch(html); m != nil {
		if path := strings.ReplaceAll(m[1], `\/`, "/"); path != "" {
			meta.ContextPath = path
		}
	}

	return meta, nil
}

// inputValue returns the trimmed value attribute of the input matching the
// selector, or "" if absent.
func inputValue(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find("input" + selector).AttrOr("value", ""))
}
