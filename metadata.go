package sdsget

// Metadata holds the structured facts recovered from a vendor product page
// that are needed to request a document.
type Metadata struct {
	// ProductCode is the canonical product code declared by the page.
	ProductCode string

	// CountryCode is the country the page was served for.
	CountryCode string

	// ContextPath is the base-path prefix for discovery endpoints.
	// Defaults to "/" when the page does not declare one.
	ContextPath string

	// CSRFToken is the anti-forgery token embedded in the page
	// configuration. Optional; its absence degrades later requests but
	// does not abort extraction.
	CSRFToken string

	// FilePath is the document path hint declared by the page, if any.
	FilePath string

	// Languages lists the available document languages in the page's
	// declared order. Used as the default language set when the caller
	// requests none explicitly.
	Languages []LanguageOption
}

// HasLanguage reports whether code is among the available languages.
func (m *Metadata) HasLanguage(code string) bool {
	for _, lang := range m.Languages {
		if lang.Code == code {
			return true
		}
	}
	return false
}

// LanguageCodes returns the available language codes in page order,
// skipping entries without a code.
func (m *Metadata) LanguageCodes() []string {
	var codes []string
	for _, lang := range m.Languages {
		if lang.Code != "" {
			codes = append(codes, lang.Code)
		}
	}
	return codes
}

// MetadataExtractor recovers document metadata from product page markup.
// It matches structural markers rather than full DOM semantics, so it is
// tolerant of surrounding markup changes.
type MetadataExtractor interface {
	// Extract parses the page HTML. Returns ENOTFOUND when required
	// markers (product code, country code) are absent.
	Extract(html string) (*Metadata, error)
}

// SearchResultExtractor finds the first qualifying product link in a
// vendor search results page.
type SearchResultExtractor interface {
	// FirstResult returns the first product page URL, resolved against
	// baseURL. Returns ENOTFOUND when no result link matches.
	FirstResult(html, baseURL string) (string, error)
}
