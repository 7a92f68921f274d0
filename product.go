package sdsget

// ProductReference identifies one product at one vendor. It is created by
// resolution (URL parse, search, or catalog enumeration) and treated as
// immutable thereafter, except that metadata extraction may fill in fields
// the URL alone could not provide.
type ProductReference struct {
	// Vendor is the provider name that resolved this reference.
	Vendor string `json:"vendor"`

	// CountryCode is the vendor's country/site code (e.g. "KR").
	CountryCode string `json:"countryCode"`

	// LocaleCode is the page language encoded in the product URL (e.g.
	// "ko"). May be empty until metadata extraction succeeds.
	LocaleCode string `json:"localeCode,omitempty"`

	// Brand is the vendor brand segment of the product URL, for vendors
	// whose document URLs are keyed by brand (e.g. "sigald").
	Brand string `json:"brand,omitempty"`

	// ProductCode is the canonical product identifier at the vendor.
	ProductCode string `json:"productCode"`

	// CatalogURL is the product page URL, used as the Referer for
	// document requests.
	CatalogURL string `json:"catalogUrl,omitempty"`
}

// Validate returns an error if the reference is missing required fields.
func (r *ProductReference) Validate() error {
	if r.ProductCode == "" {
		return Errorf(EINVALID, "product code required")
	}
	if r.CountryCode == "" {
		return Errorf(EINVALID, "country code required")
	}
	return nil
}
