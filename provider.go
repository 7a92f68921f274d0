package sdsget

import "context"

// Provider is the shared capability set implemented by each vendor
// adapter. Variants differ in how they resolve the document request:
// by direct URL construction, by search, or by a form submission against
// a discovery endpoint.
type Provider interface {
	// Name returns the provider identifier used in summaries and logs.
	Name() string

	// ResolveProduct turns an identifier (product URL or free-text
	// search term, depending on the vendor) into a product reference.
	// Returns ENOTFOUND when no product matches.
	ResolveProduct(ctx context.Context, identifier string) (*ProductReference, error)

	// PrimeSession establishes whatever session state the vendor
	// requires before documents can be fetched for the product.
	// Returns ESESSION when a required session cannot be established.
	PrimeSession(ctx context.Context, ref *ProductReference) error

	// FetchDocument fetches and validates the document for one
	// language. Returns ELANGUAGE when the language is known to be
	// unavailable; per-language failures are independent.
	FetchDocument(ctx context.Context, ref *ProductReference, language string) (*Document, error)
}

// LanguageLister is an optional Provider capability: vendors whose product
// pages declare the available document languages expose them here, in the
// page's declared order.
type LanguageLister interface {
	AvailableLanguages(ref *ProductReference) []string
}

// VendorLimiter paces requests to rate-sensitive vendor endpoints.
type VendorLimiter interface {
	// Wait blocks until the rate limit allows a request to the vendor.
	// Returns an error if the context is canceled before then.
	Wait(ctx context.Context, vendor string) error
}
