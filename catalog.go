package sdsget

import "context"

// CatalogPage is one page of a vendor's category listing. It is transient:
// consumed immediately by the enumerator to decide whether to request the
// next page.
type CatalogPage struct {
	// Items are the product references on this page, in server order.
	Items []ProductReference

	// PageNumber is the 1-based page that was requested.
	PageNumber int

	// TotalCount is the server-reported total number of products in the
	// category.
	TotalCount int
}

// CatalogPager fetches pages of a vendor category listing. Implemented
// only by vendors that support bulk/category retrieval.
type CatalogPager interface {
	FetchPage(ctx context.Context, page, pageSize int) (*CatalogPage, error)
}
