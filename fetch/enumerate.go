package fetch

import (
	"context"

	"github.com/fwojciec/sdsget"
	"github.com/fwojciec/sdsget/bloom"
)

// enumerator defaults: the filter is sized for the largest category
// observed across the supported vendors.
const (
	defaultPageSize      = 30
	dedupExpectedItems   = 10000
	dedupFalsePositiveRt = 0.001
)

// Enumerator walks a vendor category listing page by page, yielding
// product references lazily. Duplicate product codes across pages are
// dropped. An enumerator is single-use and not safe for concurrent use.
type Enumerator struct {
	pager       sdsget.CatalogPager
	pageSize    int
	maxProducts int

	seen      *bloom.Filter
	buf       []sdsget.ProductReference
	page      int
	yielded   int
	total     int
	exhausted bool
	started   bool
}

// NewEnumerator creates an enumerator over a category pager. A
// maxProducts of zero means no cap beyond the category's total count.
func NewEnumerator(pager sdsget.CatalogPager, pageSize, maxProducts int) *Enumerator {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Enumerator{
		pager:       pager,
		pageSize:    pageSize,
		maxProducts: maxProducts,
		seen:        bloom.NewFilter(dedupExpectedItems, dedupFalsePositiveRt),
		page:        1,
	}
}

// Next returns the next product reference. The second return is false
// when the category is exhausted or the product cap is reached. A
// first-page fetch failure is returned as an error; a later-page failure
// ends enumeration with the items already yielded kept.
func (e *Enumerator) Next(ctx context.Context) (*sdsget.ProductReference, bool, error) {
	for {
		if e.exhausted || e.capReached() {
			return nil, false, nil
		}

		if len(e.buf) == 0 {
			if err := e.fetchNextPage(ctx); err != nil {
				return nil, false, err
			}
			continue
		}

		ref := e.buf[0]
		e.buf = e.buf[1:]
		if e.seen.Test(ref.ProductCode) {
			continue
		}
		e.seen.Add(ref.ProductCode)
		e.yielded++
		return &ref, true, nil
	}
}

// Total reports the server-declared category size, known after the first
// page has been fetched.
func (e *Enumerator) Total() int { return e.total }

func (e *Enumerator) capReached() bool {
	if e.maxProducts > 0 && e.yielded >= e.maxProducts {
		return true
	}
	return e.started && e.total > 0 && e.yielded >= e.total
}

func (e *Enumerator) fetchNextPage(ctx context.Context) error {
	page, err := e.pager.FetchPage(ctx, e.page, e.pageSize)
	if err != nil {
		e.exhausted = true
		if !e.started {
			return err
		}
		// Keep what was already yielded.
		return nil
	}

	if !e.started {
		e.started = true
		e.total = page.TotalCount
	}
	if len(page.Items) == 0 {
		e.exhausted = true
		return nil
	}

	e.buf = append(e.buf, page.Items...)
	e.page++
	return nil
}
