package objectstore

import "context"

// pagerState is the explicit state of a VersionPager, replacing the
// lazily-concatenated batch sequence the original design used: a pager
// is always in exactly one of these states, and Next only issues an API
// call when the pager is in needNextPage (before the first page) or in
// haveCurrentPage with a truncated current page.
type pagerState int

const (
	haveCurrentPage pagerState = iota
	needNextPage
	exhausted
)

// VersionPager drains a paged list-versions call one page at a time.
// The next page is requested only when the caller asks for it (Next),
// preserving back-pressure: nothing is fetched ahead of what the
// downstream stage has consumed.
type VersionPager struct {
	store  Store
	bucket string
	prefix string

	state  pagerState
	page   Page
	marker string
}

// NewVersionPager returns a pager positioned before the first page.
func NewVersionPager(store Store, bucket, prefix string) *VersionPager {
	return &VersionPager{
		store:  store,
		bucket: bucket,
		prefix: prefix,
		state:  needNextPage,
	}
}

// Next advances to the next page, issuing a list-versions call if
// necessary. It returns false once the pager is exhausted (the most
// recent page reported non-truncated) or ctx is done.
func (p *VersionPager) Next(ctx context.Context) (bool, error) {
	if p.state == exhausted {
		return false, nil
	}

	if p.state == haveCurrentPage {
		if !p.page.Truncated {
			p.state = exhausted
			return false, nil
		}
		p.marker = p.page.NextMarker
	}

	page, err := p.store.ListVersionsPage(ctx, p.bucket, p.prefix, p.marker)
	if err != nil {
		return false, err
	}

	p.page = page
	p.state = haveCurrentPage
	return true, nil
}

// Page returns the current page. Only valid after Next returned true.
func (p *VersionPager) Page() Page {
	return p.page
}
