package domain

// Page is one page of a paginated resource listing as returned by the
// platform API's list and search endpoints.
type Page[T any] struct {
	Items  []T   // The page contents; never longer than Limit
	Total  int64 // Total matching rows on the server (for pagination)
	Limit  int   // Number of results requested
	Offset int   // Number of results skipped
}

// HasMore returns true if there are more results available.
func (p *Page[T]) HasMore() bool {
	return int64(p.Offset+p.Limit) < p.Total
}

// HasPrevious returns true if there are previous results available.
func (p *Page[T]) HasPrevious() bool {
	return p.Offset > 0
}

// CurrentPage returns the current page number (1-indexed).
func (p *Page[T]) CurrentPage() int {
	if p.Limit == 0 {
		return 1
	}
	return p.Offset/p.Limit + 1
}

// TotalPages returns the total number of pages. An empty collection has
// zero pages, which the templates render as an empty state rather than
// a single blank page.
func (p *Page[T]) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	pages := p.Total / int64(p.Limit)
	if p.Total%int64(p.Limit) > 0 {
		pages++
	}
	return int(pages)
}
