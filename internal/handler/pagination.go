package handler

import (
	"fmt"
	"net/url"

	"github.com/safastep/console/internal/service"
)

// PaginationData drives the shared pagination component. Pages are
// 1-indexed for display; the service layer's 0-based index is converted
// when building it.
type PaginationData struct {
	CurrentPage int
	TotalPages  int
	Total       int64
	BasePath    string
	Query       string
}

// paginationFor derives the component data from a collection snapshot.
func paginationFor[T any](state service.CollectionState[T], basePath string) PaginationData {
	return PaginationData{
		CurrentPage: state.PageIndex + 1,
		TotalPages:  state.TotalPages(),
		Total:       state.Total,
		BasePath:    basePath,
		Query:       state.Query,
	}
}

// HasPrevious reports whether a previous page exists.
func (p PaginationData) HasPrevious() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether a next page exists.
func (p PaginationData) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// PreviousURL returns the link target for the previous page.
func (p PaginationData) PreviousURL() string {
	return p.URL(p.CurrentPage - 1)
}

// NextURL returns the link target for the next page.
func (p PaginationData) NextURL() string {
	return p.URL(p.CurrentPage + 1)
}

// URL builds the link target for one page, preserving the active search
// query.
func (p PaginationData) URL(page int) string {
	values := url.Values{}
	values.Set("page", fmt.Sprintf("%d", page))
	if p.Query != "" {
		values.Set("q", p.Query)
	}
	return p.BasePath + "?" + values.Encode()
}

// Pages returns the page numbers to render. Long ranges are elided
// around the current page, with -1 marking an ellipsis slot.
func (p PaginationData) Pages() []int {
	const window = 2

	if p.TotalPages <= 7 {
		pages := make([]int, 0, p.TotalPages)
		for i := 1; i <= p.TotalPages; i++ {
			pages = append(pages, i)
		}
		return pages
	}

	pages := []int{1}

	start := p.CurrentPage - window
	if start < 2 {
		start = 2
	}
	end := p.CurrentPage + window
	if end > p.TotalPages-1 {
		end = p.TotalPages - 1
	}

	if start > 2 {
		pages = append(pages, -1)
	}
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	if end < p.TotalPages-1 {
		pages = append(pages, -1)
	}

	return append(pages, p.TotalPages)
}
