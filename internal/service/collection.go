package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/safastep/console/internal/domain"
)

// DefaultPageSize is the fixed page size used by every resource listing.
const DefaultPageSize = 10

// ErrStale marks a response that arrived after a newer request was
// issued for the same controller. It is discarded silently: callers
// must not surface it to the administrator.
var ErrStale = errors.New("stale response discarded")

// Phase describes one async operation's lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Source is the slice of the platform API a collection needs: paging,
// substring search, and deletion for one resource. Satisfied by the
// api package's UserSource, PostSource, and EcoLocationSource.
type Source[T any] interface {
	List(ctx context.Context, skip, limit int) (domain.Page[T], error)
	Search(ctx context.Context, query string, skip, limit int) (domain.Page[T], error)
	Delete(ctx context.Context, id int64) error
}

// CollectionState is a snapshot of a collection for rendering.
type CollectionState[T any] struct {
	Items     []T
	Total     int64
	PageIndex int
	PageSize  int
	Query     string
	Phase     Phase
}

// TotalPages derives the page count: ceil(Total/PageSize), with an empty
// collection having zero pages.
func (s CollectionState[T]) TotalPages() int {
	p := domain.Page[T]{Total: s.Total, Limit: s.PageSize}
	return p.TotalPages()
}

// Collection is the paged/searchable/deletable list controller shared by
// the Users, Posts, and Eco-Locations screens.
//
// Every fetch carries a monotonically increasing sequence number taken
// when the request is issued; a result is committed only if no newer
// request has been issued since. The last-issued request therefore
// determines the final visible state regardless of arrival order.
type Collection[T any] struct {
	source   Source[T]
	pageSize int
	keyOf    func(T) int64

	mu        sync.Mutex
	items     []T
	total     int64
	pageIndex int
	query     string
	phase     Phase
	seq       uint64
}

// NewCollection creates a collection controller for one resource.
// keyOf extracts the server-assigned identifier from an item.
func NewCollection[T any](source Source[T], pageSize int, keyOf func(T) int64) *Collection[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Collection[T]{
		source:   source,
		pageSize: pageSize,
		keyOf:    keyOf,
		phase:    PhaseIdle,
	}
}

// State returns a snapshot for rendering. The items slice is shared, not
// copied; callers must treat it as read-only.
func (c *Collection[T]) State() CollectionState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CollectionState[T]{
		Items:     c.items,
		Total:     c.total,
		PageIndex: c.pageIndex,
		PageSize:  c.pageSize,
		Query:     c.query,
		Phase:     c.phase,
	}
}

// Restore seeds the page position and active query without fetching.
// Handlers use it to rebuild a collection's position from request
// parameters before acting on it.
func (c *Collection[T]) Restore(pageIndex int, query string) {
	if pageIndex < 0 {
		pageIndex = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pageIndex = pageIndex
	c.query = strings.TrimSpace(query)
}

// ItemByKey finds an item on the current page by its identifier.
func (c *Collection[T]) ItemByKey(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if c.keyOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// LoadPage fetches page index (0-based) of the active listing: the plain
// list endpoint normally, the search endpoint while a query is active.
//
// On success the snapshot is replaced wholesale. On failure the phase
// becomes Failed but the prior items stay visible; a stale page beats a
// blank screen. A result superseded by a newer request returns ErrStale
// and leaves state untouched.
func (c *Collection[T]) LoadPage(ctx context.Context, index int) error {
	if index < 0 {
		index = 0
	}

	c.mu.Lock()
	c.phase = PhaseLoading
	c.seq++
	seq := c.seq
	query := c.query
	size := c.pageSize
	c.mu.Unlock()

	var (
		page domain.Page[T]
		err  error
	)
	if query == "" {
		page, err = c.source.List(ctx, index*size, size)
	} else {
		page, err = c.source.Search(ctx, query, index*size, size)
	}

	return c.commit(seq, index, page, err)
}

// Search replaces the active query and loads its first page. The query
// is trimmed; an empty result clears the search and reloads page zero
// from the plain list endpoint.
func (c *Collection[T]) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	c.query = query
	c.mu.Unlock()

	return c.LoadPage(ctx, 0)
}

// DeleteItem deletes by identifier and refetches the current page so
// totals and page boundaries stay consistent with the server. If the
// delete empties the current page past the new last page, the index is
// clamped to max(0, ceil(total/pageSize)-1) and refetched.
//
// On delete failure state is left unchanged and the error is returned
// for the handler to surface.
func (c *Collection[T]) DeleteItem(ctx context.Context, id int64) error {
	if err := c.source.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	index := c.pageIndex
	c.mu.Unlock()

	if err := c.LoadPage(ctx, index); err != nil {
		return err
	}

	c.mu.Lock()
	total := c.total
	size := c.pageSize
	index = c.pageIndex
	c.mu.Unlock()

	if total > 0 && int64(index*size) >= total {
		last := int((total + int64(size) - 1) / int64(size))
		return c.LoadPage(ctx, last-1)
	}
	return nil
}

// commit applies a fetch result unless a newer request has been issued.
func (c *Collection[T]) commit(seq uint64, index int, page domain.Page[T], err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		return ErrStale
	}
	if err != nil {
		c.phase = PhaseFailed
		return err
	}

	c.items = page.Items
	c.total = page.Total
	c.pageIndex = index
	c.phase = PhaseLoaded
	return nil
}
