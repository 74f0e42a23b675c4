// Package pagination derives page windows over in-memory collections.
//
// Pages are 1-based. An empty collection has zero pages; callers hide page
// controls whenever TotalPages <= 1.
package pagination

import (
	"fmt"
	"slices"
)

var (
	OrderSizes = Options{Sizes: []int{6, 9, 12, 24}, Default: 9}
	LogSizes   = Options{Sizes: []int{5, 10, 20, 50}, Default: 10}
)

// Options is the fixed page-size set offered by one list view.
type Options struct {
	Sizes   []int
	Default int
}

func (o Options) Allows(size int) bool {
	return slices.Contains(o.Sizes, size)
}

func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Clamp bounds page to [1, totalPages]. With zero pages it returns 1.
func Clamp(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Page slices items for a page. Out-of-range pages yield fewer (or no) items.
func Page[T any](items []T, page, size int) []T {
	if size <= 0 || page < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}

type Window[T any] struct {
	Items        []T    `json:"items"`
	Page         int    `json:"page"`
	Size         int    `json:"size"`
	TotalPages   int    `json:"totalPages"`
	Total        int    `json:"total"`
	Start        int    `json:"start"` // 1-based, 0 when empty
	End          int    `json:"end"`
	ShowControls bool   `json:"showControls"`
	Links        []Link `json:"links,omitempty"`
}

// Cursor holds the page and size chosen by one list view.
type Cursor struct {
	opts Options
	page int
	size int
	n    int
}

func NewCursor(opts Options) *Cursor {
	return &Cursor{opts: opts, page: 1, size: opts.Default}
}

func (c *Cursor) Page() int { return c.page }
func (c *Cursor) Size() int { return c.size }

func (c *Cursor) TotalPages() int { return TotalPages(c.n, c.size) }

// Sync records the collection length and resets to page 1 when it changed,
// so a refetch never leaves the view on a trailing empty page.
func (c *Cursor) Sync(n int) {
	if n != c.n {
		c.n = n
		c.page = 1
	}
}

func (c *Cursor) GoTo(page int) int {
	c.page = Clamp(page, c.TotalPages())
	return c.page
}

func (c *Cursor) Next() int {
	if c.page < c.TotalPages() {
		return c.GoTo(c.page + 1)
	}
	return c.page
}

func (c *Cursor) Previous() int {
	if c.page > 1 {
		return c.GoTo(c.page - 1)
	}
	return c.page
}

func (c *Cursor) Reset() { c.page = 1 }

// SetSize switches the page size and always goes back to page 1.
func (c *Cursor) SetSize(size int) error {
	if !c.opts.Allows(size) {
		return fmt.Errorf("page size %d not one of %v", size, c.opts.Sizes)
	}
	c.size = size
	c.page = 1
	return nil
}

// Paginate syncs the cursor with items and returns the current window.
func Paginate[T any](items []T, c *Cursor) Window[T] {
	c.Sync(len(items))
	return build(items, c.page, c.size)
}

// At is the stateless form used by request-scoped callers: size falls back to
// the default when not allowed, page is clamped.
func At[T any](items []T, opts Options, page, size int) Window[T] {
	if !opts.Allows(size) {
		size = opts.Default
	}
	page = Clamp(page, TotalPages(len(items), size))
	return build(items, page, size)
}

func build[T any](items []T, page, size int) Window[T] {
	total := TotalPages(len(items), size)
	w := Window[T]{
		Items:        Page(items, page, size),
		Page:         page,
		Size:         size,
		TotalPages:   total,
		Total:        len(items),
		ShowControls: total > 1,
	}
	if len(w.Items) > 0 {
		w.Start = (page-1)*size + 1
		w.End = w.Start + len(w.Items) - 1
	}
	if w.ShowControls {
		w.Links = Links(page, total)
	}
	return w
}
