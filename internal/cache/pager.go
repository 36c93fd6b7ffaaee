package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// PageFunc fetches the page after cursor for filter. An empty cursor asks for
// the first page.
type PageFunc[T any] func(ctx context.Context, filter, cursor string) ([]T, error)

// Pager accumulates cursor-paginated records in order. The cursor is the id
// of the last record seen; changing the filter starts over.
type Pager[T any] struct {
	mu     sync.Mutex
	idOf   func(T) string
	filter string
	items  []T
	cursor string
	done   bool
	gen    int
	group  singleflight.Group
}

func NewPager[T any](idOf func(T) string) *Pager[T] {
	return &Pager[T]{idOf: idOf}
}

// Reset switches to filter. Accumulated pages are dropped only when the
// filter actually changes; it reports whether they were.
func (p *Pager[T]) Reset(filter string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if filter == p.filter && (p.items != nil || p.done) {
		return false
	}
	p.filter = filter
	p.items = nil
	p.cursor = ""
	p.done = false
	p.gen++
	return true
}

func (p *Pager[T]) Filter() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

func (p *Pager[T]) Cursor() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Items returns a copy of everything loaded so far.
func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]T(nil), p.items...)
}

// Done reports whether the last fetched page was empty.
func (p *Pager[T]) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// NextPage loads the page after the current cursor and returns the
// accumulated records. Concurrent calls for the same page share one fetch.
// A page that arrives after the filter changed is discarded.
func (p *Pager[T]) NextPage(ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	p.mu.Lock()
	if p.done {
		items := append([]T(nil), p.items...)
		p.mu.Unlock()
		return items, nil
	}
	filter, cursor, gen := p.filter, p.cursor, p.gen
	p.mu.Unlock()

	_, err, _ := p.group.Do(filter+"\x00"+cursor, func() (any, error) {
		page, err := fetch(ctx, filter, cursor)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.gen || cursor != p.cursor {
			return nil, nil
		}
		if len(page) == 0 {
			p.done = true
			if p.items == nil {
				p.items = []T{}
			}
			return nil, nil
		}
		p.items = append(p.items, page...)
		p.cursor = p.idOf(page[len(page)-1])
		return nil, nil
	})
	return p.Items(), err
}
