package query

import (
	"context"

	"socialnet/internal/entities"
)

// Pages is the cached state of a cursor paginated list.
type Pages[T any] struct {
	Pages []entities.Page[T]
	// Cursors[i] is the cursor Pages[i] was requested with.
	Cursors []string
}

// HasNextPage reports whether the last loaded page announces another one.
func (p Pages[T]) HasNextPage() bool {
	return len(p.Pages) > 0 && p.Pages[len(p.Pages)-1].HasNext
}

// NextCursor returns the cursor of the page after the last loaded one.
func (p Pages[T]) NextCursor() string {
	if len(p.Pages) == 0 {
		return ""
	}
	return p.Pages[len(p.Pages)-1].NextCursor
}

// Map returns a copy of p with fn applied to every item.
func (p Pages[T]) Map(fn func(T) T) Pages[T] {
	out := Pages[T]{Pages: make([]entities.Page[T], len(p.Pages)), Cursors: p.Cursors}
	for i, pg := range p.Pages {
		items := make([]T, len(pg.Items))
		for j, it := range pg.Items {
			items[j] = fn(it)
		}
		pg.Items = items
		out.Pages[i] = pg
	}
	return out
}

// Filter returns a copy of p keeping the items for which keep is true.
func (p Pages[T]) Filter(keep func(T) bool) Pages[T] {
	out := Pages[T]{Pages: make([]entities.Page[T], len(p.Pages)), Cursors: p.Cursors}
	for i, pg := range p.Pages {
		items := make([]T, 0, len(pg.Items))
		for _, it := range pg.Items {
			if keep(it) {
				items = append(items, it)
			}
		}
		pg.Items = items
		out.Pages[i] = pg
	}
	return out
}

// Prepend returns a copy of p with item inserted at the head of the first page.
func (p Pages[T]) Prepend(item T) Pages[T] {
	if len(p.Pages) == 0 {
		return Pages[T]{
			Pages:   []entities.Page[T]{{Items: []T{item}, Size: 1}},
			Cursors: []string{""},
		}
	}
	out := Pages[T]{Pages: append([]entities.Page[T](nil), p.Pages...), Cursors: p.Cursors}
	first := out.Pages[0]
	first.Items = append([]T{item}, first.Items...)
	out.Pages[0] = first
	return out
}

// Append returns a copy of p with item added at the tail of the last page.
func (p Pages[T]) Append(item T) Pages[T] {
	if len(p.Pages) == 0 {
		return p.Prepend(item)
	}
	out := Pages[T]{Pages: append([]entities.Page[T](nil), p.Pages...), Cursors: p.Cursors}
	last := out.Pages[len(out.Pages)-1]
	last.Items = append(append([]T(nil), last.Items...), item)
	out.Pages[len(out.Pages)-1] = last
	return out
}

// Flatten concatenates the items of all pages, dropping later duplicates
// of an id already seen.
func Flatten[T any](p Pages[T], id func(T) int64) []T {
	seen := make(map[int64]struct{})
	var out []T
	for _, pg := range p.Pages {
		for _, it := range pg.Items {
			k := id(it)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, it)
		}
	}
	return out
}

// PageFunc loads the page starting at cursor ("" for the first page).
type PageFunc[T any] func(ctx context.Context, cursor string) (entities.Page[T], error)

// FetchInfinite returns the cached pages of key while fresh. Otherwise it
// loads the first page, or reloads as many pages as were cached before,
// following NextCursor and stopping early when HasNext turns false.
func FetchInfinite[T any](ctx context.Context, c *Client, key Key, fn PageFunc[T]) (Pages[T], error) {
	load := func(ctx context.Context) (Pages[T], error) {
		want := 1
		if prev, ok := GetData[Pages[T]](c, key); ok && len(prev.Pages) > 0 {
			want = len(prev.Pages)
		}

		var out Pages[T]
		cursor := ""
		for i := 0; i < want; i++ {
			pg, err := fn(ctx, cursor)
			if err != nil {
				return Pages[T]{}, err
			}
			out.Pages = append(out.Pages, pg)
			out.Cursors = append(out.Cursors, cursor)
			if !pg.HasNext || pg.NextCursor == "" {
				break
			}
			cursor = pg.NextCursor
		}
		return out, nil
	}
	return Fetch(ctx, c, key, load)
}

// FetchNextPage loads the page after the last cached one and appends it.
// With nothing cached it behaves like FetchInfinite. It returns
// entities.ErrNoNextPage, with the cached pages, when the last page has no
// successor.
func FetchNextPage[T any](ctx context.Context, c *Client, key Key, fn PageFunc[T]) (Pages[T], error) {
	cur, ok := GetData[Pages[T]](c, key)
	if !ok || len(cur.Pages) == 0 {
		return FetchInfinite(ctx, c, key, fn)
	}
	if !cur.HasNextPage() {
		return cur, entities.ErrNoNextPage
	}

	cursor := cur.NextCursor()
	load := func(ctx context.Context) (any, error) { return fn(ctx, cursor) }
	v, err := c.fetch(ctx, key, key.hash()+"\x1e"+cursor, true, load, appendPage[T](cursor))
	return cast[Pages[T]](v, err)
}

// appendPage stores a next page only when the cached list still ends at
// the cursor it was requested with.
func appendPage[T any](cursor string) writeFunc {
	return func(c *Client, e *entry, v any, epoch uint64) any {
		pg, _ := v.(entities.Page[T])
		cur, ok := e.data.(Pages[T])
		if !ok || !e.hasData || !cur.HasNextPage() || cur.NextCursor() != cursor {
			return e.data
		}
		next := Pages[T]{
			Pages:   append(append([]entities.Page[T](nil), cur.Pages...), pg),
			Cursors: append(append([]string(nil), cur.Cursors...), cursor),
		}
		e.data = next
		e.err = nil
		if e.epoch != epoch {
			e.invalidated = true
		}
		return next
	}
}
