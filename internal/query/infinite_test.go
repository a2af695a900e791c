package query

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"socialnet/internal/entities"
)

// pager serves ids 1..total in pages of size, using the last id as cursor.
func pager(total, size int, calls *atomic.Int32) PageFunc[int] {
	return func(_ context.Context, cursor string) (entities.Page[int], error) {
		calls.Add(1)
		start := 1
		if cursor != "" {
			n, err := strconv.Atoi(cursor)
			if err != nil {
				return entities.Page[int]{}, err
			}
			start = n + 1
		}
		var items []int
		for i := start; i <= total && len(items) < size; i++ {
			items = append(items, i)
		}
		pg := entities.Page[int]{Items: items, Size: size}
		if len(items) > 0 && items[len(items)-1] < total {
			pg.HasNext = true
			pg.NextCursor = strconv.Itoa(items[len(items)-1])
		}
		return pg, nil
	}
}

func ident(v int) int64 { return int64(v) }

func TestInfinitePaginationHonorsHasNext(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	var calls atomic.Int32
	fn := pager(7, 3, &calls)
	ctx := context.Background()
	key := K("posts", "free")

	p, err := FetchInfinite(ctx, c, key, fn)
	require.NoError(t, err)
	require.Len(t, p.Pages, 1)
	require.True(t, p.HasNextPage())

	for p.HasNextPage() {
		p, err = FetchNextPage(ctx, c, key, fn)
		require.NoError(t, err)
	}
	require.Len(t, p.Pages, 3)
	require.Equal(t, []string{"", "3", "6"}, p.Cursors)

	_, err = FetchNextPage(ctx, c, key, fn)
	require.ErrorIs(t, err, entities.ErrNoNextPage)
	require.EqualValues(t, 3, calls.Load())

	var concatenated []int
	for _, pg := range p.Pages {
		concatenated = append(concatenated, pg.Items...)
	}
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, concatenated)
	require.Equal(t, concatenated, Flatten(p, ident))
}

func TestInfiniteRefetchReloadsLoadedPages(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	var calls atomic.Int32
	fn := pager(10, 2, &calls)
	ctx := context.Background()
	key := K("comments", 1)

	_, err := FetchInfinite(ctx, c, key, fn)
	require.NoError(t, err)
	_, err = FetchNextPage(ctx, c, key, fn)
	require.NoError(t, err)
	calls.Store(0)

	c.Invalidate(key)
	p, err := FetchInfinite(ctx, c, key, fn)
	require.NoError(t, err)
	require.Len(t, p.Pages, 2)
	require.EqualValues(t, 2, calls.Load())
	require.False(t, c.IsStale(key))
}

func TestFetchNextPageWithoutDataLoadsFirst(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	var calls atomic.Int32

	p, err := FetchNextPage(context.Background(), c, K("messages", 3), pager(2, 5, &calls))
	require.NoError(t, err)
	require.Len(t, p.Pages, 1)
	require.False(t, p.HasNextPage())
}

// slowTail serves head as the first page and blocks the page after it
// until release is closed or the fetch is cancelled.
type slowTail struct {
	head    atomic.Pointer[entities.Page[int]]
	started chan struct{}
	release chan struct{}
}

func newSlowTail(head entities.Page[int]) *slowTail {
	st := &slowTail{started: make(chan struct{}), release: make(chan struct{})}
	st.head.Store(&head)
	return st
}

func (st *slowTail) fetch(ctx context.Context, cursor string) (entities.Page[int], error) {
	if cursor == "" {
		return *st.head.Load(), nil
	}
	close(st.started)
	select {
	case <-st.release:
		return entities.Page[int]{Items: []int{2, 1}, Size: 2}, nil
	case <-ctx.Done():
		return entities.Page[int]{}, ctx.Err()
	}
}

func (st *slowTail) nextPage(c *Client, key Key) <-chan Pages[int] {
	out := make(chan Pages[int], 1)
	go func() {
		p, _ := FetchNextPage(context.Background(), c, key, st.fetch)
		out <- p
	}()
	<-st.started
	return out
}

func TestNextPageDroppedWhenListReloaded(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	ctx := context.Background()
	key := K("posts", "free")
	st := newSlowTail(entities.Page[int]{Items: []int{4, 3}, Size: 2, HasNext: true, NextCursor: "3"})

	_, err := FetchInfinite(ctx, c, key, st.fetch)
	require.NoError(t, err)
	next := st.nextPage(c, key)

	// Two new posts arrive, so the reloaded first page ends elsewhere.
	st.head.Store(&entities.Page[int]{Items: []int{6, 5}, Size: 2, HasNext: true, NextCursor: "5"})
	c.Invalidate(key)
	reloaded, err := FetchInfinite(ctx, c, key, st.fetch)
	require.NoError(t, err)
	close(st.release)

	got := <-next
	if diff := cmp.Diff(reloaded, got); diff != "" {
		t.Fatalf("next page result (-want +got):\n%s", diff)
	}
	cached, _ := GetData[Pages[int]](c, key)
	require.Len(t, cached.Pages, 1)
	require.Equal(t, "5", cached.NextCursor())
	require.Equal(t, []int{6, 5}, Flatten(cached, ident))
}

func TestNextPageDroppedWhenListReplaced(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	ctx := context.Background()
	key := K("posts", "free")
	st := newSlowTail(entities.Page[int]{Items: []int{4, 3}, Size: 2, HasNext: true, NextCursor: "3"})

	_, err := FetchInfinite(ctx, c, key, st.fetch)
	require.NoError(t, err)
	next := st.nextPage(c, key)

	replaced := Pages[int]{
		Pages:   []entities.Page[int]{{Items: []int{4, 3}, Size: 2, HasNext: true, NextCursor: "3"}},
		Cursors: []string{""},
	}
	SetData(c, key, replaced)

	got := <-next
	require.Equal(t, replaced, got)
	cached, _ := GetData[Pages[int]](c, key)
	require.Equal(t, replaced, cached, "response of the replaced list is not appended")
}

func TestNextPageDuringRolledBackMutation(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	ctx := context.Background()
	key := K("posts", "free")
	st := newSlowTail(entities.Page[int]{Items: []int{4, 3}, Size: 2, HasNext: true, NextCursor: "3"})

	before, err := FetchInfinite(ctx, c, key, st.fetch)
	require.NoError(t, err)
	next := st.nextPage(c, key)

	var during Pages[int]
	_, err = Mutate(ctx, c, Mutation[struct{}]{
		Optimistic: func(tx *Tx) {
			Update(tx, key, func(p Pages[int]) Pages[int] { return p.Prepend(-1) })
		},
		Do: func(context.Context) (struct{}, error) {
			during = <-next
			return struct{}{}, errors.New("rejected")
		},
	})
	require.Error(t, err)

	require.Equal(t, []int{-1, 4, 3}, Flatten(during, ident))
	after, _ := GetData[Pages[int]](c, key)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("pages after rollback (-want +got):\n%s", diff)
	}
	require.Equal(t, []int{4, 3}, Flatten(after, ident))
}

func TestFlattenDropsDuplicates(t *testing.T) {
	p := Pages[int]{Pages: []entities.Page[int]{
		{Items: []int{5, 4, 3}},
		{Items: []int{3, 2}},
	}}
	require.Equal(t, []int{5, 4, 3, 2}, Flatten(p, ident))
}

func TestPagesCopyOnWrite(t *testing.T) {
	orig := Pages[int]{Pages: []entities.Page[int]{{Items: []int{1, 2}}, {Items: []int{3}}}, Cursors: []string{"", "2"}}

	pre := orig.Prepend(-1)
	app := orig.Append(4)
	mapped := orig.Map(func(v int) int { return v * 10 })
	filtered := orig.Filter(func(v int) bool { return v != 2 })

	require.Equal(t, []int{1, 2}, orig.Pages[0].Items)
	require.Equal(t, []int{3}, orig.Pages[1].Items)
	require.Equal(t, []int{-1, 1, 2}, pre.Pages[0].Items)
	require.Equal(t, []int{3, 4}, app.Pages[1].Items)
	require.Equal(t, []int{10, 20}, mapped.Pages[0].Items)
	require.Equal(t, []int{1}, filtered.Pages[0].Items)

	empty := Pages[int]{}.Prepend(7)
	require.Equal(t, []int{7}, empty.Pages[0].Items)
}
