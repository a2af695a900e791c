package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"socialnet/internal/entities"
)

func likeToggle(p entities.Post) entities.Post {
	p.Liked = !p.Liked
	if p.Liked {
		p.LikeCount++
	} else {
		p.LikeCount--
	}
	return p
}

func TestMutateRollsBackOnFailure(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	before := entities.Post{ID: 1, LikeCount: 4}
	SetData(c, K("post", 1), before)
	feed := Pages[entities.Post]{Pages: []entities.Page[entities.Post]{{Items: []entities.Post{before, {ID: 2}}}}, Cursors: []string{""}}
	SetData(c, K("posts", "free"), feed)

	boom := errors.New("500")
	var seen entities.Post
	_, err := Mutate(context.Background(), c, Mutation[entities.LikeResult]{
		Optimistic: func(tx *Tx) {
			require.True(t, Update(tx, K("post", 1), likeToggle))
			require.Equal(t, 1, UpdateAll(tx, K("posts"), func(p Pages[entities.Post]) Pages[entities.Post] {
				return p.Map(func(p entities.Post) entities.Post {
					if p.ID == 1 {
						return likeToggle(p)
					}
					return p
				})
			}))
		},
		Do: func(context.Context) (entities.LikeResult, error) {
			seen, _ = GetData[entities.Post](c, K("post", 1))
			return entities.LikeResult{}, boom
		},
	})
	require.ErrorIs(t, err, boom)
	require.True(t, seen.Liked, "optimistic value visible while the call runs")
	require.Equal(t, 5, seen.LikeCount)

	after, _ := GetData[entities.Post](c, K("post", 1))
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("post after rollback (-want +got):\n%s", diff)
	}
	afterFeed, _ := GetData[Pages[entities.Post]](c, K("posts", "free"))
	if diff := cmp.Diff(feed, afterFeed); diff != "" {
		t.Fatalf("feed after rollback (-want +got):\n%s", diff)
	}
	require.True(t, c.IsStale(K("post", 1)), "settled keys are invalidated")
}

func TestMutateSuccessInvalidates(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	SetData(c, K("post", 1), entities.Post{ID: 1})
	SetData(c, K("notificationSetting"), entities.NotificationSetting{})

	res, err := Mutate(context.Background(), c, Mutation[string]{
		Optimistic: func(tx *Tx) { Update(tx, K("post", 1), likeToggle) },
		Do:         func(context.Context) (string, error) { return "ok", nil },
		Invalidate: []Key{K("notificationSetting")},
	})
	require.NoError(t, err)
	require.Equal(t, "ok", res)
	require.True(t, c.IsStale(K("post", 1)))
	require.True(t, c.IsStale(K("notificationSetting")))

	p, _ := GetData[entities.Post](c, K("post", 1))
	require.True(t, p.Liked, "optimistic value kept until refetch")
}

func TestMutateOnSuccessWritesServerTruth(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	SetData(c, K("post", 1), entities.Post{ID: 1, LikeCount: 1})

	_, err := Mutate(context.Background(), c, Mutation[entities.LikeResult]{
		Optimistic: func(tx *Tx) { Update(tx, K("post", 1), likeToggle) },
		Do: func(context.Context) (entities.LikeResult, error) {
			return entities.LikeResult{PostID: 1, Liked: true, LikeCount: 9}, nil
		},
		OnSuccess: func(c *Client, r entities.LikeResult) {
			SetData(c, K("post", 1), entities.Post{ID: 1, Liked: r.Liked, LikeCount: r.LikeCount})
		},
	})
	require.NoError(t, err)

	p, _ := GetData[entities.Post](c, K("post", 1))
	require.Equal(t, 9, p.LikeCount)
}

func TestMutateWithoutCacheEntrySkipsOptimisticEdit(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	var updated bool

	_, err := Mutate(context.Background(), c, Mutation[struct{}]{
		Optimistic: func(tx *Tx) { updated = Update(tx, K("post", 1), likeToggle) },
		Do:         func(context.Context) (struct{}, error) { return struct{}{}, errors.New("fail") },
	})
	require.Error(t, err)
	require.False(t, updated)

	_, ok := GetData[entities.Post](c, K("post", 1))
	require.False(t, ok)
}

func TestMutateCancelsInFlightFetch(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	SetData(c, K("post", 1), entities.Post{ID: 1, LikeCount: 1})
	c.Invalidate(K("post", 1))

	started := make(chan struct{})
	fetched := make(chan entities.Post)
	go func() {
		p, _ := Fetch(context.Background(), c, K("post", 1), func(ctx context.Context) (entities.Post, error) {
			close(started)
			<-ctx.Done()
			return entities.Post{ID: 1, LikeCount: 100}, nil
		})
		fetched <- p
	}()
	<-started
	require.Eventually(t, func() bool { return c.IsFetching(K("post", 1)) }, time.Second, time.Millisecond)

	_, err := Mutate(context.Background(), c, Mutation[struct{}]{
		Optimistic: func(tx *Tx) { Update(tx, K("post", 1), likeToggle) },
		Do:         func(context.Context) (struct{}, error) { return struct{}{}, nil },
	})
	require.NoError(t, err)

	got := <-fetched
	require.Equal(t, 2, got.LikeCount, "cancelled fetch hands back the optimistic value")
	p, _ := GetData[entities.Post](c, K("post", 1))
	require.Equal(t, 2, p.LikeCount, "stale response never overwrites the optimistic value")
}

func TestMutateCancelsFetchNotYetStarted(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	SetData(c, K("post", 1), entities.Post{ID: 1, LikeCount: 1})
	c.Invalidate(K("post", 1))

	checked := make(chan struct{})
	resume := make(chan struct{})
	var once sync.Once
	c.afterCheck = func() {
		once.Do(func() {
			close(checked)
			<-resume
		})
	}

	var calls atomic.Int32
	fetched := make(chan entities.Post, 1)
	go func() {
		p, _ := Fetch(context.Background(), c, K("post", 1), func(context.Context) (entities.Post, error) {
			calls.Add(1)
			return entities.Post{ID: 1, LikeCount: 1}, nil
		})
		fetched <- p
	}()
	<-checked

	var during entities.Post
	var got entities.Post
	_, err := Mutate(context.Background(), c, Mutation[struct{}]{
		Optimistic: func(tx *Tx) { Update(tx, K("post", 1), likeToggle) },
		Do: func(context.Context) (struct{}, error) {
			close(resume)
			got = <-fetched
			during, _ = GetData[entities.Post](c, K("post", 1))
			return struct{}{}, nil
		},
	})
	require.NoError(t, err)

	require.Zero(t, calls.Load(), "fetch checked before the edit never reaches the network")
	require.Equal(t, 2, got.LikeCount)
	require.Equal(t, 2, during.LikeCount, "optimistic value survives until Do returns")
	require.True(t, c.IsStale(K("post", 1)))
}

func TestSetDataDropsFetchNotYetStarted(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})

	checked := make(chan struct{})
	resume := make(chan struct{})
	var once sync.Once
	c.afterCheck = func() {
		once.Do(func() {
			close(checked)
			<-resume
		})
	}

	fetched := make(chan string, 1)
	go func() {
		v, _ := Fetch(context.Background(), c, K("profile", "me"), func(context.Context) (string, error) {
			return "server", nil
		})
		fetched <- v
	}()
	<-checked
	SetData(c, K("profile", "me"), "local")
	close(resume)

	require.Equal(t, "local", <-fetched)
	v, _ := GetData[string](c, K("profile", "me"))
	require.Equal(t, "local", v)
	require.False(t, c.IsStale(K("profile", "me")))
}

func TestMutateDoubleEditRestoresFirstSnapshot(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	SetData(c, K("a"), 1)

	_, _ = Mutate(context.Background(), c, Mutation[int]{
		Optimistic: func(tx *Tx) {
			Update(tx, K("a"), func(v int) int { return v + 1 })
			Update(tx, K("a"), func(v int) int { return v + 1 })
		},
		Do: func(context.Context) (int, error) { return 0, errors.New("x") },
	})

	v, _ := GetData[int](c, K("a"))
	require.Equal(t, 1, v, "double edit restores the first snapshot")
}

func TestTempIDs(t *testing.T) {
	a, b := TempID(), TempID()
	require.Less(t, a, int64(0))
	require.Less(t, b, int64(0))
	require.NotEqual(t, a, b)
	require.True(t, IsTempID(a))
	require.False(t, IsTempID(12))
}
