package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/entities"
	"socialnet/internal/httpclient"
	"socialnet/internal/query"
	"socialnet/internal/session"
	"socialnet/internal/usecase"
)

func postPath(id int64) string { return "/posts/" + strconv.FormatInt(id, 10) }

func TestLoginPrefetchesAndLogoutClears(t *testing.T) {
	h := newHarness(t)
	c := h.svc.Cache()

	prof, ok := query.GetData[entities.Profile](c, usecase.MyProfileKey)
	require.True(t, ok)
	assert.Equal(t, "me", prof.Nickname)
	_, ok = query.GetData[entities.NotificationSetting](c, usecase.NotificationSettingKey)
	require.True(t, ok)

	sess, err := h.svc.Session()
	require.NoError(t, err)
	assert.Equal(t, h.me, sess)

	require.NoError(t, h.svc.Logout())
	_, ok = query.GetData[entities.Profile](c, usecase.MyProfileKey)
	assert.False(t, ok)
	_, err = h.svc.Session()
	require.ErrorIs(t, err, session.ErrNoSession)

	_, err = h.svc.MyProfile(context.Background())
	require.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestToggleLikeRollsBackOnFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	post, err := h.svc.CreatePost(ctx, entities.CreatePostRequest{Content: "hello"})
	require.NoError(t, err)

	feed, err := h.svc.Feed(ctx, "")
	require.NoError(t, err)
	before, err := h.svc.Post(ctx, post.ID)
	require.NoError(t, err)

	h.faults.fail(route(http.MethodPost, postPath(post.ID)+"/like"), http.StatusInternalServerError)
	seen := make(chan entities.Post, 1)
	h.faults.onRequest(func(r *http.Request) {
		if r.Method == http.MethodPost {
			p, _ := query.GetData[entities.Post](h.svc.Cache(), usecase.PostKey(post.ID))
			seen <- p
		}
	})

	_, err = h.svc.ToggleLike(ctx, post.ID)
	require.Error(t, err)
	during := <-seen
	assert.True(t, during.Liked, "optimistic like visible during the call")
	assert.Equal(t, 1, during.LikeCount)

	after, _ := query.GetData[entities.Post](h.svc.Cache(), usecase.PostKey(post.ID))
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("post after rollback (-want +got):\n%s", diff)
	}
	afterFeed, _ := query.GetData[query.Pages[entities.Post]](h.svc.Cache(), usecase.FeedKey(""))
	if diff := cmp.Diff(feed, afterFeed); diff != "" {
		t.Fatalf("feed after rollback (-want +got):\n%s", diff)
	}
}

func TestToggleLikeSuccessRefetches(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	post, err := h.svc.CreatePost(ctx, entities.CreatePostRequest{Content: "hello"})
	require.NoError(t, err)
	_, err = h.svc.Post(ctx, post.ID)
	require.NoError(t, err)

	res, err := h.svc.ToggleLike(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.True(t, h.svc.Cache().IsStale(usecase.PostKey(post.ID)))

	getRoute := route(http.MethodGet, postPath(post.ID))
	hits := h.faults.count(getRoute)
	got, err := h.svc.Post(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, hits+1, h.faults.count(getRoute), "stale post is refetched")
	assert.True(t, got.Liked)
	assert.Equal(t, 1, got.LikeCount)

	_, err = h.svc.Post(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, hits+1, h.faults.count(getRoute), "fresh post is served from cache")

	res, err = h.svc.ToggleLike(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
}

func TestFeedPaginationHasNoDuplicates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	const total = 2*usecase.PageSize + 5
	for i := range total {
		_, err := h.svc.CreatePost(ctx, entities.CreatePostRequest{Board: "free", Content: fmt.Sprint("post ", i)})
		require.NoError(t, err)
	}

	pages, err := h.svc.Feed(ctx, "free")
	require.NoError(t, err)
	for {
		pages, err = h.svc.FeedNextPage(ctx, "free")
		if errors.Is(err, entities.ErrNoNextPage) {
			break
		}
		require.NoError(t, err)
	}
	require.Len(t, pages.Pages, 3)

	seen := map[int64]bool{}
	for _, p := range query.Flatten(pages, func(p entities.Post) int64 { return p.ID }) {
		require.False(t, seen[p.ID])
		seen[p.ID] = true
	}
	assert.Len(t, seen, total)

	// A stale feed reloads every loaded page.
	h.svc.Cache().Invalidate(usecase.PostsKey)
	pages, err = h.svc.Feed(ctx, "free")
	require.NoError(t, err)
	assert.Len(t, pages.Pages, 3)
}

func TestCreateCommentShowsPlaceholder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	post, err := h.svc.CreatePost(ctx, entities.CreatePostRequest{Content: "hello"})
	require.NoError(t, err)
	_, err = h.svc.Comments(ctx, post.ID)
	require.NoError(t, err)
	_, err = h.svc.Post(ctx, post.ID)
	require.NoError(t, err)

	seen := make(chan entities.Comment, 1)
	h.faults.onRequest(func(r *http.Request) {
		if r.Method != http.MethodPost {
			return
		}
		pages, _ := query.GetData[query.Pages[entities.Comment]](h.svc.Cache(), usecase.CommentsKey(post.ID))
		if len(pages.Pages) > 0 && len(pages.Pages[0].Items) > 0 {
			seen <- pages.Pages[0].Items[0]
		}
	})

	created, err := h.svc.CreateComment(ctx, post.ID, "first!")
	require.NoError(t, err)
	h.faults.onRequest(nil)
	placeholder := <-seen
	assert.True(t, placeholder.Pending())
	assert.Equal(t, "first!", placeholder.Content)
	assert.Equal(t, "me", placeholder.AuthorNickname)
	assert.Positive(t, created.ID)

	pages, err := h.svc.Comments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, pages.Pages[0].Items, 1)
	assert.Equal(t, created.ID, pages.Pages[0].Items[0].ID)

	got, err := h.svc.Post(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentCount)

	require.NoError(t, h.svc.DeleteComment(ctx, post.ID, created.ID))
	pages, err = h.svc.Comments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, pages.Pages[0].Items)
}

func TestCreateCommentRollsBackOnNotFound(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	post, err := h.svc.CreatePost(ctx, entities.CreatePostRequest{Content: "doomed"})
	require.NoError(t, err)
	before, err := h.svc.Comments(ctx, post.ID)
	require.NoError(t, err)

	// Deleted behind the cache's back.
	require.NoError(t, h.svc.API().DeletePost(ctx, post.ID))

	_, err = h.svc.CreateComment(ctx, post.ID, "too late")
	require.ErrorIs(t, err, entities.ErrNotFound)
	assert.Equal(t, "It no longer exists.", usecase.Toast(err))

	after, _ := query.GetData[query.Pages[entities.Comment]](h.svc.Cache(), usecase.CommentsKey(post.ID))
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("comments after rollback (-want +got):\n%s", diff)
	}
}

func TestDeletePostRemovesFromFeed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	keep, err := h.svc.CreatePost(ctx, entities.CreatePostRequest{Content: "keep"})
	require.NoError(t, err)
	drop, err := h.svc.CreatePost(ctx, entities.CreatePostRequest{Content: "drop"})
	require.NoError(t, err)
	_, err = h.svc.Feed(ctx, "")
	require.NoError(t, err)

	require.NoError(t, h.svc.DeletePost(ctx, drop.ID))
	_, ok := query.GetData[entities.Post](h.svc.Cache(), usecase.PostKey(drop.ID))
	assert.False(t, ok)

	feed, err := h.svc.Feed(ctx, "")
	require.NoError(t, err)
	items := query.Flatten(feed, func(p entities.Post) int64 { return p.ID })
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ID)
}

func TestToggleFollowUpdatesProfiles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, other := h.b.User(t, "other")

	recs, err := h.svc.Recommendations(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.False(t, recs[0].Following)

	following, err := h.svc.ToggleFollow(ctx, other.UserID)
	require.NoError(t, err)
	assert.True(t, following)

	prof, err := h.svc.Profile(ctx, other.UserID)
	require.NoError(t, err)
	assert.True(t, prof.Following)
	assert.Equal(t, 1, prof.FollowerCount)

	me, err := h.svc.MyProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, me.FollowingCount)

	list, err := h.svc.Following(ctx, h.me.UserID)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, other.UserID, list.Items[0].ID)

	h.faults.fail(route(http.MethodDelete, "/follow/"+strconv.FormatInt(other.UserID, 10)), http.StatusServiceUnavailable)
	following, err = h.svc.ToggleFollow(ctx, other.UserID)
	require.Error(t, err)
	assert.True(t, following, "failed unfollow keeps the previous state")
	cached, _ := query.GetData[entities.Profile](h.svc.Cache(), usecase.ProfileKey(other.UserID))
	assert.True(t, cached.Following)
}

func TestUpdateProfileAndNotificationSetting(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	bio := "gopher"
	p, err := h.svc.UpdateProfile(ctx, entities.UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, p.Bio)

	h.faults.fail(route(http.MethodPatch, "/profile/me"), http.StatusInternalServerError)
	other := "ignored"
	_, err = h.svc.UpdateProfile(ctx, entities.UpdateProfileRequest{Bio: &other})
	require.Error(t, err)
	cached, _ := query.GetData[entities.Profile](h.svc.Cache(), usecase.MyProfileKey)
	assert.Equal(t, bio, cached.Bio)

	ns, err := h.svc.NotificationSetting(ctx)
	require.NoError(t, err)
	ns.ChatEnabled = false
	_, err = h.svc.UpdateNotificationSetting(ctx, ns)
	require.NoError(t, err)
	got, err := h.svc.NotificationSetting(ctx)
	require.NoError(t, err)
	assert.False(t, got.ChatEnabled)
	assert.True(t, got.LikeEnabled)
}

func TestChatMutations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	friend, friendSess := h.b.User(t, "friend")

	room, err := friend.CreateChatRoom(ctx, entities.CreateChatRoomRequest{MemberIDs: []int64{h.me.UserID}})
	require.NoError(t, err)
	_, err = friend.SendMessage(ctx, room.ID, "hey")
	require.NoError(t, err)

	rooms, err := h.svc.ChatRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, rooms[0].UnreadCount)

	require.NoError(t, h.svc.MarkRoomRead(ctx, room.ID))
	rooms, err = h.svc.ChatRooms(ctx)
	require.NoError(t, err)
	assert.Zero(t, rooms[0].UnreadCount)

	_, err = h.svc.Messages(ctx, room.ID)
	require.NoError(t, err)
	sent, err := h.svc.SendMessage(ctx, room.ID, "hi back")
	require.NoError(t, err)
	assert.Equal(t, h.me.UserID, sent.SenderID)

	msgs, err := h.svc.Messages(ctx, room.ID)
	require.NoError(t, err)
	items := query.Flatten(msgs, func(m entities.ChatMessage) int64 { return m.ID })
	require.Len(t, items, 2)
	assert.Equal(t, "hi back", items[0].Content)
	assert.NotEqual(t, friendSess.UserID, items[0].SenderID)

	_, err = h.svc.CreateChatRoom(ctx, "group", []int64{friendSess.UserID})
	require.NoError(t, err)
	rooms, err = h.svc.ChatRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestWatchInvalidatesRoom(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	friend, _ := h.b.User(t, "friend")

	room, err := friend.CreateChatRoom(ctx, entities.CreateChatRoomRequest{MemberIDs: []int64{h.me.UserID}})
	require.NoError(t, err)
	_, err = h.svc.Messages(ctx, room.ID)
	require.NoError(t, err)
	require.False(t, h.svc.Cache().IsStale(usecase.MessagesKey(room.ID)))

	got := make(chan entities.ChatMessage, 16)
	done := make(chan error, 1)
	go func() { done <- h.svc.Watch(ctx, room.ID, func(m entities.ChatMessage) {
			select {
			case got <- m:
			default:
			}
		}) }()

	var msg entities.ChatMessage
	require.Eventually(t, func() bool {
		if _, err := friend.SendMessage(context.Background(), room.ID, "live"); err != nil {
			return false
		}
		select {
		case msg = <-got:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, "live", msg.Content)
	assert.True(t, h.svc.Cache().IsStale(usecase.MessagesKey(room.ID)))

	cancel()
	require.NoError(t, <-done)
}

func TestUploadImageKeepsPresignedKey(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	img, err := h.svc.UploadImage(ctx, "me.png", "image/png", bytes.NewReader([]byte("png")))
	require.NoError(t, err)

	p, err := h.svc.UpdateProfile(ctx, entities.UpdateProfileRequest{ProfileImageKey: &img.Key})
	require.NoError(t, err)
	assert.Equal(t, img.Key, p.ProfileImageKey)
}

func TestToast(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{session.ErrNoSession, "Please log in again."},
		{fmt.Errorf("x: %w", entities.ErrUnauthorized), "Please log in again."},
		{entities.ErrForbidden, "You are not allowed to do that."},
		{entities.ErrConflict, "That is already taken or done."},
		{entities.ErrNoNextPage, "No more items."},
		{context.DeadlineExceeded, "The server took too long to answer."},
		{errors.New("boom"), "Something went wrong, please try again."},
		{fmt.Errorf("%w: empty nickname", entities.ErrInvalidArgument), "Invalid input: invalid argument: empty nickname"},
		{&httpclient.APIError{Method: "POST", Path: "posts", Status: 400, Message: "content is required"}, "Invalid input: content is required"},
		{fmt.Errorf("create: %w", &httpclient.APIError{Method: "POST", Path: "posts", Status: 413, Message: "image too large"}), "Invalid input: image too large"},
		{&httpclient.APIError{Method: "GET", Path: "posts", Status: 429, Message: "slow down"}, "slow down"},
		{&httpclient.APIError{Method: "GET", Path: "posts", Status: 500, Message: "internal error"}, "Something went wrong, please try again."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, usecase.Toast(tt.err))
	}
}

func TestToastShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.CreatePost(context.Background(), entities.CreatePostRequest{Content: "   "})
	require.ErrorIs(t, err, entities.ErrInvalidArgument)
	assert.Equal(t, "Invalid input: content is required", usecase.Toast(err))
}
