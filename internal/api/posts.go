package api

import (
	"context"
	"net/http"

	"socialnet/internal/entities"
)

// ListPosts returns one page of a board feed. An empty board lists all boards.
func (a *API) ListPosts(ctx context.Context, board string, p entities.PageRequest) (entities.Page[entities.Post], error) {
	q := pageQuery(p)
	if board != "" {
		q.Set("board", board)
	}
	var out entities.Page[entities.Post]
	err := a.http.Do(ctx, http.MethodGet, "posts", q, nil, &out)
	return out, err
}

// GetPost returns a single post.
func (a *API) GetPost(ctx context.Context, postID int64) (entities.Post, error) {
	var out entities.Post
	err := a.http.Do(ctx, http.MethodGet, "posts/"+id(postID), nil, nil, &out)
	return out, err
}

// CreatePost publishes a post.
func (a *API) CreatePost(ctx context.Context, req entities.CreatePostRequest) (entities.Post, error) {
	var out entities.Post
	err := a.http.Do(ctx, http.MethodPost, "posts", nil, req, &out)
	return out, err
}

// DeletePost removes a post of the current user.
func (a *API) DeletePost(ctx context.Context, postID int64) error {
	return a.http.Do(ctx, http.MethodDelete, "posts/"+id(postID), nil, nil, nil)
}

// LikePost likes a post.
func (a *API) LikePost(ctx context.Context, postID int64) (entities.LikeResult, error) {
	var out entities.LikeResult
	err := a.http.Do(ctx, http.MethodPost, "posts/"+id(postID)+"/like", nil, nil, &out)
	return out, err
}

// UnlikePost withdraws a like.
func (a *API) UnlikePost(ctx context.Context, postID int64) (entities.LikeResult, error) {
	var out entities.LikeResult
	err := a.http.Do(ctx, http.MethodDelete, "posts/"+id(postID)+"/like", nil, nil, &out)
	return out, err
}
