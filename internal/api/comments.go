package api

import (
	"context"
	"net/http"

	"socialnet/internal/entities"
)

// ListComments returns one page of comments of a post, newest first.
func (a *API) ListComments(ctx context.Context, postID int64, p entities.PageRequest) (entities.Page[entities.Comment], error) {
	var out entities.Page[entities.Comment]
	err := a.http.Do(ctx, http.MethodGet, "posts/"+id(postID)+"/comments", pageQuery(p), nil, &out)
	return out, err
}

// CreateComment adds a comment to a post.
func (a *API) CreateComment(ctx context.Context, postID int64, content string) (entities.Comment, error) {
	var out entities.Comment
	err := a.http.Do(ctx, http.MethodPost, "posts/"+id(postID)+"/comments", nil,
		entities.CreateCommentRequest{Content: content}, &out)
	return out, err
}

// DeleteComment removes a comment of the current user.
func (a *API) DeleteComment(ctx context.Context, commentID int64) error {
	return a.http.Do(ctx, http.MethodDelete, "comments/"+id(commentID), nil, nil, nil)
}
