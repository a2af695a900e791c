package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"socialnet/internal/entities"
)

// Follow starts following a user.
func (a *API) Follow(ctx context.Context, userID int64) error {
	return a.http.Do(ctx, http.MethodPost, "follow/"+id(userID), nil, nil, nil)
}

// Unfollow stops following a user.
func (a *API) Unfollow(ctx context.Context, userID int64) error {
	return a.http.Do(ctx, http.MethodDelete, "follow/"+id(userID), nil, nil, nil)
}

// ListFollowers returns users following userID.
func (a *API) ListFollowers(ctx context.Context, userID int64, p entities.PageRequest) (entities.Page[entities.FollowUser], error) {
	var out entities.Page[entities.FollowUser]
	err := a.http.Do(ctx, http.MethodGet, "users/"+id(userID)+"/followers", pageQuery(p), nil, &out)
	return out, err
}

// ListFollowing returns users followed by userID.
func (a *API) ListFollowing(ctx context.Context, userID int64, p entities.PageRequest) (entities.Page[entities.FollowUser], error) {
	var out entities.Page[entities.FollowUser]
	err := a.http.Do(ctx, http.MethodGet, "users/"+id(userID)+"/following", pageQuery(p), nil, &out)
	return out, err
}

// Recommendations returns friend suggestions for the current user.
func (a *API) Recommendations(ctx context.Context, size int) ([]entities.FollowUser, error) {
	q := url.Values{}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	var out []entities.FollowUser
	err := a.http.Do(ctx, http.MethodGet, "follow/recommendations", q, nil, &out)
	return out, err
}
