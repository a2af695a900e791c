package api

import (
	"context"
	"net/http"

	"socialnet/internal/entities"
)

// GetMyProfile returns the profile of the current user.
func (a *API) GetMyProfile(ctx context.Context) (entities.Profile, error) {
	var out entities.Profile
	err := a.http.Do(ctx, http.MethodGet, "profile/me", nil, nil, &out)
	return out, err
}

// GetProfile returns the profile of another user.
func (a *API) GetProfile(ctx context.Context, userID int64) (entities.Profile, error) {
	var out entities.Profile
	err := a.http.Do(ctx, http.MethodGet, "users/"+id(userID)+"/profile", nil, nil, &out)
	return out, err
}

// UpdateProfile changes the current user's profile.
func (a *API) UpdateProfile(ctx context.Context, req entities.UpdateProfileRequest) (entities.Profile, error) {
	var out entities.Profile
	err := a.http.Do(ctx, http.MethodPatch, "profile/me", nil, req, &out)
	return out, err
}
