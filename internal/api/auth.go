package api

import (
	"context"
	"net/http"

	"socialnet/internal/entities"
)

// Register creates an account.
func (a *API) Register(ctx context.Context, req entities.RegisterRequest) (entities.Profile, error) {
	var out entities.Profile
	err := a.http.Do(ctx, http.MethodPost, "auth/register", nil, req, &out)
	return out, err
}

// Login exchanges credentials for a session.
func (a *API) Login(ctx context.Context, req entities.LoginRequest) (entities.Session, error) {
	var out entities.Session
	err := a.http.Do(ctx, http.MethodPost, "auth/login", nil, req, &out)
	return out, err
}
