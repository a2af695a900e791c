// Package usecase binds the REST endpoints to the query cache: one function
// per screen query and one per user action, with optimistic cache edits.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"socialnet/internal/api"
	"socialnet/internal/entities"
	"socialnet/internal/httpclient"
	"socialnet/internal/query"
	"socialnet/internal/session"
)

// PageSize is the page size requested by every paginated query.
const PageSize = entities.DefaultPageSize

// Service is the client facing API of the app.
type Service struct {
	api     *api.API
	cache   *query.Client
	session *session.Store
	log     *zap.SugaredLogger
}

// New returns a Service. The HTTP client behind a must take its token from
// sess so that Login and Logout take effect.
func New(a *api.API, cache *query.Client, sess *session.Store, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{api: a, cache: cache, session: sess, log: log}
}

// Cache exposes the query cache.
func (s *Service) Cache() *query.Client { return s.cache }

// API exposes the endpoint set.
func (s *Service) API() *api.API { return s.api }

// Register creates an account. It does not log in.
func (s *Service) Register(ctx context.Context, email, password, nickname string) (entities.Profile, error) {
	return s.api.Register(ctx, entities.RegisterRequest{Email: email, Password: password, Nickname: nickname})
}

// Login authenticates, persists the session and starts from an empty cache.
// The own profile and notification setting are prefetched in parallel;
// prefetch failures are logged only.
func (s *Service) Login(ctx context.Context, email, password string) (entities.Session, error) {
	sess, err := s.api.Login(ctx, entities.LoginRequest{Email: email, Password: password})
	if err != nil {
		return entities.Session{}, err
	}
	if err := s.session.Save(sess); err != nil {
		return entities.Session{}, err
	}
	s.cache.Clear()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.MyProfile(gctx)
		return err
	})
	g.Go(func() error {
		_, err := s.NotificationSetting(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warnw("prefetch after login", "error", err)
	}
	s.log.Debugw("logged in", "user_id", sess.UserID)
	return sess, nil
}

// Logout forgets every cached query and the persisted session.
func (s *Service) Logout() error {
	s.cache.Clear()
	return s.session.Delete()
}

// Session returns the current session, loading it from disk if needed.
func (s *Service) Session() (entities.Session, error) {
	if cur := s.session.Current(); cur.Token != "" {
		return cur, nil
	}
	return s.session.Load()
}

func (s *Service) me() int64 { return s.session.Current().UserID }

// Toast turns err into the one line message shown to the user.
func Toast(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrNoSession), errors.Is(err, entities.ErrUnauthorized):
		return "Please log in again."
	case errors.Is(err, entities.ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, entities.ErrNotFound):
		return "It no longer exists."
	case errors.Is(err, entities.ErrConflict):
		return "That is already taken or done."
	case errors.Is(err, entities.ErrNoNextPage):
		return "No more items."
	case errors.Is(err, entities.ErrKeyMismatch):
		return "The upload could not be verified, please retry."
	case errors.Is(err, entities.ErrInvalidArgument):
		if msg := serverMessage(err); msg != "" {
			return "Invalid input: " + msg
		}
		return fmt.Sprintf("Invalid input: %v", err)
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to answer."
	}
	if httpclient.StatusOf(err) < 500 {
		if msg := serverMessage(err); msg != "" {
			return msg
		}
	}
	return "Something went wrong, please try again."
}

func serverMessage(err error) string {
	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
