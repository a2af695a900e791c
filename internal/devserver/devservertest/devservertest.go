// Package devservertest runs the development backend on an httptest server.
package devservertest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"socialnet/internal/api"
	"socialnet/internal/devserver"
	"socialnet/internal/devserver/store"
	"socialnet/internal/entities"
	"socialnet/internal/httpclient"
)

const (
	// Secret signs the tokens of test servers.
	Secret = "devservertest-secret-0123456789"
	// Password is shared by every user created with User.
	Password = "password123"
)

// Backend is a running test server.
type Backend struct {
	*httptest.Server
	Store *store.Store
	Dev   *devserver.Server
}

// Start boots a server on a fresh database in t.TempDir. wrap, when
// non-nil, decorates the handler, e.g. to inject failures.
func Start(t testing.TB, wrap func(http.Handler) http.Handler) *Backend {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	dev, err := devserver.New(st, zap.NewNop().Sugar(), devserver.Options{
		JWTSecret:  []byte(Secret),
		UploadDir:  filepath.Join(dir, "uploads"),
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	h := dev.Handler()
	if wrap != nil {
		h = wrap(h)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		dev.Close()
		srv.Close()
		_ = st.Close()
	})
	return &Backend{Server: srv, Store: st, Dev: dev}
}

// NewAPI returns an endpoint set for the backend sending token, which may
// be empty for anonymous calls.
func (b *Backend) NewAPI(t testing.TB, token string) *api.API {
	t.Helper()
	hc, err := httpclient.New(b.URL, httpclient.WithTokenSource(func() string { return token }))
	require.NoError(t, err)
	return api.New(hc)
}

// User registers nickname, logs it in and returns an authenticated API.
func (b *Backend) User(t testing.TB, nickname string) (*api.API, entities.Session) {
	t.Helper()
	ctx := context.Background()
	anon := b.NewAPI(t, "")
	email := nickname + "@example.com"

	_, err := anon.Register(ctx, entities.RegisterRequest{Email: email, Password: Password, Nickname: nickname})
	require.NoError(t, err)
	sess, err := anon.Login(ctx, entities.LoginRequest{Email: email, Password: Password})
	require.NoError(t, err)
	return b.NewAPI(t, sess.Token), sess
}
