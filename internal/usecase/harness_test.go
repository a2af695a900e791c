package usecase_test

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialnet/internal/api"
	"socialnet/internal/devserver/devservertest"
	"socialnet/internal/entities"
	"socialnet/internal/httpclient"
	"socialnet/internal/query"
	"socialnet/internal/session"
	"socialnet/internal/usecase"
)

// faults counts requests and answers chosen routes with an error status.
type faults struct {
	mu     sync.Mutex
	status map[string]int
	hits   map[string]int
	before func(r *http.Request)
}

func (f *faults) fail(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[route] = status
}

func (f *faults) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func (f *faults) onRequest(fn func(r *http.Request)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.before = fn
}

func (f *faults) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.hits[route]++
		status := f.status[route]
		before := f.before
		f.mu.Unlock()

		if before != nil {
			before(r)
		}
		if status != 0 {
			http.Error(w, `{"code":"INJECTED","message":"injected failure"}`, status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type harness struct {
	b      *devservertest.Backend
	faults *faults
	svc    *usecase.Service
	me     entities.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	f := &faults{status: map[string]int{}, hits: map[string]int{}}
	b := devservertest.Start(t, f.wrap)

	sess := session.New(filepath.Join(t.TempDir(), "session.yaml"))
	hc, err := httpclient.New(b.URL, httpclient.WithTokenSource(sess.Token))
	require.NoError(t, err)
	cache := query.New(query.Options{StaleTime: time.Hour, ShouldRetry: httpclient.Retryable})
	svc := usecase.New(api.New(hc), cache, sess, zap.NewNop().Sugar())

	ctx := context.Background()
	_, err = svc.Register(ctx, "me@example.com", devservertest.Password, "me")
	require.NoError(t, err)
	me, err := svc.Login(ctx, "me@example.com", devservertest.Password)
	require.NoError(t, err)

	return &harness{b: b, faults: f, svc: svc, me: me}
}

func route(method, path string) string {
	return method + " /api/v1" + path
}
