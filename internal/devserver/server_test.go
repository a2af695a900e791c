package devserver_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"socialnet/internal/devserver"
	"socialnet/internal/devserver/devservertest"
	"socialnet/internal/devserver/store"
)

func TestNewRejectsBcryptCostOutOfRange(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	_, err = devserver.New(st, zap.NewNop().Sugar(), devserver.Options{
		JWTSecret:  []byte(devservertest.Secret),
		UploadDir:  t.TempDir(),
		BcryptCost: bcrypt.MaxCost + 1,
	})
	require.Error(t, err)
}

func TestRegisterHashesWithConfiguredCost(t *testing.T) {
	b := devservertest.Start(t, nil)
	b.User(t, "hasher")

	_, hash, err := b.Store.Credentials(context.Background(), "hasher@example.com")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}
