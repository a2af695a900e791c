package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/entities"
)

func TestSaveLoadDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	s := New(path)

	_, err := s.Load()
	require.ErrorIs(t, err, ErrNoSession)

	want := entities.Session{Token: "tok", UserID: 7, Email: "a@example.com"}
	require.NoError(t, s.Save(want))
	assert.Equal(t, "tok", s.Token())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := New(path).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.Delete())
	assert.Empty(t, s.Token())
	_, err = s.Load()
	require.ErrorIs(t, err, ErrNoSession)
	require.NoError(t, s.Delete())
}

func TestSaveTightensExistingMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: old\n"), 0o644))

	require.NoError(t, New(path).Save(entities.Session{Token: "new"}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), 0o600))

	_, err := New(path).Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}
