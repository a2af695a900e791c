package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/entities"
)

func TestCommandTree(t *testing.T) {
	paths := []string{
		"register", "login", "logout", "feed", "upload",
		"post create", "post show", "post delete", "post like",
		"comment list", "comment add", "comment delete",
		"follow", "unfollow", "followers", "following", "recommend",
		"profile show", "profile edit",
		"chat rooms", "chat create", "chat messages", "chat send", "chat read", "chat watch",
		"notifications list", "notifications read", "notifications settings",
	}
	for _, p := range paths {
		cmd, _, err := rootCmd.Find(strings.Fields(p))
		require.NoError(t, err, p)
		assert.Equal(t, p, strings.TrimPrefix(cmd.CommandPath(), "socialctl "))
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestFailWrapsForToast(t *testing.T) {
	require.NoError(t, fail(nil))

	err := fail(entities.ErrNotFound)
	var te toastError
	require.True(t, errors.As(err, &te))
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
