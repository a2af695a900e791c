// Package session persists the logged in session between CLI runs.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"socialnet/internal/entities"
)

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("not logged in")

// Store keeps a session in a YAML file readable only by its owner.
type Store struct {
	path string

	mu      sync.RWMutex
	current entities.Session
}

// New returns a store backed by path. Nothing is read until Load.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load reads the session file.
func (s *Store) Load() (entities.Session, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entities.Session{}, ErrNoSession
	}
	if err != nil {
		return entities.Session{}, fmt.Errorf("read session: %w", err)
	}

	var sess entities.Session
	if err := yaml.Unmarshal(raw, &sess); err != nil {
		return entities.Session{}, fmt.Errorf("parse session %s: %w", s.path, err)
	}
	if sess.Token == "" {
		return entities.Session{}, ErrNoSession
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	return sess, nil
}

// Save writes sess with 0600 permissions.
func (s *Store) Save(sess entities.Session) error {
	raw, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("chmod session: %w", err)
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	return nil
}

// Delete removes the session file. A missing file is not an error.
func (s *Store) Delete() error {
	s.mu.Lock()
	s.current = entities.Session{}
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Current returns the last loaded or saved session.
func (s *Store) Current() entities.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the bearer token of the current session, or "".
func (s *Store) Token() string {
	return s.Current().Token
}
