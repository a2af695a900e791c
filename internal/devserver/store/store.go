// Package store is the SQLite persistence of the development backend.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/mattn/go-sqlite3"

	"socialnet/internal/entities"
)

// Store wraps the database handle.
type Store struct {
	db *sql.DB
}

// Open migrates and opens the database at path.
func Open(path string) (*Store, error) {
	if err := ApplyMigrations(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// mapErr turns driver errors into entities sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return entities.ErrNotFound
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		switch sqErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", entities.ErrConflict, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %v", entities.ErrNotFound, err)
		}
	}
	return err
}

// ParseCursor decodes a list cursor. An empty cursor means "from the start".
func ParseCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("cursor %q: %w", cursor, entities.ErrInvalidArgument)
	}
	return id, nil
}

// NormalizeSize clamps a requested page size.
func NormalizeSize(size int) int {
	switch {
	case size <= 0:
		return entities.DefaultPageSize
	case size > entities.MaxPageSize:
		return entities.MaxPageSize
	}
	return size
}

// pageOf trims rows fetched with size+1 into a page whose cursor is the id
// of its last item.
func pageOf[T any](rows []T, size int, id func(T) int64) entities.Page[T] {
	pg := entities.Page[T]{Items: rows, Size: size}
	if pg.Items == nil {
		pg.Items = []T{}
	}
	if len(rows) > size {
		pg.Items = rows[:size]
		pg.HasNext = true
		pg.NextCursor = strconv.FormatInt(id(pg.Items[size-1]), 10)
	}
	return pg
}

// beforeID returns the exclusive upper id bound for descending pages.
func beforeID(cursor int64) int64 {
	if cursor == 0 {
		return 1<<63 - 1
	}
	return cursor
}
