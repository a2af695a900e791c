package query

import (
	"context"
	"sync/atomic"
	"time"
)

// Mutation describes a write with optional optimistic cache edits.
type Mutation[R any] struct {
	// Optimistic edits the cache before Do runs. Edits made through Update
	// and UpdateAll are rolled back if Do fails.
	Optimistic func(tx *Tx)
	// Do performs the network call.
	Do func(ctx context.Context) (R, error)
	// OnSuccess may write server truth into the cache before invalidation.
	OnSuccess func(c *Client, result R)
	// Invalidate lists key prefixes marked stale once Do returns, whatever
	// its outcome. Keys edited optimistically are always invalidated.
	Invalidate []Key
}

// Mutate runs m:
//
//  1. in-flight fetches of every edited key are cancelled,
//  2. the current value is snapshotted,
//  3. the optimistic value is written (skipped when nothing is cached),
//  4. Do runs,
//  5. on failure every snapshot is restored verbatim,
//  6. on completion edited and listed keys are invalidated.
func Mutate[R any](ctx context.Context, c *Client, m Mutation[R]) (R, error) {
	tx := &Tx{c: c}
	if m.Optimistic != nil {
		m.Optimistic(tx)
	}

	res, err := m.Do(ctx)
	if err != nil {
		tx.rollback()
		c.opts.Logger.Debugw("mutation rolled back", "edits", len(tx.snaps), "error", err)
	} else if m.OnSuccess != nil {
		m.OnSuccess(c, res)
	}

	keys := append([]Key(nil), m.Invalidate...)
	keys = append(keys, tx.keys()...)
	if len(keys) > 0 {
		c.Invalidate(keys...)
	}
	return res, err
}

// Tx records the optimistic edits of one mutation.
type Tx struct {
	c     *Client
	snaps []snapshot
}

type snapshot struct {
	hash        string
	e           *entry
	data        any
	hasData     bool
	updatedAt   time.Time
	invalidated bool
}

// Update replaces the cached value of key with fn(current). It cancels
// in-flight fetches of key first. It reports false, and does nothing else,
// when key holds no value of type T. fn must not modify its argument in place.
func Update[T any](tx *Tx, key Key, fn func(T) T) bool {
	c := tx.c
	c.mu.Lock()
	defer c.mu.Unlock()

	h := key.hash()
	e := c.entries[h]
	c.cancelLocked(e)
	return applyLocked(tx, h, e, fn)
}

// UpdateAll applies fn to every cached value of type T whose key starts with
// prefix and returns the number of entries changed.
func UpdateAll[T any](tx *Tx, prefix Key, fn func(T) T) int {
	c := tx.c
	c.mu.Lock()
	defer c.mu.Unlock()

	p := prefix.parts()
	n := 0
	for h, e := range c.entries {
		if !hasPrefix(e.parts, p) {
			continue
		}
		c.cancelLocked(e)
		if applyLocked(tx, h, e, fn) {
			n++
		}
	}
	return n
}

func applyLocked[T any](tx *Tx, h string, e *entry, fn func(T) T) bool {
	if e == nil || !e.hasData {
		return false
	}
	cur, ok := e.data.(T)
	if !ok {
		return false
	}
	tx.snapshotLocked(h, e)
	e.data = fn(cur)
	e.gen++
	return true
}

func (tx *Tx) snapshotLocked(h string, e *entry) {
	for _, s := range tx.snaps {
		if s.e == e {
			return
		}
	}
	tx.snaps = append(tx.snaps, snapshot{
		hash:        h,
		e:           e,
		data:        e.data,
		hasData:     e.hasData,
		updatedAt:   e.updatedAt,
		invalidated: e.invalidated,
	})
}

func (tx *Tx) rollback() {
	c := tx.c
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(tx.snaps) - 1; i >= 0; i-- {
		s := tx.snaps[i]
		if c.entries[s.hash] != s.e {
			continue
		}
		c.cancelLocked(s.e)
		s.e.data = s.data
		s.e.hasData = s.hasData
		s.e.updatedAt = s.updatedAt
		s.e.invalidated = s.invalidated
	}
}

func (tx *Tx) keys() []Key {
	out := make([]Key, 0, len(tx.snaps))
	for _, s := range tx.snaps {
		out = append(out, s.e.key)
	}
	return out
}

var tempSeq atomic.Int64

// TempID returns a process-unique negative id for placeholder entities.
// Server ids are always positive.
func TempID() int64 { return -tempSeq.Add(1) }

// IsTempID reports whether id was produced by TempID.
func IsTempID(id int64) bool { return id < 0 }
