// Package query is a client-side cache for API reads. Entries are keyed by
// tuples, deduplicate concurrent fetches, go stale after a configurable time
// or on invalidation, and support optimistic edits with rollback (see Mutate).
package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrCanceled is returned to callers of a fetch cancelled by the cache
	// while no value was cached for the key.
	ErrCanceled = errors.New("query canceled")
	// ErrTypeMismatch is returned when a cached value has an unexpected type.
	ErrTypeMismatch = errors.New("cached value has unexpected type")
)

// Options configure a Client.
type Options struct {
	// StaleTime is how long fetched data is served without a network call.
	// Zero means data is stale as soon as it is stored.
	StaleTime time.Duration
	// Retry is the number of extra attempts after a failed fetch.
	Retry int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
	// ShouldRetry filters retryable errors. Cancellations are never retried.
	ShouldRetry func(error) bool
	Logger      *zap.SugaredLogger
	// Now overrides the clock.
	Now func() time.Time
}

// Client is the cache store. It is safe for concurrent use.
type Client struct {
	opts    Options
	flights singleflight.Group

	mu      sync.Mutex
	entries map[string]*entry
	seq     uint64

	// afterCheck, when set, runs between the freshness check of a fetch
	// and the start of its network call. Tests only.
	afterCheck func()
}

type entry struct {
	key         Key
	parts       []string
	data        any
	hasData     bool
	updatedAt   time.Time
	invalidated bool
	// epoch increments on every invalidation so a fetch started earlier
	// can tell that its result is already stale.
	epoch uint64
	// gen increments whenever the entry is cancelled or edited. A fetch
	// records it at its freshness check and discards its response when
	// it moved, even if the fetch had not registered a flight yet.
	gen     uint64
	flights map[string]*flight
	err     error
}

type flight struct {
	id       uint64
	name     string
	cancel   context.CancelFunc
	canceled bool
}

// New returns an empty cache.
func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Retry < 0 {
		opts.Retry = 0
	}
	return &Client{opts: opts, entries: make(map[string]*entry)}
}

func (c *Client) entryLocked(key Key) *entry {
	h := key.hash()
	e, ok := c.entries[h]
	if !ok {
		e = &entry{key: key, parts: key.parts(), flights: make(map[string]*flight)}
		c.entries[h] = e
	}
	return e
}

func (c *Client) freshLocked(e *entry) bool {
	if !e.hasData || e.invalidated || c.opts.StaleTime <= 0 {
		return false
	}
	return c.opts.Now().Sub(e.updatedAt) < c.opts.StaleTime
}

// cancelLocked aborts the in-flight fetches of e. Callers joining later
// start a new fetch instead of sharing an aborted one.
func (c *Client) cancelLocked(e *entry) {
	if e == nil {
		return
	}
	e.gen++
	// A fetch past its freshness check may not have registered yet.
	c.flights.Forget(e.key.hash())
	if len(e.flights) == 0 {
		return
	}
	for name, fl := range e.flights {
		fl.canceled = true
		fl.cancel()
		c.flights.Forget(name)
		delete(e.flights, name)
	}
	c.opts.Logger.Debugw("query cancel", "key", e.key.String())
}

// GetData returns the cached value for key without fetching.
func GetData[T any](c *Client, key Key) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key.hash()]
	if !ok || !e.hasData {
		return zero, false
	}
	v, ok := e.data.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// SetData stores v as the fresh value of key, cancelling any in-flight fetch.
func SetData[T any](c *Client, key Key, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	c.cancelLocked(e)
	e.data = v
	e.hasData = true
	e.err = nil
	e.updatedAt = c.opts.Now()
	e.invalidated = false
}

// Cancel aborts in-flight fetches of key. Their responses are discarded.
func (c *Client) Cancel(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked(c.entries[key.hash()])
}

// Invalidate marks every entry whose key starts with one of prefixes as
// stale. The next read of such an entry goes to the network.
func (c *Client) Invalidate(prefixes ...Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	pp := make([][]string, len(prefixes))
	for i, p := range prefixes {
		pp[i] = p.parts()
	}

	n := 0
	for _, e := range c.entries {
		for _, p := range pp {
			if hasPrefix(e.parts, p) {
				e.invalidated = true
				e.epoch++
				n++
				break
			}
		}
	}
	if n > 0 {
		c.opts.Logger.Debugw("query invalidate", "entries", n)
	}
	return n
}

// Remove drops every entry whose key starts with prefix.
func (c *Client) Remove(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := prefix.parts()
	for h, e := range c.entries {
		if hasPrefix(e.parts, p) {
			c.cancelLocked(e)
			delete(c.entries, h)
		}
	}
}

// Clear cancels all fetches and forgets all data. Used on logout.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		c.cancelLocked(e)
	}
	c.entries = make(map[string]*entry)
	c.opts.Logger.Debugw("query cache cleared")
}

// IsStale reports whether key has no data or its data would be refetched.
func (c *Client) IsStale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.hash()]
	return !ok || !c.freshLocked(e)
}

// IsFetching reports whether a fetch for key is in flight.
func (c *Client) IsFetching(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.hash()]
	return ok && len(e.flights) > 0
}

// Err returns the error of the last failed fetch of key, if any.
func (c *Client) Err(key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key.hash()]; ok {
		return e.err
	}
	return nil
}
