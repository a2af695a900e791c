package query

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type fetchFunc func(context.Context) (any, error)

// writeFunc stores a fetched value into e and returns what callers receive.
type writeFunc func(c *Client, e *entry, v any, epoch uint64) any

// Fetch returns the cached value of key while it is fresh, otherwise calls fn.
// Concurrent fetches of the same key share one call of fn.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.fetch(ctx, key, key.hash(), false, wrap(fn), storeResult)
	return cast[T](v, err)
}

// Refetch calls fn even when the cached value is fresh.
func Refetch[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.fetch(ctx, key, key.hash(), true, wrap(fn), storeResult)
	return cast[T](v, err)
}

func wrap[T any](fn func(context.Context) (T, error)) fetchFunc {
	return func(ctx context.Context) (any, error) { return fn(ctx) }
}

func cast[T any](v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrTypeMismatch, v)
	}
	return t, nil
}

func (c *Client) fetch(ctx context.Context, key Key, name string, force bool, fn fetchFunc, write writeFunc) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if !force && c.freshLocked(e) {
		v := e.data
		c.mu.Unlock()
		return v, nil
	}
	gen := e.gen
	c.mu.Unlock()

	if c.afterCheck != nil {
		c.afterCheck()
	}
	ch := c.flights.DoChan(name, func() (any, error) {
		return c.run(ctx, e, gen, name, fn, write)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run executes one shared fetch. The call runs on a context detached from
// the first caller so that one caller giving up does not fail the others;
// only Cancel, Remove, Clear and mutations abort it.
func (c *Client) run(ctx context.Context, e *entry, gen uint64, name string, fn fetchFunc, write writeFunc) (any, error) {
	c.mu.Lock()
	if c.supersededLocked(e, gen) {
		defer c.mu.Unlock()
		return c.discardedLocked(e)
	}
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	c.seq++
	fl := &flight{id: c.seq, name: name, cancel: cancel}
	e.flights[name] = fl
	epoch := e.epoch
	c.mu.Unlock()

	c.opts.Logger.Debugw("query fetch", "key", e.key.String(), "flight", fl.id)
	v, err := c.attempt(fctx, fn)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e.flights[name] == fl {
		delete(e.flights, name)
	}
	if fl.canceled || c.supersededLocked(e, gen) {
		return c.discardedLocked(e)
	}
	if err != nil {
		e.err = err
		return nil, err
	}
	return write(c, e, v, epoch), nil
}

// supersededLocked reports whether e was removed, cancelled or edited since
// a fetch observed gen.
func (c *Client) supersededLocked(e *entry, gen uint64) bool {
	return c.entries[e.key.hash()] != e || e.gen != gen
}

// discardedLocked is the answer of a fetch whose response is dropped: the
// cached value when there is one.
func (c *Client) discardedLocked(e *entry) (any, error) {
	if c.entries[e.key.hash()] == e && e.hasData {
		return e.data, nil
	}
	return nil, ErrCanceled
}

func storeResult(c *Client, e *entry, v any, epoch uint64) any {
	e.data = v
	e.hasData = true
	e.err = nil
	e.updatedAt = c.opts.Now()
	e.invalidated = e.epoch != epoch
	return v
}

func (c *Client) attempt(ctx context.Context, fn fetchFunc) (any, error) {
	for i := 0; ; i++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if i >= c.opts.Retry || ctx.Err() != nil || !c.retryable(err) {
			return nil, err
		}
		c.opts.Logger.Debugw("query retry", "attempt", i+1, "error", err)
		if c.opts.RetryDelay > 0 {
			t := time.NewTimer(c.opts.RetryDelay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, err
			case <-t.C:
			}
		}
	}
}

func (c *Client) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if c.opts.ShouldRetry != nil {
		return c.opts.ShouldRetry(err)
	}
	return true
}
