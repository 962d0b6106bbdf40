package cache

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libmirror/internal/paging"
	"github.com/desertthunder/libmirror/internal/shared"
)

// RefreshFunc rebuilds the complete collection from the remote service.
type RefreshFunc[T any] func(ctx context.Context) ([]T, error)

// KeyFunc returns the identity of an item. Two items with the same key are the same item.
type KeyFunc[T any] func(item T) string

// DrainRefresh returns a [RefreshFunc] that drains a fresh [paging.Iterator] over fetcher on every call.
func DrainRefresh[T any](fetcher paging.Fetcher[T], filter paging.Filter[T], logger *log.Logger) RefreshFunc[T] {
	return func(ctx context.Context) ([]T, error) {
		return paging.NewIterator(fetcher, filter, logger).CollectAll(ctx)
	}
}

// Collection is a lazily materialized snapshot of one remote collection.
//
// Reads return copies. A refresh replaces the snapshot in one step, so readers see
// either the old or the new snapshot. Concurrent first readers share one refresh.
type Collection[T any] struct {
	name    string
	refresh RefreshFunc[T]
	key     KeyFunc[T]
	logger  *log.Logger

	mu         sync.RWMutex
	items      []T
	state      State
	caching    bool
	generation uint64

	refreshMu sync.Mutex
}

// NewCollection creates an uninitialized [Collection] with caching enabled. A nil logger discards output.
func NewCollection[T any](name string, refresh RefreshFunc[T], key KeyFunc[T], logger *log.Logger) *Collection[T] {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Collection[T]{
		name:    name,
		refresh: refresh,
		key:     key,
		logger:  shared.WithLogger(logger, "cache", name),
		caching: true,
	}
}

// Name returns the label used in logs and metrics.
func (c *Collection[T]) Name() string { return c.name }

// State returns the current lifecycle state.
func (c *Collection[T]) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Len returns the number of items currently held, without loading anything.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Caching reports whether snapshots are kept between reads.
func (c *Collection[T]) Caching() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caching
}

// SetCaching turns snapshot retention on or off. Turning it off drops the snapshot.
func (c *Collection[T]) SetCaching(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if enabled {
		c.apply(eventCachingEnabled)
	} else {
		c.items = nil
		c.generation++
		c.apply(eventCachingDisabled)
	}
	c.caching = enabled
}

// Invalidate drops the snapshot so the next read refreshes it.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.generation++
	c.apply(eventInvalidated)
}

// GetAll returns the whole collection, refreshing first unless the snapshot is ready.
//
// With caching disabled every call refreshes and nothing is retained.
// A failed refresh returns the error and leaves the previous snapshot untouched.
func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	if items, ok := c.readyItems(); ok {
		Hits.WithLabelValues(c.name).Inc()
		return items, nil
	}
	Misses.WithLabelValues(c.name).Inc()

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if items, ok := c.readyItems(); ok {
		return items, nil
	}
	return c.reload(ctx)
}

// Refresh rebuilds the snapshot now, even if it is ready. On failure the current snapshot stays in place.
func (c *Collection[T]) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	_, err := c.reload(ctx)
	return err
}

// reload runs the refresh strategy and installs the result. Callers hold refreshMu.
func (c *Collection[T]) reload(ctx context.Context) ([]T, error) {
	c.mu.RLock()
	caching, gen := c.caching, c.generation
	c.mu.RUnlock()

	c.logger.Debug("refreshing", "caching", caching)
	items, err := c.refresh(ctx)
	if err != nil {
		RefreshFailures.WithLabelValues(c.name).Inc()
		c.logger.Warn("refresh failed", "error", err)
		return nil, err
	}
	Refreshes.WithLabelValues(c.name).Inc()

	if !caching {
		return items, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Invalidated or toggled while the refresh was in flight.
	if c.generation != gen || !c.caching {
		return items, nil
	}

	c.items = items
	c.generation++
	c.apply(eventRefreshed)
	Items.WithLabelValues(c.name).Set(float64(len(items)))
	c.logger.Debug("refreshed", "items", len(items))
	return slices.Clone(items), nil
}

// Get returns the first item matching match, loading the collection as [Collection.GetAll] does.
func (c *Collection[T]) Get(ctx context.Context, match func(T) bool) (T, error) {
	var zero T

	items, err := c.GetAll(ctx)
	if err != nil {
		return zero, err
	}

	if i := slices.IndexFunc(items, match); i >= 0 {
		return items[i], nil
	}
	return zero, fmt.Errorf("%w in %s", shared.ErrNotFound, c.name)
}

// Contains reports whether any item matches, loading the collection as [Collection.GetAll] does.
func (c *Collection[T]) Contains(ctx context.Context, match func(T) bool) (bool, error) {
	items, err := c.GetAll(ctx)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(items, match), nil
}

// Add mirrors items the caller has already created remotely.
//
// Only a ready snapshot is extended. Otherwise the next refresh picks the items up from the server.
func (c *Collection[T]) Add(items ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.caching && c.state == Ready {
		c.items = append(c.items, items...)
		Items.WithLabelValues(c.name).Set(float64(len(c.items)))
	}
	c.apply(eventLocalMutation)
}

// Remove mirrors items the caller has already deleted remotely. Items are matched by key.
func (c *Collection[T]) Remove(items ...T) {
	if len(items) == 0 {
		return
	}

	drop := make(map[string]struct{}, len(items))
	for _, item := range items {
		drop[c.key(item)] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = slices.DeleteFunc(c.items, func(item T) bool {
		_, ok := drop[c.key(item)]
		return ok
	})
	Items.WithLabelValues(c.name).Set(float64(len(c.items)))
	c.apply(eventLocalMutation)
}

// apply moves the state machine. Callers hold mu.
func (c *Collection[T]) apply(e event) {
	next := transition(c.state, e)
	if next != c.state {
		c.logger.Debug("state change", "event", e, "from", c.state, "to", next)
	}
	c.state = next
}

func (c *Collection[T]) readyItems() ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.caching || c.state != Ready {
		return nil, false
	}
	return slices.Clone(c.items), true
}

// view is a consistent read of the fields [Lookup] needs.
type view struct {
	caching    bool
	state      State
	generation uint64
}

func (c *Collection[T]) view() view {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return view{caching: c.caching, state: c.state, generation: c.generation}
}

func (c *Collection[T]) find(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if c.key(item) == key {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// appendPage extends a partial snapshot. It refuses if the snapshot was replaced since gen.
func (c *Collection[T]) appendPage(gen uint64, items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen || !c.caching || c.state == Ready {
		return false
	}
	c.items = append(c.items, items...)
	Items.WithLabelValues(c.name).Set(float64(len(c.items)))
	return true
}

// markComplete promotes a snapshot filled page by page once every page is in.
func (c *Collection[T]) markComplete(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen || !c.caching {
		return
	}
	c.apply(eventLookupExhausted)
}
