package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libmirror/internal/paging"
	"github.com/desertthunder/libmirror/internal/shared"
)

// Lookup resolves single keys against a [Collection] without draining it up front.
//
// It owns one long-lived iterator whose position matches what the partial snapshot
// already holds. Finds are serialized.
type Lookup[T any] struct {
	coll   *Collection[T]
	logger *log.Logger

	mu       sync.Mutex
	iter     *paging.Iterator[T]
	gen      uint64
	detached bool
}

// NewLookup builds a [Lookup] over coll whose pages come from fetcher, filtered by filter (may be nil).
func NewLookup[T any](coll *Collection[T], fetcher paging.Fetcher[T], filter paging.Filter[T]) *Lookup[T] {
	return &Lookup[T]{
		coll:   coll,
		logger: coll.logger,
		iter:   paging.NewIterator(fetcher, filter, coll.logger),
		gen:    coll.view().generation,
	}
}

// Collection returns the underlying collection.
func (l *Lookup[T]) Collection() *Collection[T] { return l.coll }

// Find returns the item whose key equals key.
//
// With caching enabled the snapshot is scanned first, then pages are pulled from where the
// previous scan stopped and appended to the snapshot until the key turns up. With caching
// disabled the scan starts over from the first page and keeps nothing.
//
// An absent key yields an error wrapping [shared.ErrNotFound].
func (l *Lookup[T]) Find(ctx context.Context, key string) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := l.coll.view()
	if !v.caching {
		Misses.WithLabelValues(l.coll.name).Inc()
		l.iter.Reset()
		l.detached = true
		return l.scan(ctx, key, false)
	}

	if item, ok := l.coll.find(key); ok {
		Hits.WithLabelValues(l.coll.name).Inc()
		return item, nil
	}
	Misses.WithLabelValues(l.coll.name).Inc()

	if v.state == Ready {
		return l.notFound(key)
	}

	if l.detached || l.gen != v.generation {
		l.logger.Debug("lookup iterator rewound", "generation", v.generation)
		l.iter.Reset()
		l.gen = v.generation
		l.detached = false
	}
	return l.scan(ctx, key, true)
}

func (l *Lookup[T]) scan(ctx context.Context, key string, persist bool) (T, error) {
	var zero T

	for l.iter.HasNext() {
		items, err := l.iter.Next(ctx)
		if err != nil {
			return zero, err
		}

		if persist && !l.coll.appendPage(l.gen, items) {
			// Snapshot replaced mid-scan; keep looking but stop writing into it.
			persist = false
			l.detached = true
		}

		for _, item := range items {
			if l.coll.key(item) == key {
				return item, nil
			}
		}
	}

	if persist {
		l.coll.markComplete(l.gen)
	}
	return l.notFound(key)
}

func (l *Lookup[T]) notFound(key string) (T, error) {
	var zero T
	return zero, fmt.Errorf("%w: %s %q", shared.ErrNotFound, l.coll.name, key)
}
