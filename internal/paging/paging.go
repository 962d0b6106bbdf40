package paging

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libmirror/internal/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrExhausted is returned by [Iterator.Next] after the final page has been consumed.
var ErrExhausted = errors.New("paging: iterator exhausted")

var (
	pagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "libmirror_pages_fetched_total",
		Help: "Total number of remote pages fetched",
	})

	pageFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "libmirror_page_fetch_errors_total",
		Help: "Total number of failed remote page fetches",
	})
)

// Page is one chunk of a remote collection. An empty NextCursor marks the last page.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// Fetcher retrieves the page starting at cursor. The empty cursor requests the first page.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, cursor string) (Page[T], error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

func (f FetcherFunc[T]) Fetch(ctx context.Context, cursor string) (Page[T], error) {
	return f(ctx, cursor)
}

// Filter drops ineligible items from a fetched page. It must not reorder the page.
type Filter[T any] func(items []T) []T

// Iterator is a restartable lazy sequence of pages.
type Iterator[T any] struct {
	mu      sync.Mutex
	fetcher Fetcher[T]
	filter  Filter[T]
	logger  *log.Logger

	cursor string
	done   bool
	pages  int
}

// NewIterator creates an [Iterator] positioned before the first page. filter and logger may be nil.
func NewIterator[T any](fetcher Fetcher[T], filter Filter[T], logger *log.Logger) *Iterator[T] {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Iterator[T]{fetcher: fetcher, filter: filter, logger: logger}
}

// HasNext reports whether another page may exist. It only turns false once a
// fetched page carried no next cursor.
func (it *Iterator[T]) HasNext() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return !it.done
}

// Next performs exactly one fetch and returns the (filtered) items of that page.
//
// On error the cursor is not advanced.
func (it *Iterator[T]) Next(ctx context.Context) ([]T, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.done {
		return nil, ErrExhausted
	}

	page, err := it.fetcher.Fetch(ctx, it.cursor)
	if err != nil {
		pageFetchErrors.Inc()
		it.logger.Debug("page fetch failed", "cursor", it.cursor, "error", err)
		return nil, err
	}
	pagesFetched.Inc()

	it.logger.Debug("fetched page", "cursor", it.cursor, "items", len(page.Items), "next", page.NextCursor)

	it.cursor = page.NextCursor
	it.done = page.NextCursor == ""
	it.pages++

	items := page.Items
	if it.filter != nil {
		items = it.filter(items)
	}
	return items, nil
}

// Reset rewinds the iterator to the first page.
func (it *Iterator[T]) Reset() {
	it.mu.Lock()
	defer it.mu.Unlock()

	it.cursor = ""
	it.done = false
	it.pages = 0
}

// CollectAll drains the remaining pages and concatenates them in server order.
//
// A failed fetch discards everything collected by this call.
func (it *Iterator[T]) CollectAll(ctx context.Context) ([]T, error) {
	var all []T
	for it.HasNext() {
		items, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

// Pages returns the number of successful fetches since the last reset.
func (it *Iterator[T]) Pages() int {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.pages
}
