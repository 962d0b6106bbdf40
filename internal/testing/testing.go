// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/paging"
	"github.com/desertthunder/libmirror/internal/shared"
)

// PageStub serves a fixed list of pages through the [paging.Fetcher] contract.
//
// Cursors are the page index as a string; the first page has the empty cursor.
// Every request is recorded so tests can assert how many fetches happened.
type PageStub[T any] struct {
	mu       sync.Mutex
	pages    [][]T
	requests []string
	failures map[string]error
	gate     chan struct{}
}

// NewPageStub creates a [PageStub] over pages.
func NewPageStub[T any](pages ...[]T) *PageStub[T] {
	return &PageStub[T]{pages: pages, failures: make(map[string]error)}
}

// FailOnce makes the next request for cursor fail with err.
func (s *PageStub[T]) FailOnce(cursor string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[cursor] = err
}

// Block makes every fetch wait until the returned release func is called.
func (s *PageStub[T]) Block() (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
	gate := s.gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// SetPages swaps the served pages, simulating a remote change.
func (s *PageStub[T]) SetPages(pages ...[]T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = pages
}

func (s *PageStub[T]) Fetch(ctx context.Context, cursor string) (paging.Page[T], error) {
	s.mu.Lock()
	s.requests = append(s.requests, cursor)
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return paging.Page[T]{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.failures[cursor]; ok {
		delete(s.failures, cursor)
		return paging.Page[T]{}, err
	}

	idx := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 || n >= len(s.pages) {
			return paging.Page[T]{}, fmt.Errorf("unknown cursor %q", cursor)
		}
		idx = n
	}

	var page paging.Page[T]
	if idx < len(s.pages) {
		page.Items = append(page.Items, s.pages[idx]...)
	}
	if idx+1 < len(s.pages) {
		page.NextCursor = strconv.Itoa(idx + 1)
	}
	return page, nil
}

// Calls returns the number of fetches performed so far.
func (s *PageStub[T]) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns the cursors requested so far, in order.
func (s *PageStub[T]) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// StubSource serves every remote feed from [PageStub]s and catalog tracks from a map.
//
// It satisfies services.Source and is safe for concurrent use.
type StubSource struct {
	Tracks    *PageStub[models.Track]
	Playlists *PageStub[models.Playlist]
	Entries   *PageStub[models.PlaylistEntry]
	Stations  *PageStub[models.Station]

	mu      sync.Mutex
	catalog map[string]models.Track
}

// NewStubSource creates a [StubSource] with empty feeds.
func NewStubSource() *StubSource {
	return &StubSource{
		Tracks:    NewPageStub[models.Track](),
		Playlists: NewPageStub[models.Playlist](),
		Entries:   NewPageStub[models.PlaylistEntry](),
		Stations:  NewPageStub[models.Station](),
		catalog:   map[string]models.Track{},
	}
}

// AddCatalog makes tracks fetchable by store id.
func (s *StubSource) AddCatalog(tracks ...models.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tracks {
		s.catalog[t.StoreID] = t
	}
}

func (s *StubSource) TrackPage(ctx context.Context, cursor string) (paging.Page[models.Track], error) {
	return s.Tracks.Fetch(ctx, cursor)
}

func (s *StubSource) PlaylistPage(ctx context.Context, cursor string) (paging.Page[models.Playlist], error) {
	return s.Playlists.Fetch(ctx, cursor)
}

func (s *StubSource) EntryPage(ctx context.Context, cursor string) (paging.Page[models.PlaylistEntry], error) {
	return s.Entries.Fetch(ctx, cursor)
}

func (s *StubSource) StationPage(ctx context.Context, cursor string) (paging.Page[models.Station], error) {
	return s.Stations.Fetch(ctx, cursor)
}

func (s *StubSource) FetchTrack(_ context.Context, id string) (*models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.catalog[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	return &t, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
