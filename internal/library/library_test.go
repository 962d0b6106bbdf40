package library

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/paging"
	"github.com/desertthunder/libmirror/internal/services"
	"github.com/desertthunder/libmirror/internal/shared"
	tu "github.com/desertthunder/libmirror/internal/testing"
)

type fakeSource struct {
	tracks    *tu.PageStub[models.Track]
	playlists *tu.PageStub[models.Playlist]
	entries   *tu.PageStub[models.PlaylistEntry]
	stations  *tu.PageStub[models.Station]
	catalog   map[string]models.Track
	fetched   []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		tracks:    tu.NewPageStub[models.Track](),
		playlists: tu.NewPageStub[models.Playlist](),
		entries:   tu.NewPageStub[models.PlaylistEntry](),
		stations:  tu.NewPageStub[models.Station](),
		catalog:   map[string]models.Track{},
	}
}

func (f *fakeSource) TrackPage(ctx context.Context, cursor string) (paging.Page[models.Track], error) {
	return f.tracks.Fetch(ctx, cursor)
}

func (f *fakeSource) PlaylistPage(ctx context.Context, cursor string) (paging.Page[models.Playlist], error) {
	return f.playlists.Fetch(ctx, cursor)
}

func (f *fakeSource) EntryPage(ctx context.Context, cursor string) (paging.Page[models.PlaylistEntry], error) {
	return f.entries.Fetch(ctx, cursor)
}

func (f *fakeSource) StationPage(ctx context.Context, cursor string) (paging.Page[models.Station], error) {
	return f.stations.Fetch(ctx, cursor)
}

func (f *fakeSource) FetchTrack(_ context.Context, id string) (*models.Track, error) {
	f.fetched = append(f.fetched, id)
	t, ok := f.catalog[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	return &t, nil
}

// scriptedPoster answers every batch with the given response codes, one per record.
type scriptedPoster struct {
	codes    []string
	status   int
	requests []map[string][]map[string]any
	paths    []string
}

func (s *scriptedPoster) Post(_ context.Context, path string, data []byte) (*services.APIResponse, error) {
	s.paths = append(s.paths, path)

	var req map[string][]map[string]any
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	s.requests = append(s.requests, req)

	status := s.status
	if status == 0 {
		status = http.StatusOK
	}

	items := make([]string, len(req["mutations"]))
	for i, m := range req["mutations"] {
		code := "OK"
		if i < len(s.codes) {
			code = s.codes[i]
		}
		id := fmt.Sprintf("server-%d", i)
		if del, ok := m["delete"].(string); ok {
			id = del
		}
		items[i] = fmt.Sprintf(`{"id":%q,"response_code":%q}`, id, code)
	}
	body := `{"mutate_response":[` + strings.Join(items, ",") + `]}`
	return &services.APIResponse{StatusCode: status, Body: []byte(body)}, nil
}

func TestLibrary(t *testing.T) {
	ctx := context.Background()

	newLibrary := func() (*Library, *fakeSource) {
		src := newFakeSource()
		src.tracks.SetPages(
			[]models.Track{{ID: "l1", Title: "One"}, {StoreID: "Tcat", Title: "Catalog only"}},
			[]models.Track{{ID: "s2", StoreID: "Ts2", Title: "Store backed"}, {ID: "l2", Title: "Two"}},
			[]models.Track{{ID: "l3", Title: "Three"}},
		)
		return NewLibrary(src, nil), src
	}

	t.Run("LibraryOnly drops anything with a store id", func(t *testing.T) {
		kept := LibraryOnly([]models.Track{
			{ID: "lib"},
			{ID: "lib2", StoreID: "Tstore"},
			{StoreID: "Tcat"},
		})
		require.Len(t, kept, 1)
		assert.Equal(t, "lib", kept[0].ID)
	})

	t.Run("Find skips store-backed tracks", func(t *testing.T) {
		lib, src := newLibrary()

		_, err := lib.Find(ctx, "s2")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, 3, src.tracks.Calls())
	})

	t.Run("Tracks drops catalog references", func(t *testing.T) {
		lib, _ := newLibrary()

		tracks, err := lib.Tracks(ctx)
		require.NoError(t, err)

		var ids []string
		for _, tr := range tracks {
			ids = append(ids, tr.ID)
		}
		assert.Equal(t, []string{"l1", "l2", "l3"}, ids)
	})

	t.Run("Find fetches only the pages it needs", func(t *testing.T) {
		lib, src := newLibrary()

		track, err := lib.Find(ctx, "l2")
		require.NoError(t, err)
		assert.Equal(t, "Two", track.Title)
		assert.Equal(t, 2, src.tracks.Calls())
	})

	t.Run("Track routes catalog ids to a direct fetch", func(t *testing.T) {
		lib, src := newLibrary()
		src.catalog["Tnew"] = models.Track{StoreID: "Tnew", Title: "Fresh"}

		track, err := lib.Track(ctx, "Tnew")
		require.NoError(t, err)
		assert.Equal(t, "Fresh", track.Title)
		assert.Zero(t, src.tracks.Calls())
		assert.Equal(t, []string{"Tnew"}, src.fetched)

		_, err = lib.Track(ctx, "Tmissing")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		track, err = lib.Track(ctx, "l1")
		require.NoError(t, err)
		assert.Equal(t, "One", track.Title)
	})

	t.Run("disabled caching re-derives each lookup", func(t *testing.T) {
		lib, src := newLibrary()
		lib.SetCaching(false)

		for range 2 {
			_, err := lib.Find(ctx, "l3")
			require.NoError(t, err)
		}
		assert.Equal(t, 6, src.tracks.Calls())
		assert.Zero(t, lib.Cache().Len())

		lib.SetCaching(true)
		lib.Invalidate()
		_, err := lib.Tracks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, lib.Cache().Len())
	})
}
