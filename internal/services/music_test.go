package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/paging"
	"github.com/desertthunder/libmirror/internal/shared"
	tu "github.com/desertthunder/libmirror/internal/testing"
)

func newFeedServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req pageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode page request: %v", err)
		}
		if req.MaxResults != 2 {
			t.Errorf("expected max-results 2, got %d", req.MaxResults)
		}

		body, ok := pages[r.URL.Path+"|"+req.StartToken]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestMusicService(t *testing.T) {
	ctx := context.Background()

	t.Run("TrackPage follows nextPageToken", func(t *testing.T) {
		server := newFeedServer(t, map[string]string{
			"/trackfeed|":    `{"nextPageToken":"abc","data":{"items":[{"id":"1","title":"One"},{"id":"2","title":"Two"}]}}`,
			"/trackfeed|abc": `{"data":{"items":[{"id":"3","title":"Three"}]}}`,
		})
		music := NewMusicService(NewAPIService(server.URL, nil), 2, nil)

		it := paging.NewIterator[models.Track](paging.FetcherFunc[models.Track](music.TrackPage), nil, nil)
		tracks, err := it.CollectAll(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(tracks))
		}
		if tracks[2].Title != "Three" {
			t.Errorf("expected last track Three, got %s", tracks[2].Title)
		}
		if it.Pages() != 2 {
			t.Errorf("expected 2 pages, got %d", it.Pages())
		}
	})

	t.Run("EntryPage decodes link fields", func(t *testing.T) {
		server := newFeedServer(t, map[string]string{
			"/plentryfeed|": `{"data":{"items":[{"id":"e1","playlistId":"p1","trackId":"t1","followingEntryId":"e2","absolutePosition":"100"}]}}`,
		})
		music := NewMusicService(NewAPIService(server.URL, nil), 2, nil)

		page, err := music.EntryPage(ctx, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if page.NextCursor != "" {
			t.Errorf("expected final page, got cursor %q", page.NextCursor)
		}
		entry := page.Items[0]
		if entry.FollowingID != "e2" || entry.PlaylistID != "p1" || entry.AbsolutePosition != "100" {
			t.Errorf("unexpected entry %+v", entry)
		}
	})

	t.Run("PlaylistPage and StationPage", func(t *testing.T) {
		server := newFeedServer(t, map[string]string{
			"/playlistfeed|":  `{"data":{"items":[{"id":"p1","name":"Road","type":"USER_GENERATED"}]}}`,
			"/radio/station|": `{"data":{"items":[{"id":"s1","name":"Focus"}]}}`,
		})
		music := NewMusicService(NewAPIService(server.URL, nil), 2, nil)

		playlists, err := music.PlaylistPage(ctx, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if playlists.Items[0].Type != models.PlaylistUserGenerated {
			t.Errorf("expected USER_GENERATED, got %s", playlists.Items[0].Type)
		}

		stations, err := music.StationPage(ctx, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stations.Items[0].Name != "Focus" {
			t.Errorf("expected station Focus, got %s", stations.Items[0].Name)
		}
	})

	t.Run("Non-success status is a protocol error", func(t *testing.T) {
		server := newFeedServer(t, map[string]string{})
		music := NewMusicService(NewAPIService(server.URL, nil), 2, nil)

		_, err := music.TrackPage(ctx, "")
		var pe *shared.ProtocolError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ProtocolError, got %v", err)
		}
		if pe.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", pe.StatusCode)
		}
	})

	t.Run("Malformed body is a protocol error", func(t *testing.T) {
		server := newFeedServer(t, map[string]string{"/trackfeed|": `{"data":`})
		music := NewMusicService(NewAPIService(server.URL, nil), 2, nil)

		_, err := music.TrackPage(ctx, "")
		var pe *shared.ProtocolError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ProtocolError, got %v", err)
		}
	})

	t.Run("Transport failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}
		music := NewMusicService(NewAPIService("http://example.com", client), 0, nil)

		_, err := music.StationPage(ctx, "")
		var te *shared.TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected TransportError, got %v", err)
		}
	})

	t.Run("FetchTrack", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET, got %s", r.Method)
			}
			switch r.URL.Query().Get("nid") {
			case "Tknown":
				w.Write([]byte(`{"storeId":"Tknown","title":"Catalog Song","durationMillis":"180000"}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()
		music := NewMusicService(NewAPIService(server.URL, nil), 0, nil)

		track, err := music.FetchTrack(ctx, "Tknown")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if track.Title != "Catalog Song" || track.Duration() != 180 {
			t.Errorf("unexpected track %+v", track)
		}

		_, err = music.FetchTrack(ctx, "Tmissing")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("IsCatalogID", func(t *testing.T) {
		if !IsCatalogID("Tabc") {
			t.Error("expected T-prefixed id to be a catalog id")
		}
		if IsCatalogID("5f2c") || IsCatalogID("") {
			t.Error("expected library ids not to be catalog ids")
		}
	})
}
