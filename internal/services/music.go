package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/paging"
	"github.com/desertthunder/libmirror/internal/shared"
)

// Feed and batch endpoints, relative to the base URL.
const (
	TrackFeed      = "trackfeed"
	PlaylistFeed   = "playlistfeed"
	EntryFeed      = "plentryfeed"
	StationFeed    = "radio/station"
	FetchTrackPath = "fetchtrack"
	PlaylistBatch  = "playlistbatch"
	EntryBatch     = "plentriesbatch"
	StationBatch   = "radio/editstation"
)

// DefaultPageSize is the largest page the feeds accept.
const DefaultPageSize = 1000

const (
	catalogIDPrefix  = "T"
	responseSnippetN = 200
)

// pageRequest is the body of every feed request.
type pageRequest struct {
	StartToken string `json:"start-token,omitempty"`
	MaxResults int    `json:"max-results"`
}

// pageResponse is the envelope of every feed response.
type pageResponse[T any] struct {
	NextPageToken string `json:"nextPageToken"`
	Data          struct {
		Items []T `json:"items"`
	} `json:"data"`
}

// MusicService reads the remote collections one page at a time.
//
// Its page methods match [paging.FetcherFunc] so they plug straight into iterators and caches.
type MusicService struct {
	api      *APIService
	pageSize int
	logger   *log.Logger
}

// NewMusicService creates a [MusicService]. pageSize <= 0 uses [DefaultPageSize].
func NewMusicService(api *APIService, pageSize int, logger *log.Logger) *MusicService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &MusicService{api: api, pageSize: pageSize, logger: logger}
}

// API returns the underlying raw client, used for batch submissions.
func (m *MusicService) API() *APIService { return m.api }

// TrackPage fetches one page of the user's library tracks.
func (m *MusicService) TrackPage(ctx context.Context, cursor string) (paging.Page[models.Track], error) {
	return fetchPage[models.Track](ctx, m, TrackFeed, cursor)
}

// PlaylistPage fetches one page of playlist metadata.
func (m *MusicService) PlaylistPage(ctx context.Context, cursor string) (paging.Page[models.Playlist], error) {
	return fetchPage[models.Playlist](ctx, m, PlaylistFeed, cursor)
}

// EntryPage fetches one page of entries across all private playlists.
func (m *MusicService) EntryPage(ctx context.Context, cursor string) (paging.Page[models.PlaylistEntry], error) {
	return fetchPage[models.PlaylistEntry](ctx, m, EntryFeed, cursor)
}

// StationPage fetches one page of radio stations.
func (m *MusicService) StationPage(ctx context.Context, cursor string) (paging.Page[models.Station], error) {
	return fetchPage[models.Station](ctx, m, StationFeed, cursor)
}

// FetchTrack fetches a catalog track directly by its store id.
func (m *MusicService) FetchTrack(ctx context.Context, id string) (*models.Track, error) {
	resp, err := m.api.Get(ctx, FetchTrackPath+"?nid="+url.QueryEscape(id))
	if err != nil {
		return nil, &shared.TransportError{Op: "fetch track", Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	if !resp.OK() {
		return nil, protocolError(resp, "fetch track")
	}

	var track models.Track
	if err := json.Unmarshal(resp.Body, &track); err != nil {
		return nil, &shared.ProtocolError{StatusCode: resp.StatusCode, Message: "unparseable track", Err: err}
	}
	return &track, nil
}

// IsCatalogID reports whether id names a catalog track rather than a library track.
func IsCatalogID(id string) bool {
	return strings.HasPrefix(id, catalogIDPrefix)
}

func fetchPage[T any](ctx context.Context, m *MusicService, feed, cursor string) (paging.Page[T], error) {
	body, err := json.Marshal(pageRequest{StartToken: cursor, MaxResults: m.pageSize})
	if err != nil {
		return paging.Page[T]{}, fmt.Errorf("failed to encode page request: %w", err)
	}

	resp, err := m.api.Post(ctx, feed, body)
	if err != nil {
		return paging.Page[T]{}, &shared.TransportError{Op: "fetch " + feed, Err: err}
	}
	if !resp.OK() {
		return paging.Page[T]{}, protocolError(resp, feed)
	}

	var parsed pageResponse[T]
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return paging.Page[T]{}, &shared.ProtocolError{StatusCode: resp.StatusCode, Message: "unparseable " + feed + " page", Err: err}
	}

	m.logger.Debug("page received", "feed", feed, "items", len(parsed.Data.Items), "more", parsed.NextPageToken != "")
	return paging.Page[T]{Items: parsed.Data.Items, NextCursor: parsed.NextPageToken}, nil
}

func protocolError(resp *APIResponse, op string) error {
	msg := shared.Truncate(string(resp.Body), responseSnippetN)
	return &shared.ProtocolError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("%s: %v: %s", op, shared.ErrAPIRequest, msg),
	}
}
