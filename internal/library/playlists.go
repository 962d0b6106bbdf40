package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libmirror/internal/cache"
	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/mutations"
	"github.com/desertthunder/libmirror/internal/paging"
	"github.com/desertthunder/libmirror/internal/services"
	"github.com/desertthunder/libmirror/internal/shared"
)

// Entry sources as the batch endpoint expects them.
const (
	sourceLibrary = 1
	sourceCatalog = 2
)

func entryKey(e models.PlaylistEntry) string { return e.ID }

// Playlists manages playlists and their entries.
//
// Entries of all private playlists come from a single feed and share one cache.
type Playlists struct {
	source  services.Source
	client  *mutations.Client
	planner *mutations.Planner
	entries *cache.Collection[models.PlaylistEntry]
	logger  *log.Logger
}

// NewPlaylists creates a [Playlists]. planner may be nil.
func NewPlaylists(source services.Source, client *mutations.Client, planner *mutations.Planner, logger *log.Logger) *Playlists {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	if planner == nil {
		planner = mutations.NewPlanner(nil)
	}
	logger = shared.WithLogger(logger, "component", "playlists")

	fetcher := paging.FetcherFunc[models.PlaylistEntry](source.EntryPage)
	return &Playlists{
		source:  source,
		client:  client,
		planner: planner,
		entries: cache.NewCollection("entries", cache.DrainRefresh[models.PlaylistEntry](fetcher, nil, logger), entryKey, logger),
		logger:  logger,
	}
}

// Cache returns the playlist entry collection cache.
func (p *Playlists) Cache() *cache.Collection[models.PlaylistEntry] { return p.entries }

// List returns every playlist that is not deleted. Playlist metadata is not cached.
func (p *Playlists) List(ctx context.Context) ([]models.Playlist, error) {
	fetcher := paging.FetcherFunc[models.Playlist](p.source.PlaylistPage)
	all, err := paging.NewIterator[models.Playlist](fetcher, nil, p.logger).CollectAll(ctx)
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(all))
	for _, pl := range all {
		if !pl.Deleted {
			playlists = append(playlists, pl)
		}
	}
	return playlists, nil
}

// Get returns the playlist with the given id.
func (p *Playlists) Get(ctx context.Context, id string) (models.Playlist, error) {
	playlists, err := p.List(ctx)
	if err != nil {
		return models.Playlist{}, err
	}
	for _, pl := range playlists {
		if pl.ID == id {
			return pl, nil
		}
	}
	return models.Playlist{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
}

// Contents returns the visible entries of a playlist in chain order, at most limit when limit > 0.
func (p *Playlists) Contents(ctx context.Context, playlistID string, limit int) ([]models.PlaylistEntry, error) {
	mine, err := p.entriesOf(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	ordered := models.OrderEntries(mine)
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered, nil
}

// entriesOf returns every cached entry of one playlist, deleted ones included.
func (p *Playlists) entriesOf(ctx context.Context, playlistID string) ([]models.PlaylistEntry, error) {
	all, err := p.entries.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var mine []models.PlaylistEntry
	for _, e := range all {
		if e.PlaylistID == playlistID {
			mine = append(mine, e)
		}
	}
	return mine, nil
}

// AddTracks appends tracks to the end of a playlist in one batch.
//
// The run is linked after the last link of the chain, which may be a deleted entry.
//
// Once the batch reached the server the entries cache is invalidated, even on partial
// failure, since some records may have been applied.
func (p *Playlists) AddTracks(ctx context.Context, playlistID string, tracks []models.Track) (mutations.Outcome, error) {
	if len(tracks) == 0 {
		return mutations.Outcome{}, fmt.Errorf("%w: no tracks to add", shared.ErrInvalidInput)
	}

	current, err := p.entriesOf(ctx, playlistID)
	if err != nil {
		return mutations.Outcome{}, err
	}
	tail := models.ChainTail(current)

	payloads := make([]mutations.Payload, len(tracks))
	for i, t := range tracks {
		payloads[i] = entryPayload(playlistID, t)
	}

	plan, err := p.planner.PlanAppend(tail, payloads)
	if err != nil {
		return mutations.Outcome{}, err
	}

	outcome, err := p.client.Submit(ctx, services.EntryBatch, plan.Batch)
	if reached(err) {
		p.entries.Invalidate()
	}
	if err != nil {
		return outcome, fmt.Errorf("failed to add tracks to %s: %w", playlistID, err)
	}

	p.logger.Info("tracks added", "playlist", playlistID, "count", len(tracks))
	return outcome, nil
}

// RemoveEntries deletes entries and mirrors every accepted delete in the cache.
func (p *Playlists) RemoveEntries(ctx context.Context, entries []models.PlaylistEntry) (mutations.Outcome, error) {
	if len(entries) == 0 {
		return mutations.Outcome{}, fmt.Errorf("%w: no entries to remove", shared.ErrInvalidInput)
	}

	batch := mutations.Batch{Records: make([]mutations.Record, len(entries))}
	for i, e := range entries {
		batch.Records[i] = mutations.Delete(e.ID)
	}

	outcome, err := p.client.Submit(ctx, services.EntryBatch, batch)
	if reached(err) {
		var removed []models.PlaylistEntry
		for _, r := range outcome.Results {
			if r.OK {
				removed = append(removed, entries[r.Index])
			}
		}
		p.entries.Remove(removed...)
	}
	if err != nil {
		return outcome, fmt.Errorf("failed to remove entries: %w", err)
	}
	return outcome, nil
}

// Create makes a new user playlist and returns it with its server-assigned id.
func (p *Playlists) Create(ctx context.Context, name, description string, share models.ShareState) (models.Playlist, error) {
	if name == "" {
		return models.Playlist{}, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	record, err := p.planner.PlanCreate(mutations.Payload{
		"name":                  name,
		"description":           description,
		"shareState":            string(share),
		"type":                  string(models.PlaylistUserGenerated),
		"deleted":               false,
		"creationTimestamp":     "-1",
		"lastModifiedTimestamp": "0",
	})
	if err != nil {
		return models.Playlist{}, err
	}

	outcome, err := p.client.Submit(ctx, services.PlaylistBatch, mutations.Batch{Records: []mutations.Record{record}})
	if err != nil {
		return models.Playlist{}, fmt.Errorf("failed to create playlist: %w", err)
	}

	playlist := models.Playlist{
		ID:          outcome.Results[0].ID,
		Name:        name,
		Description: description,
		Type:        models.PlaylistUserGenerated,
		ShareState:  share,
	}
	p.logger.Info("playlist created", "id", playlist.ID, "name", name)
	return playlist, nil
}

// Delete removes playlists. Accepted deletes invalidate the entries cache.
func (p *Playlists) Delete(ctx context.Context, ids ...string) (mutations.Outcome, error) {
	outcome, err := submitDeletes(ctx, p.client, services.PlaylistBatch, ids)
	if reached(err) {
		p.entries.Invalidate()
	}
	return outcome, err
}

func entryPayload(playlistID string, t models.Track) mutations.Payload {
	source := sourceLibrary
	if services.IsCatalogID(t.Key()) {
		source = sourceCatalog
	}
	return mutations.Payload{
		"playlistId":            playlistID,
		"trackId":               t.Key(),
		"source":                source,
		"deleted":               false,
		"creationTimestamp":     "-1",
		"lastModifiedTimestamp": "0",
	}
}

func submitDeletes(ctx context.Context, client *mutations.Client, endpoint string, ids []string) (mutations.Outcome, error) {
	if len(ids) == 0 {
		return mutations.Outcome{}, fmt.Errorf("%w: nothing to delete", shared.ErrMissingArgument)
	}

	batch := mutations.Batch{Records: make([]mutations.Record, len(ids))}
	for i, id := range ids {
		batch.Records[i] = mutations.Delete(id)
	}
	return client.Submit(ctx, endpoint, batch)
}

// reached reports whether a submit error still means the server processed the batch.
func reached(err error) bool {
	var pf *mutations.PartialFailure
	return err == nil || errors.As(err, &pf)
}
