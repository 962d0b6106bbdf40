package library

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libmirror/internal/cache"
	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/paging"
	"github.com/desertthunder/libmirror/internal/services"
	"github.com/desertthunder/libmirror/internal/shared"
)

// LibraryOnly keeps the tracks that exist only in the user's library. Anything carrying a
// store id is dropped, whether it is a bare catalog reference or a catalog-backed library track.
func LibraryOnly(tracks []models.Track) []models.Track {
	var out []models.Track
	for _, t := range tracks {
		if t.LibraryOnly() {
			out = append(out, t)
		}
	}
	return out
}

// Library is the user's track library.
type Library struct {
	source services.Source
	lookup *cache.Lookup[models.Track]
	logger *log.Logger
}

// NewLibrary creates a [Library] reading from source.
func NewLibrary(source services.Source, logger *log.Logger) *Library {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	logger = shared.WithLogger(logger, "component", "library")

	fetcher := paging.FetcherFunc[models.Track](source.TrackPage)
	coll := cache.NewCollection("tracks", cache.DrainRefresh[models.Track](fetcher, LibraryOnly, logger), models.Track.Key, logger)

	return &Library{
		source: source,
		lookup: cache.NewLookup(coll, fetcher, LibraryOnly),
		logger: logger,
	}
}

// Cache returns the track collection cache.
func (l *Library) Cache() *cache.Collection[models.Track] { return l.lookup.Collection() }

// Tracks returns every library track.
func (l *Library) Tracks(ctx context.Context) ([]models.Track, error) {
	return l.Cache().GetAll(ctx)
}

// Find looks a library track up by id, fetching only as many pages as needed.
func (l *Library) Find(ctx context.Context, id string) (models.Track, error) {
	return l.lookup.Find(ctx, id)
}

// Track resolves any track id. Catalog ids are fetched directly; library ids go through [Library.Find].
func (l *Library) Track(ctx context.Context, id string) (models.Track, error) {
	if services.IsCatalogID(id) {
		l.logger.Debug("fetching catalog track", "id", id)
		track, err := l.source.FetchTrack(ctx, id)
		if err != nil {
			return models.Track{}, err
		}
		return *track, nil
	}
	return l.Find(ctx, id)
}

// SetCaching toggles retention of the track snapshot.
func (l *Library) SetCaching(enabled bool) { l.Cache().SetCaching(enabled) }

// Invalidate drops the track snapshot.
func (l *Library) Invalidate() { l.Cache().Invalidate() }

// EntryTracks resolves the track behind each entry, preferring the track embedded in the entry.
//
// Entries whose track no longer exists are skipped.
func (l *Library) EntryTracks(ctx context.Context, entries []models.PlaylistEntry) ([]models.Track, error) {
	tracks := make([]models.Track, 0, len(entries))
	for _, e := range entries {
		if e.Track != nil {
			tracks = append(tracks, *e.Track)
			continue
		}

		t, err := l.Track(ctx, e.TrackID)
		if errors.Is(err, shared.ErrNotFound) {
			l.logger.Warn("skipping entry with missing track", "entry", e.ID, "track", e.TrackID)
			continue
		}
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}
