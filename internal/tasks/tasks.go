// package tasks implements bulk operations over the mirrored library.
//
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libmirror/internal/library"
	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/repositories"
	"github.com/desertthunder/libmirror/internal/shared"
)

// SnapshotStore persists a materialized collection.
type SnapshotStore interface {
	Save(ctx context.Context, collection string, tracks []models.Track) (*repositories.Snapshot, error)
}

var _ SnapshotStore = (*repositories.SnapshotRepository)(nil)

// Engine runs exports and snapshots against the library caches.
type Engine struct {
	library   *library.Library
	playlists *library.Playlists
	snapshots SnapshotStore
	logger    *log.Logger
}

// NewEngine creates an [Engine]. snapshots may be nil when [Engine.Snapshot] is not used.
func NewEngine(lib *library.Library, playlists *library.Playlists, snapshots SnapshotStore, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Engine{
		library:   lib,
		playlists: playlists,
		snapshots: snapshots,
		logger:    shared.WithLogger(logger, "component", "tasks"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Export resolves the playlist with the given id into its tracks in playlist order.
func (e *Engine) Export(ctx context.Context, progress chan<- ProgressUpdate, playlistID string) (*models.PlaylistExport, error) {
	e.sendProgress(progress, fetchPlaylistsUpdate(1, 1))

	playlist, err := e.playlists.Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return e.export(ctx, progress, playlist)
}

func (e *Engine) export(ctx context.Context, progress chan<- ProgressUpdate, playlist models.Playlist) (*models.PlaylistExport, error) {
	e.sendProgress(progress, fetchEntriesUpdate(playlist.Name))

	entries, err := e.playlists.Contents(ctx, playlist.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries of %s: %w", playlist.ID, err)
	}

	tracks, err := e.library.EntryTracks(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tracks of %s: %w", playlist.ID, err)
	}

	export := &models.PlaylistExport{Playlist: playlist, Tracks: tracks}
	e.sendProgress(progress, resolvedTracksUpdate(export))
	return export, nil
}

// Snapshot materializes the whole track library and saves it as a snapshot named "tracks".
func (e *Engine) Snapshot(ctx context.Context, progress chan<- ProgressUpdate) (*repositories.Snapshot, error) {
	if e.snapshots == nil {
		return nil, fmt.Errorf("%w: snapshot store not configured", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchTracksUpdate())

	tracks, err := e.library.Tracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}

	snap, err := e.snapshots.Save(ctx, "tracks", tracks)
	if err != nil {
		return nil, err
	}

	e.logger.Info("snapshot saved", "id", snap.ID, "sequence", snap.Sequence, "tracks", snap.ItemCount)
	e.sendProgress(progress, snapshotSavedUpdate(snap))
	return snap, nil
}
