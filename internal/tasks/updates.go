package tasks

import (
	"fmt"

	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/repositories"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylists Phase = iota
	FetchEntries
	ResolveTracks
	ExportPlaylist
	FetchTracks
	SaveSnapshot
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchEntries:
		return "fetch_entries"
	case ResolveTracks:
		return "resolve_tracks"
	case ExportPlaylist:
		return "export_playlist"
	case FetchTracks:
		return "fetch_tracks"
	case SaveSnapshot:
		return "save_snapshot"
	default:
		return ""
	}
}

func fetchPlaylistsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    step,
		Total:   total,
		Message: "Fetching playlists...",
	}
}

func fetchEntriesUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEntries,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reading entries of %s...", name),
	}
}

func resolvedTracksUpdate(export *models.PlaylistExport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolved playlist: %s (%d tracks)", export.Playlist.Name, len(export.Tracks)),
		Data:    export,
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func fetchTracksUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    1,
		Total:   2,
		Message: "Fetching library tracks...",
	}
}

func snapshotSavedUpdate(snap *repositories.Snapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveSnapshot,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Snapshot #%d saved (%d tracks)", snap.Sequence, snap.ItemCount),
		Data:    snap,
	}
}
