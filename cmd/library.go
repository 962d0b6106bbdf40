package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/libmirror/internal/shared"
	"github.com/urfave/cli/v3"
)

// LibraryList prints library tracks.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	tracks, err := r.library.Tracks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tracks: %w", err)
	}

	if limit := cmd.Int("limit"); limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}

	r.writePlainHeader(fmt.Sprintf("Library (%d tracks)", len(tracks)))
	for i, t := range tracks {
		r.writePlain("%4d. %s - %s [%s] (%s)\n", i+1, t.Artist, t.Title, shared.FormatDuration(t.Duration()), t.Key())
	}
	return nil
}

// LibraryFind resolves one track id.
func (r *Runner) LibraryFind(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	track, err := r.library.Track(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(track, true)
	}

	r.writePlain("%s - %s\n", track.Artist, track.Title)
	if track.Album != "" {
		r.writePlain("  Album: %s\n", track.Album)
	}
	r.writePlain("  Duration: %s\n", shared.FormatDuration(track.Duration()))
	r.writePlain("  In library: %t\n", track.InLibrary())
	return nil
}

// LibrarySnapshot saves the materialized library to the local database.
func (r *Runner) LibrarySnapshot(ctx context.Context, cmd *cli.Command) error {
	snap, err := r.engine.Snapshot(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}

	r.writePlain("✓ Snapshot #%d saved (%d tracks)\n", snap.Sequence, snap.ItemCount)
	r.writePlain("  ID: %s\n", snap.ID)
	return nil
}

// LibrarySnapshots lists saved snapshots.
func (r *Runner) LibrarySnapshots(ctx context.Context, cmd *cli.Command) error {
	if r.snapshots == nil {
		return fmt.Errorf("%w: database not initialized, run 'libmirror setup database'", shared.ErrServiceUnavailable)
	}

	snapshots, err := r.snapshots.List(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshots, true)
	}

	if len(snapshots) == 0 {
		r.writePlain("No snapshots\n")
		return nil
	}
	for _, s := range snapshots {
		r.writePlain("#%-4d %s  %-12s %6d tracks  %s\n", s.Sequence, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Collection, s.ItemCount, s.ID)
	}
	return nil
}
