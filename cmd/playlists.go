package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/libmirror/internal/formatter"
	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/shared"
	"github.com/desertthunder/libmirror/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints every playlist.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	playlists, err := r.playlists.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for _, pl := range playlists {
		r.writePlain("%-40s %-8s %s\n", pl.Name, strings.ToLower(string(pl.ShareState)), pl.ID)
	}
	return nil
}

// PlaylistsContents prints a playlist's entries in chain order.
func (r *Runner) PlaylistsContents(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	entries, err := r.playlists.Contents(ctx, id, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	tracks, err := r.library.EntryTracks(ctx, entries)
	if err != nil {
		return err
	}

	byID := make(map[string]models.Track, len(tracks))
	for _, t := range tracks {
		byID[t.Key()] = t
	}

	for i, e := range entries {
		t, ok := byID[e.TrackID]
		if e.Track != nil {
			t, ok = *e.Track, true
		}
		if !ok {
			r.writePlain("%4d. (missing track %s)  %s\n", i+1, e.TrackID, e.ID)
			continue
		}
		r.writePlain("%4d. %s - %s  %s\n", i+1, t.Artist, t.Title, e.ID)
	}
	return nil
}

// PlaylistsAdd appends tracks to a playlist.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 2 {
		return fmt.Errorf("%w: playlist id and at least one track id", shared.ErrMissingArgument)
	}
	playlistID := args.First()

	tracks := make([]models.Track, 0, args.Len()-1)
	for _, id := range args.Tail() {
		track, err := r.library.Track(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to resolve track %s: %w", id, err)
		}
		tracks = append(tracks, track)
	}

	outcome, err := r.playlists.AddTracks(ctx, playlistID, tracks)
	if err != nil {
		r.writeOutcome(outcome)
		return err
	}

	r.writePlain("✓ Added %d tracks to %s\n", len(outcome.Results), playlistID)
	return nil
}

// PlaylistsRemove deletes entries from a playlist.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 2 {
		return fmt.Errorf("%w: playlist id and at least one entry id", shared.ErrMissingArgument)
	}
	playlistID := args.First()

	entries, err := r.playlists.Contents(ctx, playlistID, 0)
	if err != nil {
		return err
	}

	byID := make(map[string]models.PlaylistEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	var targets []models.PlaylistEntry
	for _, id := range args.Tail() {
		e, ok := byID[id]
		if !ok {
			return fmt.Errorf("entry %w: %s in playlist %s", shared.ErrNotFound, id, playlistID)
		}
		targets = append(targets, e)
	}

	outcome, err := r.playlists.RemoveEntries(ctx, targets)
	if err != nil {
		r.writeOutcome(outcome)
		return err
	}

	r.writePlain("✓ Removed %d entries from %s\n", len(outcome.Results), playlistID)
	return nil
}

// PlaylistsCreate creates a playlist.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	share := models.SharePrivate
	if cmd.Bool("public") {
		share = models.SharePublic
	}

	pl, err := r.playlists.Create(ctx, cmd.String("name"), cmd.String("description"), share)
	if err != nil {
		return err
	}

	r.writePlain("✓ Playlist created: %s (ID: %s)\n", pl.Name, pl.ID)
	return nil
}

// PlaylistsDelete deletes playlists.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	outcome, err := r.playlists.Delete(ctx, cmd.Args().Slice()...)
	if err != nil {
		r.writeOutcome(outcome)
		return err
	}

	r.writePlain("✓ Deleted %d playlists\n", len(outcome.Results))
	return nil
}

// PlaylistsExport exports playlists to files with a manifest.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	if cmd.Bool("all") {
		playlists, err := r.playlists.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list playlists: %w", err)
		}
		ids = ids[:0]
		for _, pl := range playlists {
			ids = append(ids, pl.ID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: playlist ids or --all", shared.ErrMissingArgument)
	}

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.engine.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("✓ Exported %d/%d playlists to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	if result.FailedExports > 0 {
		return fmt.Errorf("%d playlists failed to export", result.FailedExports)
	}
	return nil
}
