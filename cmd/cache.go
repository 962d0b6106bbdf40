package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/libmirror/internal/shared"
	"github.com/urfave/cli/v3"
)

type cacheStatus struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Caching bool   `json:"caching"`
	Items   int    `json:"items"`
}

func (r *Runner) cacheStatuses() []cacheStatus {
	tracks, entries := r.library.Cache(), r.playlists.Cache()
	return []cacheStatus{
		{Name: tracks.Name(), State: tracks.State().String(), Caching: tracks.Caching(), Items: tracks.Len()},
		{Name: entries.Name(), State: entries.State().String(), Caching: entries.Caching(), Items: entries.Len()},
	}
}

// CacheStatus prints the state of each collection cache.
//
// Caches live for one process, so this is mostly useful after --warm.
func (r *Runner) CacheStatus(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("warm") {
		if _, err := r.library.Tracks(ctx); err != nil {
			return err
		}
		if _, err := r.playlists.Cache().GetAll(ctx); err != nil {
			return err
		}
	}

	statuses := r.cacheStatuses()
	if cmd.Bool("json") {
		return r.writeJSON(statuses, true)
	}

	for _, s := range statuses {
		r.writePlain("%-8s %-14s caching=%-5t items=%d\n", s.Name, s.State, s.Caching, s.Items)
	}
	return nil
}

// CacheRefresh forces a full reload of one or all caches.
func (r *Runner) CacheRefresh(ctx context.Context, cmd *cli.Command) error {
	target := cmd.StringArg("name")
	if target == "" {
		target = "all"
	}

	var refreshed []string
	if target == "all" || target == "tracks" {
		if err := r.library.Cache().Refresh(ctx); err != nil {
			return fmt.Errorf("failed to refresh tracks: %w", err)
		}
		refreshed = append(refreshed, "tracks")
	}
	if target == "all" || target == "entries" {
		if err := r.playlists.Cache().Refresh(ctx); err != nil {
			return fmt.Errorf("failed to refresh entries: %w", err)
		}
		refreshed = append(refreshed, "entries")
	}
	if len(refreshed) == 0 {
		return fmt.Errorf("%w: unknown cache %q (tracks, entries, all)", shared.ErrInvalidArgument, target)
	}

	for _, s := range r.cacheStatuses() {
		r.writePlain("✓ %-8s %-14s items=%d\n", s.Name, s.State, s.Items)
	}
	return nil
}

// cacheCommand inspects and reloads the in-memory collection caches
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and reload the in-memory caches",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show the state of each cache",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "warm",
						Usage: "Load every cache first",
					},
					jsonFlag(),
				},
				Action: r.CacheStatus,
			},
			{
				Name:  "refresh",
				Usage: "Reload tracks, entries, or all",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Action: r.CacheRefresh,
			},
		},
	}
}
