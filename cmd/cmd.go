// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}
}

// libraryCommand handles track library operations
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Track library operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List library tracks",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to print (0 for all)",
					},
					jsonFlag(),
				},
				Action: r.LibraryList,
			},
			{
				Name:  "find",
				Usage: "Look a track up by id, reading only as many pages as needed",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.LibraryFind,
			},
			{
				Name:   "snapshot",
				Usage:  "Save the whole library to the local database",
				Action: r.LibrarySnapshot,
			},
			{
				Name:   "snapshots",
				Usage:  "List saved library snapshots",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.LibrarySnapshots,
			},
		},
	}
}

// playlistsCommand handles playlist and entry operations
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List playlists",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.PlaylistsList,
			},
			{
				Name:  "contents",
				Usage: "Print a playlist's entries in order",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries to print (0 for all)",
					},
					jsonFlag(),
				},
				Action: r.PlaylistsContents,
			},
			{
				Name:      "add",
				Usage:     "Append tracks to the end of a playlist",
				ArgsUsage: "<playlist-id> <track-id>...",
				Action:    r.PlaylistsAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove entries from a playlist",
				ArgsUsage: "<playlist-id> <entry-id>...",
				Action:    r.PlaylistsRemove,
			},
			{
				Name:  "create",
				Usage: "Create a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Playlist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Playlist description",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the playlist public",
					},
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:      "delete",
				Usage:     "Delete playlists",
				ArgsUsage: "<playlist-id>...",
				Action:    r.PlaylistsDelete,
			},
			{
				Name:      "export",
				Usage:     "Export playlists to files",
				ArgsUsage: "<playlist-id>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent exports",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlists started per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every playlist",
					},
				},
				Action: r.PlaylistsExport,
			},
		},
	}
}

// stationsCommand handles radio station operations
func stationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "Radio station operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List stations",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.StationsList,
			},
			{
				Name:      "delete",
				Usage:     "Delete stations",
				ArgsUsage: "<station-id>...",
				Action:    r.StationsDelete,
			},
		},
	}
}

// journalCommand reads the local batch journal
func journalCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "journal",
		Usage: "Inspect submitted mutation batches",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent batches",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of batches",
						Value: 20,
					},
					jsonFlag(),
				},
				Action: r.JournalList,
			},
			{
				Name:  "show",
				Usage: "Show a batch and its items",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.JournalShow,
			},
		},
	}
}
