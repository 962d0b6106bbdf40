package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libmirror/internal/library"
	"github.com/desertthunder/libmirror/internal/mutations"
	"github.com/desertthunder/libmirror/internal/repositories"
	"github.com/desertthunder/libmirror/internal/services"
	"github.com/desertthunder/libmirror/internal/shared"
	"github.com/desertthunder/libmirror/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	api       *services.APIService
	source    services.Source
	library   *library.Library
	playlists *library.Playlists
	stations  *library.Stations
	engine    *tasks.Engine
	journal   *repositories.BatchRepository
	snapshots *repositories.SnapshotRepository
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	API    *services.APIService
	Source services.Source  // Defaults to a [services.MusicService] over API
	DB     *sql.DB          // Journal and snapshots are disabled when nil
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.API.BaseURL, nil)
	}
	if opts.Source == nil {
		opts.Source = services.NewMusicService(opts.API, opts.Config.API.PageSize, opts.Logger)
	}

	r := &Runner{
		config: opts.Config,
		api:    opts.API,
		source: opts.Source,
		logger: opts.Logger,
		output: opts.Output,
	}

	var journal mutations.Journal
	if opts.DB != nil {
		r.journal = repositories.NewBatchRepository(opts.DB)
		r.snapshots = repositories.NewSnapshotRepository(opts.DB)
		journal = r.journal
	}

	client := mutations.NewClient(opts.API, journal, opts.Logger)
	planner := mutations.NewPlanner(mutations.TimeOrderedIDs{})

	r.library = library.NewLibrary(opts.Source, opts.Logger)
	r.playlists = library.NewPlaylists(opts.Source, client, planner, opts.Logger)
	r.stations = library.NewStations(opts.Source, client, opts.Logger)

	r.library.SetCaching(opts.Config.Cache.Tracks)
	r.playlists.Cache().SetCaching(opts.Config.Cache.Entries)

	var store tasks.SnapshotStore
	if r.snapshots != nil {
		store = r.snapshots
	}
	r.engine = tasks.NewEngine(r.library, r.playlists, store, opts.Logger)

	return r
}

// SetLogger swaps the logger used by command actions.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, libraryCommand, playlistsCommand, stationsCommand, cacheCommand, journalCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// writeOutcome prints one line per rejected record of a batch.
func (r *Runner) writeOutcome(outcome mutations.Outcome) {
	for _, res := range outcome.Failed() {
		r.writePlain("  ✗ #%d %s: %s\n", res.Index, res.ID, res.Reason)
	}
}
