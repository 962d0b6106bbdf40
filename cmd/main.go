package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libmirror/internal/services"
	"github.com/desertthunder/libmirror/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := newLogger(os.Args[1:])

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}
	if err := config.Validate(); err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()
	httpClient := services.NewHTTPClient(ctx, config.API.Token, config.API.RequestsPerSecond)
	apiService := services.NewAPIService(config.API.BaseURL, httpClient)

	db := openDatabase(config, logger)
	if db != nil {
		defer db.Close()
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		API:    apiService,
		DB:     db,
		Logger: logger,
	})

	app := &cli.Command{
		Name:    "libmirror",
		Usage:   "Browse and edit a remote music library through local caches",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// newLogger writes to stderr, or to a file while the TUI owns the terminal.
//
// Flags are read from the raw arguments because component loggers are derived
// from this one before the command line is parsed.
func newLogger(args []string) *log.Logger {
	logger := shared.NewLogger(nil)
	if slices.Contains(args, "tui") {
		if l, err := shared.NewFileLogger("./tmp/libmirror-tui.log"); err == nil {
			logger = l
		}
	}
	if slices.Contains(args, "--verbose") {
		shared.SetLogLevel(logger, log.DebugLevel)
	}
	return logger
}

// openDatabase opens and migrates the journal database. Commands that need it report its absence.
func openDatabase(config *shared.Config, logger *log.Logger) *sql.DB {
	if config.Database.Path == "" {
		return nil
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		logger.Warn("journal disabled", "error", err)
		return nil
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		logger.Warn("journal disabled", "error", err)
		db.Close()
		return nil
	}
	return db
}
