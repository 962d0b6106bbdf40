package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// StationsList prints radio stations.
func (r *Runner) StationsList(ctx context.Context, cmd *cli.Command) error {
	stations, err := r.stations.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stations: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(stations, true)
	}

	for _, st := range stations {
		r.writePlain("%-40s %s\n", st.Name, st.ID)
	}
	return nil
}

// StationsDelete deletes stations.
func (r *Runner) StationsDelete(ctx context.Context, cmd *cli.Command) error {
	outcome, err := r.stations.Delete(ctx, cmd.Args().Slice()...)
	if err != nil {
		r.writeOutcome(outcome)
		return err
	}

	r.writePlain("✓ Deleted %d stations\n", len(outcome.Results))
	return nil
}
