package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/libmirror/internal/shared"
	"github.com/urfave/cli/v3"
)

// JournalList prints recent mutation batches.
func (r *Runner) JournalList(ctx context.Context, cmd *cli.Command) error {
	if r.journal == nil {
		return fmt.Errorf("%w: database not initialized, run 'libmirror setup database'", shared.ErrServiceUnavailable)
	}

	entries, err := r.journal.List(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		r.writePlain("No batches\n")
		return nil
	}
	for _, e := range entries {
		r.writePlain("#%-4d %s  %-16s %-8s %d/%d ok  %s\n",
			e.Sequence, e.SubmittedAt.Local().Format("2006-01-02 15:04:05"), e.Endpoint, e.Status,
			e.RecordCount-e.FailedCount, e.RecordCount, e.ID)
	}
	return nil
}

// JournalShow prints one batch with its items.
func (r *Runner) JournalShow(ctx context.Context, cmd *cli.Command) error {
	if r.journal == nil {
		return fmt.Errorf("%w: database not initialized, run 'libmirror setup database'", shared.ErrServiceUnavailable)
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: batch id", shared.ErrMissingArgument)
	}

	entry, err := r.journal.Get(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entry, true)
	}

	r.writePlainHeader(fmt.Sprintf("Batch #%d → %s (%s)", entry.Sequence, entry.Endpoint, entry.Status))
	if entry.Error != "" {
		r.writePlain("Error: %s\n", entry.Error)
	}
	for _, item := range entry.Items {
		mark := "✓"
		if !item.OK {
			mark = "✗"
		}
		r.writePlain("%s %3d %-6s %s %s\n", mark, item.Index, item.Kind, item.TargetID, item.Reason)
	}
	return nil
}
