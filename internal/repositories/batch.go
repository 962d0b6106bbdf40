package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/libmirror/internal/mutations"
	"github.com/desertthunder/libmirror/internal/shared"
)

// BatchStatus summarizes how a journaled batch ended.
type BatchStatus string

const (
	BatchAccepted BatchStatus = "accepted"
	BatchPartial  BatchStatus = "partial"
	BatchFailed   BatchStatus = "failed"
)

// BatchEntry is one journaled batch.
type BatchEntry struct {
	ID          string
	Sequence    int
	Endpoint    string
	RecordCount int
	FailedCount int
	Status      BatchStatus
	Error       string
	SubmittedAt time.Time
	Items       []BatchItem
}

// BatchItem is one record of a journaled batch with the server's verdict.
type BatchItem struct {
	Index    int
	Kind     mutations.Kind
	TargetID string
	OK       bool
	Reason   string
}

// BatchRepository journals mutation batches. It implements [mutations.Journal].
type BatchRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ mutations.Journal = (*BatchRepository)(nil)

// NewBatchRepository creates a new BatchRepository with the given database connection
func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db, now: time.Now}
}

// RecordBatch stores batch and what became of it. Records without a result (transport or
// protocol failure) are stored as not accepted with the submit error as their reason.
func (r *BatchRepository) RecordBatch(ctx context.Context, endpoint string, batch mutations.Batch, outcome mutations.Outcome, submitErr error) error {
	entry := BatchEntry{
		ID:          shared.GenerateID(),
		Endpoint:    endpoint,
		RecordCount: batch.Len(),
		Status:      BatchAccepted,
		SubmittedAt: r.now().UTC(),
	}

	items := make([]BatchItem, batch.Len())
	for i, rec := range batch.Records {
		items[i] = BatchItem{Index: i, Kind: rec.Kind, TargetID: rec.ID}
		if i < len(outcome.Results) {
			items[i].OK = outcome.Results[i].OK
			items[i].Reason = outcome.Results[i].Reason
		}
		if !items[i].OK {
			entry.FailedCount++
		}
	}

	if submitErr != nil {
		entry.Error = submitErr.Error()
		entry.Status = BatchFailed
		if len(outcome.Results) > 0 {
			entry.Status = BatchPartial
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if entry.Sequence, err = NextSequence(ctx, tx, "batches"); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (id, sequence, endpoint, record_count, failed_count, status, error, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Sequence, entry.Endpoint, entry.RecordCount, entry.FailedCount, string(entry.Status), entry.Error, entry.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO batch_items (batch_id, idx, kind, target_id, ok, reason)
			VALUES (?, ?, ?, ?, ?, ?)
		`, entry.ID, item.Index, string(item.Kind), item.TargetID, item.OK, item.Reason)
		if err != nil {
			return fmt.Errorf("failed to insert batch item %d: %w", item.Index, err)
		}
	}

	return tx.Commit()
}

// List returns the most recent batches first, without items. limit <= 0 returns all.
func (r *BatchRepository) List(ctx context.Context, limit int) ([]BatchEntry, error) {
	query := `
		SELECT id, sequence, endpoint, record_count, failed_count, status, error, submitted_at
		FROM batches
		ORDER BY sequence DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var entries []BatchEntry
	for rows.Next() {
		entry, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Get returns one batch with its items.
func (r *BatchRepository) Get(ctx context.Context, id string) (*BatchEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, sequence, endpoint, record_count, failed_count, status, error, submitted_at
		FROM batches
		WHERE id = ?
	`, id)

	entry, err := scanBatch(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("batch %w: %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT idx, kind, target_id, ok, reason
		FROM batch_items
		WHERE batch_id = ?
		ORDER BY idx ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item BatchItem
			kind string
		)
		if err := rows.Scan(&item.Index, &kind, &item.TargetID, &item.OK, &item.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan batch item: %w", err)
		}
		item.Kind = mutations.Kind(kind)
		entry.Items = append(entry.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return &entry, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(s scanner) (BatchEntry, error) {
	var (
		entry  BatchEntry
		status string
	)

	err := s.Scan(&entry.ID, &entry.Sequence, &entry.Endpoint, &entry.RecordCount, &entry.FailedCount, &status, &entry.Error, &entry.SubmittedAt)
	if err == sql.ErrNoRows {
		return entry, err
	}
	if err != nil {
		return entry, fmt.Errorf("failed to scan batch: %w", err)
	}

	entry.Status = BatchStatus(status)
	return entry, nil
}
