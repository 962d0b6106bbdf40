package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/shared"
)

// Snapshot is an exported copy of a materialized collection.
type Snapshot struct {
	ID         string
	Sequence   int
	Collection string
	ItemCount  int
	CreatedAt  time.Time
}

// SnapshotRepository stores snapshots. Stored tracks are never loaded back into a cache.
type SnapshotRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

// Save writes tracks, in order, as a new snapshot of collection.
func (r *SnapshotRepository) Save(ctx context.Context, collection string, tracks []models.Track) (*Snapshot, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: snapshot collection is empty", shared.ErrInvalidInput)
	}

	snap := &Snapshot{
		ID:         shared.GenerateID(),
		Collection: collection,
		ItemCount:  len(tracks),
		CreatedAt:  r.now().UTC(),
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if snap.Sequence, err = NextSequence(ctx, tx, "snapshots"); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, sequence, collection, item_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, snap.ID, snap.Sequence, snap.Collection, snap.ItemCount, snap.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_tracks (snapshot_id, position, track_id, store_id, title, artist, album, duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tracks {
		if _, err := stmt.ExecContext(ctx, snap.ID, i, t.Key(), t.StoreID, t.Title, t.Artist, t.Album, t.Duration()); err != nil {
			return nil, fmt.Errorf("failed to insert snapshot track %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snap, nil
}

// List returns all snapshots, newest first.
func (r *SnapshotRepository) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sequence, collection, item_count, created_at
		FROM snapshots
		ORDER BY sequence DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Sequence, &s.Collection, &s.ItemCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return snapshots, nil
}

// Tracks returns the tracks stored in snapshot id in their saved order.
//
// Durations are stored in seconds, so DurationMillis comes back rounded down to the second.
func (r *SnapshotRepository) Tracks(ctx context.Context, id string) ([]models.Track, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM snapshots WHERE id = ?)", id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check snapshot: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("snapshot %w: %s", shared.ErrNotFound, id)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT track_id, store_id, title, artist, album, duration
		FROM snapshot_tracks
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var (
			t       models.Track
			key     string
			seconds int
		)
		if err := rows.Scan(&key, &t.StoreID, &t.Title, &t.Artist, &t.Album, &seconds); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot track: %w", err)
		}
		if key != t.StoreID {
			t.ID = key
		}
		if seconds > 0 {
			t.DurationMillis = strconv.Itoa(seconds * 1000)
		}
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tracks, nil
}

// Delete removes a snapshot and its tracks.
func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("snapshot %w: %s", shared.ErrNotFound, id)
	}
	return nil
}
