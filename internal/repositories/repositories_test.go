package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/mutations"
	"github.com/desertthunder/libmirror/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	next := func(t *testing.T, table string, commit bool) (int, error) {
		t.Helper()
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("failed to begin transaction: %v", err)
		}
		defer tx.Rollback()

		seq, err := NextSequence(ctx, tx, table)
		if err == nil && commit {
			err = tx.Commit()
		}
		return seq, err
	}

	for want := 1; want <= 3; want++ {
		got, err := next(t, "batches", true)
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	t.Run("rolled back increments are not kept", func(t *testing.T) {
		if _, err := next(t, "batches", false); err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		got, err := next(t, "batches", true)
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != 4 {
			t.Errorf("expected sequence 4 after rollback, got %d", got)
		}
	})

	t.Run("sequences are per table", func(t *testing.T) {
		got, err := next(t, "snapshots", true)
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != 1 {
			t.Errorf("expected snapshots sequence 1, got %d", got)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		if _, err := next(t, "nope", false); err == nil {
			t.Error("expected error for missing sequence table")
		}
	})
}

func threeRecordBatch() mutations.Batch {
	return mutations.Batch{Records: []mutations.Record{
		mutations.Create("e1", mutations.Payload{"trackId": "t1"}),
		mutations.Create("e2", mutations.Payload{"trackId": "t2"}),
		mutations.Delete("e0"),
	}}
}

func TestBatchRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted batch", func(t *testing.T) {
		repo := NewBatchRepository(setupTestDB(t))
		outcome := mutations.Outcome{Results: []mutations.ItemResult{
			{Index: 0, ID: "e1", OK: true},
			{Index: 1, ID: "e2", OK: true},
			{Index: 2, ID: "e0", OK: true},
		}}

		if err := repo.RecordBatch(ctx, "plentriesbatch", threeRecordBatch(), outcome, nil); err != nil {
			t.Fatalf("RecordBatch failed: %v", err)
		}

		entries, err := repo.List(ctx, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 batch, got %d", len(entries))
		}

		got := entries[0]
		if got.Status != BatchAccepted {
			t.Errorf("expected status %q, got %q", BatchAccepted, got.Status)
		}
		if got.RecordCount != 3 || got.FailedCount != 0 {
			t.Errorf("expected 3 records and 0 failed, got %d and %d", got.RecordCount, got.FailedCount)
		}
		if got.Endpoint != "plentriesbatch" {
			t.Errorf("expected endpoint plentriesbatch, got %q", got.Endpoint)
		}
		if got.Sequence != 1 {
			t.Errorf("expected sequence 1, got %d", got.Sequence)
		}
		if got.SubmittedAt.IsZero() {
			t.Error("expected submitted_at to be set")
		}
	})

	t.Run("partial batch keeps per-item reasons", func(t *testing.T) {
		repo := NewBatchRepository(setupTestDB(t))
		outcome := mutations.Outcome{Results: []mutations.ItemResult{
			{Index: 0, ID: "e1", OK: true},
			{Index: 1, ID: "e2", OK: false, Reason: "INVALID_REQUEST"},
			{Index: 2, ID: "e0", OK: true},
		}}
		submitErr := errors.New("1 of 3 mutations rejected")

		if err := repo.RecordBatch(ctx, "plentriesbatch", threeRecordBatch(), outcome, submitErr); err != nil {
			t.Fatalf("RecordBatch failed: %v", err)
		}

		entries, err := repo.List(ctx, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}

		entry, err := repo.Get(ctx, entries[0].ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if entry.Status != BatchPartial {
			t.Errorf("expected status %q, got %q", BatchPartial, entry.Status)
		}
		if entry.FailedCount != 1 {
			t.Errorf("expected 1 failed item, got %d", entry.FailedCount)
		}
		if entry.Error != submitErr.Error() {
			t.Errorf("expected error %q, got %q", submitErr.Error(), entry.Error)
		}
		if len(entry.Items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(entry.Items))
		}

		item := entry.Items[1]
		if item.OK || item.Reason != "INVALID_REQUEST" || item.TargetID != "e2" {
			t.Errorf("unexpected item 1: %+v", item)
		}
		if entry.Items[2].Kind != mutations.KindDelete {
			t.Errorf("expected item 2 kind %q, got %q", mutations.KindDelete, entry.Items[2].Kind)
		}
	})

	t.Run("failed batch without results", func(t *testing.T) {
		repo := NewBatchRepository(setupTestDB(t))
		submitErr := &shared.TransportError{Op: "POST plentriesbatch", Err: errors.New("connection refused")}

		if err := repo.RecordBatch(ctx, "plentriesbatch", threeRecordBatch(), mutations.Outcome{}, submitErr); err != nil {
			t.Fatalf("RecordBatch failed: %v", err)
		}

		entries, err := repo.List(ctx, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if entries[0].Status != BatchFailed {
			t.Errorf("expected status %q, got %q", BatchFailed, entries[0].Status)
		}
		if entries[0].FailedCount != 3 {
			t.Errorf("expected every item counted as failed, got %d", entries[0].FailedCount)
		}
	})

	t.Run("list is newest first and limited", func(t *testing.T) {
		repo := NewBatchRepository(setupTestDB(t))
		for _, endpoint := range []string{"a", "b", "c"} {
			if err := repo.RecordBatch(ctx, endpoint, mutations.Batch{}, mutations.Outcome{}, nil); err != nil {
				t.Fatalf("RecordBatch failed: %v", err)
			}
		}

		entries, err := repo.List(ctx, 2)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 batches, got %d", len(entries))
		}
		if entries[0].Endpoint != "c" || entries[1].Endpoint != "b" {
			t.Errorf("expected c then b, got %s then %s", entries[0].Endpoint, entries[1].Endpoint)
		}
	})

	t.Run("get missing batch", func(t *testing.T) {
		repo := NewBatchRepository(setupTestDB(t))
		_, err := repo.Get(ctx, "missing")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSnapshotRepository(t *testing.T) {
	ctx := context.Background()
	tracks := []models.Track{
		{ID: "lib-1", StoreID: "T1", Title: "Alpha", Artist: "A", Album: "X", DurationMillis: "181000"},
		{StoreID: "T2", Title: "Beta", Artist: "B"},
		{ID: "lib-3", Title: "Gamma"},
	}

	t.Run("save and read back in order", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		snap, err := repo.Save(ctx, "tracks", tracks)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if snap.ItemCount != 3 || snap.Sequence != 1 {
			t.Errorf("unexpected snapshot: %+v", snap)
		}

		got, err := repo.Tracks(ctx, snap.ID)
		if err != nil {
			t.Fatalf("Tracks failed: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(got))
		}
		if got[0].ID != "lib-1" || got[0].StoreID != "T1" || got[0].DurationMillis != "181000" {
			t.Errorf("unexpected first track: %+v", got[0])
		}
		if got[1].ID != "" || got[1].StoreID != "T2" {
			t.Errorf("expected catalog track to keep only its store id, got %+v", got[1])
		}
		if got[2].Key() != "lib-3" {
			t.Errorf("expected lib-3, got %q", got[2].Key())
		}
	})

	t.Run("empty collection name", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))
		if _, err := repo.Save(ctx, "", tracks); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("list and delete", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))
		first, err := repo.Save(ctx, "tracks", tracks)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if _, err := repo.Save(ctx, "playlist:p1", tracks[:1]); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != 2 || list[0].Collection != "playlist:p1" {
			t.Fatalf("expected newest snapshot first, got %+v", list)
		}

		if err := repo.Delete(ctx, first.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.Tracks(ctx, first.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(ctx, first.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}
