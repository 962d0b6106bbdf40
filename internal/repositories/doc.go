// Package repositories implements SQLite persistence for the local journal and exported snapshots.
//
// Nothing here backs the in-memory caches; those are rebuilt from the remote service on every start.
//
// Key Implementations:
//   - [BatchRepository] : journal of submitted mutation batches and their per-item outcomes
//   - [SnapshotRepository] : explicit exports of a materialized track library
//
// Sequence numbers provide stable, human-readable ordering (e.g., batch #42, snapshot #3) independent of UUIDs and timestamps.
// [NextSequence] advances a per-table counter inside the caller's transaction, so a row and its sequence number commit together.
package repositories
