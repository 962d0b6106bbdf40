// Package tasks runs long operations over the mirrored library with real-time progress reporting.
//
// # Core Operations
//
// [Engine] provides three operations:
//
//  1. [Engine.Export] : Resolve one playlist into a [models.PlaylistExport]
//     - Reads entries from the shared entries cache and orders them along their chain
//     - Resolves each entry's track through the track lookup (catalog ids are fetched directly)
//
//  2. [Engine.BulkExport] : Export several playlists concurrently
//     - Worker pool fed at a fixed rate by a token bucket limiter
//     - Writes one file per playlist in the chosen format plus an export_manifest.json
//     - A failed playlist is recorded in the manifest and does not stop the others
//
//  3. [Engine.Snapshot] : Materialize the track library and save it with [SnapshotStore]
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
