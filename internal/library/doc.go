// Package library exposes the user's remote music collections as Go values.
//
// [Library] resolves tracks through an incremental lookup cache, [Playlists] keeps
// the private playlist entries in a collection cache and applies ordered inserts and
// deletes through mutation batches, and [Stations] lists and deletes radio stations.
//
// After a batch whose transport succeeded the owning cache is reconciled here: deletes
// are mirrored locally for the accepted items, inserts invalidate the entries cache
// because the server assigns fields the client cannot predict.
package library
