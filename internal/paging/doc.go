// Package paging walks remote collections that only expose opaque-cursor pagination.
//
// An [Iterator] wraps a [Fetcher] and yields one page per [Iterator.Next] call. It never
// prefetches, treats an empty page with a cursor as "keep going", and leaves its cursor
// untouched when a fetch fails so the same request can be retried.
//
// Each logical scan owns its iterator. Two callers that need independent positions
// must each build their own.
package paging
