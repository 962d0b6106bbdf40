// Package cache mirrors remote collections in memory.
//
// A [Collection] holds a snapshot that is built lazily on first read by draining a
// refresh strategy, usually a fresh [paging.Iterator]. Its lifecycle is an explicit
// state machine:
//
//	Uninitialized --refresh--> Ready
//	Ready --disable caching | invalidate--> Uninitialized
//	Ready --local add/remove--> Ready
//
// With caching disabled every read performs a full refresh and nothing is kept.
//
// A [Lookup] adds key lookup on top of a Collection. Instead of draining the whole
// collection it scans the snapshot, then advances its own iterator page by page,
// appending each page to the snapshot, until the key turns up.
//
// Snapshots live for the lifetime of the process and are never persisted.
package cache
