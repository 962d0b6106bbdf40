// Package models defines the domain entities mirrored from the remote music service.
//
// The package contains plain data types only:
//   - [Track] : a library track or a catalog reference
//   - [Playlist] : playlist metadata
//   - [PlaylistEntry] : one link in a playlist's ordered chain
//   - [Station] : a radio station
//
// Playlist order is defined by predecessor/successor links rather than positions.
// [OrderEntries] rebuilds the visible order from those links.
package models
