package models

import (
	"strconv"
	"strings"
)

// PlaylistType distinguishes user playlists from shared and generated ones.
type PlaylistType string

const (
	PlaylistUserGenerated PlaylistType = "USER_GENERATED"
	PlaylistShared        PlaylistType = "SHARED"
	PlaylistMagic         PlaylistType = "MAGIC"
)

// ShareState is the visibility of a playlist.
type ShareState string

const (
	SharePrivate ShareState = "PRIVATE"
	SharePublic  ShareState = "PUBLIC"
)

// ParseShareState maps user input to a [ShareState], defaulting to private.
func ParseShareState(s string) ShareState {
	if strings.EqualFold(s, string(SharePublic)) {
		return SharePublic
	}
	return SharePrivate
}

// Track represents a music track.
//
// Library tracks carry an ID. Catalog tracks carry a StoreID and no ID.
type Track struct {
	ID             string `json:"id,omitempty"`
	StoreID        string `json:"storeId,omitempty"`
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	Album          string `json:"album"`
	DurationMillis string `json:"durationMillis,omitempty"`
	TrackNumber    int    `json:"trackNumber,omitempty"`
	Year           int    `json:"year,omitempty"`
	Deleted        bool   `json:"deleted,omitempty"`
}

// Key is the identifier used in mutations: the library id when present, otherwise the store id.
func (t Track) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return t.StoreID
}

// InLibrary reports whether the track is part of the user's own library rather than a bare catalog reference.
func (t Track) InLibrary() bool {
	return t.ID != "" || t.StoreID == ""
}

// LibraryOnly reports whether the track exists only in the user's library, such as an upload
// with no catalog counterpart. Library tracks backed by a catalog track carry a StoreID.
func (t Track) LibraryOnly() bool {
	return t.ID != "" && t.StoreID == ""
}

// Duration returns the track length in whole seconds.
func (t Track) Duration() int {
	ms, err := strconv.Atoi(t.DurationMillis)
	if err != nil {
		return 0
	}
	return ms / 1000
}

// Playlist represents playlist metadata.
type Playlist struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Type        PlaylistType `json:"type,omitempty"`
	ShareState  ShareState   `json:"shareState,omitempty"`
	ShareToken  string       `json:"shareToken,omitempty"`
	OwnerName   string       `json:"ownerName,omitempty"`
	Deleted     bool         `json:"deleted,omitempty"`
}

// PlaylistEntry is one position in a playlist.
//
// Entries of one playlist form a chain through PrecedingID and FollowingID.
// Deleted entries may still hold links until the server compacts them.
type PlaylistEntry struct {
	ID               string `json:"id"`
	ClientID         string `json:"clientId,omitempty"`
	PlaylistID       string `json:"playlistId"`
	TrackID          string `json:"trackId"`
	PrecedingID      string `json:"precedingEntryId,omitempty"`
	FollowingID      string `json:"followingEntryId,omitempty"`
	AbsolutePosition string `json:"absolutePosition,omitempty"`
	Deleted          bool   `json:"deleted,omitempty"`
	Track            *Track `json:"track,omitempty"`
}

// Station represents a radio station.
type Station struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ClientID    string `json:"clientId,omitempty"`
	Deleted     bool   `json:"deleted,omitempty"`
}

// PlaylistExport is a playlist with its tracks resolved in playlist order.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}
