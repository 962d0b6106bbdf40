// package services talks to the remote music service over HTTP
package services

import (
	"context"

	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/paging"
)

// Source is the read side of the remote service consumed by the library layer.
//
// [MusicService] implements it; tests substitute page stubs.
type Source interface {
	TrackPage(ctx context.Context, cursor string) (paging.Page[models.Track], error)
	PlaylistPage(ctx context.Context, cursor string) (paging.Page[models.Playlist], error)
	EntryPage(ctx context.Context, cursor string) (paging.Page[models.PlaylistEntry], error)
	StationPage(ctx context.Context, cursor string) (paging.Page[models.Station], error)
	FetchTrack(ctx context.Context, id string) (*models.Track, error)
}

var _ Source = (*MusicService)(nil)
