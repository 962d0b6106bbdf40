package library

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/mutations"
	"github.com/desertthunder/libmirror/internal/paging"
	"github.com/desertthunder/libmirror/internal/services"
	"github.com/desertthunder/libmirror/internal/shared"
)

// Stations lists and deletes radio stations. Nothing is cached.
type Stations struct {
	source services.Source
	client *mutations.Client
	logger *log.Logger
}

// NewStations creates a [Stations].
func NewStations(source services.Source, client *mutations.Client, logger *log.Logger) *Stations {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Stations{source: source, client: client, logger: shared.WithLogger(logger, "component", "stations")}
}

// List returns every station that is not deleted.
func (s *Stations) List(ctx context.Context) ([]models.Station, error) {
	fetcher := paging.FetcherFunc[models.Station](s.source.StationPage)
	all, err := paging.NewIterator[models.Station](fetcher, nil, s.logger).CollectAll(ctx)
	if err != nil {
		return nil, err
	}

	stations := make([]models.Station, 0, len(all))
	for _, st := range all {
		if !st.Deleted {
			stations = append(stations, st)
		}
	}
	return stations, nil
}

// Delete removes stations by id.
func (s *Stations) Delete(ctx context.Context, ids ...string) (mutations.Outcome, error) {
	return submitDeletes(ctx, s.client, services.StationBatch, ids)
}
