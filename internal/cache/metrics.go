package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Refreshes counts full refreshes by cache name
	Refreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libmirror_cache_refreshes_total",
			Help: "Total number of full cache refreshes",
		},
		[]string{"cache"},
	)

	// RefreshFailures counts refreshes that left the previous snapshot in place
	RefreshFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libmirror_cache_refresh_failures_total",
			Help: "Total number of failed cache refreshes",
		},
		[]string{"cache"},
	)

	// Hits counts reads served from a snapshot
	Hits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libmirror_cache_hits_total",
			Help: "Total number of reads served from the snapshot",
		},
		[]string{"cache"},
	)

	// Misses counts reads that needed the remote service
	Misses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libmirror_cache_misses_total",
			Help: "Total number of reads that went to the remote service",
		},
		[]string{"cache"},
	)

	// Items tracks the snapshot size
	Items = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "libmirror_cache_items",
			Help: "Current number of items held in the snapshot",
		},
		[]string{"cache"},
	)
)
