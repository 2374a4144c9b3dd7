package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Operations counts façade calls.
	// Labels: op (load, refresh, load_more, react, comment, block, unblock, report), status (ok or an error code)
	Operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "activityfeed",
			Name:      "operations_total",
			Help:      "Total feed session operations by outcome",
		},
		[]string{"op", "status"},
	)

	// RankDuration observes how long one ranking pass takes, reads included.
	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "activityfeed",
			Name:      "rank_duration_seconds",
			Help:      "Latency of a ranking pass including signal reads",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// SuppressedItems counts items removed by the moderation overlay.
	// Labels: reason (blocked, reported)
	SuppressedItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "activityfeed",
			Name:      "suppressed_items_total",
			Help:      "Items hidden from a page by the viewer's blocks and reports",
		},
		[]string{"reason"},
	)
)
