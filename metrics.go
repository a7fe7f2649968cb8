package valord

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	insertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "valord_inserts_total",
		Help: "The total number of insertions, counting upserts and entry writes",
	}, []string{"map"})

	removalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "valord_removals_total",
		Help: "The total number of removals",
	}, []string{"map"})

	entryCommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "valord_entry_commits_total",
		Help: "The total number of entry handles released over an occupied slot",
	}, []string{"map"})

	reordersTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "valord_reorders_total",
		Help: "The total number of full order-index rebuilds",
	}, []string{"map"})

	headPublishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "valord_head_publishes_total",
		Help: "The total number of new-maximum publications to watchers",
	}, []string{"map"})

	sizeGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{ //nolint:gochecknoglobals
		Name: "valord_size",
		Help: "The current number of keys in the map",
	}, []string{"map"})
)
