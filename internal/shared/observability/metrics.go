package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	DecodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "unusedclass_decode_seconds",
		Help:    "Time spent decoding and analyzing a class file.",
		Buckets: prometheus.DefBuckets,
	})

	ClassesDecodedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unusedclass_classes_decoded_total",
		Help: "Total number of class files decoded and analyzed successfully.",
	})

	ClassesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unusedclass_classes_skipped_total",
		Help: "Total number of class files skipped, by error code.",
	}, []string{"code"})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unusedclass_graph_nodes_total",
		Help: "Total number of classes in the reference graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unusedclass_graph_edges_total",
		Help: "Total number of edges in the reference graph.",
	})

	UnusedClasses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unusedclass_unused_classes",
		Help: "Number of unused classes found by the last check.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "unusedclass_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	ChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unusedclass_checks_total",
		Help: "Total number of checks run, by outcome.",
	}, []string{"outcome"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unusedclass_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	HistorySnapshotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unusedclass_history_snapshots_total",
		Help: "Total number of report snapshots saved to the history store.",
	})
)
