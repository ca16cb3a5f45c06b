package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ServiceName = "runclub"
)

var (
	GiftTransfers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "gift", "transfers_total"),
		Help: "Gift transfers by outcome",
	}, []string{"outcome"})
	TargetAdjustments = promauto.NewCounter(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "gift", "admin_adjustments_total"),
		Help: "Individual target adjustments applied by admins",
	})
	MatcherMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "matcher", "matches_total"),
		Help: "Competition participants matched to an activity, by method",
	}, []string{"method"})
	SyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "sync", "duration_seconds"),
		Help:    "Duration of a single user's activity sync in seconds",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"mode"})
	SyncedActivities = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "sync", "activities_total"),
		Help: "Activities fetched from upstream, by whether they were stored",
	}, []string{"stored"})
	SyncWorkerBatchDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "worker", "sync_batch_duration_seconds"),
		Help: "Duration of the last scheduled sync batch enqueue in seconds",
	}, []string{"mode"})
)
