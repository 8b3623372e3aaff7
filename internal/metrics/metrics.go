// Package metrics exposes the Prometheus collectors other packages
// update: cache hit/miss counts, scheduler tick duration, and push bus
// drops.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts pipeline lookups served by CacheLayer.Get from a
	// non-expired entry, labeled by the provider name the pipeline
	// passes in.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aqcore_cache_hits_total",
		Help: "Number of cache lookups served from a non-expired entry.",
	}, []string{"provider"})

	// CacheMisses counts lookups that required a compute.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aqcore_cache_misses_total",
		Help: "Number of cache lookups that triggered a compute.",
	}, []string{"provider"})

	// SchedulerTickDuration observes how long one Scheduler.Tick takes.
	SchedulerTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aqcore_scheduler_tick_duration_seconds",
		Help:    "Duration of a full Scheduler refresh tick across all hot locations.",
		Buckets: prometheus.DefBuckets,
	})

	// PushBusDrops counts events dropped from a client's bounded outbox.
	PushBusDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aqcore_pushbus_drops_total",
		Help: "Number of Push Bus events dropped because a client's outbox was full.",
	})

	// ForecastGenerations counts completed ForecastEngine runs.
	ForecastGenerations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aqcore_forecast_generations_total",
		Help: "Number of forecasts generated.",
	})

	// AlertDispatches counts AlertDispatcher sends by channel.
	AlertDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aqcore_alert_dispatches_total",
		Help: "Number of alert dispatches by channel.",
	}, []string{"channel"})
)
