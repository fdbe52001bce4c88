package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConfigFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "config_fetches_total",
		Help: "Total number of configuration fetch attempts",
	}, []string{"outcome"})

	ConfigFetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "config_fetch_latency_seconds",
		Help:    "Latency of configuration fetches",
		Buckets: prometheus.DefBuckets,
	})

	RefetchTriggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "refetch_triggers_total",
		Help: "Total number of realtime events that qualified as refetch triggers",
	}, []string{"kind"})

	RefetchesCoalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refetches_coalesced_total",
		Help: "Total number of trigger events absorbed by an in-flight refetch",
	})

	RealtimeConnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_connects_total",
		Help: "Total number of successful realtime connections",
	})

	RealtimeReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_reconnects_total",
		Help: "Total number of realtime reconnection attempts",
	})

	RealtimeEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_total",
		Help: "Total number of realtime events received",
	}, []string{"kind"})

	CartOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Total number of cart operations",
	}, []string{"op"})

	CartRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_rejections_total",
		Help: "Total number of rejected cart operations",
	}, []string{"reason"})

	WishlistTogglesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wishlist_toggles_total",
		Help: "Total number of wishlist toggles",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
