// Package observability exposes Prometheus metrics for cache lookups and
// search index calls.
package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-search-cache/cache"
	"github.com/goliatone/go-search-cache/internal/searchinfra"
	"github.com/goliatone/go-search-cache/storage"
)

var (
	_ cache.Observer       = (*Collector)(nil)
	_ searchinfra.Observer = (*Collector)(nil)
)

// Collector holds all Prometheus metrics for the service
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// Cache metrics
	CacheLookups *prometheus.CounterVec
	CacheHits    prometheus.Counter
	CacheMisses  prometheus.Counter

	// Search index metrics
	SearchRequests *prometheus.CounterVec
	SearchDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry, so several can
// coexist in tests.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by identity and result",
		},
		[]string{"identity", "result"},
	)

	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
	)

	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of lookups that called the source, stale entries included",
		},
	)

	searchRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search index calls by operation, collection and status",
		},
		[]string{"operation", "collection", "status"},
	)

	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_request_duration_seconds",
			Help:      "Search index call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	registry.MustRegister(
		cacheLookups,
		cacheHits,
		cacheMisses,
		searchRequests,
		searchDuration,
	)

	return &Collector{
		registry:       registry,
		CacheLookups:   cacheLookups,
		CacheHits:      cacheHits,
		CacheMisses:    cacheMisses,
		SearchRequests: searchRequests,
		SearchDuration: searchDuration,
	}
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveCache implements cache.Observer.
func (c *Collector) ObserveCache(identity string, outcome cache.Outcome) {
	c.CacheLookups.WithLabelValues(identity, string(outcome)).Inc()
	switch outcome {
	case cache.OutcomeHit:
		c.CacheHits.Inc()
	case cache.OutcomeMiss, cache.OutcomeStale, cache.OutcomeReadError:
		c.CacheMisses.Inc()
	}
}

// ObserveSearch implements searchinfra.Observer.
func (c *Collector) ObserveSearch(op, collection string, took time.Duration, err error) {
	status := "ok"
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	c.SearchRequests.WithLabelValues(op, collection, status).Inc()
	c.SearchDuration.WithLabelValues(op, collection).Observe(took.Seconds())
}
