// Package metrics exposes the pipeline's Prometheus counters. Serve mode
// publishes them on /metrics; batch runs still increment them so the run
// statistics and the registry agree.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts every HTTP GET the pipeline dispatches.
	FetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leads_fetches_total",
		Help: "The total number of HTTP requests sent.",
	})
	// FetchErrorsTotal counts fetches that yielded no usable page.
	FetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leads_fetch_errors_total",
		Help: "The total number of failed or empty HTTP fetches.",
	})
	// CacheHitsTotal counts probe fetches served from the on-disk cache.
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leads_cache_hits_total",
		Help: "The total number of probe responses served from cache.",
	})
	// CacheMissesTotal counts probe fetches that went to the network.
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leads_cache_misses_total",
		Help: "The total number of probe responses fetched from the network.",
	})
	// LeadsKeptTotal counts leads routed to the kept table.
	LeadsKeptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leads_kept_total",
		Help: "The total number of newly kept leads.",
	})
	// LeadsFilteredTotal counts leads routed to the filtered table.
	LeadsFilteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leads_filtered_total",
		Help: "The total number of filtered leads.",
	})
	// DedupSkipsTotal counts candidates suppressed by the identity index.
	DedupSkipsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leads_dedup_skips_total",
		Help: "The total number of candidates skipped as already-seen identities.",
	})
)
