package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kapnews_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kapnews_http_request_duration_seconds",
		Help:    "Latency of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	DegradedResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kapnews_degraded_responses_total",
		Help: "Responses served empty because a dependency failed",
	}, []string{"route"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kapnews_upstream_requests_total",
		Help: "Requests to the chart upstream by outcome",
	}, []string{"outcome"})

	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kapnews_cache_results_total",
		Help: "Response cache lookups by result",
	}, []string{"result"})

	AssetIndexFiles = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "kapnews_asset_index_files",
		Help: "Files known to the asset index",
	}, []string{"kind"})

	AssetIndexBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kapnews_asset_index_builds_total",
		Help: "Asset index rebuilds by outcome",
	}, []string{"outcome"})

	StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kapnews_stream_clients",
		Help: "Connected live price stream clients",
	})
)
