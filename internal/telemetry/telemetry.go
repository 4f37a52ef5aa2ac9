// Package telemetry holds the prometheus collectors exposed on /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "campaign_metrics"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	FilesImported = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_imported_total",
		Help:      "Files accepted into the session.",
	})

	RowsImported = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_imported_total",
		Help:      "Raw rows read from accepted files.",
	})

	UploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_rejected_total",
		Help:      "Uploads refused, by reason.",
	}, []string{"reason"})

	ValidationScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_scans_total",
		Help:      "Validation scans by outcome (completed, stale, cancelled).",
	}, []string{"outcome"})

	ReportCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_cache_total",
		Help:      "Report cache lookups by result (hit, miss).",
	}, []string{"result"})

	RowsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_rows_dropped_total",
		Help:      "Rows dropped during report computation for lacking an entity.",
	})
)
