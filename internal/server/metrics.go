package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderscan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "holderscan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Detection metrics
	detectRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderscan_detect_requests_total",
			Help: "Total number of detection requests",
		},
		[]string{"status"},
	)

	detectDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "holderscan_detect_duration_seconds",
			Help:    "Detection processing duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"profile"},
	)

	candidatesDetected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "holderscan_candidates_detected",
			Help:    "Number of candidates reported per image",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7},
		},
		[]string{"class"},
	)

	// Label assignment metrics
	labelRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderscan_label_requests_total",
			Help: "Total number of label assignment requests",
		},
		[]string{"source", "tier"},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "holderscan_upload_size_bytes",
			Help:    "Size of uploaded images in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)
)
