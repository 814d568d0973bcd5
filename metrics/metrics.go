package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AllocationRetries counts candidate re-selections after a stale unit.
	AllocationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldstock_allocation_retries_total",
		Help: "Allocation candidate re-selections caused by concurrent unit transitions.",
	})

	// InsufficientStock counts workflow lines that failed for lack of units.
	InsufficientStock = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldstock_insufficient_stock_total",
		Help: "Workflow lines rejected because fewer units were available than requested.",
	})

	// Workflows counts committed workflow submissions by kind.
	Workflows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldstock_workflows_total",
		Help: "Committed workflow submissions.",
	}, []string{"kind"})

	// HTTPDuration observes request latency per route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fieldstock_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
