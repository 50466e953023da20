// Package metrics defines Prometheus metrics for the eBay autolister.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "autolister"

// Sell API metrics.
var (
	APICallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_calls_total",
		Help:      "Total Sell API calls by operation.",
	}, []string{"operation"})

	APICallErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_call_errors_total",
		Help:      "Total failed Sell API calls by operation.",
	}, []string{"operation"})

	TokenRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total OAuth token exchanges performed.",
	})
)

// Pipeline metrics.
var (
	BatchesDispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_dispatched_total",
		Help:      "Total inventory batches dispatched.",
	})

	BatchRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_retries_total",
		Help:      "Total batch retry attempts after transient failures.",
	})

	RecordsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_created_total",
		Help:      "Total records that reached inventory-created status.",
	})

	OffersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_created_total",
		Help:      "Total offers created.",
	})

	RecordsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_published_total",
		Help:      "Total records published as live listings.",
	})

	RecordsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_failed_total",
		Help:      "Total records that ended in a failed state, by phase.",
	}, []string{"phase"})

	ValidationErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_errors_total",
		Help:      "Total input rows rejected by validation.",
	})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of full processing runs in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
