package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "Total number of products created",
	})

	ProductsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_deleted_total",
		Help: "Total number of products deleted",
	})

	PriceUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "price_updates_total",
		Help: "Total number of committed price changes",
	}, []string{"source"})

	ValidationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "validation_failures_total",
		Help: "Total number of rejected mutations",
	}, []string{"kind"})

	BulkUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_updates_total",
		Help: "Total number of bulk update runs",
	}, []string{"strategy"})

	BulkRecordsUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bulk_records_updated_total",
		Help: "Total number of records committed by bulk updates",
	})

	OfferConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_conflicts_total",
		Help: "Total number of offer conflicts detected",
	}, []string{"type"})

	BulkUpdateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bulk_update_latency_seconds",
		Help:    "Latency of bulk update runs",
		Buckets: prometheus.DefBuckets,
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
