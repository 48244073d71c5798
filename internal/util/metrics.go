package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_recorded_total",
		Help: "Total number of checkouts accepted by the content store",
	})

	SalesRevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_revenue_total",
		Help: "Sum of totals of accepted checkouts",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Total number of rejected or failed checkouts",
	}, []string{"reason"})

	CheckoutDuplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_duplicates_total",
		Help: "Total number of replayed checkout submissions",
	})

	UpstreamFetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_fetch_errors_total",
		Help: "Total number of failed content or weather fetches",
	}, []string{"resource"})

	ReportBuildLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_build_seconds",
		Help:    "Latency of loading and building a dashboard report",
		Buckets: prometheus.DefBuckets,
	})

	CSVExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csv_exports_total",
		Help: "Total number of CSV exports delivered",
	})

	LedgerEventsProjectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_projected_total",
		Help: "Total number of sale events handled by the ledger worker",
	}, []string{"result"})

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
