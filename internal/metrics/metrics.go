package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// StockDecrementsTotal counts decremented lines by result (ok, not_found,
	// insufficient, invalid).
	StockDecrementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_decrements_total",
		Help: "Stock decrement lines by result.",
	}, []string{"result"})

	WorkflowStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_steps_total",
		Help: "Work order workflow steps by step and status.",
	}, []string{"step", "status"})

	MonthlyReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monthly_reports_total",
		Help: "Monthly report runs by result.",
	}, []string{"result"})

	EmailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emails_sent_total",
		Help: "Outgoing mails by kind and result.",
	}, []string{"kind", "result"})
)
