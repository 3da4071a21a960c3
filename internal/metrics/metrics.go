package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pse_http_requests_total",
			Help: "Total HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pse_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// MemoActions counts memo workflow actions by outcome.
	MemoActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pse_memo_actions_total",
			Help: "Memo workflow actions (draft, in_process, publish, final_save) by result.",
		},
		[]string{"action", "result"},
	)

	// ReconcileRuns counts reconciliation runs by outcome.
	ReconcileRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pse_reconcile_runs_total",
			Help: "Reconciliation runs by outcome (match, mismatch, empty).",
		},
		[]string{"outcome"},
	)

	ImportedSheets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pse_imported_sheets_total",
			Help: "Spreadsheet sheets parsed by the import endpoint.",
		},
	)
)

// Result labels an outcome for counters.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
