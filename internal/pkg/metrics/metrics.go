package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClockIns counts successful clock-ins per company.
	ClockIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_clock_ins_total",
		Help: "Number of successful clock-ins.",
	}, []string{"company_id", "method"})

	// ClockOuts counts successful clock-outs per company.
	ClockOuts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_clock_outs_total",
		Help: "Number of successful clock-outs.",
	}, []string{"company_id", "method"})

	// Rejections counts state-machine rejections by reason.
	Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_rejections_total",
		Help: "Number of rejected attendance transitions.",
	}, []string{"operation", "reason"})

	// SyncOutcomes counts per-record sync reconciliation results.
	SyncOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_sync_records_total",
		Help: "Number of sync batch records by outcome.",
	}, []string{"action"})

	// Violations counts detected violations by type.
	Violations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_violations_total",
		Help: "Number of detected attendance violations.",
	}, []string{"type"})
)
