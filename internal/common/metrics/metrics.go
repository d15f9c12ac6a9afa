package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CompatibilityAnalyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compatibility_analyses_total",
			Help: "Total number of compatibility analyses produced",
		},
		[]string{"offer_kind", "tier"},
	)

	CompatibilityAnalysisFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compatibility_analysis_failures_total",
			Help: "Total number of failed compatibility analyses by error code",
		},
		[]string{"error_code"},
	)

	CompatibilityAnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "compatibility_analysis_duration_seconds",
			Help:    "Duration of compatibility analyses in seconds, scoring call included",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"offer_kind"},
	)

	ScoringRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_requests_total",
			Help: "Total number of scoring service requests by HTTP status",
		},
		[]string{"status"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
