package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clubhouse_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	DataClientDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clubhouse_dataclient_duration_seconds",
			Help:    "Duration of record store operations",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	ComplianceEvaluations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubhouse_compliance_evaluations_total",
			Help: "Number of member compliance evaluations",
		},
	)

	ComplianceIssues = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubhouse_compliance_issues_total",
			Help: "Compliance issues found, by severity",
		},
		[]string{"severity"},
	)

	ClubHealthScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clubhouse_club_data_health_score",
			Help: "Most recent data health score per club",
		},
		[]string{"club_id"},
	)

	StandingsRecomputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubhouse_standings_recomputed_total",
			Help: "Number of full standings recomputations",
		},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubhouse_emails_total",
			Help: "Emails handed to the sender, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	SchedulerJobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubhouse_scheduler_job_runs_total",
			Help: "Scheduled job executions",
		},
		[]string{"job_name", "outcome"},
	)

	LiveCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubhouse_live_cache_lookups_total",
			Help: "Live timeline cache lookups by result",
		},
		[]string{"result"},
	)
)
