package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// StageDuration records how long each state-machine stage of the solver
	// driver (BuildVars, Coverage, Fixes, Quotas, ...) takes.
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridplanner_stage_duration_seconds",
			Help:    "Duration of each constraint-builder stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// VariablesBuilt is the number of x[d,s,p] decision variables created.
	VariablesBuilt = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gridplanner_decision_variables",
			Help: "Number of x[d,s,p] decision variables in the current instance",
		},
	)

	// CandidatesDropped counts candidates removed by the per-slot cap.
	CandidatesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gridplanner_candidates_dropped_total",
			Help: "Total candidate (day,slot,program) triples dropped by MAX_CANDIDATES_PER_SLOT",
		},
	)

	// SolveDuration records total wall-clock time spent inside a backend's Solve call.
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridplanner_solve_duration_seconds",
			Help:    "Wall-clock time spent in the solver backend",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"backend"},
	)

	// SolveStatus counts terminal solver statuses.
	SolveStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridplanner_solve_status_total",
			Help: "Count of solver runs by terminal status",
		},
		[]string{"backend", "status"},
	)

	// ObjectiveValue is the profit (euros) of the last accepted solution.
	ObjectiveValue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gridplanner_objective_value",
			Help: "Objective value (profit, euros) of the most recent solve",
		},
	)

	// HintCacheHits counts warm-start hint loads by source ("redis" or "file").
	HintCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridplanner_hint_source_total",
			Help: "Warm-start hints served, labelled by source",
		},
		[]string{"source"},
	)
)

// MustRegisterAll registers every collector above on reg. Call once at startup;
// tests use a fresh registry to avoid duplicate-registration panics.
func MustRegisterAll(reg *prometheus.Registry) {
	reg.MustRegister(
		StageDuration,
		VariablesBuilt,
		CandidatesDropped,
		SolveDuration,
		SolveStatus,
		ObjectiveValue,
		HintCacheHits,
	)
}
