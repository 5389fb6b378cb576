package observability

import "time"

// MetricsRegistry decouples the solver driver from the global Prometheus
// collectors, the way the teacher's ad server decouples request handling
// from direct metric access.
type MetricsRegistry interface {
	ObserveStage(stage string, d time.Duration)
	SetVariablesBuilt(n int)
	AddCandidatesDropped(n int)
	ObserveSolve(backend string, d time.Duration)
	IncrementSolveStatus(backend, status string)
	SetObjective(value float64)
	IncrementHintSource(source string)
}

// PrometheusRegistry implements MetricsRegistry using the package-level collectors.
type PrometheusRegistry struct{}

// NewPrometheusRegistry constructs a PrometheusRegistry.
func NewPrometheusRegistry() *PrometheusRegistry { return &PrometheusRegistry{} }

func (r *PrometheusRegistry) ObserveStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (r *PrometheusRegistry) SetVariablesBuilt(n int) { VariablesBuilt.Set(float64(n)) }

func (r *PrometheusRegistry) AddCandidatesDropped(n int) {
	CandidatesDropped.Add(float64(n))
}

func (r *PrometheusRegistry) ObserveSolve(backend string, d time.Duration) {
	SolveDuration.WithLabelValues(backend).Observe(d.Seconds())
}

func (r *PrometheusRegistry) IncrementSolveStatus(backend, status string) {
	SolveStatus.WithLabelValues(backend, status).Inc()
}

func (r *PrometheusRegistry) SetObjective(value float64) { ObjectiveValue.Set(value) }

func (r *PrometheusRegistry) IncrementHintSource(source string) {
	HintCacheHits.WithLabelValues(source).Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods, used in tests and
// by the MCP server.
type NoOpRegistry struct{}

// NewNoOpRegistry constructs a NoOpRegistry.
func NewNoOpRegistry() *NoOpRegistry { return &NoOpRegistry{} }

func (r *NoOpRegistry) ObserveStage(string, time.Duration)  {}
func (r *NoOpRegistry) SetVariablesBuilt(int)               {}
func (r *NoOpRegistry) AddCandidatesDropped(int)            {}
func (r *NoOpRegistry) ObserveSolve(string, time.Duration)  {}
func (r *NoOpRegistry) IncrementSolveStatus(string, string) {}
func (r *NoOpRegistry) SetObjective(float64)                {}
func (r *NoOpRegistry) IncrementHintSource(string)          {}
