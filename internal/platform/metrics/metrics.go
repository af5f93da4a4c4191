package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the registry.
type Metrics struct {
	Operations      *prometheus.CounterVec
	Rejections      *prometheus.CounterVec
	Authentications *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
	StoreFailures   *prometheus.CounterVec
}

// New creates and registers all metrics on the default registerer.
// Call once per process.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voto_registry_operations_total",
			Help: "Registry operations by operation name and outcome",
		}, []string{"operation", "outcome"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voto_registry_rejections_total",
			Help: "Registry operations rejected by an invariant, by error code",
		}, []string{"operation", "code"}),
		Authentications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voto_authentications_total",
			Help: "RFC authentication attempts by role and result",
		}, []string{"role", "result"}),
		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voto_store_duration_seconds",
			Help:    "Latency of record store loads and saves",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"backend", "operation"}),
		StoreFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voto_store_failures_total",
			Help: "Record store loads and saves that returned an error",
		}, []string{"backend", "operation"}),
	}
}

// IncrementOperation records a completed registry operation.
func (m *Metrics) IncrementOperation(operation, outcome string) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
}

// IncrementRejection records an operation aborted by an invariant.
func (m *Metrics) IncrementRejection(operation, code string) {
	m.Rejections.WithLabelValues(operation, code).Inc()
}

// IncrementAuthentication records an RFC authentication attempt.
func (m *Metrics) IncrementAuthentication(role string, ok bool) {
	result := "rejected"
	if ok {
		result = "accepted"
	}
	m.Authentications.WithLabelValues(role, result).Inc()
}

// ObserveStore records the duration of a store call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveStore(backend, operation string, start time.Time, err error) {
	m.StoreDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.StoreFailures.WithLabelValues(backend, operation).Inc()
	}
}
