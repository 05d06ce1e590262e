package migstate

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver implements Observer using Prometheus metrics.
// This is useful if you're already using Prometheus for monitoring.
//
// Example:
//
//	observer := migstate.NewPrometheusObserver("my_service", prometheus.DefaultRegisterer)
//	store := migstate.NewStore(backend, migstate.WithObserver(observer))
type PrometheusObserver struct {
	opDuration     *prometheus.HistogramVec
	transitions    *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	backendErrors  *prometheus.CounterVec
	initCreated    prometheus.Counter
}

// NewPrometheusObserver creates a Prometheus observer with the given namespace.
// All metrics will be prefixed with "{namespace}_migstate_".
//
// Example:
//
//	observer := NewPrometheusObserver("myapp", prometheus.DefaultRegisterer)
//	// Creates metrics like: myapp_migstate_op_duration_seconds
func NewPrometheusObserver(namespace string, registerer prometheus.Registerer) *PrometheusObserver {
	if namespace == "" {
		namespace = "migstate"
	}

	opDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "migstate",
			Name:      "op_duration_seconds",
			Help:      "Duration of store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op", "status"},
	)

	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "migstate",
			Name:      "stage_transitions_total",
			Help:      "Total number of stage transitions by outcome",
		},
		[]string{"desired", "final", "changed"},
	)

	backendLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "migstate",
			Name:      "backend_op_latency_seconds",
			Help:      "Latency of raw backend operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"op"},
	)

	backendErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "migstate",
			Name:      "backend_errors_total",
			Help:      "Total number of backend operation failures",
		},
		[]string{"op"},
	)

	initCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "migstate",
			Name:      "documents_created_total",
			Help:      "Total number of empty documents written by initialization",
		},
	)

	// Register all metrics
	registerer.MustRegister(
		opDuration,
		transitions,
		backendLatency,
		backendErrors,
		initCreated,
	)

	return &PrometheusObserver{
		opDuration:     opDuration,
		transitions:    transitions,
		backendLatency: backendLatency,
		backendErrors:  backendErrors,
		initCreated:    initCreated,
	}
}

func (o *PrometheusObserver) OnEnsure(ctx context.Context, event *EnsureEvent) {
	status := "success"
	if event.Error != nil {
		status = "error"
	}
	o.opDuration.WithLabelValues("ensure", status).Observe(event.Duration.Seconds())

	if event.Created {
		o.initCreated.Inc()
	}
}

func (o *PrometheusObserver) OnGet(ctx context.Context, event *GetEvent) {
	status := "success"
	if event.Error != nil {
		status = "error"
	}
	o.opDuration.WithLabelValues("get", status).Observe(event.Duration.Seconds())
}

func (o *PrometheusObserver) OnSet(ctx context.Context, event *SetEvent) {
	status := "success"
	if event.Error != nil {
		status = "error"
	}
	o.opDuration.WithLabelValues("set", status).Observe(event.Duration.Seconds())

	if event.Error == nil {
		changed := "false"
		if event.Changed {
			changed = "true"
		}
		o.transitions.WithLabelValues(
			string(event.Desired),
			string(event.Final),
			changed,
		).Inc()
	}
}

func (o *PrometheusObserver) OnBackendOp(ctx context.Context, event *BackendOpEvent) {
	o.backendLatency.WithLabelValues(event.Op).Observe(event.Latency.Seconds())

	if event.Error != nil && !event.NotFound {
		o.backendErrors.WithLabelValues(event.Op).Inc()
	}
}
