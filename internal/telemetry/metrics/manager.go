package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager bundles the server's prometheus instruments.
type Manager struct {
	// counters
	CounterRequests         *prometheus.CounterVec
	CounterProgressUpdates  prometheus.Counter
	CounterExercisesDone    prometheus.Counter
	CounterPlanLifecycleOps *prometheus.CounterVec

	// gauges
	GaugeRequests prometheus.Gauge
}

func NewTestManager() *Manager {
	return NewManager("planfit", "server", prometheus.NewRegistry())
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterProgressUpdates := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "progress_updates",
		Help:      "The total number of set-completion updates applied",
	})
	counterExercisesDone := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "exercises_completed",
		Help:      "The total number of exercise-week completions",
	})
	counterPlanLifecycleOps := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "plan_lifecycle_ops",
		Help:      "Plan lifecycle operations by kind",
	}, []string{"op"})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})

	return &Manager{
		CounterRequests:         counterRequests,
		CounterProgressUpdates:  counterProgressUpdates,
		CounterExercisesDone:    counterExercisesDone,
		CounterPlanLifecycleOps: counterPlanLifecycleOps,
		GaugeRequests:           gaugeRequests,
	}
}
