package ontoshop

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters the store reports
type Metrics struct {
	ProjectionFailures *prometheus.CounterVec
	LoadFailures       *prometheus.CounterVec
	Persisted          prometheus.Counter
	PersistFailures    prometheus.Counter
}

// NewMetrics creates the store counters and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProjectionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontoshop",
			Name:      "projection_failures_total",
			Help:      "Entities skipped because they could not be read from the graph.",
		}, []string{"kind"}),
		LoadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontoshop",
			Name:      "graph_load_failures_total",
			Help:      "Graph loads that fell back to an empty graph.",
		}, []string{"reason"}),
		Persisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ontoshop",
			Name:      "graph_persist_total",
			Help:      "Successful writes of the graph file.",
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ontoshop",
			Name:      "graph_persist_failures_total",
			Help:      "Failed writes of the graph file.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.ProjectionFailures, m.LoadFailures, m.Persisted, m.PersistFailures)
	}
	return m
}
