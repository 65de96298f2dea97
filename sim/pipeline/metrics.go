package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the pipeline's prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Enqueued   prometheus.Counter
	Processed  prometheus.Counter
	Trips      prometheus.Counter
	QueueDepth prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tasha_households_enqueued_total",
			Help: "Households published by the loader into the pipeline queue.",
		}),
		Processed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tasha_households_processed_total",
			Help: "Households that completed every configured stage.",
		}),
		Trips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tasha_trips_processed_total",
			Help: "Trips belonging to completed households.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tasha_queue_depth",
			Help: "Households buffered between the loader and the stages.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Enqueued, m.Processed, m.Trips, m.QueueDepth)
	}
	return m
}

func (m *Metrics) observeEnqueue(depth int) {
	if m == nil {
		return
	}
	m.Enqueued.Inc()
	m.QueueDepth.Set(float64(depth))
}

func (m *Metrics) observeProcessed(trips, depth int) {
	if m == nil {
		return
	}
	m.Processed.Inc()
	m.Trips.Add(float64(trips))
	m.QueueDepth.Set(float64(depth))
}

func (m *Metrics) observeDepth(depth int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(depth))
}
