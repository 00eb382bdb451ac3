package metrics

import "github.com/prometheus/client_golang/prometheus"

// RealtimeMetrics tracks websocket fan-out activity.
type RealtimeMetrics struct {
	connections prometheus.Gauge
	dispatched  *prometheus.CounterVec
	dropped     *prometheus.CounterVec
}

// NewRealtimeMetrics registers websocket metrics on the provided registerer.
func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	if reg == nil {
		return &RealtimeMetrics{}
	}
	connections := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "beatspace",
		Name:      "ws_connections",
		Help:      "Currently connected websocket clients.",
	})
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "beatspace",
		Name:      "ws_events_dispatched",
		Help:      "Events dispatched to websocket clients.",
	}, []string{"event"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "beatspace",
		Name:      "ws_events_dropped",
		Help:      "Events dropped due to a full client send buffer.",
	}, []string{"event"})
	reg.MustRegister(connections, dispatched, dropped)
	return &RealtimeMetrics{
		connections: connections,
		dispatched:  dispatched,
		dropped:     dropped,
	}
}

// ConnOpened increments the connection gauge.
func (r *RealtimeMetrics) ConnOpened() {
	if r == nil || r.connections == nil {
		return
	}
	r.connections.Inc()
}

// ConnClosed decrements the connection gauge.
func (r *RealtimeMetrics) ConnClosed() {
	if r == nil || r.connections == nil {
		return
	}
	r.connections.Dec()
}

// IncDispatched counts an event delivered to a client.
func (r *RealtimeMetrics) IncDispatched(event string) {
	if r == nil || r.dispatched == nil {
		return
	}
	r.dispatched.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncDropped counts an event dropped on a saturated client.
func (r *RealtimeMetrics) IncDropped(event string) {
	if r == nil || r.dropped == nil {
		return
	}
	r.dropped.WithLabelValues(normalizeLabel(event)).Inc()
}
