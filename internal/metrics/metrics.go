package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors. It satisfies the
// booking and webhook recorder interfaces.
type Metrics struct {
	transitionsApplied  *prometheus.CounterVec
	transitionsRejected *prometheus.CounterVec
	webhooksProcessed   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		transitionsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "julaaz",
			Subsystem: "booking",
			Name:      "transitions_applied_total",
			Help:      "Booking lifecycle transitions applied, by action.",
		}, []string{"action"}),
		transitionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "julaaz",
			Subsystem: "booking",
			Name:      "transitions_rejected_total",
			Help:      "Booking lifecycle transitions rejected, by action.",
		}, []string{"action"}),
		webhooksProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "julaaz",
			Subsystem: "webhook",
			Name:      "events_processed_total",
			Help:      "Paystack webhook events processed, by event type.",
		}, []string{"event"}),
	}
}

func (m *Metrics) TransitionApplied(action string) {
	m.transitionsApplied.WithLabelValues(action).Inc()
}

func (m *Metrics) TransitionRejected(action string) {
	m.transitionsRejected.WithLabelValues(action).Inc()
}

func (m *Metrics) WebhookProcessed(event string) {
	m.webhooksProcessed.WithLabelValues(event).Inc()
}
