package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics counts order placement attempts by payment method and outcome.
type CheckoutMetrics struct {
	placements  *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_placements_total",
		Help: "Order placement attempts by payment method and outcome.",
	}, []string{"method", "outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order status transitions by target status and outcome.",
	}, []string{"target", "outcome"})
	reg.MustRegister(placements, transitions)
	return &CheckoutMetrics{
		placements:  placements,
		transitions: transitions,
	}
}

// IncPlacement records one placement attempt.
func (c *CheckoutMetrics) IncPlacement(method, outcome string) {
	if c == nil || c.placements == nil {
		return
	}
	c.placements.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// IncTransition records one status transition attempt.
func (c *CheckoutMetrics) IncTransition(target, outcome string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(target), normalizeLabel(outcome)).Inc()
}
