package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "tradescore"

// Prometheus holds the prometheus collectors of the backtest.
type Prometheus struct {
	Decisions *prometheus.CounterVec
	Excluded  *prometheus.CounterVec
	Triggered *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors.
func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Decisions produced per rule set version and action.",
			}, []string{"version", "action"}),
		Excluded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "excluded_total",
				Help:      "Units of work excluded from the run per reason.",
			}, []string{"reason"}),
		Triggered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stoploss_triggered_total",
				Help:      "Simulated positions closed by the stop-loss per tier.",
			}, []string{"tier"}),
	}
}

// Collectors returns all the collectors for registration.
func (p Prometheus) Collectors() []prometheus.Collector {
	return []prometheus.Collector{p.Decisions, p.Excluded, p.Triggered}
}
