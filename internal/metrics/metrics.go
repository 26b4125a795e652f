package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Observer is the process wide metrics recorder.
var Observer = &Metrics{
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(Observer.prometheus.Collectors()...)
}

// Metrics records the backtest events.
type Metrics struct {
	prometheus Prometheus
}

// Decision counts a decision of the given version and action.
func (m *Metrics) Decision(version, action string) {
	m.prometheus.Decisions.WithLabelValues(version, action).Inc()
}

// Excluded counts a unit of work excluded for the given reason.
func (m *Metrics) Excluded(reason string) {
	m.prometheus.Excluded.WithLabelValues(reason).Inc()
}

// Triggered counts a position stopped out at the given tier.
func (m *Metrics) Triggered(pct float64) {
	m.prometheus.Triggered.WithLabelValues(strconv.FormatFloat(pct, 'f', -1, 64)).Inc()
}

// Serve exposes the metrics on the given address in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
	return server
}
