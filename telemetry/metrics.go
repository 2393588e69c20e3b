package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/*
Metrics holds the collectors of one run, registered on a private registry so that several runs
(and tests) can coexist in a process. A nil *Metrics is valid and records nothing.
*/
type Metrics struct {
	Registry       *prometheus.Registry
	Steps          *prometheus.CounterVec
	SimTime        *prometheus.GaugeVec
	TimeStep       *prometheus.GaugeVec
	StepSeconds    *prometheus.HistogramVec
	Exchanges      *prometheus.CounterVec
	ExchangeValues *prometheus.CounterVec
}

func NewMetrics(runID string) (m *Metrics) {
	var (
		constLabels = prometheus.Labels{"run_id": runID}
	)
	m = &Metrics{
		Registry: prometheus.NewRegistry(),
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gofvm_steps_total",
			Help:        "Time steps completed",
			ConstLabels: constLabels,
		}, []string{"rank"}),
		SimTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "gofvm_simulation_time",
			Help:        "Simulation time reached",
			ConstLabels: constLabels,
		}, []string{"rank"}),
		TimeStep: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "gofvm_time_step",
			Help:        "Last time step size",
			ConstLabels: constLabels,
		}, []string{"rank"}),
		StepSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "gofvm_step_seconds",
			Help:        "Wall time per step",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(1e-4, 4, 10),
		}, []string{"rank"}),
		Exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gofvm_ghost_exchanges_total",
			Help:        "Ghost synchronization rounds",
			ConstLabels: constLabels,
		}, []string{"rank", "kind"}),
		ExchangeValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gofvm_ghost_exchange_values_total",
			Help:        "Float values sent plus received during ghost synchronization",
			ConstLabels: constLabels,
		}, []string{"rank", "kind"}),
	}
	m.Registry.MustRegister(m.Steps, m.SimTime, m.TimeStep, m.StepSeconds, m.Exchanges, m.ExchangeValues)
	return
}

func (m *Metrics) ObserveStep(rank string, dt, simTime float64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Steps.WithLabelValues(rank).Inc()
	m.TimeStep.WithLabelValues(rank).Set(dt)
	m.SimTime.WithLabelValues(rank).Set(simTime)
	m.StepSeconds.WithLabelValues(rank).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveExchange(rank, kind string, values int) {
	if m == nil {
		return
	}
	m.Exchanges.WithLabelValues(rank, kind).Inc()
	m.ExchangeValues.WithLabelValues(rank, kind).Add(float64(values))
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
