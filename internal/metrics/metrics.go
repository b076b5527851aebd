// Package metrics define los collectors Prometheus de taskhub. Cada
// Metrics tiene su propio registry para que los tests no compartan estado.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskhub"

type Metrics struct {
	reg *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInflight prometheus.Gauge

	provisioning         *prometheus.CounterVec
	provisioningDuration *prometheus.HistogramVec
	crossProvider        *prometheus.CounterVec

	rateRejects *prometheus.CounterVec
	mailSent    *prometheus.CounterVec
}

// New crea y registra los collectors. Incluye los de proceso y runtime.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Número total de requests procesadas",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de los requests HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_inflight_requests",
			Help:      "Requests en vuelo",
		}),
		provisioning: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioning_total",
			Help:      "Ejecuciones de los flujos de aprovisionamiento por resultado",
		}, []string{"flow", "outcome"}),
		provisioningDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provisioning_duration_seconds",
			Help:      "Duración de los flujos de aprovisionamiento",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"flow"}),
		crossProvider: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioning_cross_provider_total",
			Help:      "Usuarios existentes reutilizados por email desde un proveedor no vinculado",
		}, []string{"provider"}),
		rateRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejects_total",
			Help:      "Requests rechazadas por rate limit",
		}, []string{"scope"}),
		mailSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_sent_total",
			Help:      "Emails enviados por plantilla y resultado",
		}, []string{"template", "result"}),
	}

	m.reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		m.httpRequests, m.httpDuration, m.httpInflight,
		m.provisioning, m.provisioningDuration, m.crossProvider,
		m.rateRejects, m.mailSent,
	)
	return m
}

// Register agrega un collector extra ignorando duplicados.
func (m *Metrics) Register(c prometheus.Collector) error {
	if err := m.reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// Registry expone el registry para tests y collectors externos.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler sirve /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveFlow registra el resultado de un flujo de aprovisionamiento.
func (m *Metrics) ObserveFlow(flow, outcome string, d time.Duration) {
	m.provisioning.WithLabelValues(flow, outcome).Inc()
	m.provisioningDuration.WithLabelValues(flow).Observe(d.Seconds())
}

func (m *Metrics) CrossProviderReuse(provider string) {
	m.crossProvider.WithLabelValues(provider).Inc()
}

func (m *Metrics) RateRejected(scope string) {
	m.rateRejects.WithLabelValues(scope).Inc()
}

func (m *Metrics) MailSent(template string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mailSent.WithLabelValues(template, result).Inc()
}
