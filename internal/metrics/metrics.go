// Package metrics exposes the service's Prometheus collectors on a dedicated
// registry so tests never collide on the global one.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all collectors for the compliance service.
type Metrics struct {
	reg *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	WeightEvaluations  *prometheus.CounterVec
	HOSChecks          prometheus.Counter
	ViolationsRecorded *prometheus.CounterVec
	AssignmentsTotal   *prometheus.CounterVec
	DutyChanges        *prometheus.CounterVec
	WebhookDeliveries  *prometheus.CounterVec
}

// New builds and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetcomp_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleetcomp_http_request_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		WeightEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetcomp_weight_evaluations_total",
			Help: "Weight evaluations by safety rating.",
		}, []string{"rating"}),
		HOSChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleetcomp_hos_checks_total",
			Help: "Hours-of-service compliance checks.",
		}),
		ViolationsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetcomp_violations_recorded_total",
			Help: "Violation records by type and severity.",
		}, []string{"type", "severity"}),
		AssignmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetcomp_assignments_total",
			Help: "Load assignment decisions by outcome.",
		}, []string{"outcome"}),
		DutyChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetcomp_duty_status_changes_total",
			Help: "Duty status changes by status.",
		}, []string{"status"}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetcomp_webhook_deliveries_total",
			Help: "Webhook delivery attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests, m.HTTPDuration,
		m.WeightEvaluations, m.HOSChecks, m.ViolationsRecorded,
		m.AssignmentsTotal, m.DutyChanges, m.WebhookDeliveries,
	)
	return m
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
