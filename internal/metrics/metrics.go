package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Lease outcomes recorded by ObserveLease.
const (
	LeaseAcquired  = "acquired"
	LeaseContended = "contended"
	LeaseFailed    = "failed"
)

// Metrics groups the collectors exported by the store.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	timersArmed *prometheus.CounterVec
	timeouts    *prometheus.CounterVec
	leases      *prometheus.CounterVec
	errors      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default handler.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		timersArmed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redistore_timers_armed_total",
				Help: "Total number of trigger keys written",
			},
			[]string{"namespace"},
		),
		timeouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redistore_timeouts_total",
				Help: "Total number of timeout events emitted",
			},
			[]string{"namespace"},
		),
		leases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redistore_lease_attempts_total",
				Help: "Lease acquisition attempts by outcome",
			},
			[]string{"outcome"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redistore_errors_total",
				Help: "Errors surfaced as events, by source",
			},
			[]string{"source"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.timersArmed, m.timeouts, m.leases, m.errors)
	}
	return m
}

// ObserveArm counts a trigger key written for namespace.
func (m *Metrics) ObserveArm(namespace string) {
	if m == nil {
		return
	}
	m.timersArmed.WithLabelValues(namespace).Inc()
}

// ObserveTimeout counts a timeout event emitted for namespace.
func (m *Metrics) ObserveTimeout(namespace string) {
	if m == nil {
		return
	}
	m.timeouts.WithLabelValues(namespace).Inc()
}

// ObserveLease counts a lease attempt with one of the Lease* outcomes.
func (m *Metrics) ObserveLease(outcome string) {
	if m == nil {
		return
	}
	m.leases.WithLabelValues(outcome).Inc()
}

// ObserveError counts an error event from source.
func (m *Metrics) ObserveError(source string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(source).Inc()
}
