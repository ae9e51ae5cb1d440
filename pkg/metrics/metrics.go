// Package metrics holds the Prometheus instruments of the member verification flow.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CodeRequests  *prometheus.CounterVec
	Confirmations *prometheus.CounterVec
	Saves         *prometheus.CounterVec
	Searches      *prometheus.CounterVec
}

// New registers the instruments on reg; pass prometheus.DefaultRegisterer in main.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CodeRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "directory_verification_code_requests_total",
			Help: "Verification code requests by outcome",
		}, []string{"outcome"}),
		Confirmations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "directory_verification_confirmations_total",
			Help: "Code confirmations by result",
		}, []string{"result"}),
		Saves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "directory_member_saves_total",
			Help: "Member record writes from the self-service flow",
		}, []string{"kind", "outcome"}),
		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "directory_searches_total",
			Help: "Directory searches by whether anything matched",
		}, []string{"matched"}),
	}
}

// ActiveFlows exposes fn as the number of live verification flows.
func ActiveFlows(reg prometheus.Registerer, fn func() int) {
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "directory_verification_flows_active",
		Help: "Verification flows currently held in memory",
	}, func() float64 { return float64(fn()) })
}

func (m *Metrics) CodeRequested(outcome string) {
	if m == nil {
		return
	}
	m.CodeRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Confirmed(result string) {
	if m == nil {
		return
	}
	m.Confirmations.WithLabelValues(result).Inc()
}

func (m *Metrics) Saved(created bool, err error) {
	if m == nil {
		return
	}
	kind, outcome := "update", "ok"
	if created {
		kind = "create"
	}
	if err != nil {
		outcome = "error"
	}
	m.Saves.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) Searched(matched bool) {
	if m == nil {
		return
	}
	v := "false"
	if matched {
		v = "true"
	}
	m.Searches.WithLabelValues(v).Inc()
}
