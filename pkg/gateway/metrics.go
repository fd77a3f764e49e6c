package gateway

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/navgate/pkg/guard"
)

// Metrics are the Prometheus collectors of the gateway.
type Metrics struct {
	Navigations        *prometheus.CounterVec
	NavigationDuration prometheus.Histogram
	Logins             *prometheus.CounterVec
	Logouts            *prometheus.CounterVec
	Expirations        *prometheus.CounterVec
	Workspaces         prometheus.Gauge
	PageLoads          prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Navigations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navgate_navigations_total",
				Help: "Navigations by outcome",
			},
			[]string{"outcome"},
		),
		NavigationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "navgate_navigation_duration_seconds",
				Help:    "Time to settle a navigation, guards and redirects included",
				Buckets: prometheus.DefBuckets,
			},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navgate_logins_total",
				Help: "Login attempts by namespace and outcome",
			},
			[]string{"namespace", "outcome"},
		),
		Logouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navgate_logouts_total",
				Help: "Logouts by namespace",
			},
			[]string{"namespace"},
		),
		Expirations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navgate_login_expirations_total",
				Help: "Logins whose window elapsed, by namespace",
			},
			[]string{"namespace"},
		),
		Workspaces: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "navgate_workspaces",
				Help: "Workspaces held in memory",
			},
		),
		PageLoads: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "navgate_page_loads_in_progress",
				Help: "Workspaces loading a page for the first time",
			},
		),
	}
	reg.MustRegister(
		m.Navigations,
		m.NavigationDuration,
		m.Logins,
		m.Logouts,
		m.Expirations,
		m.Workspaces,
		m.PageLoads,
	)
	return m
}

// Progress returns a progress indicator for one workspace backed by the
// page-load gauge.
func (m *Metrics) Progress() guard.Progress {
	return &progress{gauge: m.PageLoads}
}

// progress counts at most once per workspace; redirects restart an active
// indicator without counting again.
type progress struct {
	gauge  prometheus.Gauge
	active atomic.Bool
}

func (p *progress) Start() {
	if p.active.CompareAndSwap(false, true) {
		p.gauge.Inc()
	}
}

func (p *progress) Done() {
	if p.active.CompareAndSwap(true, false) {
		p.gauge.Dec()
	}
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
