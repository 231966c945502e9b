package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for panel generation and the advisor.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	briefings       *prometheus.CounterVec
	generateSeconds *prometheus.HistogramVec
	advisorReplies  *prometheus.CounterVec
	rateLimited     *prometheus.CounterVec
}

// MustNewMetrics constructs and registers the collectors. Registration errors
// panic, mirroring promauto.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		briefings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cop",
				Subsystem: "briefing",
				Name:      "requests_total",
				Help:      "Panel briefings served, by outcome (generated, fallback, cached).",
			},
			[]string{"panel", "outcome"},
		),
		generateSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cop",
				Subsystem: "briefing",
				Name:      "generate_duration_seconds",
				Help:      "Time spent generating a panel narrative, fallbacks included.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
			},
			[]string{"panel"},
		),
		advisorReplies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cop",
				Subsystem: "advisor",
				Name:      "replies_total",
				Help:      "Tactical advisor replies, by outcome (ok, error).",
			},
			[]string{"outcome"},
		),
		rateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cop",
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the per-IP limiter.",
			},
			[]string{"route"},
		),
	}
	reg.MustRegister(m.briefings, m.generateSeconds, m.advisorReplies, m.rateLimited)
	return m
}

func (m *Metrics) briefingServed(panel, outcome string) {
	if m == nil {
		return
	}
	m.briefings.WithLabelValues(panel, outcome).Inc()
}

func (m *Metrics) generated(panel string, d time.Duration) {
	if m == nil {
		return
	}
	m.generateSeconds.WithLabelValues(panel).Observe(d.Seconds())
}

func (m *Metrics) advisorReply(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.advisorReplies.WithLabelValues(outcome).Inc()
}

func (m *Metrics) limited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}
