// Package metrics declares the planner's Prometheus collectors. They are
// registered on the default registry and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "planner"

var (
	// GateDecisionsTotal is labelled by the protected route and by result:
	// granted, denied, unauthenticated or error.
	GateDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "decisions_total",
		Help:      "Group-membership gate decisions.",
	}, []string{"route", "result"})

	GateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "lookup_seconds",
		Help:      "Time spent enumerating the caller's groups.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"route"})

	// SessionCacheTotal results are hit, miss or error.
	SessionCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "cache_lookups_total",
		Help:      "Session cache lookups.",
	}, []string{"result"})
)

var (
	// EmailsSentTotal results: sent, template_error, render_error,
	// provider_error or queue_full.
	EmailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "email",
		Name:      "sends_total",
		Help:      "Transactional email send attempts.",
	}, []string{"template", "result"})

	// TemplateCompilationsTotal results: ok, load_error, inline_error or
	// compile_error.
	TemplateCompilationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "email",
		Name:      "template_compilations_total",
		Help:      "Template load, inline and compile runs.",
	}, []string{"result"})

	EmailQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "email",
		Name:      "queue_depth",
		Help:      "Jobs waiting per dispatcher shard.",
	}, []string{"shard"})
)
